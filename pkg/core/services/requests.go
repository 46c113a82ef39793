package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/charlesliao-stock/AIshiftschedule-sub001/pkg/core/lifecycle"
	"github.com/charlesliao-stock/AIshiftschedule-sub001/pkg/core/model"
	"github.com/charlesliao-stock/AIshiftschedule-sub001/pkg/db"
)

// RequestInput describes a new pre-schedule request. Unset quota fields take the unit defaults.
type RequestInput struct {
	Year                     int                                    `yaml:"year"`
	Month                    time.Month                             `yaml:"month"`
	MaxOffDays               *int                                   `yaml:"maxOffDays,omitempty"`
	MaxHoliday               *int                                   `yaml:"maxHoliday,omitempty"`
	ShiftTypesLimit          *int                                   `yaml:"shiftTypesLimit,omitempty"`
	AllowThreeTypesVoluntary *bool                                  `yaml:"allowThreeTypesVoluntary,omitempty"`
	ReservedStaffPerDay      *int                                   `yaml:"reservedStaffPerDay,omitempty"`
	Participants             map[string]string                      `yaml:"participants"`
	DemandByDate             map[model.Date]map[model.ShiftCode]int `yaml:"demandByDate,omitempty"`
	GroupLimits              map[string]model.GroupLimit            `yaml:"groupLimits,omitempty"`
}

// CreateRequest stores a new draft request for one month of the unit
func CreateRequest(ctx context.Context, store db.RequestStore, unit *Unit, logger *zap.Logger, in RequestInput) (*model.PreScheduleRequest, error) {
	logger.Debug("Creating pre-schedule request",
		zap.String("unit", unit.ID),
		zap.Int("year", in.Year),
		zap.Int("month", int(in.Month)),
		zap.Int("participants", len(in.Participants)))

	req := &model.PreScheduleRequest{
		ID:                       uuid.New().String(),
		UnitID:                   unit.ID,
		Year:                     in.Year,
		Month:                    in.Month,
		Status:                   model.StatusDraft,
		MaxOffDays:               orDefault(in.MaxOffDays, unit.Defaults.MaxOffDays),
		MaxHoliday:               orDefault(in.MaxHoliday, unit.Defaults.MaxHoliday),
		ShiftTypesLimit:          orDefault(in.ShiftTypesLimit, unit.Defaults.ShiftTypesLimit),
		AllowThreeTypesVoluntary: orDefault(in.AllowThreeTypesVoluntary, unit.Defaults.AllowThreeTypesVoluntary),
		ReservedStaffPerDay:      orDefault(in.ReservedStaffPerDay, unit.Defaults.ReservedStaffPerDay),
		Participants:             in.Participants,
		DemandByDate:             in.DemandByDate,
		GroupLimits:              in.GroupLimits,
	}
	if req.Participants == nil {
		req.Participants = make(map[string]string)
	}

	// Step 1: Check the settings against the shift catalog
	if err := model.ValidateRequestSettings(req, unit.Catalog); err != nil {
		return nil, fmt.Errorf("invalid request settings: %w", err)
	}

	// Step 2: Insert (one request per unit-month)
	if err := store.InsertRequest(ctx, req); err != nil {
		return nil, fmt.Errorf("failed to insert request: %w", err)
	}

	logger.Info("Pre-schedule request created",
		zap.String("id", req.ID),
		zap.String("key", db.KeyOf(req).String()))

	return req, nil
}

// OpenResult is the outcome of opening a request
type OpenResult struct {
	Request *model.PreScheduleRequest
	Notice  lifecycle.Notice
	// NoticeID is the queued message id, empty when queuing failed
	NoticeID string
}

// OpenPreSchedule opens a draft request for participant editing until closeDate.
// A zero closeDate means today plus the unit's default window. The opened notice is queued after the
// transition is stored; a queuing failure is logged and leaves the request open.
func OpenPreSchedule(
	ctx context.Context,
	store db.RequestStore,
	locker Locker,
	notifier Notifier,
	unit *Unit,
	logger *zap.Logger,
	key db.MonthKey,
	today, closeDate model.Date,
) (*OpenResult, error) {
	if closeDate.IsZero() {
		closeDate = today.AddDays(unit.Defaults.WindowDays - 1)
	}

	var notice lifecycle.Notice
	req, err := transition(ctx, store, locker, logger, key, lifecycle.ActionOpen, func(req model.PreScheduleRequest) (model.PreScheduleRequest, error) {
		next, n, err := lifecycle.Open(req, today, closeDate)
		notice = n
		return next, err
	})
	if err != nil {
		return nil, err
	}

	result := &OpenResult{Request: req, Notice: notice}

	logger.Debug("Queuing opened notice", zap.Int("recipients", len(notice.Recipients)))
	id, err := notifier.PublishNotice(ctx, notice)
	if err != nil {
		logger.Warn("Failed to queue opened notice", zap.String("key", key.String()), zap.Error(err))
		return result, nil
	}
	result.NoticeID = id

	logger.Info("Opened notice queued", zap.String("message_id", id))
	return result, nil
}

// ClosePreSchedule stops participant editing
func ClosePreSchedule(ctx context.Context, store db.RequestStore, locker Locker, logger *zap.Logger, key db.MonthKey) (*model.PreScheduleRequest, error) {
	return transition(ctx, store, locker, logger, key, lifecycle.ActionClose, lifecycle.Close)
}

// ReopenPreSchedule returns a closed request to open
func ReopenPreSchedule(ctx context.Context, store db.RequestStore, locker Locker, logger *zap.Logger, key db.MonthKey) (*model.PreScheduleRequest, error) {
	return transition(ctx, store, locker, logger, key, lifecycle.ActionReopen, lifecycle.Reopen)
}

// LockPreSchedule finalizes the request. No wish set can change afterwards.
func LockPreSchedule(ctx context.Context, store db.RequestStore, locker Locker, logger *zap.Logger, key db.MonthKey) (*model.PreScheduleRequest, error) {
	return transition(ctx, store, locker, logger, key, lifecycle.ActionLock, lifecycle.Lock)
}

// transition runs one lifecycle step under the unit-month lock and stores it with a compare-and-swap
// on the status it was read with
func transition(
	ctx context.Context,
	store db.RequestStore,
	locker Locker,
	logger *zap.Logger,
	key db.MonthKey,
	action lifecycle.Action,
	apply func(model.PreScheduleRequest) (model.PreScheduleRequest, error),
) (*model.PreScheduleRequest, error) {
	logger.Debug("Applying lifecycle transition", zap.String("key", key.String()), zap.String("action", string(action)))

	// Step 1: Hold the unit-month lock
	release, err := locker.Hold(ctx, key.String())
	if err != nil {
		return nil, fmt.Errorf("failed to lock %s: %w", key, err)
	}
	defer func() {
		if err := release(ctx); err != nil {
			logger.Warn("Failed to release lock", zap.String("key", key.String()), zap.Error(err))
		}
	}()

	// Step 2: Load the current request
	current, err := store.GetRequest(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch request: %w", err)
	}
	logger.Debug("Loaded request",
		zap.String("id", current.ID),
		zap.String("status", string(current.Status)),
		zap.Int("version", current.Version))

	// Step 3: Apply the transition
	next, err := apply(*current)
	if err != nil {
		return nil, err
	}

	// Step 4: Store it only if nobody moved the request meanwhile
	if err := store.UpdateRequestStatus(ctx, &next, current.Status); err != nil {
		return nil, fmt.Errorf("failed to store %s transition: %w", action, err)
	}

	logger.Info("Request status changed",
		zap.String("key", key.String()),
		zap.String("from", string(current.Status)),
		zap.String("to", string(next.Status)))

	return &next, nil
}

func orDefault[T any](value *T, fallback T) T {
	if value == nil {
		return fallback
	}
	return *value
}
