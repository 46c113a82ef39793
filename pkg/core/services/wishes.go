package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/charlesliao-stock/AIshiftschedule-sub001/pkg/core/model"
	"github.com/charlesliao-stock/AIshiftschedule-sub001/pkg/core/wishes"
	"github.com/charlesliao-stock/AIshiftschedule-sub001/pkg/db"
)

// SubmitWishesStore defines the database operations needed for submitting wishes
type SubmitWishesStore interface {
	GetRequest(ctx context.Context, key db.MonthKey) (*model.PreScheduleRequest, error)
	GetWishSet(ctx context.Context, key db.SubmissionKey) (*model.WishSet, error)
	UpsertWishSet(ctx context.Context, req *model.PreScheduleRequest, ws *model.WishSet) error
}

// SubmitWishes validates a participant's wish set and commits it as that participant's accepted set.
// Only one writer per participant runs at a time, and the commit fails with db.ErrConflict when
// the request changed after it was loaded. A rejected set is never stored; the returned
// error is a wishes.ValidationErrors carrying every violation, or a lifecycle error when the
// request does not accept the write.
func SubmitWishes(
	ctx context.Context,
	store SubmitWishesStore,
	locker Locker,
	unit *Unit,
	logger *zap.Logger,
	key db.MonthKey,
	ws model.WishSet,
	caps model.Capabilities,
	today model.Date,
) (*model.WishSet, error) {
	subKey := key.Staff(ws.StaffID)
	logger.Debug("Submitting wishes",
		zap.String("key", subKey.String()),
		zap.Int("wishes", len(ws.Wishes)),
		zap.Bool("admin_override", caps.AdminOverride))

	// Step 1: Hold the participant's writer lock
	release, err := locker.Hold(ctx, subKey.String())
	if err != nil {
		return nil, fmt.Errorf("failed to lock %s: %w", subKey, err)
	}
	defer func() {
		if err := release(ctx); err != nil {
			logger.Warn("Failed to release lock", zap.String("key", subKey.String()), zap.Error(err))
		}
	}()

	// Step 2: Load the request
	req, err := store.GetRequest(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch request: %w", err)
	}

	// Step 3: Validate against the request's rules
	accepted, err := wishes.Validate(wishes.Input{
		WishSet:      ws,
		Request:      req,
		Capabilities: caps,
		Catalog:      unit.Catalog,
		Days:         unit.Days(req.Year, req.Month),
		Night:        unit.Night,
		Today:        today,
	})
	if err != nil {
		logger.Debug("Wish set rejected", zap.String("key", subKey.String()), zap.Error(err))
		return nil, err
	}

	// Step 4: Pick up the stored version so the upsert replaces exactly what we read
	existing, err := store.GetWishSet(ctx, subKey)
	switch {
	case errors.Is(err, db.ErrNotFound):
		accepted.Version = 0
	case err != nil:
		return nil, fmt.Errorf("failed to fetch current wish set: %w", err)
	default:
		accepted.Version = existing.Version
	}

	// Step 5: Commit, provided the request has not moved on since step 2
	if err := store.UpsertWishSet(ctx, req, &accepted); err != nil {
		return nil, fmt.Errorf("failed to store wish set: %w", err)
	}

	logger.Info("Wish set accepted",
		zap.String("key", subKey.String()),
		zap.Int("version", accepted.Version))

	return &accepted, nil
}
