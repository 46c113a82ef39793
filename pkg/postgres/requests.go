package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/charlesliao-stock/AIshiftschedule-sub001/pkg/core/model"
	"github.com/charlesliao-stock/AIshiftschedule-sub001/pkg/db"
)

// GetRequest retrieves the pre-schedule request of a unit-month
func (d *DB) GetRequest(ctx context.Context, key db.MonthKey) (*model.PreScheduleRequest, error) {
	var (
		req                 model.PreScheduleRequest
		month               int
		status              string
		openDate, closeDate *time.Time
	)

	err := d.pool.QueryRow(ctx, `
		SELECT id, unit_id, year, month, status, open_date, close_date,
		       max_off_days, max_holiday, shift_types_limit, allow_three_types_voluntary,
		       reserved_staff_per_day, group_limits, demand_by_date, participants, version
		FROM pre_schedule_request
		WHERE unit_id = $1 AND year = $2 AND month = $3
	`, key.UnitID, key.Year, int(key.Month)).Scan(
		&req.ID, &req.UnitID, &req.Year, &month, &status, &openDate, &closeDate,
		&req.MaxOffDays, &req.MaxHoliday, &req.ShiftTypesLimit, &req.AllowThreeTypesVoluntary,
		&req.ReservedStaffPerDay, &req.GroupLimits, &req.DemandByDate, &req.Participants, &req.Version,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("request %s: %w", key, db.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query request %s: %w", key, err)
	}

	req.Month = time.Month(month)
	req.Status = model.RequestStatus(status)
	req.OpenDate = dateFrom(openDate)
	req.CloseDate = dateFrom(closeDate)

	return &req, nil
}

// InsertRequest inserts a new pre-schedule request. A second request for the same unit-month is a conflict.
func (d *DB) InsertRequest(ctx context.Context, req *model.PreScheduleRequest) error {
	err := d.pool.QueryRow(ctx, `
		INSERT INTO pre_schedule_request (
			id, unit_id, year, month, status, open_date, close_date,
			max_off_days, max_holiday, shift_types_limit, allow_three_types_voluntary,
			reserved_staff_per_day, group_limits, demand_by_date, participants
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING version
	`,
		req.ID, req.UnitID, req.Year, int(req.Month), string(req.Status), dateArg(req.OpenDate), dateArg(req.CloseDate),
		req.MaxOffDays, req.MaxHoliday, req.ShiftTypesLimit, req.AllowThreeTypesVoluntary,
		req.ReservedStaffPerDay, jsonObject(req.GroupLimits), jsonObject(req.DemandByDate), jsonObject(req.Participants),
	).Scan(&req.Version)
	if isUniqueViolation(err) {
		return fmt.Errorf("request %s already exists: %w", db.KeyOf(req), db.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("failed to insert request: %w", err)
	}
	return nil
}

// UpdateRequestStatus is a compare-and-swap on (status, version)
func (d *DB) UpdateRequestStatus(ctx context.Context, req *model.PreScheduleRequest, expected model.RequestStatus) error {
	err := d.pool.QueryRow(ctx, `
		UPDATE pre_schedule_request
		SET status = $1, open_date = $2, close_date = $3, version = version + 1
		WHERE id = $4 AND status = $5 AND version = $6
		RETURNING version
	`, string(req.Status), dateArg(req.OpenDate), dateArg(req.CloseDate), req.ID, string(expected), req.Version).Scan(&req.Version)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("request %s is no longer %s at version %d: %w", req.ID, expected, req.Version, db.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("failed to update request status: %w", err)
	}
	return nil
}

// jsonObject keeps nil maps out of NOT NULL jsonb columns as an empty object rather than null
func jsonObject[K comparable, V any](m map[K]V) map[K]V {
	if m == nil {
		return map[K]V{}
	}
	return m
}
