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

// GetGrid retrieves the schedule grid of a unit-month
func (d *DB) GetGrid(ctx context.Context, key db.MonthKey) (*model.ScheduleGrid, error) {
	var (
		grid   model.ScheduleGrid
		month  int
		status string
	)
	err := d.pool.QueryRow(ctx, `
		SELECT unit_id, year, month, status, assignments, version
		FROM schedule_grid
		WHERE unit_id = $1 AND year = $2 AND month = $3
	`, key.UnitID, key.Year, int(key.Month)).Scan(&grid.UnitID, &grid.Year, &month, &status, &grid.Assignments, &grid.Version)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("grid %s: %w", key, db.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query grid %s: %w", key, err)
	}

	grid.Month = time.Month(month)
	grid.Status = model.GridStatus(status)
	return &grid, nil
}

// SaveGrid inserts or replaces a grid when the stored version still equals grid.Version (0 for a new grid)
func (d *DB) SaveGrid(ctx context.Context, grid *model.ScheduleGrid) error {
	err := d.pool.QueryRow(ctx, `
		INSERT INTO schedule_grid (unit_id, year, month, status, assignments)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (unit_id, year, month) DO UPDATE SET
			status = EXCLUDED.status,
			assignments = EXCLUDED.assignments,
			version = schedule_grid.version + 1,
			updated_at = NOW()
		WHERE schedule_grid.version = $6
		RETURNING version
	`, grid.UnitID, grid.Year, int(grid.Month), string(grid.Status), jsonObject(grid.Assignments), grid.Version).Scan(&grid.Version)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("grid %s/%04d-%02d changed since version %d: %w", grid.UnitID, grid.Year, int(grid.Month), grid.Version, db.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("failed to save grid: %w", err)
	}
	return nil
}

// UpdateGridStatus is a compare-and-swap on version
func (d *DB) UpdateGridStatus(ctx context.Context, grid *model.ScheduleGrid) error {
	err := d.pool.QueryRow(ctx, `
		UPDATE schedule_grid
		SET status = $1, version = version + 1, updated_at = NOW()
		WHERE unit_id = $2 AND year = $3 AND month = $4 AND version = $5
		RETURNING version
	`, string(grid.Status), grid.UnitID, grid.Year, int(grid.Month), grid.Version).Scan(&grid.Version)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("grid %s/%04d-%02d changed since version %d: %w", grid.UnitID, grid.Year, int(grid.Month), grid.Version, db.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("failed to update grid status: %w", err)
	}
	return nil
}
