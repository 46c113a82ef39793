package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/charlesliao-stock/AIshiftschedule-sub001/pkg/core/model"
	"github.com/charlesliao-stock/AIshiftschedule-sub001/pkg/core/statistics"
	"github.com/charlesliao-stock/AIshiftschedule-sub001/pkg/db"
)

var (
	// ErrGridPublished is returned when a published grid would be replaced
	ErrGridPublished = errors.New("grid is already published")
	// ErrRequestNotLocked is returned when a grid is published before its request is locked
	ErrRequestNotLocked = errors.New("request is not locked")
)

// GridStore defines the database operations needed for grid services
type GridStore interface {
	GetRequest(ctx context.Context, key db.MonthKey) (*model.PreScheduleRequest, error)
	GetGrid(ctx context.Context, key db.MonthKey) (*model.ScheduleGrid, error)
	SaveGrid(ctx context.Context, grid *model.ScheduleGrid) error
	UpdateGridStatus(ctx context.Context, grid *model.ScheduleGrid) error
}

// ImportGrid stores a draft grid for the unit-month, replacing any previous draft.
// Every row is checked for unknown codes and out-of-range dates first.
func ImportGrid(ctx context.Context, store GridStore, unit *Unit, logger *zap.Logger, grid model.ScheduleGrid) (*model.ScheduleGrid, error) {
	grid.UnitID = unit.ID
	key := db.MonthKey{UnitID: grid.UnitID, Year: grid.Year, Month: grid.Month}
	logger.Debug("Importing grid", zap.String("key", key.String()), zap.Int("rows", len(grid.Assignments)))

	// Step 1: Check every row
	if _, err := statistics.ComputeGridStatistics(&grid, unit.Days(grid.Year, grid.Month), unit.Catalog); err != nil {
		return nil, fmt.Errorf("invalid grid: %w", err)
	}

	// Step 2: Find the version to replace
	existing, err := store.GetGrid(ctx, key)
	switch {
	case errors.Is(err, db.ErrNotFound):
		grid.Version = 0
	case err != nil:
		return nil, fmt.Errorf("failed to fetch current grid: %w", err)
	case existing.Status == model.GridPublished:
		return nil, fmt.Errorf("%w: %s", ErrGridPublished, key)
	default:
		grid.Version = existing.Version
	}

	// Step 3: Save as draft
	grid.Status = model.GridDraft
	if err := store.SaveGrid(ctx, &grid); err != nil {
		return nil, fmt.Errorf("failed to save grid: %w", err)
	}

	logger.Info("Grid imported", zap.String("key", key.String()), zap.Int("version", grid.Version))
	return &grid, nil
}

// ComputeGridStatistics computes per-staff statistics of the stored grid
func ComputeGridStatistics(ctx context.Context, store GridStore, unit *Unit, logger *zap.Logger, key db.MonthKey) (*statistics.GridStatistics, error) {
	logger.Debug("Computing grid statistics", zap.String("key", key.String()))

	grid, err := store.GetGrid(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch grid: %w", err)
	}

	stats, err := statistics.ComputeGridStatistics(grid, unit.Days(key.Year, key.Month), unit.Catalog)
	if err != nil {
		return nil, fmt.Errorf("failed to compute statistics: %w", err)
	}

	logger.Debug("Grid statistics computed",
		zap.Int("staff", len(stats.Staff)),
		zap.Int("work_days", stats.WorkDays))

	return &stats, nil
}

// CheckCompleteness compares the stored grid with the request's demand
func CheckCompleteness(ctx context.Context, store GridStore, unit *Unit, logger *zap.Logger, key db.MonthKey) (statistics.Report, error) {
	logger.Debug("Checking grid completeness", zap.String("key", key.String()))

	req, err := store.GetRequest(ctx, key)
	if err != nil {
		return statistics.Report{}, fmt.Errorf("failed to fetch request: %w", err)
	}

	grid, err := store.GetGrid(ctx, key)
	if err != nil {
		return statistics.Report{}, fmt.Errorf("failed to fetch grid: %w", err)
	}

	return completeness(grid, req, unit, logger)
}

// PublishResult is the outcome of publishing a grid
type PublishResult struct {
	Grid   *model.ScheduleGrid
	Report statistics.Report
}

// PublishGrid marks the grid of a locked request as published. Shortages are reported alongside
// and never stop publication. Publishing an already published grid returns it unchanged.
func PublishGrid(ctx context.Context, store GridStore, unit *Unit, logger *zap.Logger, key db.MonthKey) (*PublishResult, error) {
	logger.Debug("Publishing grid", zap.String("key", key.String()))

	// Step 1: The request must be final
	req, err := store.GetRequest(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch request: %w", err)
	}
	if req.Status != model.StatusLocked {
		return nil, fmt.Errorf("%w: status is %q", ErrRequestNotLocked, req.Status)
	}

	// Step 2: Load the grid and check it against demand
	grid, err := store.GetGrid(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch grid: %w", err)
	}

	report, err := completeness(grid, req, unit, logger)
	if err != nil {
		return nil, err
	}

	// Step 3: Flip the status
	if grid.Status == model.GridPublished {
		logger.Info("Grid already published", zap.String("key", key.String()))
		return &PublishResult{Grid: grid, Report: report}, nil
	}

	grid.Status = model.GridPublished
	if err := store.UpdateGridStatus(ctx, grid); err != nil {
		return nil, fmt.Errorf("failed to publish grid: %w", err)
	}

	logger.Info("Grid published",
		zap.String("key", key.String()),
		zap.Bool("complete", report.Complete),
		zap.Int("total_shortage", report.TotalShortage()))

	return &PublishResult{Grid: grid, Report: report}, nil
}

func completeness(grid *model.ScheduleGrid, req *model.PreScheduleRequest, unit *Unit, logger *zap.Logger) (statistics.Report, error) {
	report, err := statistics.ComputeCompleteness(grid, req.DemandByDate, unit.Days(req.Year, req.Month), unit.Catalog)
	if err != nil {
		return statistics.Report{}, fmt.Errorf("failed to check completeness: %w", err)
	}

	for _, missing := range report.Missing {
		logger.Debug("Shortage",
			zap.String("date", missing.Date.String()),
			zap.String("shift", string(missing.Shift)),
			zap.Int("shortage", missing.Shortage))
	}

	return report, nil
}
