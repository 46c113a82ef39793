package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/charlesliao-stock/AIshiftschedule-sub001/pkg/core/demand"
	"github.com/charlesliao-stock/AIshiftschedule-sub001/pkg/core/model"
	"github.com/charlesliao-stock/AIshiftschedule-sub001/pkg/db"
)

// DemandStore defines the database operations needed for demand previews
type DemandStore interface {
	GetRequest(ctx context.Context, key db.MonthKey) (*model.PreScheduleRequest, error)
	ListWishSets(ctx context.Context, key db.MonthKey) ([]model.WishSet, error)
}

// DemandReport is the advisory picture of a unit-month's wishes
type DemandReport struct {
	Request      *model.PreScheduleRequest
	Days         []model.CalendarDay
	Aggregate    model.AggregateDemand
	Coverage     []demand.Coverage
	GroupIssues  []demand.GroupIssue
	OverCapacity []demand.OffCapacity
	Progress     demand.Progress
}

// PreviewDemand aggregates the accepted wish sets of a unit-month. When provisional is set it stands in
// for that participant's committed set, so a scheduler can see the effect of an edit before saving it.
// Nothing is written.
func PreviewDemand(
	ctx context.Context,
	store DemandStore,
	unit *Unit,
	logger *zap.Logger,
	key db.MonthKey,
	provisional *model.WishSet,
) (*DemandReport, error) {
	logger.Debug("Previewing demand", zap.String("key", key.String()), zap.Bool("provisional", provisional != nil))

	// Step 1: Load the request and its accepted wish sets
	req, err := store.GetRequest(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch request: %w", err)
	}

	accepted, err := store.ListWishSets(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch wish sets: %w", err)
	}
	logger.Debug("Loaded wish sets", zap.Int("count", len(accepted)))

	// Step 2: Aggregate
	days := unit.Days(req.Year, req.Month)
	agg := demand.Aggregate(accepted, req, days, unit.Catalog, provisional)

	// Step 3: Compare with the configured demand, group limits and off capacity
	groups := demand.AggregateByGroup(accepted, req, days, unit.Catalog, provisional)
	report := &DemandReport{
		Request:      req,
		Days:         days,
		Aggregate:    agg,
		Coverage:     demand.CoverageOf(agg, req, unit.Catalog),
		GroupIssues:  demand.CheckGroupLimits(groups, req, days, unit.Catalog),
		OverCapacity: demand.OverCapacity(demand.OffCapacityOf(agg, req, days, unit.Catalog)),
		Progress:     demand.SubmissionProgress(req, accepted),
	}

	logger.Info("Demand preview ready",
		zap.String("key", key.String()),
		zap.Int("unmet", len(demand.Unmet(report.Coverage))),
		zap.Int("group_issues", len(report.GroupIssues)),
		zap.Int("over_capacity", len(report.OverCapacity)))

	return report, nil
}

// ViewSubmissionProgress reports which participants have submitted a wish set
func ViewSubmissionProgress(ctx context.Context, store DemandStore, logger *zap.Logger, key db.MonthKey) (demand.Progress, error) {
	logger.Debug("Fetching submission progress", zap.String("key", key.String()))

	req, err := store.GetRequest(ctx, key)
	if err != nil {
		return demand.Progress{}, fmt.Errorf("failed to fetch request: %w", err)
	}

	accepted, err := store.ListWishSets(ctx, key)
	if err != nil {
		return demand.Progress{}, fmt.Errorf("failed to fetch wish sets: %w", err)
	}

	progress := demand.SubmissionProgress(req, accepted)
	logger.Debug("Submission progress",
		zap.Int("submitted", len(progress.Submitted)),
		zap.Int("pending", len(progress.Pending)))

	return progress, nil
}
