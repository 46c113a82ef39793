package db

import (
	"context"
	"errors"
	"time"

	"github.com/charlesliao-stock/AIshiftschedule-sub001/pkg/core/model"
)

var (
	// ErrNotFound is returned when no record matches the lookup
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned when a conditional write finds the record changed since it was read
	ErrConflict = errors.New("record was modified concurrently")
)

// RequestStore defines the interface for pre-schedule request operations
type RequestStore interface {
	GetRequest(ctx context.Context, key MonthKey) (*model.PreScheduleRequest, error)
	InsertRequest(ctx context.Context, req *model.PreScheduleRequest) error
	// UpdateRequestStatus writes req's status and window only if the stored row still has the
	// expected status and req.Version. On success req.Version is advanced.
	UpdateRequestStatus(ctx context.Context, req *model.PreScheduleRequest, expected model.RequestStatus) error
}

// SubmissionStore defines the interface for wish set operations
type SubmissionStore interface {
	GetWishSet(ctx context.Context, key SubmissionKey) (*model.WishSet, error)
	ListWishSets(ctx context.Context, key MonthKey) ([]model.WishSet, error)
	// UpsertWishSet inserts or replaces the wish set if the stored version still equals ws.Version
	// (0 for a first submission) and the stored request still has req's status and version.
	// On success ws.Version is advanced.
	UpsertWishSet(ctx context.Context, req *model.PreScheduleRequest, ws *model.WishSet) error
}

// GridStore defines the interface for schedule grid operations
type GridStore interface {
	GetGrid(ctx context.Context, key MonthKey) (*model.ScheduleGrid, error)
	// SaveGrid inserts or replaces the grid if the stored version still equals grid.Version (0 for a new grid)
	SaveGrid(ctx context.Context, grid *model.ScheduleGrid) error
	// UpdateGridStatus writes grid's status only if the stored row still has grid.Version
	UpdateGridStatus(ctx context.Context, grid *model.ScheduleGrid) error
}

// Database defines the interface for all database operations.
// postgres.DB implements this interface.
type Database interface {
	RequestStore
	SubmissionStore
	GridStore
	Close()
}

// MonthKey identifies one unit-month
type MonthKey struct {
	UnitID string
	Year   int
	Month  time.Month
}

// KeyOf returns the unit-month key of a request
func KeyOf(req *model.PreScheduleRequest) MonthKey {
	return MonthKey{UnitID: req.UnitID, Year: req.Year, Month: req.Month}
}

// SubmissionKey identifies one participant's wish set
type SubmissionKey struct {
	MonthKey
	StaffID string
}

// Staff returns the submission key of staffID within the unit-month
func (k MonthKey) Staff(staffID string) SubmissionKey {
	return SubmissionKey{MonthKey: k, StaffID: staffID}
}
