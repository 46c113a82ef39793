package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/charlesliao-stock/AIshiftschedule-sub001/internal/config"
	"github.com/charlesliao-stock/AIshiftschedule-sub001/pkg/clients/lockclient"
	"github.com/charlesliao-stock/AIshiftschedule-sub001/pkg/core/calendar"
	"github.com/charlesliao-stock/AIshiftschedule-sub001/pkg/core/lifecycle"
	"github.com/charlesliao-stock/AIshiftschedule-sub001/pkg/core/model"
	"github.com/charlesliao-stock/AIshiftschedule-sub001/pkg/db"
)

// mockStore implements db.Database in memory with the same version checks as the postgres store
type mockStore struct {
	requests map[db.MonthKey]model.PreScheduleRequest
	wishSets map[db.SubmissionKey]model.WishSet
	grids    map[db.MonthKey]model.ScheduleGrid

	getRequestErr error
	listErr       error
	upsertErr     error
	upserts       int
}

var _ db.Database = (*mockStore)(nil)

func newMockStore() *mockStore {
	return &mockStore{
		requests: make(map[db.MonthKey]model.PreScheduleRequest),
		wishSets: make(map[db.SubmissionKey]model.WishSet),
		grids:    make(map[db.MonthKey]model.ScheduleGrid),
	}
}

func (m *mockStore) GetRequest(ctx context.Context, key db.MonthKey) (*model.PreScheduleRequest, error) {
	if m.getRequestErr != nil {
		return nil, m.getRequestErr
	}
	req, ok := m.requests[key]
	if !ok {
		return nil, fmt.Errorf("request %s: %w", key, db.ErrNotFound)
	}
	return &req, nil
}

func (m *mockStore) InsertRequest(ctx context.Context, req *model.PreScheduleRequest) error {
	key := db.KeyOf(req)
	if _, ok := m.requests[key]; ok {
		return fmt.Errorf("request %s: %w", key, db.ErrConflict)
	}
	req.Version = 1
	m.requests[key] = *req
	return nil
}

func (m *mockStore) UpdateRequestStatus(ctx context.Context, req *model.PreScheduleRequest, expected model.RequestStatus) error {
	key := db.KeyOf(req)
	stored, ok := m.requests[key]
	if !ok || stored.Status != expected || stored.Version != req.Version {
		return fmt.Errorf("request %s: %w", key, db.ErrConflict)
	}
	req.Version++
	m.requests[key] = *req
	return nil
}

func (m *mockStore) GetWishSet(ctx context.Context, key db.SubmissionKey) (*model.WishSet, error) {
	ws, ok := m.wishSets[key]
	if !ok {
		return nil, fmt.Errorf("wish set %s: %w", key, db.ErrNotFound)
	}
	return &ws, nil
}

func (m *mockStore) ListWishSets(ctx context.Context, key db.MonthKey) ([]model.WishSet, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var sets []model.WishSet
	for subKey, ws := range m.wishSets {
		if subKey.MonthKey == key {
			sets = append(sets, ws)
		}
	}
	return sets, nil
}

func (m *mockStore) UpsertWishSet(ctx context.Context, req *model.PreScheduleRequest, ws *model.WishSet) error {
	if m.upsertErr != nil {
		return m.upsertErr
	}
	key := db.KeyOf(req)
	if stored, ok := m.requests[key]; !ok || stored.Status != req.Status || stored.Version != req.Version {
		return fmt.Errorf("request %s: %w", key, db.ErrConflict)
	}
	subKey := key.Staff(ws.StaffID)
	if stored := m.wishSets[subKey]; stored.Version != ws.Version {
		return fmt.Errorf("wish set %s: %w", subKey, db.ErrConflict)
	}
	ws.Version++
	ws.UpdatedAt = time.Date(2025, time.February, 12, 9, 0, 0, 0, time.UTC)
	m.wishSets[subKey] = *ws
	m.upserts++
	return nil
}

func (m *mockStore) GetGrid(ctx context.Context, key db.MonthKey) (*model.ScheduleGrid, error) {
	grid, ok := m.grids[key]
	if !ok {
		return nil, fmt.Errorf("grid %s: %w", key, db.ErrNotFound)
	}
	return &grid, nil
}

func (m *mockStore) SaveGrid(ctx context.Context, grid *model.ScheduleGrid) error {
	key := db.MonthKey{UnitID: grid.UnitID, Year: grid.Year, Month: grid.Month}
	if stored := m.grids[key]; stored.Version != grid.Version {
		return fmt.Errorf("grid %s: %w", key, db.ErrConflict)
	}
	grid.Version++
	m.grids[key] = *grid
	return nil
}

func (m *mockStore) UpdateGridStatus(ctx context.Context, grid *model.ScheduleGrid) error {
	key := db.MonthKey{UnitID: grid.UnitID, Year: grid.Year, Month: grid.Month}
	stored, ok := m.grids[key]
	if !ok || stored.Version != grid.Version {
		return fmt.Errorf("grid %s: %w", key, db.ErrConflict)
	}
	stored.Status = grid.Status
	stored.Version++
	grid.Version = stored.Version
	m.grids[key] = stored
	return nil
}

func (m *mockStore) Close() {}

// mockLocker implements Locker and records which locks were taken
type mockLocker struct {
	held     map[string]bool
	acquired []string
	released []string
}

func newMockLocker() *mockLocker {
	return &mockLocker{held: make(map[string]bool)}
}

func (m *mockLocker) Hold(ctx context.Context, name string) (func(context.Context) error, error) {
	if m.held[name] {
		return nil, fmt.Errorf("%w: %s", lockclient.ErrLocked, name)
	}
	m.held[name] = true
	m.acquired = append(m.acquired, name)
	return func(context.Context) error {
		delete(m.held, name)
		m.released = append(m.released, name)
		return nil
	}, nil
}

// mockNotifier implements Notifier
type mockNotifier struct {
	notices    []lifecycle.Notice
	publishErr error
}

func (m *mockNotifier) PublishNotice(ctx context.Context, notice lifecycle.Notice) (string, error) {
	if m.publishErr != nil {
		return "", m.publishErr
	}
	m.notices = append(m.notices, notice)
	return fmt.Sprintf("msg-%d", len(m.notices)), nil
}

var marchKey = db.MonthKey{UnitID: "ward-7", Year: 2025, Month: time.March}

func testUnit(t *testing.T) *Unit {
	t.Helper()
	catalog, err := model.NewShiftCatalog([]model.ShiftDefinition{
		{Code: "D", Name: "Day", CountsTowardStats: true, SortOrder: 1},
		{Code: "E", Name: "Evening", CountsTowardStats: true, SortOrder: 2},
		{Code: "N", Name: "Night", CountsTowardStats: true, SortOrder: 3},
		{Code: "OFF", Name: "Off", IsRest: true, SortOrder: 4},
	})
	require.NoError(t, err)

	cal, err := calendar.New([]calendar.Holiday{
		{Date: model.MustParseDate("2025-03-03"), Name: "Unit day", Enabled: true},
	}, nil)
	require.NoError(t, err)

	return &Unit{
		ID:       "ward-7",
		Catalog:  catalog,
		Calendar: cal,
		Night:    model.NightPair{Evening: "E", Overnight: "N"},
		Defaults: config.RequestDefaults{
			MaxOffDays:      8,
			MaxHoliday:      4,
			ShiftTypesLimit: 2,
			WindowDays:      14,
		},
	}
}

// seedRequest stores a March 2025 request in the given status
func seedRequest(store *mockStore, status model.RequestStatus) model.PreScheduleRequest {
	req := model.PreScheduleRequest{
		ID:              "req-1",
		UnitID:          "ward-7",
		Year:            2025,
		Month:           time.March,
		Status:          status,
		MaxOffDays:      8,
		MaxHoliday:      4,
		ShiftTypesLimit: 2,
		Participants:    map[string]string{"nurse-1": "senior", "nurse-2": "junior", "nurse-3": "junior"},
		DemandByDate: map[model.Date]map[model.ShiftCode]int{
			model.MustParseDate("2025-03-03"): {"D": 2, "N": 1},
			model.MustParseDate("2025-03-04"): {"D": 1},
		},
		Version: 1,
	}
	if status != model.StatusDraft {
		req.OpenDate = model.MustParseDate("2025-02-10")
		req.CloseDate = model.MustParseDate("2025-02-20")
	}
	store.requests[marchKey] = req
	return req
}

func testLogger() *zap.Logger {
	return zap.NewNop()
}
