package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/charlesliao-stock/AIshiftschedule-sub001/pkg/clients/lockclient"
	"github.com/charlesliao-stock/AIshiftschedule-sub001/pkg/core/lifecycle"
	"github.com/charlesliao-stock/AIshiftschedule-sub001/pkg/core/model"
	"github.com/charlesliao-stock/AIshiftschedule-sub001/pkg/core/wishes"
	"github.com/charlesliao-stock/AIshiftschedule-sub001/pkg/db"
)

var submitDay = model.MustParseDate("2025-02-12")

func nurseWishes(staffID string, days map[string]model.ShiftCode) model.WishSet {
	ws := model.WishSet{
		StaffID:     staffID,
		Wishes:      make(map[model.Date]model.ShiftCode, len(days)),
		Preferences: model.Preferences{Priority1: "D", Priority2: "E"},
	}
	for date, code := range days {
		ws.Wishes[model.MustParseDate(date)] = code
	}
	return ws
}

func TestSubmitWishes_FirstSubmission(t *testing.T) {
	store := newMockStore()
	seedRequest(store, model.StatusOpen)
	locker := newMockLocker()

	ws := nurseWishes("nurse-1", map[string]model.ShiftCode{"2025-03-05": "OFF", "2025-03-06": "D"})
	accepted, err := SubmitWishes(context.Background(), store, locker, testUnit(t), testLogger(),
		marchKey, ws, model.Capabilities{}, submitDay)
	require.NoError(t, err)

	assert.Equal(t, 1, accepted.Version)
	assert.Equal(t, ws.Wishes, accepted.Wishes)
	assert.Equal(t, []string{"ward-7/2025-03/nurse-1"}, locker.acquired)
	assert.Empty(t, locker.held)

	stored := store.wishSets[marchKey.Staff("nurse-1")]
	assert.Equal(t, model.ShiftCode("OFF"), stored.Wishes[model.MustParseDate("2025-03-05")])
}

func TestSubmitWishes_ReplacesPreviousSubmission(t *testing.T) {
	store := newMockStore()
	seedRequest(store, model.StatusOpen)
	ctx := context.Background()

	first := nurseWishes("nurse-1", map[string]model.ShiftCode{"2025-03-05": "OFF"})
	_, err := SubmitWishes(ctx, store, newMockLocker(), testUnit(t), testLogger(), marchKey, first, model.Capabilities{}, submitDay)
	require.NoError(t, err)

	second := nurseWishes("nurse-1", map[string]model.ShiftCode{"2025-03-07": "OFF"})
	accepted, err := SubmitWishes(ctx, store, newMockLocker(), testUnit(t), testLogger(), marchKey, second, model.Capabilities{}, submitDay)
	require.NoError(t, err)

	assert.Equal(t, 2, accepted.Version)
	stored := store.wishSets[marchKey.Staff("nurse-1")]
	assert.Len(t, stored.Wishes, 1)
	assert.Contains(t, stored.Wishes, model.MustParseDate("2025-03-07"))
}

func TestSubmitWishes_RejectedSetIsNotStored(t *testing.T) {
	store := newMockStore()
	seedRequest(store, model.StatusOpen)

	ws := nurseWishes("nurse-1", map[string]model.ShiftCode{"2025-03-05": "E", "2025-03-07": "X"})
	ws.Preferences = model.Preferences{Priority1: "E", Priority2: "N"}
	_, err := SubmitWishes(context.Background(), store, newMockLocker(), testUnit(t), testLogger(),
		marchKey, ws, model.Capabilities{}, submitDay)
	require.Error(t, err)

	var verrs wishes.ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.True(t, verrs.Has(wishes.RuleUnknownShiftCode))
	assert.True(t, verrs.Has(wishes.RuleNightTypesExclusive))
	assert.Zero(t, store.upserts)
}

func TestSubmitWishes_LifecycleGate(t *testing.T) {
	tests := []struct {
		name    string
		status  model.RequestStatus
		staffID string
		caps    model.Capabilities
		today   model.Date
		wantErr error
	}{
		{"locked", model.StatusLocked, "nurse-1", model.Capabilities{AdminOverride: true}, submitDay, lifecycle.ErrRequestLocked},
		{"closed", model.StatusClosed, "nurse-1", model.Capabilities{}, submitDay, lifecycle.ErrRequestNotOpen},
		{"after window", model.StatusOpen, "nurse-1", model.Capabilities{}, model.MustParseDate("2025-02-21"), lifecycle.ErrRequestNotOpen},
		{"not a participant", model.StatusOpen, "nurse-9", model.Capabilities{}, submitDay, lifecycle.ErrNotParticipant},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMockStore()
			seedRequest(store, tt.status)

			ws := nurseWishes(tt.staffID, map[string]model.ShiftCode{"2025-03-05": "OFF"})
			_, err := SubmitWishes(context.Background(), store, newMockLocker(), testUnit(t), testLogger(),
				marchKey, ws, tt.caps, tt.today)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Zero(t, store.upserts)
		})
	}
}

func TestSubmitWishes_AdminOverrideOnDraft(t *testing.T) {
	store := newMockStore()
	seedRequest(store, model.StatusDraft)

	ws := nurseWishes("nurse-2", map[string]model.ShiftCode{"2025-03-05": "OFF"})
	_, err := SubmitWishes(context.Background(), store, newMockLocker(), testUnit(t), testLogger(),
		marchKey, ws, model.Capabilities{AdminOverride: true}, model.MustParseDate("2025-01-02"))
	require.NoError(t, err)
	assert.Equal(t, 1, store.upserts)
}

func TestSubmitWishes_ConcurrentWriterIsRejected(t *testing.T) {
	store := newMockStore()
	seedRequest(store, model.StatusOpen)
	locker := newMockLocker()
	locker.held[marchKey.Staff("nurse-1").String()] = true

	ws := nurseWishes("nurse-1", map[string]model.ShiftCode{"2025-03-05": "OFF"})
	_, err := SubmitWishes(context.Background(), store, locker, testUnit(t), testLogger(),
		marchKey, ws, model.Capabilities{}, submitDay)
	assert.ErrorIs(t, err, lockclient.ErrLocked)
	assert.Zero(t, store.upserts)
}

// lockDuringSubmitStore locks the request while a submission is between validation and commit
type lockDuringSubmitStore struct {
	*mockStore
	t *testing.T
}

func (s *lockDuringSubmitStore) GetWishSet(ctx context.Context, key db.SubmissionKey) (*model.WishSet, error) {
	locker := newMockLocker()
	_, err := ClosePreSchedule(ctx, s.mockStore, locker, testLogger(), key.MonthKey)
	require.NoError(s.t, err)
	_, err = LockPreSchedule(ctx, s.mockStore, locker, testLogger(), key.MonthKey)
	require.NoError(s.t, err)
	return s.mockStore.GetWishSet(ctx, key)
}

func TestSubmitWishes_RequestLockedBeforeCommit(t *testing.T) {
	store := newMockStore()
	seedRequest(store, model.StatusOpen)

	ws := nurseWishes("nurse-1", map[string]model.ShiftCode{"2025-03-05": "OFF"})
	_, err := SubmitWishes(context.Background(), &lockDuringSubmitStore{mockStore: store, t: t}, newMockLocker(),
		testUnit(t), testLogger(), marchKey, ws, model.Capabilities{}, submitDay)
	assert.ErrorIs(t, err, db.ErrConflict)

	assert.Equal(t, model.StatusLocked, store.requests[marchKey].Status)
	assert.Zero(t, store.upserts)
	assert.NotContains(t, store.wishSets, marchKey.Staff("nurse-1"))
}

func TestSubmitWishes_StoreErrors(t *testing.T) {
	t.Run("request missing", func(t *testing.T) {
		ws := nurseWishes("nurse-1", nil)
		_, err := SubmitWishes(context.Background(), newMockStore(), newMockLocker(), testUnit(t), testLogger(),
			marchKey, ws, model.Capabilities{}, submitDay)
		assert.ErrorIs(t, err, db.ErrNotFound)
	})

	t.Run("upsert fails", func(t *testing.T) {
		store := newMockStore()
		seedRequest(store, model.StatusOpen)
		store.upsertErr = errors.New("connection reset")

		ws := nurseWishes("nurse-1", nil)
		_, err := SubmitWishes(context.Background(), store, newMockLocker(), testUnit(t), testLogger(),
			marchKey, ws, model.Capabilities{}, submitDay)
		assert.ErrorContains(t, err, "failed to store wish set")
	})
}
