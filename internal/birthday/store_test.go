package birthday_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-lunar-birthday/internal/birthday"
	"github.com/tartampluch/go-lunar-birthday/internal/config"
	"github.com/tartampluch/go-lunar-birthday/internal/host"
	"github.com/tartampluch/go-lunar-birthday/internal/storage"
)

// -----------------------------------------------------------------------------
// Mocks
// -----------------------------------------------------------------------------

// MockCaps simulates the host runtime using `testify/mock`.
type MockCaps struct {
	mock.Mock
}

func (m *MockCaps) GetStoredList(ctx context.Context) ([]byte, error) {
	args := m.Called(ctx)
	if b := args.Get(0); b != nil {
		return b.([]byte), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCaps) PutStoredList(ctx context.Context, data []byte) error {
	return m.Called(ctx, data).Error(0)
}

func (m *MockCaps) NotifyUser(ctx context.Context, message string) {
	m.Called(ctx, message)
}

var fixedNow = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func newMemoryStore(t *testing.T) (*birthday.Store, storage.KV) {
	t.Helper()
	kv := storage.NewMemory()
	s := birthday.NewStore(context.Background(), host.NewRuntime(kv, nil),
		birthday.WithClock(func() time.Time { return fixedNow }),
		birthday.WithIDGenerator(sequentialIDs()),
	)
	return s, kv
}

// -----------------------------------------------------------------------------
// Test Cases
// -----------------------------------------------------------------------------

func TestStore_AddAssignsIdentity(t *testing.T) {
	s, _ := newMemoryStore(t)

	rec, err := s.Add(context.Background(), birthday.Draft{Name: "  A  ", LunarMonth: 5, LunarDay: 5})
	require.NoError(t, err)

	assert.Equal(t, "id-1", rec.ID)
	assert.Equal(t, "A", rec.Name, "name is trimmed")
	assert.Equal(t, fixedNow, rec.CreatedAt)
	assert.Equal(t, []int{0, 1, 7}, rec.ReminderDays, "defaults apply when no lead days are given")
}

func TestStore_AddNormalizesLeadDays(t *testing.T) {
	s, _ := newMemoryStore(t)

	rec, err := s.Add(context.Background(), birthday.Draft{
		Name: "B", LunarMonth: 1, LunarDay: 1, ReminderDays: []int{7, 0, 7, 3},
	})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 3, 7}, rec.ReminderDays)

	rec, err = s.Add(context.Background(), birthday.Draft{
		Name: "C", LunarMonth: 1, LunarDay: 1, ReminderDays: []int{},
	})
	require.NoError(t, err)
	assert.NotNil(t, rec.ReminderDays)
	assert.Empty(t, rec.ReminderDays, "an explicit empty set is kept")
}

func TestStore_AddRejectsInvalid(t *testing.T) {
	tests := []struct {
		name  string
		draft birthday.Draft
		want  string
	}{
		{"EmptyName", birthday.Draft{Name: " ", LunarMonth: 1, LunarDay: 1}, config.ErrRecordName},
		{"MonthZero", birthday.Draft{Name: "A", LunarMonth: 0, LunarDay: 1}, config.ErrRecordMonth},
		{"MonthThirteen", birthday.Draft{Name: "A", LunarMonth: 13, LunarDay: 1}, config.ErrRecordMonth},
		{"DayZero", birthday.Draft{Name: "A", LunarMonth: 1, LunarDay: 0}, config.ErrRecordDay},
		{"DayThirtyOne", birthday.Draft{Name: "A", LunarMonth: 1, LunarDay: 31}, config.ErrRecordDay},
		{"NegativeLead", birthday.Draft{Name: "A", LunarMonth: 1, LunarDay: 1, ReminderDays: []int{-1}}, config.ErrRecordLeadDays},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newMemoryStore(t)
			_, err := s.Add(context.Background(), tt.draft)

			require.Error(t, err)
			assert.ErrorIs(t, err, birthday.ErrInvalid)
			assert.ErrorContains(t, err, tt.want)
			assert.Empty(t, s.List(), "invalid drafts are not stored")
		})
	}
}

func TestStore_FindAfterAddAndDelete(t *testing.T) {
	ctx := context.Background()
	s, _ := newMemoryStore(t)

	a, err := s.Add(ctx, birthday.Draft{Name: "A", LunarMonth: 5, LunarDay: 5})
	require.NoError(t, err)
	_, err = s.Add(ctx, birthday.Draft{Name: "B", LunarMonth: 8, LunarDay: 15})
	require.NoError(t, err)

	found := s.FindByLunarDate(5, 5)
	require.Len(t, found, 1, "record appears exactly once")
	assert.Equal(t, a.ID, found[0].ID)

	assert.True(t, s.Delete(ctx, a.ID))
	assert.Empty(t, s.FindByLunarDate(5, 5))
	assert.False(t, s.Delete(ctx, a.ID), "second delete reports not found")
}

func TestStore_ListKeepsInsertionOrder(t *testing.T) {
	ctx := context.Background()
	s, _ := newMemoryStore(t)

	for _, name := range []string{"C", "A", "B"} {
		_, err := s.Add(ctx, birthday.Draft{Name: name, LunarMonth: 1, LunarDay: 2})
		require.NoError(t, err)
	}

	var names []string
	for _, r := range s.List() {
		names = append(names, r.Name)
	}
	assert.Equal(t, []string{"C", "A", "B"}, names)
}

func TestStore_ListReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s, _ := newMemoryStore(t)

	rec, err := s.Add(ctx, birthday.Draft{Name: "A", LunarMonth: 1, LunarDay: 2})
	require.NoError(t, err)

	list := s.List()
	list[0].Name = "mutated"
	list[0].ReminderDays[0] = 99

	got, ok := s.Get(rec.ID)
	require.True(t, ok)
	assert.Equal(t, "A", got.Name)
	assert.Equal(t, []int{0, 1, 7}, got.ReminderDays)
}

func TestStore_Update(t *testing.T) {
	ctx := context.Background()
	s, _ := newMemoryStore(t)

	rec, err := s.Add(ctx, birthday.Draft{Name: "A", LunarMonth: 1, LunarDay: 2, Message: "hi"})
	require.NoError(t, err)

	name := "Alice"
	day := 3
	days := []int{2, 2}
	updated, err := s.Update(ctx, rec.ID, birthday.Patch{Name: &name, LunarDay: &day, ReminderDays: &days})
	require.NoError(t, err)

	assert.Equal(t, "Alice", updated.Name)
	assert.Equal(t, 1, updated.LunarMonth, "unset fields are kept")
	assert.Equal(t, 3, updated.LunarDay)
	assert.Equal(t, []int{2}, updated.ReminderDays)
	assert.Equal(t, "hi", updated.Message)
	assert.Equal(t, rec.CreatedAt, updated.CreatedAt)
}

func TestStore_UpdateUnknownID(t *testing.T) {
	s, _ := newMemoryStore(t)
	_, err := s.Update(context.Background(), "missing", birthday.Patch{})
	assert.ErrorIs(t, err, birthday.ErrNotFound)
}

func TestStore_UpdateInvalidKeepsOriginal(t *testing.T) {
	ctx := context.Background()
	s, _ := newMemoryStore(t)

	rec, err := s.Add(ctx, birthday.Draft{Name: "A", LunarMonth: 1, LunarDay: 2})
	require.NoError(t, err)

	month := 14
	_, err = s.Update(ctx, rec.ID, birthday.Patch{LunarMonth: &month})
	assert.ErrorIs(t, err, birthday.ErrInvalid)

	got, _ := s.Get(rec.ID)
	assert.Equal(t, 1, got.LunarMonth)
}

func TestStore_WriteThroughAndReload(t *testing.T) {
	ctx := context.Background()
	s, kv := newMemoryStore(t)

	rec, err := s.Add(ctx, birthday.Draft{Name: "A", LunarMonth: 5, LunarDay: 5, UserID: "u1", GroupID: "g1"})
	require.NoError(t, err)

	raw, err := kv.Get(ctx, config.StorageKeyBirthdays)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"lunarMonth":5`)
	assert.Contains(t, string(raw), `"userId":"u1"`)

	reloaded := birthday.NewStore(ctx, host.NewRuntime(kv, nil))
	got, ok := reloaded.Get(rec.ID)
	require.True(t, ok)
	assert.Equal(t, rec.Name, got.Name)
	assert.True(t, rec.CreatedAt.Equal(got.CreatedAt))

	s.Delete(ctx, rec.ID)
	raw, _ = kv.Get(ctx, config.StorageKeyBirthdays)
	assert.Equal(t, "[]", string(raw), "deleting the last record persists an empty array")
}

func TestStore_LegacyRecordsGetDefaultLeadDays(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory()
	require.NoError(t, kv.Put(ctx, config.StorageKeyBirthdays,
		[]byte(`[{"id":"x","name":"Old","lunarMonth":2,"lunarDay":2}]`)))

	s := birthday.NewStore(ctx, host.NewRuntime(kv, nil), birthday.WithDefaultReminderDays([]int{3}))

	got, ok := s.Get("x")
	require.True(t, ok)
	assert.Equal(t, []int{3}, got.ReminderDays)
}

func TestStore_ReadFailureDegradesToEmpty(t *testing.T) {
	ctx := context.Background()
	caps := new(MockCaps)
	caps.On("GetStoredList", mock.Anything).Return(nil, errors.New("io error"))
	caps.On("NotifyUser", mock.Anything, "boom").Once()

	s := birthday.NewStore(ctx, caps, birthday.WithFailureMessage("boom"))

	assert.Empty(t, s.List())
	caps.AssertExpectations(t)
}

func TestStore_CorruptDataDegradesToEmpty(t *testing.T) {
	ctx := context.Background()
	caps := new(MockCaps)
	caps.On("GetStoredList", mock.Anything).Return([]byte("{not json"), nil)
	caps.On("NotifyUser", mock.Anything, config.MsgOperationFailed).Once()

	s := birthday.NewStore(ctx, caps)

	assert.Empty(t, s.List())
	caps.AssertExpectations(t)
}

func TestStore_WriteFailureKeepsMemoryState(t *testing.T) {
	ctx := context.Background()
	caps := new(MockCaps)
	caps.On("GetStoredList", mock.Anything).Return(nil, nil)
	caps.On("PutStoredList", mock.Anything, mock.Anything).Return(errors.New("disk full"))
	caps.On("NotifyUser", mock.Anything, config.MsgOperationFailed).Once()

	s := birthday.NewStore(ctx, caps)
	rec, err := s.Add(ctx, birthday.Draft{Name: "A", LunarMonth: 1, LunarDay: 1})

	require.NoError(t, err, "persistence failures do not fail the operation")
	_, ok := s.Get(rec.ID)
	assert.True(t, ok)
	caps.AssertExpectations(t)
}

func TestStore_WriteFailureSurvivesNextMutation(t *testing.T) {
	ctx := context.Background()
	caps := new(MockCaps)
	caps.On("GetStoredList", mock.Anything).Return(nil, nil)
	caps.On("PutStoredList", mock.Anything, mock.Anything).Return(errors.New("disk full"))
	caps.On("NotifyUser", mock.Anything, config.MsgOperationFailed)

	s := birthday.NewStore(ctx, caps, birthday.WithIDGenerator(sequentialIDs()))
	_, err := s.Add(ctx, birthday.Draft{Name: "A", LunarMonth: 1, LunarDay: 1})
	require.NoError(t, err)
	_, err = s.Add(ctx, birthday.Draft{Name: "B", LunarMonth: 2, LunarDay: 2})
	require.NoError(t, err)

	assert.Len(t, s.List(), 2, "unsaved records are not replaced by the stored list")
}

// TestStore_SharedStorage runs two stores over one backend, the way a one-shot
// command runs next to a serving process.
func TestStore_SharedStorage(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory()
	server := birthday.NewStore(ctx, host.NewRuntime(kv, nil), birthday.WithIDGenerator(uuidLike("srv")))
	cli := birthday.NewStore(ctx, host.NewRuntime(kv, nil), birthday.WithIDGenerator(uuidLike("cli")))

	fromCLI, err := cli.Add(ctx, birthday.Draft{Name: "Grandma", LunarMonth: 8, LunarDay: 15})
	require.NoError(t, err)

	t.Run("MutationKeepsForeignRecords", func(t *testing.T) {
		fromServer, err := server.Add(ctx, birthday.Draft{Name: "Dad", LunarMonth: 1, LunarDay: 9})
		require.NoError(t, err)

		reloaded := birthday.NewStore(ctx, host.NewRuntime(kv, nil))
		_, ok := reloaded.Get(fromCLI.ID)
		assert.True(t, ok, "the record written by the other store is not lost")
		_, ok = reloaded.Get(fromServer.ID)
		assert.True(t, ok)
	})

	t.Run("SyncSeesForeignDelete", func(t *testing.T) {
		cli.Sync(ctx)
		require.Len(t, cli.List(), 2)
		assert.True(t, cli.Delete(ctx, fromCLI.ID))

		server.Sync(ctx)
		_, ok := server.Get(fromCLI.ID)
		assert.False(t, ok)
		assert.Len(t, server.FindByLunarDate(1, 9), 1)
	})

	t.Run("UpdateForeignRecord", func(t *testing.T) {
		dad := server.FindByLunarDate(1, 9)[0]
		name := "Father"
		_, err := cli.Update(ctx, dad.ID, birthday.Patch{Name: &name})
		require.NoError(t, err)

		server.Sync(ctx)
		got, ok := server.Get(dad.ID)
		require.True(t, ok)
		assert.Equal(t, "Father", got.Name)
	})
}

func uuidLike(prefix string) func() string {
	next := sequentialIDs()
	return func() string { return prefix + "-" + next() }
}

func TestRecord_RemindsAt(t *testing.T) {
	r := birthday.Record{ReminderDays: []int{0, 1, 7}}
	assert.True(t, r.RemindsAt(1))
	assert.True(t, r.RemindsAt(7))
	assert.False(t, r.RemindsAt(2))
}
