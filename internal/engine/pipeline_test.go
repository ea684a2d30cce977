package engine_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-lunar-birthday/internal/birthday"
	"github.com/tartampluch/go-lunar-birthday/internal/config"
	"github.com/tartampluch/go-lunar-birthday/internal/engine"
	"github.com/tartampluch/go-lunar-birthday/internal/lunar"
	"github.com/tartampluch/go-lunar-birthday/internal/storage"
)

// MockNotifier records what the pipeline dispatches using `testify/mock`.
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) SendBirthdayWishes(ctx context.Context, rec birthday.Record, info lunar.DayInfo) {
	m.Called(ctx, rec, info)
}

func (m *MockNotifier) SendBelatedWishes(ctx context.Context, rec birthday.Record, info lunar.DayInfo) {
	m.Called(ctx, rec, info)
}

func (m *MockNotifier) SendReminder(ctx context.Context, rec birthday.Record, daysUntil int, on time.Time) bool {
	return m.Called(ctx, rec, daysUntil, on).Bool(0)
}

func (m *MockNotifier) SendLunarInfo(ctx context.Context, info lunar.DayInfo) bool {
	return m.Called(ctx, info).Bool(0)
}

func named(name string) any {
	return mock.MatchedBy(func(r birthday.Record) bool { return r.Name == name })
}

func newPipeline(t *testing.T, now time.Time, kv storage.KV, n engine.Notifier, opts engine.PipelineOptions) *engine.Pipeline {
	t.Helper()
	store := newStore(t, recordA)
	ev := engine.NewEvaluator(store, lunar.NewAdapter())
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	return engine.NewPipeline(ev, n, kv, MockClock{CurrentTime: now}, opts)
}

var allOn = engine.PipelineOptions{
	AutoWishes:   true,
	Reminders:    true,
	DailyAlmanac: true,
	CatchUpDays:  3,
	SendAt:       9 * time.Hour,
}

func TestPipeline_FirstRunEvaluatesToday(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory()
	n := new(MockNotifier)
	n.On("SendBirthdayWishes", mock.Anything, named("A"), mock.MatchedBy(func(info lunar.DayInfo) bool {
		return info.MatchesMonthDay(5, 5)
	})).Once()
	n.On("SendLunarInfo", mock.Anything, mock.Anything).Return(true).Once()

	p := newPipeline(t, time.Date(2023, 6, 22, 10, 0, 0, 0, time.UTC), kv, n, allOn)

	reports, err := p.Run(ctx)
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, engine.DayReport{Date: "2023-06-22", Wishes: 1, Reminders: 0, Almanac: true}, reports[0])

	mark, err := kv.Get(ctx, config.StorageKeyLastEvaluated)
	require.NoError(t, err)
	assert.Equal(t, "2023-06-22", string(mark))
	n.AssertExpectations(t)
}

func TestPipeline_SameDayRunsOnce(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory()
	n := new(MockNotifier)
	n.On("SendBirthdayWishes", mock.Anything, mock.Anything, mock.Anything).Once()
	n.On("SendLunarInfo", mock.Anything, mock.Anything).Return(true).Once()

	p := newPipeline(t, time.Date(2023, 6, 22, 10, 0, 0, 0, time.UTC), kv, n, allOn)

	_, err := p.Run(ctx)
	require.NoError(t, err)

	// The hourly tick fires again the same day.
	reports, err := p.Run(ctx)
	require.NoError(t, err)
	assert.Empty(t, reports)
	n.AssertNumberOfCalls(t, "SendBirthdayWishes", 1)
}

func TestPipeline_CatchUpIsBounded(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory()
	require.NoError(t, kv.Put(ctx, config.StorageKeyLastEvaluated, []byte("2023-06-10")))

	n := new(MockNotifier)
	n.On("SendReminder", mock.Anything, named("A"), 1, day(2023, 6, 22)).Return(true).Once()
	n.On("SendBirthdayWishes", mock.Anything, named("A"), mock.Anything).Once()
	n.On("SendLunarInfo", mock.Anything, mock.Anything).Return(true).Once()

	p := newPipeline(t, time.Date(2023, 6, 22, 12, 0, 0, 0, time.UTC), kv, n, allOn)

	reports, err := p.Run(ctx)
	require.NoError(t, err)

	var dates []string
	for _, r := range reports {
		dates = append(dates, r.Date)
	}
	assert.Equal(t, []string{"2023-06-19", "2023-06-20", "2023-06-21", "2023-06-22"}, dates)
	assert.Equal(t, 1, reports[2].Reminders)
	assert.False(t, reports[2].Almanac, "the almanac is only sent for the live day")
	n.AssertExpectations(t)

	last, ok, err := p.LastEvaluated(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, day(2023, 6, 22), last)
}

func TestPipeline_WaitsForSendTime(t *testing.T) {
	ctx := context.Background()
	n := new(MockNotifier)
	n.On("SendReminder", mock.Anything, named("A"), 1, day(2023, 6, 22)).Return(true).Once()

	// 07:00 on the birthday itself: only the previous day is due so far.
	p := newPipeline(t, time.Date(2023, 6, 22, 7, 0, 0, 0, time.UTC), storage.NewMemory(), n, allOn)

	reports, err := p.Run(ctx)
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, "2023-06-21", reports[0].Date)
	assert.False(t, reports[0].Almanac, "yesterday's almanac is not sent")
	n.AssertExpectations(t)
	n.AssertNotCalled(t, "SendBirthdayWishes", mock.Anything, mock.Anything, mock.Anything)
	n.AssertNotCalled(t, "SendLunarInfo", mock.Anything, mock.Anything)
}

func TestPipeline_CaughtUpBirthdayIsBelated(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory()
	require.NoError(t, kv.Put(ctx, config.StorageKeyLastEvaluated, []byte("2023-06-21")))

	n := new(MockNotifier)
	n.On("SendBelatedWishes", mock.Anything, named("A"), mock.MatchedBy(func(info lunar.DayInfo) bool {
		return info.MatchesMonthDay(5, 5)
	})).Once()
	n.On("SendLunarInfo", mock.Anything, mock.MatchedBy(func(info lunar.DayInfo) bool {
		return info.Date.Equal(day(2023, 6, 23))
	})).Return(true).Once()

	opts := allOn
	opts.Reminders = false
	p := newPipeline(t, time.Date(2023, 6, 23, 10, 0, 0, 0, time.UTC), kv, n, opts)

	reports, err := p.Run(ctx)
	require.NoError(t, err)
	require.Len(t, reports, 2)
	assert.Equal(t, engine.DayReport{Date: "2023-06-22", Wishes: 1}, reports[0])
	assert.Equal(t, engine.DayReport{Date: "2023-06-23", Almanac: true}, reports[1])
	n.AssertExpectations(t)
	n.AssertNotCalled(t, "SendBirthdayWishes", mock.Anything, mock.Anything, mock.Anything)
}

func TestPipeline_FeatureToggles(t *testing.T) {
	n := new(MockNotifier)

	opts := allOn
	opts.AutoWishes = false
	opts.Reminders = false
	opts.DailyAlmanac = false

	p := newPipeline(t, time.Date(2023, 6, 22, 10, 0, 0, 0, time.UTC), storage.NewMemory(), n, opts)

	reports, err := p.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Zero(t, reports[0].Wishes)
	n.AssertExpectations(t)
}

type failingPutKV struct {
	*storage.Memory
}

func (failingPutKV) Put(context.Context, string, []byte) error { return errors.New("read-only") }

func TestPipeline_WatermarkWriteFailureIsReported(t *testing.T) {
	n := new(MockNotifier)
	n.On("SendBirthdayWishes", mock.Anything, mock.Anything, mock.Anything)
	n.On("SendLunarInfo", mock.Anything, mock.Anything).Return(false)

	p := newPipeline(t, time.Date(2023, 6, 22, 10, 0, 0, 0, time.UTC), failingPutKV{storage.NewMemory()}, n, allOn)

	reports, err := p.Run(context.Background())
	assert.Len(t, reports, 1, "sends still happen")
	assert.ErrorContains(t, err, config.ErrWatermarkWrite)
}

func TestPipeline_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := newPipeline(t, time.Date(2023, 6, 22, 10, 0, 0, 0, time.UTC), storage.NewMemory(), new(MockNotifier), allOn)

	_, err := p.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
