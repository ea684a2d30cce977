package engine_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/tartampluch/go-lunar-birthday/internal/engine"
)

func TestCalendarDay(t *testing.T) {
	shanghai := time.FixedZone("CST", 8*3600)
	// 2023-06-21 20:00 UTC is already 2023-06-22 in Shanghai.
	clock := MockClock{CurrentTime: time.Date(2023, 6, 21, 20, 0, 0, 0, time.UTC)}

	tests := []struct {
		name string
		loc  *time.Location
		want time.Time
	}{
		{"UTC", time.UTC, day(2023, time.June, 21)},
		{"Shanghai", shanghai, day(2023, time.June, 22)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := engine.CalendarDay(clock, tt.loc)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, time.UTC, got.Location())
		})
	}
}

func TestRealClock(t *testing.T) {
	before := time.Now()
	now := engine.RealClock{}.Now()
	assert.False(t, now.Before(before))
}
