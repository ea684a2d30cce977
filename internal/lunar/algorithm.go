package lunar

import (
	"time"

	"github.com/6tail/lunar-go/calendar"
)

// Fields is the raw output of the lunar algorithm for one solar day.
type Fields struct {
	Year, Month, Day int
	Leap             bool

	YearName, MonthName, DayName string
	Zodiac, Constellation        string
}

// Algorithm is the third-party lunar calendar. Implementations may panic on
// out-of-range input; the Adapter recovers.
type Algorithm interface {
	FromSolar(year int, month time.Month, day int) Fields
	// ToSolar resolves a regular (non-leap) lunar month/day in lunar year.
	ToSolar(year, month, day int) (int, time.Month, int)
	LeapMonth(year int) int
}

// SixTail is the Algorithm backed by github.com/6tail/lunar-go.
type SixTail struct{}

func (SixTail) FromSolar(year int, month time.Month, day int) Fields {
	// Noon keeps the day stable regardless of how the library buckets hours.
	l := calendar.NewLunarFromDate(time.Date(year, month, day, 12, 0, 0, 0, time.Local))

	m := l.GetMonth()
	leap := m < 0
	if leap {
		m = -m
	}

	return Fields{
		Year:          l.GetYear(),
		Month:         m,
		Day:           l.GetDay(),
		Leap:          leap,
		YearName:      l.GetYearInChinese(),
		MonthName:     l.GetMonthInChinese(),
		DayName:       l.GetDayInChinese(),
		Zodiac:        l.GetYearShengXiao(),
		Constellation: l.GetSolar().GetXingZuo(),
	}
}

func (SixTail) ToSolar(year, month, day int) (int, time.Month, int) {
	s := calendar.NewLunarFromYmd(year, month, day).GetSolar()
	return s.GetYear(), time.Month(s.GetMonth()), s.GetDay()
}

func (SixTail) LeapMonth(year int) int {
	return calendar.NewLunarYear(year).GetLeapMonth()
}
