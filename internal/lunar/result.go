package lunar

import (
	"slices"
	"time"

	"github.com/tartampluch/go-lunar-birthday/internal/config"
	"github.com/tartampluch/go-lunar-birthday/internal/weather"
)

// DayInfo is the lunar view of one solar day, with its almanac annotations.
type DayInfo struct {
	Date  time.Time `json:"date"`
	Year  int       `json:"year"`
	Month int       `json:"month"`
	Day   int       `json:"day"`
	Leap  bool      `json:"leap,omitempty"`

	YearName  string `json:"yearName"`
	MonthName string `json:"monthName"`
	DayName   string `json:"dayName"`
	LunarDate string `json:"lunarDate"`

	Zodiac        string          `json:"zodiac"`
	Constellation string          `json:"constellation"`
	Suitable      []string        `json:"suitable"`
	Unsuitable    []string        `json:"unsuitable"`
	Description   string          `json:"description"`
	Festivals     []string        `json:"festivals"`
	Weather       *weather.Report `json:"weather,omitempty"`

	// Unknown marks the display placeholder built when conversion failed.
	Unknown bool `json:"unknown,omitempty"`
}

// MatchesMonthDay reports whether this is the regular (non-leap) lunar month/day.
func (d DayInfo) MatchesMonthDay(month, day int) bool {
	return !d.Unknown && !d.Leap && d.Month == month && d.Day == day
}

func (d DayInfo) clone() DayInfo {
	d.Suitable = slices.Clone(d.Suitable)
	d.Unsuitable = slices.Clone(d.Unsuitable)
	d.Festivals = slices.Clone(d.Festivals)
	if d.Weather != nil {
		w := *d.Weather
		d.Weather = &w
	}
	return d
}

// Result is either a resolved DayInfo or the reason it could not be computed.
type Result struct {
	info     DayInfo
	err      error
	resolved bool
}

// Resolved wraps a successful conversion.
func Resolved(info DayInfo) Result {
	return Result{info: info, resolved: true}
}

// Unresolved wraps a failed conversion.
func Unresolved(err error) Result {
	return Result{err: err}
}

// Ok reports whether the result carries real data.
func (r Result) Ok() bool { return r.resolved }

// Info returns the converted day; the boolean is false for unresolved results.
func (r Result) Info() (DayInfo, bool) {
	if !r.resolved {
		return DayInfo{}, false
	}
	return r.info.clone(), true
}

// Err is the conversion failure, nil when resolved.
func (r Result) Err() error { return r.err }

// Display returns the result's info, or a placeholder flagged Unknown for
// display paths that must always show something.
func Display(r Result, date time.Time) DayInfo {
	if info, ok := r.Info(); ok {
		return info
	}
	return DayInfo{
		Date:          date,
		Year:          date.Year(),
		Month:         int(date.Month()),
		Day:           date.Day(),
		YearName:      config.UnknownText,
		MonthName:     config.UnknownText,
		DayName:       config.UnknownText,
		LunarDate:     config.UnknownLunarDate,
		Zodiac:        config.UnknownText,
		Constellation: config.UnknownText,
		Suitable:      slices.Clone(fallbackSuitable),
		Unsuitable:    slices.Clone(baseUnsuitable),
		Description:   config.UnknownDescription,
		Festivals:     []string{},
		Unknown:       true,
	}
}
