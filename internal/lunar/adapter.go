// Package lunar converts between solar and lunar dates and derives the daily
// almanac annotations.
package lunar

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/tartampluch/go-lunar-birthday/internal/config"
	"github.com/tartampluch/go-lunar-birthday/internal/weather"
)

// WeatherSource enriches a day with its forecast.
type WeatherSource interface {
	Forecast(ctx context.Context, date time.Time) (*weather.Report, error)
}

// Adapter wraps the lunar algorithm so that no panic ever reaches a caller.
// Conversions are cached by solar date. Entries never go stale since the
// mapping is a pure function of the date; the oldest are evicted once the
// cache holds config.LunarCacheSize days.
type Adapter struct {
	algo     Algorithm
	weather  WeatherSource
	useCache bool

	mu    sync.RWMutex
	cache map[string]DayInfo
	order []string
}

// Option customises an Adapter.
type Option func(*Adapter)

// WithAlgorithm replaces the lunar-go implementation.
func WithAlgorithm(a Algorithm) Option {
	return func(ad *Adapter) { ad.algo = a }
}

// WithWeather attaches forecasts to converted days.
func WithWeather(w WeatherSource) Option {
	return func(ad *Adapter) { ad.weather = w }
}

// WithCache toggles the per-date conversion cache (on by default).
func WithCache(enabled bool) Option {
	return func(ad *Adapter) { ad.useCache = enabled }
}

// NewAdapter creates an adapter over lunar-go.
func NewAdapter(opts ...Option) *Adapter {
	a := &Adapter{
		algo:     SixTail{},
		useCache: true,
		cache:    make(map[string]DayInfo),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// SolarToLunar converts the calendar day of date. It never panics: algorithm
// failures come back as an Unresolved result.
func (a *Adapter) SolarToLunar(ctx context.Context, date time.Time) Result {
	key := date.Format(config.DateKeyFormat)

	info, ok := a.cached(key)
	if !ok {
		f, err := a.fromSolar(date.Year(), date.Month(), date.Day())
		if err != nil {
			slog.WarnContext(ctx, config.MsgLunarFallback,
				config.LogKeyComponent, config.CompLunar,
				config.LogKeyDate, key,
				config.LogKeyError, err,
			)
			return Unresolved(err)
		}
		info = build(date, f)
		if a.useCache {
			a.store(key, info)
		}
	}

	if a.weather != nil {
		if report, err := a.weather.Forecast(ctx, date); err == nil {
			info.Weather = report
		}
	}
	return Resolved(info)
}

func (a *Adapter) store(key string, info DayInfo) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, ok := a.cache[key]; !ok {
		if len(a.order) >= config.LunarCacheSize {
			delete(a.cache, a.order[0])
			a.order = a.order[1:]
		}
		a.order = append(a.order, key)
	}
	a.cache[key] = info.clone()
}

// CacheLen reports how many conversions are cached.
func (a *Adapter) CacheLen() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.cache)
}

func (a *Adapter) cached(key string) (DayInfo, bool) {
	if !a.useCache {
		return DayInfo{}, false
	}
	a.mu.RLock()
	defer a.mu.RUnlock()
	info, ok := a.cache[key]
	if ok {
		slog.Debug(config.MsgLunarCacheHit,
			config.LogKeyComponent, config.CompLunar,
			config.LogKeyDate, key,
		)
	}
	return info.clone(), ok
}

func build(date time.Time, f Fields) DayInfo {
	// Month-specific almanac rows only apply to regular months.
	ruleMonth := f.Month
	if f.Leap {
		ruleMonth = -f.Month
	}

	festivals := Festivals(ruleMonth, f.Day)
	if festivals == nil {
		festivals = []string{}
	}

	return DayInfo{
		Date:          time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location()),
		Year:          f.Year,
		Month:         f.Month,
		Day:           f.Day,
		Leap:          f.Leap,
		YearName:      f.YearName,
		MonthName:     f.MonthName,
		DayName:       f.DayName,
		LunarDate:     fmt.Sprintf(config.FormatLunarDate, f.YearName, f.MonthName, f.DayName),
		Zodiac:        f.Zodiac,
		Constellation: f.Constellation,
		Suitable:      Suitable(ruleMonth, f.Day),
		Unsuitable:    Unsuitable(ruleMonth, f.Day),
		Description:   Description(f.Day),
		Festivals:     festivals,
	}
}

// LunarToSolar resolves the regular lunar month/day in lunar year to its solar
// date (midnight UTC). It reports false when that day does not exist in the year,
// e.g. day 30 of a 29-day month.
func (a *Adapter) LunarToSolar(month, day, year int) (time.Time, bool) {
	if month < config.MinLunarMonth || month > config.MaxLunarMonth ||
		day < config.MinLunarDay || day > config.MaxLunarDay {
		return time.Time{}, false
	}

	sy, sm, sd, err := a.toSolar(year, month, day)
	if err != nil {
		return time.Time{}, false
	}

	// The library clamps some invalid inputs instead of failing; only accept
	// dates that convert back to exactly what was asked.
	back, err := a.fromSolar(sy, sm, sd)
	if err != nil || back.Leap || back.Year != year || back.Month != month || back.Day != day {
		return time.Time{}, false
	}
	return time.Date(sy, sm, sd, 0, 0, 0, 0, time.UTC), true
}

// LeapMonth returns the leap month of the lunar year, 0 when there is none.
func (a *Adapter) LeapMonth(year int) (leap int) {
	defer func() {
		if r := recover(); r != nil {
			leap = 0
		}
	}()
	return a.algo.LeapMonth(year)
}

// MonthDays returns 29 or 30 for a regular month of the lunar year, 0 if unknown.
func (a *Adapter) MonthDays(year, month int) int {
	for _, d := range []int{30, 29} {
		if _, ok := a.LunarToSolar(month, d, year); ok {
			return d
		}
	}
	return 0
}

// YearInfo summarises one lunar year.
type YearInfo struct {
	Year      int            `json:"year"`
	Zodiac    string         `json:"zodiac"`
	LeapMonth int            `json:"leapMonth"`
	Days      int            `json:"days"`
	NewYear   string         `json:"newYear"`
	Festivals []FestivalDate `json:"festivals"`
}

// Year describes lunar year y: its leap month, length and festival dates.
func (a *Adapter) Year(y int) (YearInfo, error) {
	start, ok := a.LunarToSolar(1, 1, y)
	if !ok {
		return YearInfo{}, fmt.Errorf("%s %d", config.ErrLunarResolve, y)
	}
	next, ok := a.LunarToSolar(1, 1, y+1)
	if !ok {
		return YearInfo{}, fmt.Errorf("%s %d", config.ErrLunarResolve, y+1)
	}

	f, err := a.fromSolar(start.Year(), start.Month(), start.Day())
	if err != nil {
		return YearInfo{}, err
	}

	info := YearInfo{
		Year:      y,
		Zodiac:    f.Zodiac,
		LeapMonth: a.LeapMonth(y),
		Days:      int(next.Sub(start).Hours() / 24),
		NewYear:   start.Format(config.DateKeyFormat),
	}
	for md, name := range festivals {
		date, ok := a.LunarToSolar(md.month, md.day, y)
		if !ok {
			continue
		}
		info.Festivals = append(info.Festivals, FestivalDate{
			Name:       name,
			LunarMonth: md.month,
			LunarDay:   md.day,
			Date:       date.Format(config.DateKeyFormat),
		})
	}
	slices.SortFunc(info.Festivals, func(x, y FestivalDate) int {
		return cmp.Compare(x.Date, y.Date)
	})
	return info, nil
}

// ClearCache drops every cached conversion.
func (a *Adapter) ClearCache() {
	a.mu.Lock()
	a.cache = make(map[string]DayInfo)
	a.order = nil
	a.mu.Unlock()
}

func (a *Adapter) fromSolar(year int, month time.Month, day int) (f Fields, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s: %v", config.ErrLunarConvert, r)
		}
	}()
	return a.algo.FromSolar(year, month, day), nil
}

func (a *Adapter) toSolar(year, month, day int) (y int, m time.Month, d int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s: %v", config.ErrLunarResolve, r)
		}
	}()
	y, m, d = a.algo.ToSolar(year, month, day)
	return y, m, d, nil
}
