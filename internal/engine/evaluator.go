// Package engine decides which lunar birthdays are due on a given day and
// drives the periodic reminder pipeline.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/tartampluch/go-lunar-birthday/internal/birthday"
	"github.com/tartampluch/go-lunar-birthday/internal/config"
	"github.com/tartampluch/go-lunar-birthday/internal/lunar"
)

// ErrUnresolvable is returned when neither the current lunar year nor the next
// one yields a solar date for a record's lunar month/day.
var ErrUnresolvable = errors.New(config.ErrUnresolvable)

// Directory is the read side of the birthday store.
type Directory interface {
	List() []birthday.Record
	FindByLunarDate(month, day int) []birthday.Record
}

// Converter is the lunar calendar.
type Converter interface {
	SolarToLunar(ctx context.Context, date time.Time) lunar.Result
	LunarToSolar(month, day, year int) (time.Time, bool)
}

// Upcoming groups the records recurring on one day of a window.
type Upcoming struct {
	Date    time.Time         `json:"date"`
	Offset  int               `json:"offset"`
	Info    lunar.DayInfo     `json:"lunar"`
	Records []birthday.Record `json:"records"`
}

// Due is a record whose reminder fires on the evaluated day.
type Due struct {
	birthday.Record
	DaysUntil int `json:"daysUntil"`
}

// Evaluator answers "whose birthday is it?" questions for a given day.
type Evaluator struct {
	Store Directory
	Lunar Converter
}

// NewEvaluator wires an evaluator.
func NewEvaluator(store Directory, conv Converter) *Evaluator {
	return &Evaluator{Store: store, Lunar: conv}
}

// TodaysMatches returns the records whose lunar month/day is today's.
// Leap-month days match nobody.
func (e *Evaluator) TodaysMatches(ctx context.Context, today time.Time) ([]birthday.Record, error) {
	info, ok := e.Lunar.SolarToLunar(ctx, today).Info()
	if !ok {
		return nil, fmt.Errorf("%s: %s", config.ErrLunarConvert, today.Format(config.DateKeyFormat))
	}
	if info.Leap {
		return nil, nil
	}
	return e.Store.FindByLunarDate(info.Month, info.Day), nil
}

// UpcomingWithinWindow lists, for offsets 0..windowDays-1, the days that have at
// least one matching record, in increasing offset order.
func (e *Evaluator) UpcomingWithinWindow(ctx context.Context, today time.Time, windowDays int) []Upcoming {
	var out []Upcoming
	start := dateOnly(today)

	for offset := range max(windowDays, 0) {
		day := start.AddDate(0, 0, offset)

		info, ok := e.Lunar.SolarToLunar(ctx, day).Info()
		if !ok {
			slog.WarnContext(ctx, config.MsgUnresolvedDay,
				config.LogKeyComponent, config.CompEngine,
				config.LogKeyDate, day.Format(config.DateKeyFormat),
			)
			continue
		}
		if info.Leap {
			continue
		}

		matches := e.Store.FindByLunarDate(info.Month, info.Day)
		if len(matches) == 0 {
			continue
		}
		out = append(out, Upcoming{Date: day, Offset: offset, Info: info, Records: matches})
	}
	return out
}

// NextOccurrence returns the solar date of the record's next lunar birthday on
// or after today.
func (e *Evaluator) NextOccurrence(ctx context.Context, rec birthday.Record, today time.Time) (time.Time, error) {
	start := dateOnly(today)

	info, ok := e.Lunar.SolarToLunar(ctx, start).Info()
	if !ok {
		return time.Time{}, fmt.Errorf("%w: %s", ErrUnresolvable, rec.Name)
	}

	for _, year := range []int{info.Year, info.Year + 1} {
		date, ok := e.Lunar.LunarToSolar(rec.LunarMonth, rec.LunarDay, year)
		if !ok || date.Before(start) {
			continue
		}
		return date, nil
	}
	return time.Time{}, fmt.Errorf("%w: %s (%02d-%02d)", ErrUnresolvable, rec.Name, rec.LunarMonth, rec.LunarDay)
}

// DaysUntilNextOccurrence is the non-negative number of days from today to the
// record's next lunar birthday; 0 when it is today.
func (e *Evaluator) DaysUntilNextOccurrence(ctx context.Context, rec birthday.Record, today time.Time) (int, error) {
	next, err := e.NextOccurrence(ctx, rec, today)
	if err != nil {
		return 0, err
	}
	return daysBetween(dateOnly(today), next), nil
}

// ShouldRemindNow reports whether the day count is one of the record's lead days.
func (e *Evaluator) ShouldRemindNow(ctx context.Context, rec birthday.Record, today time.Time) (bool, error) {
	days, err := e.DaysUntilNextOccurrence(ctx, rec, today)
	if err != nil {
		return false, err
	}
	return rec.RemindsAt(days), nil
}

// DueReminders returns every record whose reminder fires today. Records that
// cannot be resolved are logged and skipped.
func (e *Evaluator) DueReminders(ctx context.Context, today time.Time) []Due {
	var out []Due
	for _, rec := range e.Store.List() {
		days, err := e.DaysUntilNextOccurrence(ctx, rec, today)
		if err != nil {
			slog.WarnContext(ctx, config.MsgUnresolvedRecord,
				config.LogKeyComponent, config.CompEngine,
				config.LogKeyID, rec.ID,
				config.LogKeyError, err,
			)
			continue
		}
		if rec.RemindsAt(days) {
			out = append(out, Due{Record: rec, DaysUntil: days})
		}
	}
	return out
}

// dateOnly maps t to midnight UTC of its calendar day so that day arithmetic
// ignores zones and DST.
func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func daysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}
