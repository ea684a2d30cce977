// Package birthday owns the list of lunar birthday records.
package birthday

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/tartampluch/go-lunar-birthday/internal/config"
)

var (
	// ErrNotFound is returned by Update when no record carries the id.
	ErrNotFound = errors.New(config.ErrRecordNotFound)
	// ErrInvalid wraps every validation failure.
	ErrInvalid = errors.New(config.ErrRecordInvalid)
)

// Record is one recurring lunar birthday. The JSON shape is the persisted format.
type Record struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	LunarMonth   int       `json:"lunarMonth"`
	LunarDay     int       `json:"lunarDay"`
	UserID       string    `json:"userId"`
	GroupID      string    `json:"groupId"`
	ReminderDays []int     `json:"reminderDays"`
	Message      string    `json:"message,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Validate checks the ranges every stored record must satisfy.
func (r Record) Validate() error {
	var errs []error
	if strings.TrimSpace(r.Name) == "" {
		errs = append(errs, errors.New(config.ErrRecordName))
	}
	if r.LunarMonth < config.MinLunarMonth || r.LunarMonth > config.MaxLunarMonth {
		errs = append(errs, errors.New(config.ErrRecordMonth))
	}
	if r.LunarDay < config.MinLunarDay || r.LunarDay > config.MaxLunarDay {
		errs = append(errs, errors.New(config.ErrRecordDay))
	}
	if slices.ContainsFunc(r.ReminderDays, func(d int) bool { return d < 0 }) {
		errs = append(errs, errors.New(config.ErrRecordLeadDays))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}

// RemindsAt reports whether days is one of the record's lead days.
func (r Record) RemindsAt(days int) bool {
	return slices.Contains(r.ReminderDays, days)
}

// MatchesLunar reports whether the record recurs on the given lunar month/day.
func (r Record) MatchesLunar(month, day int) bool {
	return r.LunarMonth == month && r.LunarDay == day
}

func (r Record) clone() Record {
	r.ReminderDays = slices.Clone(r.ReminderDays)
	return r
}

// Draft is the input to Store.Add. A nil ReminderDays takes the configured defaults;
// an empty non-nil slice means "never remind in advance".
type Draft struct {
	Name         string `json:"name"`
	LunarMonth   int    `json:"lunarMonth"`
	LunarDay     int    `json:"lunarDay"`
	UserID       string `json:"userId"`
	GroupID      string `json:"groupId"`
	ReminderDays []int  `json:"reminderDays"`
	Message      string `json:"message"`
}

// Patch carries the fields to merge into an existing record. Nil means unchanged.
type Patch struct {
	Name         *string `json:"name,omitempty"`
	LunarMonth   *int    `json:"lunarMonth,omitempty"`
	LunarDay     *int    `json:"lunarDay,omitempty"`
	UserID       *string `json:"userId,omitempty"`
	GroupID      *string `json:"groupId,omitempty"`
	ReminderDays *[]int  `json:"reminderDays,omitempty"`
	Message      *string `json:"message,omitempty"`
}

// apply returns a copy of r with the patch merged in.
func (p Patch) apply(r Record) Record {
	out := r.clone()
	if p.Name != nil {
		out.Name = strings.TrimSpace(*p.Name)
	}
	if p.LunarMonth != nil {
		out.LunarMonth = *p.LunarMonth
	}
	if p.LunarDay != nil {
		out.LunarDay = *p.LunarDay
	}
	if p.UserID != nil {
		out.UserID = *p.UserID
	}
	if p.GroupID != nil {
		out.GroupID = *p.GroupID
	}
	if p.ReminderDays != nil {
		out.ReminderDays = normalizeDays(*p.ReminderDays)
	}
	if p.Message != nil {
		out.Message = *p.Message
	}
	return out
}

// normalizeDays sorts and deduplicates lead days. A non-nil input yields a non-nil result.
func normalizeDays(days []int) []int {
	if days == nil {
		return nil
	}
	out := slices.Clone(days)
	slices.Sort(out)
	return slices.Compact(out)
}
