package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/tartampluch/go-lunar-birthday/internal/birthday"
	"github.com/tartampluch/go-lunar-birthday/internal/config"
	"github.com/tartampluch/go-lunar-birthday/internal/lunar"
	"github.com/tartampluch/go-lunar-birthday/internal/storage"
)

// Notifier delivers what the pipeline decides to send.
type Notifier interface {
	SendBirthdayWishes(ctx context.Context, rec birthday.Record, info lunar.DayInfo)
	SendBelatedWishes(ctx context.Context, rec birthday.Record, info lunar.DayInfo)
	SendReminder(ctx context.Context, rec birthday.Record, daysUntil int, on time.Time) bool
	SendLunarInfo(ctx context.Context, info lunar.DayInfo) bool
}

// PipelineOptions are the feature toggles and pacing of the daily check.
type PipelineOptions struct {
	AutoWishes   bool
	Reminders    bool
	DailyAlmanac bool
	// CatchUpDays bounds how many missed days before today are replayed.
	CatchUpDays int
	// SendAt is the local time of day before which "today" is not evaluated yet.
	SendAt   time.Duration
	Location *time.Location
}

// DayReport summarises one evaluated day.
type DayReport struct {
	Date      string `json:"date"`
	Wishes    int    `json:"wishes"`
	Reminders int    `json:"reminders"`
	Almanac   bool   `json:"almanac"`
}

// Pipeline is the reminder-check-and-dispatch job. It persists the last
// evaluated calendar day so each day fires once, and replays days missed while
// the process was down, up to CatchUpDays.
type Pipeline struct {
	Evaluator *Evaluator
	Notifier  Notifier
	KV        storage.KV
	Clock     Clock
	Options   PipelineOptions

	mu sync.Mutex // one run at a time
}

// NewPipeline wires a pipeline.
func NewPipeline(ev *Evaluator, n Notifier, kv storage.KV, clock Clock, opts PipelineOptions) *Pipeline {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	return &Pipeline{Evaluator: ev, Notifier: n, KV: kv, Clock: clock, Options: opts}
}

// Run evaluates every day between the watermark and today.
func (p *Pipeline) Run(ctx context.Context) ([]DayReport, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	start := time.Now()
	log := slog.With(config.LogKeyComponent, config.CompPipeline)
	today := p.currentDay()
	wall := CalendarDay(p.Clock, p.Options.Location)

	var errs []error
	last, hasLast, err := p.watermark(ctx)
	if err != nil {
		errs = append(errs, err)
	}
	if hasLast && !last.Before(today) {
		log.DebugContext(ctx, config.MsgPipelineSkip, config.LogKeyDate, last.Format(config.DateKeyFormat))
		return nil, errors.Join(errs...)
	}

	from := today
	if hasLast {
		from = last.AddDate(0, 0, 1)
		if earliest := today.AddDate(0, 0, -p.Options.CatchUpDays); from.Before(earliest) {
			from = earliest
		}
	}
	if missed := daysBetween(from, today); missed > 0 {
		log.InfoContext(ctx, config.MsgCatchUp, config.LogKeyDays, missed)
	}

	log.InfoContext(ctx, config.MsgPipelineStart, config.LogKeyDate, today.Format(config.DateKeyFormat))

	var reports []DayReport
	for day := from; !day.After(today); day = day.AddDate(0, 0, 1) {
		if err := ctx.Err(); err != nil {
			return reports, err
		}
		reports = append(reports, p.EvaluateDay(ctx, day, day.Equal(wall)))
		if err := p.saveWatermark(ctx, day); err != nil {
			errs = append(errs, err)
		}
	}

	log.InfoContext(ctx, config.MsgPipelineDone,
		config.LogKeyCount, len(reports),
		config.LogKeyDuration, time.Since(start).Milliseconds(),
	)
	return reports, errors.Join(errs...)
}

// EvaluateDay sends the wishes, advance reminders and (for the live day) the
// almanac for one calendar day. Days evaluated after they ended get belated
// wishes and no almanac. Send failures are logged by the notifier.
func (p *Pipeline) EvaluateDay(ctx context.Context, day time.Time, live bool) DayReport {
	day = dateOnly(day)
	report := DayReport{Date: day.Format(config.DateKeyFormat)}
	info := lunar.Display(p.Evaluator.Lunar.SolarToLunar(ctx, day), day)

	if p.Options.AutoWishes {
		matches, err := p.Evaluator.TodaysMatches(ctx, day)
		if err != nil {
			slog.WarnContext(ctx, config.MsgUnresolvedDay,
				config.LogKeyComponent, config.CompPipeline,
				config.LogKeyDate, report.Date,
				config.LogKeyError, err,
			)
		}
		for _, rec := range matches {
			if live {
				p.Notifier.SendBirthdayWishes(ctx, rec, info)
			} else {
				p.Notifier.SendBelatedWishes(ctx, rec, info)
			}
			report.Wishes++
		}
	}

	if p.Options.Reminders {
		for _, due := range p.Evaluator.DueReminders(ctx, day) {
			// Day zero is covered by the wishes above.
			if due.DaysUntil == 0 {
				continue
			}
			p.Notifier.SendReminder(ctx, due.Record, due.DaysUntil, day.AddDate(0, 0, due.DaysUntil))
			report.Reminders++
		}
	}

	if p.Options.DailyAlmanac && live {
		report.Almanac = p.Notifier.SendLunarInfo(ctx, info)
	}
	return report
}

// currentDay is the latest calendar day whose send time has passed.
func (p *Pipeline) currentDay() time.Time {
	now := p.Clock.Now().In(p.Options.Location)
	y, m, d := now.Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, p.Options.Location)

	today := dateOnly(now)
	if now.Sub(midnight) < p.Options.SendAt {
		today = today.AddDate(0, 0, -1)
	}
	return today
}

// LastEvaluated returns the persisted watermark, if any.
func (p *Pipeline) LastEvaluated(ctx context.Context) (time.Time, bool, error) {
	return p.watermark(ctx)
}

func (p *Pipeline) watermark(ctx context.Context) (time.Time, bool, error) {
	raw, err := p.KV.Get(ctx, config.StorageKeyLastEvaluated)
	if errors.Is(err, storage.ErrNotFound) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("%s: %w", config.ErrWatermarkRead, err)
	}
	last, err := time.Parse(config.DateKeyFormat, string(raw))
	if err != nil {
		return time.Time{}, false, fmt.Errorf("%s: %w", config.ErrWatermarkRead, err)
	}
	return last, true, nil
}

func (p *Pipeline) saveWatermark(ctx context.Context, day time.Time) error {
	if err := p.KV.Put(ctx, config.StorageKeyLastEvaluated, []byte(day.Format(config.DateKeyFormat))); err != nil {
		return fmt.Errorf("%s: %w", config.ErrWatermarkWrite, err)
	}
	return nil
}
