// Package scheduler runs the periodic jobs of the service on a fixed interval.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/tartampluch/go-lunar-birthday/internal/config"
)

// Job is one unit of periodic work.
type Job func(ctx context.Context) error

type namedJob struct {
	name string
	run  Job
}

// Scheduler fires every registered job once at start and then on each tick.
// A job whose previous run has not finished skips the tick.
type Scheduler struct {
	interval time.Duration
	location *time.Location

	mu   sync.Mutex
	jobs []namedJob
}

// New creates a scheduler ticking every interval.
func New(interval time.Duration, loc *time.Location) *Scheduler {
	if loc == nil {
		loc = time.Local
	}
	return &Scheduler{interval: interval, location: loc}
}

// Add registers a job. Jobs added after Start are ignored.
func (s *Scheduler) Add(name string, job Job) {
	s.mu.Lock()
	s.jobs = append(s.jobs, namedJob{name: name, run: job})
	s.mu.Unlock()
}

// Start runs every job immediately, then on the interval, and blocks until ctx
// is cancelled. In-flight jobs are awaited before it returns.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.interval <= 0 {
		return fmt.Errorf("%s: %s", config.ErrSchedulerSpec, s.interval)
	}
	logger := slog.With(config.LogKeyComponent, config.CompScheduler)

	c := cron.New(
		cron.WithLocation(s.location),
		cron.WithLogger(cronLogger{logger}),
		cron.WithChain(cron.SkipIfStillRunning(cronLogger{logger})),
	)

	s.mu.Lock()
	jobs := append([]namedJob(nil), s.jobs...)
	s.mu.Unlock()

	spec := fmt.Sprintf(config.CronEveryFormat, s.interval)
	for _, j := range jobs {
		if _, err := c.AddFunc(spec, func() { runJob(ctx, logger, j) }); err != nil {
			return fmt.Errorf("%s: %w", config.ErrSchedulerSpec, err)
		}
	}

	logger.InfoContext(ctx, config.MsgSchedulerStart,
		config.LogKeyInterval, s.interval.String(),
		config.LogKeyCount, len(jobs),
	)

	for _, j := range jobs {
		runJob(ctx, logger, j)
	}

	c.Start()
	<-ctx.Done()
	logger.Info(config.MsgSchedulerStop)
	<-c.Stop().Done()
	return nil
}

func runJob(ctx context.Context, logger *slog.Logger, j namedJob) {
	if ctx.Err() != nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			logger.ErrorContext(ctx, config.MsgJobFailed,
				config.LogKeyJob, j.name,
				config.LogKeyError, fmt.Sprint(r),
			)
		}
	}()

	start := time.Now()
	if err := j.run(ctx); err != nil {
		logger.WarnContext(ctx, config.MsgJobFailed,
			config.LogKeyJob, j.name,
			config.LogKeyError, err,
		)
		return
	}
	logger.DebugContext(ctx, config.MsgJobDone,
		config.LogKeyJob, j.name,
		config.LogKeyDuration, time.Since(start).Milliseconds(),
	)
}

// cronLogger routes the cron library's logs to slog.
type cronLogger struct {
	log *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	if msg == "skip" {
		l.log.Info(config.MsgJobSkipped, keysAndValues...)
		return
	}
	l.log.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Error(msg, append(keysAndValues, config.LogKeyError, err)...)
}
