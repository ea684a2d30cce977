package cli

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/tartampluch/go-lunar-birthday/internal/birthday"
	"github.com/tartampluch/go-lunar-birthday/internal/config"
	"github.com/tartampluch/go-lunar-birthday/internal/engine"
	"github.com/tartampluch/go-lunar-birthday/internal/host"
	"github.com/tartampluch/go-lunar-birthday/internal/lunar"
	"github.com/tartampluch/go-lunar-birthday/internal/notify"
	"github.com/tartampluch/go-lunar-birthday/internal/scheduler"
	"github.com/tartampluch/go-lunar-birthday/internal/server"
	"github.com/tartampluch/go-lunar-birthday/internal/storage"
	"github.com/tartampluch/go-lunar-birthday/internal/weather"
	"github.com/tartampluch/go-lunar-birthday/internal/websocket"
	"golang.org/x/sync/errgroup"
)

// App is the composition root: every component is built once here and
// injected into the ones that need it.
type App struct {
	Settings config.Settings
	Clock    engine.Clock

	KV         storage.KV
	Hub        *websocket.Hub
	Store      *birthday.Store
	Lunar      *lunar.Adapter
	Evaluator  *engine.Evaluator
	Messages   *notify.Messages
	Dispatcher *notify.Dispatcher
	Pipeline   *engine.Pipeline
	Calendar   *engine.CalendarGenerator
	Importer   *engine.Importer
	Server     *server.Server

	closer io.Closer
}

// NewApp opens storage and wires the components for the given settings.
func NewApp(ctx context.Context, s config.Settings, clock engine.Clock) (*App, error) {
	kv, closer, err := storage.Open(s)
	if err != nil {
		return nil, err
	}
	msgs, err := notify.NewMessages(s.Language)
	if err != nil {
		_ = closer.Close()
		return nil, err
	}

	a := &App{Settings: s, Clock: clock, KV: kv, Messages: msgs, closer: closer}

	a.Hub = websocket.NewHub(slog.Default())
	a.Store = birthday.NewStore(ctx, host.NewRuntime(kv, a.Hub),
		birthday.WithClock(clock.Now),
		birthday.WithDefaultReminderDays(s.Reminder.DefaultDays),
		birthday.WithFailureMessage(msgs.T(config.TKeyOperationFail, nil)),
	)

	lunarOpts := []lunar.Option{lunar.WithCache(s.Features.Cache)}
	if s.Features.Weather && s.Weather.Configured() {
		lunarOpts = append(lunarOpts, lunar.WithWeather(weather.NewService(weather.Config{
			Latitude:        s.Weather.Latitude,
			Longitude:       s.Weather.Longitude,
			TemperatureUnit: s.Weather.Units,
			Language:        s.Language,
		})))
	}
	a.Lunar = lunar.NewAdapter(lunarOpts...)
	a.Evaluator = engine.NewEvaluator(a.Store, a.Lunar)

	a.Dispatcher = notify.NewDispatcher(s.Platform, s.Features, msgs,
		notify.WithSink(a.Hub),
		notify.WithClock(clock.Now),
		notify.WithBatchDelay(s.Reminder.BatchDelay),
	)

	a.Pipeline = engine.NewPipeline(a.Evaluator, a.Dispatcher, kv, clock, engine.PipelineOptions{
		AutoWishes:   s.Features.AutoSendWishes,
		Reminders:    s.Features.BirthdayReminder,
		DailyAlmanac: s.Features.DailyAlmanac,
		CatchUpDays:  s.Reminder.CatchUpDays,
		SendAt:       s.Reminder.SendAt,
		Location:     s.Location,
	})

	a.Calendar = &engine.CalendarGenerator{
		Evaluator:     a.Evaluator,
		Clock:         clock,
		FormatSummary: msgs.EventSummary,
	}
	a.Importer = &engine.Importer{Lunar: a.Lunar, Fetcher: engine.NewHTTPFetcher()}

	api := &server.API{
		Records:      a.Store,
		Evaluator:    a.Evaluator,
		Lunar:        a.Lunar,
		Sender:       a.Dispatcher,
		Events:       a.Hub,
		Clock:        clock,
		Location:     s.Location,
		UpcomingDays: s.Reminder.UpcomingDays,
		OnChange:     a.refreshCalendarQuietly,
	}
	a.Server = server.NewServer(s.Addr, api.Routes(), websocket.HandleWebSocket(a.Hub))

	return a, nil
}

// Close releases the storage backend.
func (a *App) Close() error {
	return a.closer.Close()
}

// RefreshCalendar regenerates the ICS feed served at /calendar.ics.
func (a *App) RefreshCalendar(ctx context.Context) error {
	a.Store.Sync(ctx)
	data, _, err := a.Calendar.Generate(ctx)
	if err != nil {
		return err
	}
	a.Server.Update(data)
	return nil
}

func (a *App) refreshCalendarQuietly(ctx context.Context) {
	if err := a.RefreshCalendar(ctx); err != nil {
		slog.WarnContext(ctx, config.MsgCalendarFailed,
			config.LogKeyComponent, config.CompCLI,
			config.LogKeyError, err,
		)
	}
}

// Serve runs the HTTP server and the scheduler until ctx is cancelled.
func (a *App) Serve(ctx context.Context) error {
	sched := scheduler.New(a.Settings.Reminder.Interval, a.Settings.Location)
	sched.Add(config.JobReminders, func(ctx context.Context) error {
		a.Store.Sync(ctx)
		_, err := a.Pipeline.Run(ctx)
		return err
	})
	sched.Add(config.JobCalendar, a.RefreshCalendar)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return a.Server.Start(ctx) })
	g.Go(func() error { return sched.Start(ctx) })

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
