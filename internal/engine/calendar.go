package engine

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/emersion/go-ical"
	"github.com/tartampluch/go-lunar-birthday/internal/birthday"
	"github.com/tartampluch/go-lunar-birthday/internal/config"
)

// CalendarGenerator renders the stored lunar birthdays as an iCalendar feed,
// each record resolved to its solar dates around the current lunar year.
type CalendarGenerator struct {
	Evaluator *Evaluator
	Clock     Clock

	// FormatSummary allows the caller to inject localized event titles.
	FormatSummary func(rec birthday.Record) string
}

// Generate returns the ICS data and the number of birthdays falling today.
func (g *CalendarGenerator) Generate(ctx context.Context) ([]byte, int, error) {
	start := time.Now()

	cal := ical.NewCalendar()
	cal.Props.SetText(config.PropVersion, config.ICalVersion)
	cal.Props.SetText(config.PropProdid, config.ICalProdid)
	cal.Props.SetText(config.PropXWRCalName, config.ICalCalName)
	cal.Props.SetText(config.PropCalScale, config.ICalScale)
	cal.Props.SetText(config.PropMethod, config.ICalMethod)

	// RFC 7986: Suggest a refresh interval
	refreshProp := ical.NewProp(config.PropRefresh)
	refreshProp.SetDuration(config.DefaultICalRefresh)
	cal.Props.Set(refreshProp)

	now := g.Clock.Now()
	today := dateOnly(now)
	dtStampProp := ical.NewProp(config.PropDTStamp)
	dtStampProp.SetDateTime(now.UTC())

	info, ok := g.Evaluator.Lunar.SolarToLunar(ctx, today).Info()
	if !ok {
		return nil, 0, fmt.Errorf("%s: %s", config.ErrLunarConvert, today.Format(config.DateKeyFormat))
	}
	// Previous, current and next lunar year keep calendar apps populated when scrolling.
	years := []int{info.Year - 1, info.Year, info.Year + 1}

	records := g.Evaluator.Store.List()
	stats := struct{ records, events, today int }{len(records), 0, 0}

	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return nil, 0, err
		}

		summary := fmt.Sprintf(config.FallbackSummary, rec.Name,
			fmt.Sprintf(config.FormatLunarMD, rec.LunarMonth, rec.LunarDay))
		if g.FormatSummary != nil {
			summary = g.FormatSummary(rec)
		}

		for _, y := range years {
			date, ok := g.Evaluator.Lunar.LunarToSolar(rec.LunarMonth, rec.LunarDay, y)
			if !ok {
				continue
			}
			if date.Equal(today) {
				stats.today++
				slog.Info(config.MsgBdayToday,
					config.LogKeyComponent, config.CompEngine,
					config.LogKeyName, rec.Name,
				)
			}

			event := ical.NewEvent()
			event.Props.SetText(config.PropUID, fmt.Sprintf(config.FormatUID, rec.ID, y, config.ICalDomain))
			event.Props.SetText(config.PropSummary, summary)
			event.Props.Set(dtStampProp)

			dtStartProp := ical.NewProp(config.PropDTStart)
			dtStartProp.SetDate(date)
			event.Props.Set(dtStartProp)

			for _, lead := range rec.ReminderDays {
				addAlarm(event, fmt.Sprintf(config.FormatTrigger, lead), summary)
			}

			cal.Children = append(cal.Children, event.Component)
			stats.events++
		}
	}

	slog.Info(config.MsgGenSuccess,
		config.LogKeyComponent, config.CompEngine,
		slog.Group(config.LogKeyStats,
			slog.Int(config.LogKeyTotal, stats.records),
			slog.Int(config.LogKeyFound, stats.events),
			slog.Int(config.LogKeyToday, stats.today),
		),
		config.LogKeyDuration, time.Since(start).Milliseconds(),
	)

	// An empty VCALENDAR would be rejected by the encoder; clients accept the stub.
	if len(cal.Children) == 0 {
		return []byte(config.StubVCalendar), 0, nil
	}

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", config.ErrICalEncode, err)
	}
	return buf.Bytes(), stats.today, nil
}

// addAlarm appends a DISPLAY alarm (notification) to the event.
func addAlarm(event *ical.Event, trigger, description string) {
	alarm := ical.NewComponent(config.ICalComponent)
	alarm.Props.SetText(config.PropAction, config.ICalAction)
	alarm.Props.SetText(config.PropDescription, description)

	// Set trigger manually to avoid "VALUE=TEXT" param
	triggerProp := ical.NewProp(config.PropTrigger)
	triggerProp.Value = trigger
	alarm.Props.Set(triggerProp)

	event.Children = append(event.Children, alarm)
}
