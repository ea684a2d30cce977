package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/tartampluch/go-lunar-birthday/internal/config"
	"github.com/tartampluch/go-lunar-birthday/internal/engine"
	"github.com/tartampluch/go-lunar-birthday/internal/lunar"
)

var dateFlag = StringFlag{Name: config.FlagDate, Usage: "day to evaluate (YYYY-MM-DD), defaults to today"}

// resolveDay parses raw, or returns the current calendar day in the configured location.
func resolveDay(app *App, raw string) (time.Time, error) {
	if raw != "" {
		d, err := time.Parse(config.DateKeyFormat, raw)
		if err != nil {
			return time.Time{}, errors.New(config.ErrInvalidDate)
		}
		return d, nil
	}
	return engine.CalendarDay(app.Clock, app.Settings.Location), nil
}

func dayFromFlag(cmd *cobra.Command, app *App) (time.Time, error) {
	raw, _ := cmd.Flags().GetString(config.FlagDate)
	return resolveDay(app, raw)
}

var todayCmd = LeafCommand{
	Use:      "today",
	Short:    "Show the lunar date and whose birthday it is",
	StrFlags: []StringFlag{dateFlag},
	RunE: func(cmd *cobra.Command, args []string) error {
		day, err := dayFromFlag(cmd, current)
		if err != nil {
			return err
		}
		return runToday(cmd, current, day)
	},
}.Build()

func runToday(cmd *cobra.Command, app *App, day time.Time) error {
	out := cmd.OutOrStdout()
	info := lunar.Display(app.Lunar.SolarToLunar(cmd.Context(), day), day)
	_, _ = fmt.Fprintf(out, "%s  %s\n", Primary(day.Format(config.DateKeyFormat)), info.LunarDate)
	if len(info.Festivals) > 0 {
		_, _ = fmt.Fprintf(out, "%s\n", Festive(strings.Join(info.Festivals, " ")))
	}

	matches, err := app.Evaluator.TodaysMatches(cmd.Context(), day)
	if err != nil {
		return err
	}
	if len(matches) == 0 {
		_, _ = fmt.Fprintln(out, Silent("No birthdays today."))
		return nil
	}
	for _, rec := range matches {
		_, _ = fmt.Fprintf(out, "🎂 %s\n", Festive(rec.Name))
	}
	return nil
}

var upcomingCmd = LeafCommand{
	Use:      "upcoming",
	Short:    "List birthdays in the coming days",
	StrFlags: []StringFlag{dateFlag},
	IntFlags: []IntFlag{
		{Name: config.FlagDays, Usage: "window size in days, defaults to the configured window"},
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		day, err := dayFromFlag(cmd, current)
		if err != nil {
			return err
		}
		days, _ := cmd.Flags().GetInt(config.FlagDays)
		if days == 0 {
			days = current.Settings.Reminder.UpcomingDays
		}
		return runUpcoming(cmd, current, day, days)
	},
}.Build()

func runUpcoming(cmd *cobra.Command, app *App, day time.Time, days int) error {
	if days <= 0 || days > config.MaxUpcomingDays {
		return errors.New(config.ErrInvalidDays)
	}
	out := cmd.OutOrStdout()
	upcoming := app.Evaluator.UpcomingWithinWindow(cmd.Context(), day, days)
	if len(upcoming) == 0 {
		_, _ = fmt.Fprintln(out, Silent(fmt.Sprintf("No birthdays in the next %d days.", days)))
		return nil
	}
	for _, u := range upcoming {
		_, _ = fmt.Fprintf(out, "%s  %s  %s\n",
			Primary(u.Date.Format(config.DateKeyFormat)),
			Info(fmt.Sprintf("+%dd", u.Offset)),
			u.Info.LunarDate,
		)
		for _, rec := range u.Records {
			_, _ = fmt.Fprintf(out, "└── %s\n", rec.Name)
		}
	}
	return nil
}

var dueCmd = LeafCommand{
	Use:      "due",
	Short:    "List the reminders that fire on a day",
	StrFlags: []StringFlag{dateFlag},
	RunE: func(cmd *cobra.Command, args []string) error {
		day, err := dayFromFlag(cmd, current)
		if err != nil {
			return err
		}
		return runDue(cmd, current, day)
	},
}.Build()

func runDue(cmd *cobra.Command, app *App, day time.Time) error {
	out := cmd.OutOrStdout()
	due := app.Evaluator.DueReminders(cmd.Context(), day)
	if len(due) == 0 {
		_, _ = fmt.Fprintln(out, Silent("No reminders due."))
		return nil
	}
	for _, d := range due {
		_, _ = fmt.Fprintf(out, "%s  %s\n", Primary(d.Name), Warning(fmt.Sprintf("in %d days", d.DaysUntil)))
	}
	return nil
}

var almanacCmd = LeafCommand{
	Use:      "almanac",
	Short:    "Print the almanac message for a day",
	StrFlags: []StringFlag{dateFlag},
	RunE: func(cmd *cobra.Command, args []string) error {
		day, err := dayFromFlag(cmd, current)
		if err != nil {
			return err
		}
		return runAlmanac(cmd, current, day)
	},
}.Build()

func runAlmanac(cmd *cobra.Command, app *App, day time.Time) error {
	info := lunar.Display(app.Lunar.SolarToLunar(cmd.Context(), day), day)
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), app.Messages.AlmanacMessage(info))
	return nil
}

var yearCmd = LeafCommand{
	Use:   "year YEAR",
	Short: "Show the lunar new year, leap month and festivals of a year",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		y, err := strconv.Atoi(args[0])
		if err != nil {
			return errors.New(config.ErrInvalidYear)
		}
		return runYear(cmd, current, y)
	},
}.Build()

func runYear(cmd *cobra.Command, app *App, year int) error {
	info, err := app.Lunar.Year(year)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "%s  %s  %s\n", Primary(strconv.Itoa(info.Year)), info.Zodiac, Silent(fmt.Sprintf("%d days", info.Days)))
	_, _ = fmt.Fprintf(out, "new year: %s\n", info.NewYear)
	if info.LeapMonth > 0 {
		_, _ = fmt.Fprintf(out, "leap month: %d\n", info.LeapMonth)
	}
	for _, f := range info.Festivals {
		_, _ = fmt.Fprintf(out, "%s  %s\n", f.Date, Festive(f.Name))
	}
	return nil
}
