package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/tartampluch/go-lunar-birthday/internal/config"
	"github.com/tartampluch/go-lunar-birthday/internal/lunar"
)

var sendWishesCmd = LeafCommand{
	Use:      "wishes ID",
	Short:    "Send the birthday wishes of a record now",
	Args:     cobra.ExactArgs(1),
	StrFlags: []StringFlag{dateFlag},
	RunE: func(cmd *cobra.Command, args []string) error {
		day, err := dayFromFlag(cmd, current)
		if err != nil {
			return err
		}
		return runSendWishes(cmd, current, args[0], day)
	},
}.Build()

func runSendWishes(cmd *cobra.Command, app *App, id string, day time.Time) error {
	rec, ok := app.Store.Get(id)
	if !ok {
		return fmt.Errorf("%s: %s", config.ErrRecordNotFound, id)
	}
	info := lunar.Display(app.Lunar.SolarToLunar(cmd.Context(), day), day)
	app.Dispatcher.SendBirthdayWishes(cmd.Context(), rec, info)
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "wishes for %s dispatched\n", Primary(rec.Name))
	return nil
}

var sendAlmanacCmd = LeafCommand{
	Use:      "almanac",
	Short:    "Send the almanac message to the configured groups",
	StrFlags: []StringFlag{dateFlag},
	RunE: func(cmd *cobra.Command, args []string) error {
		day, err := dayFromFlag(cmd, current)
		if err != nil {
			return err
		}
		return runSendAlmanac(cmd, current, day)
	},
}.Build()

func runSendAlmanac(cmd *cobra.Command, app *App, day time.Time) error {
	info := lunar.Display(app.Lunar.SolarToLunar(cmd.Context(), day), day)
	if !app.Dispatcher.SendLunarInfo(cmd.Context(), info) {
		return errors.New(config.ErrSendFailed)
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "almanac for %s sent\n", Primary(day.Format(config.DateKeyFormat)))
	return nil
}

var sendCheckCmd = LeafCommand{
	Use:   "check",
	Short: "Run one reminder check, catching up on missed days",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSendCheck(cmd, current)
	},
}.Build()

func runSendCheck(cmd *cobra.Command, app *App) error {
	reports, err := app.Pipeline.Run(cmd.Context())
	out := cmd.OutOrStdout()
	if len(reports) == 0 && err == nil {
		_, _ = fmt.Fprintln(out, Silent("Already up to date."))
	}
	for _, r := range reports {
		almanac := "-"
		if r.Almanac {
			almanac = "sent"
		}
		_, _ = fmt.Fprintf(out, "%s  wishes=%d reminders=%d almanac=%s\n",
			Primary(r.Date), r.Wishes, r.Reminders, almanac)
	}
	return err
}

var sendTextCmd = LeafCommand{
	Use:   "text MESSAGE...",
	Short: "Send one or more text messages to a group",
	Args:  cobra.MinimumNArgs(1),
	StrFlags: []StringFlag{
		{Name: config.FlagGroup, Usage: "target group id, defaults to the first configured group"},
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		group, _ := cmd.Flags().GetString(config.FlagGroup)
		return runSendText(cmd, current, args, group)
	},
}.Build()

func runSendText(cmd *cobra.Command, app *App, messages []string, group string) error {
	results := app.Dispatcher.SendBatch(cmd.Context(), messages, group)
	failed := 0
	for i, ok := range results {
		status := Info("sent")
		if !ok {
			status = Error("failed")
			failed++
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%d/%d %s\n", i+1, len(results), status)
	}
	if failed > 0 {
		return fmt.Errorf("%s: %d of %d", config.ErrSendFailed, failed, len(results))
	}
	return nil
}

var sendCmd = GroupCommand{
	Use:   "send",
	Short: "Send messages through the chat platform",
	Subcommands: []*cobra.Command{
		sendWishesCmd,
		sendAlmanacCmd,
		sendCheckCmd,
		sendTextCmd,
	},
}.Build()
