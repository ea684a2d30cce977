package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tartampluch/go-lunar-birthday/internal/birthday"
	"github.com/tartampluch/go-lunar-birthday/internal/config"
)

var recordStrFlags = []StringFlag{
	{Name: config.FlagName, Usage: "display name"},
	{Name: config.FlagUser, Usage: "user id that receives personal notifications"},
	{Name: config.FlagGroup, Usage: "extra group id for birthday wishes"},
	{Name: config.FlagMessage, Usage: "custom birthday message"},
}

var recordIntFlags = []IntFlag{
	{Name: config.FlagMonth, Usage: "lunar month (1-12)"},
	{Name: config.FlagDay, Usage: "lunar day (1-30)"},
}

var recordIntsFlags = []IntsFlag{
	{Name: config.FlagRemind, Usage: "days before the birthday to send reminders, e.g. 7,1"},
}

var addCmd = LeafCommand{
	Use:       "add",
	Short:     "Add a lunar birthday",
	StrFlags:  recordStrFlags,
	IntFlags:  recordIntFlags,
	IntsFlags: recordIntsFlags,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAdd(cmd, current, draftFromFlags(cmd))
	},
}.Build()

// draftFromFlags reads the record flags. Reminder days stay nil unless --remind
// was given so the store applies the configured defaults.
func draftFromFlags(cmd *cobra.Command) birthday.Draft {
	f := cmd.Flags()
	d := birthday.Draft{}
	d.Name, _ = f.GetString(config.FlagName)
	d.LunarMonth, _ = f.GetInt(config.FlagMonth)
	d.LunarDay, _ = f.GetInt(config.FlagDay)
	d.UserID, _ = f.GetString(config.FlagUser)
	d.GroupID, _ = f.GetString(config.FlagGroup)
	d.Message, _ = f.GetString(config.FlagMessage)
	if f.Changed(config.FlagRemind) {
		d.ReminderDays, _ = f.GetIntSlice(config.FlagRemind)
	}
	return d
}

func runAdd(cmd *cobra.Command, app *App, d birthday.Draft) error {
	rec, err := app.Store.Add(cmd.Context(), d)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "birthday %s added (%s)\n", Primary(rec.Name), Silent(rec.ID))
	return nil
}

var listCmd = LeafCommand{
	Use:   "list",
	Short: "List all birthdays",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runList(cmd, current)
	},
}.Build()

func runList(cmd *cobra.Command, app *App) error {
	records := app.Store.List()
	if len(records) == 0 {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), Silent("No birthdays found."))
		return nil
	}
	for _, rec := range records {
		printRecord(cmd, app, rec)
	}
	return nil
}

func printRecord(cmd *cobra.Command, app *App, rec birthday.Record) {
	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "%s  %s  %s\n",
		Silent(rec.ID),
		Primary(rec.Name),
		app.Messages.MonthDay(rec.LunarMonth, rec.LunarDay),
	)

	var details []string
	if rec.UserID != "" {
		details = append(details, "user="+rec.UserID)
	}
	if rec.GroupID != "" {
		details = append(details, "group="+rec.GroupID)
	}
	if len(rec.ReminderDays) > 0 {
		days := make([]string, len(rec.ReminderDays))
		for i, d := range rec.ReminderDays {
			days[i] = fmt.Sprint(d)
		}
		details = append(details, "remind="+strings.Join(days, ","))
	}
	if len(details) > 0 {
		_, _ = fmt.Fprintf(out, "└── %s\n", Silent(strings.Join(details, " ")))
	}
}

var updateCmd = LeafCommand{
	Use:       "update ID",
	Short:     "Change fields of a birthday; only the given flags are applied",
	Args:      cobra.ExactArgs(1),
	StrFlags:  recordStrFlags,
	IntFlags:  recordIntFlags,
	IntsFlags: recordIntsFlags,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runUpdate(cmd, current, args[0], patchFromFlags(cmd))
	},
}.Build()

// patchFromFlags only sets the fields whose flags were given explicitly.
func patchFromFlags(cmd *cobra.Command) birthday.Patch {
	f := cmd.Flags()
	var p birthday.Patch

	str := func(name string) *string {
		if !f.Changed(name) {
			return nil
		}
		v, _ := f.GetString(name)
		return &v
	}
	num := func(name string) *int {
		if !f.Changed(name) {
			return nil
		}
		v, _ := f.GetInt(name)
		return &v
	}

	p.Name = str(config.FlagName)
	p.UserID = str(config.FlagUser)
	p.GroupID = str(config.FlagGroup)
	p.Message = str(config.FlagMessage)
	p.LunarMonth = num(config.FlagMonth)
	p.LunarDay = num(config.FlagDay)
	if f.Changed(config.FlagRemind) {
		days, _ := f.GetIntSlice(config.FlagRemind)
		p.ReminderDays = &days
	}
	return p
}

func runUpdate(cmd *cobra.Command, app *App, id string, p birthday.Patch) error {
	rec, err := app.Store.Update(cmd.Context(), id, p)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "birthday %s updated (%s)\n", Primary(rec.Name), Silent(rec.ID))
	return nil
}

var removeCmd = LeafCommand{
	Use:   "remove ID",
	Short: "Remove a birthday",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRemove(cmd, current, args[0])
	},
}.Build()

func runRemove(cmd *cobra.Command, app *App, id string) error {
	if !app.Store.Delete(cmd.Context(), id) {
		return fmt.Errorf("%s: %s", config.ErrRecordNotFound, id)
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "birthday %s removed\n", Silent(id))
	return nil
}
