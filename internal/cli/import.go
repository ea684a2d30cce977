package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tartampluch/go-lunar-birthday/internal/config"
	"github.com/tartampluch/go-lunar-birthday/internal/engine"
)

var importCmd = LeafCommand{
	Use:   "import [PATH]",
	Short: "Import birthdays from a vCard file or CardDAV URL",
	Args:  cobra.MaximumNArgs(1),
	BoolFlags: []BoolFlag{
		{Name: config.FlagDryRun, Usage: "print the cards that would be imported"},
	},
	StrFlags: []StringFlag{
		{Name: config.FlagURL, Usage: "vCard URL (http/https)"},
		{Name: config.FlagWebUser, Usage: "basic auth user for --url"},
		{Name: config.FlagWebPass, Usage: "basic auth password for --url"},
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		f := cmd.Flags()
		var src engine.ImportSource
		if len(args) == 1 {
			src.Path = args[0]
		}
		src.URL, _ = f.GetString(config.FlagURL)
		src.User, _ = f.GetString(config.FlagWebUser)
		src.Pass, _ = f.GetString(config.FlagWebPass)
		if src.Path == "" && src.URL == "" {
			return errors.New(config.ErrLocalPathEmpty)
		}
		dryRun, _ := f.GetBool(config.FlagDryRun)
		return runImport(cmd, current, src, dryRun)
	},
}.Build()

func runImport(cmd *cobra.Command, app *App, src engine.ImportSource, dryRun bool) error {
	drafts, err := app.Importer.Read(cmd.Context(), src)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	added := 0
	for _, d := range drafts {
		line := fmt.Sprintf("%s  %s", d.Name, app.Messages.MonthDay(d.LunarMonth, d.LunarDay))
		if dryRun {
			_, _ = fmt.Fprintln(out, Silent(line))
			continue
		}
		if _, err := app.Store.Add(cmd.Context(), d); err != nil {
			_, _ = fmt.Fprintf(out, "%s  %s\n", Warning(line), Error(err.Error()))
			continue
		}
		added++
		_, _ = fmt.Fprintln(out, Primary(line))
	}

	if dryRun {
		_, _ = fmt.Fprintf(out, "%d cards found (dry run)\n", len(drafts))
		return nil
	}
	_, _ = fmt.Fprintf(out, "%d of %d cards imported\n", added, len(drafts))
	return nil
}
