package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tartampluch/go-lunar-birthday/internal/config"
)

var serveCmd = LeafCommand{
	Use:   config.CmdServe,
	Short: "Run the scheduler, the calendar feed and the JSON API",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd, current)
	},
}.Build()

func runServe(cmd *cobra.Command, app *App) error {
	ctx := cmd.Context()
	if err := app.RefreshCalendar(ctx); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "serving on %s\n", Primary("http://"+app.Settings.Addr))
	return app.Serve(ctx)
}
