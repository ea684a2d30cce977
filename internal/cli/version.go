package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
	"github.com/tartampluch/go-lunar-birthday/internal/config"
)

// SetVersionInfo records the build information injected into main.
func SetVersionInfo(version, commit, date string) {
	config.Version = version
	config.Commit = commit
	config.Date = date
	config.UserAgent = "Go-Lunar-Birthday/" + version
}

var versionCmd = &cobra.Command{
	Use:         "version",
	Short:       "Print the version information",
	Annotations: map[string]string{noApp: "true"},
	Run: func(cmd *cobra.Command, args []string) {
		runVersion(cmd)
	},
}

func runVersion(cmd *cobra.Command) {
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), config.MsgVersionOutput,
		config.AppName,
		config.Version,
		config.Commit,
		config.Date,
		runtime.GOOS,
		runtime.GOARCH,
	)
}
