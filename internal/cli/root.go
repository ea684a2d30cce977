package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/tartampluch/go-lunar-birthday/internal/config"
	"github.com/tartampluch/go-lunar-birthday/internal/engine"
)

var (
	debugMode bool
	envFile   string

	// current is built by the root command before any subcommand that needs it runs.
	current   *App
	logCloser io.Closer
)

// noApp marks commands that run without settings or storage.
const noApp = "no-app"

var rootCmd = &cobra.Command{
	Use:               config.CmdName,
	Short:             "Lunar calendar birthday reminders for chat groups",
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: prepare,
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return teardown()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debugMode, config.FlagDebug, false, config.FlagDescDebug)
	rootCmd.PersistentFlags().StringVar(&envFile, config.FlagEnvFile, "", config.FlagDescEnvFile)

	rootCmd.AddCommand(
		serveCmd,
		addCmd,
		listCmd,
		updateCmd,
		removeCmd,
		todayCmd,
		upcomingCmd,
		dueCmd,
		almanacCmd,
		yearCmd,
		importCmd,
		sendCmd,
		versionCmd,
	)
}

// prepare sets up logging, loads settings and builds the App.
func prepare(cmd *cobra.Command, _ []string) error {
	if cmd.Annotations[noApp] != "" {
		return nil
	}

	logCloser = setupLogging(debugMode, cmd.Name() == config.CmdServe)
	logStartupInfo(cmd.Name())

	var files []string
	if envFile != "" {
		files = append(files, envFile)
	}
	settings, err := config.Load(files...)
	if err != nil {
		return err
	}

	app, err := NewApp(cmd.Context(), settings, engine.RealClock{})
	if err != nil {
		return err
	}
	current = app
	return nil
}

func teardown() error {
	var err error
	if current != nil {
		err = current.Close()
		current = nil
	}
	if logCloser != nil {
		_ = logCloser.Close()
		logCloser = nil
	}
	return err
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		slog.Error(config.ErrAppFailed,
			config.LogKeyComponent, config.CompMain,
			config.LogKeyError, err,
		)
		// PostRun is skipped when RunE fails.
		_ = teardown()
		_, _ = fmt.Fprintln(os.Stderr, Error(err.Error()))
		return config.ExitCodeError
	}

	slog.Debug(config.MsgAppStop, config.LogKeyComponent, config.CompMain)
	return config.ExitCodeSuccess
}
