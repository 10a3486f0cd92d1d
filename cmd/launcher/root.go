package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/deixis/launcher"
	"github.com/deixis/launcher/internal/config"
	"github.com/deixis/launcher/internal/log"
	"github.com/deixis/launcher/internal/report"
)

var (
	configDir string
	logLevel  string

	appFs  afero.Fs            = afero.NewOsFs()
	getenv func(string) string = os.Getenv

	cfg    *config.Config
	logger log.Logger = log.Discard()

	rootCmd = &cobra.Command{
		Use:   "launcher",
		Short: "launcher starts a prebuilt game executable and records its output",
		Long: `launcher runs the game build named in .launcher.yaml (or LAUNCHER_EXECUTABLE)
as a child process, waits for it to exit, and stores its exit code and output.

The game itself reads its parameters from the orchestration graph; launcher
passes it no arguments.`,
		Args:              cobra.NoArgs,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: setup,
		RunE:              runLaunch,
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), launcher.Version)
			return nil
		},
	}
)

// exitCodeError asks main to exit with the child's status.
type exitCodeError struct {
	code int
}

func (e *exitCodeError) Error() string {
	return fmt.Sprintf("executable exited with status %d", e.code)
}

// Execute runs the root command and exits the process on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		var exit *exitCodeError
		if errors.As(err, &exit) {
			os.Exit(exitStatus(exit.code))
		}
		fmt.Fprintf(os.Stderr, "launcher: %v\n", err)
		os.Exit(1)
	}
}

// exitStatus maps a child status onto a valid process exit code.
func exitStatus(code int) int {
	if code < 0 || code > 255 {
		return 1
	}
	return code
}

// setup loads the configuration and builds the logger for every command.
func setup(cmd *cobra.Command, args []string) error {
	dir, err := filepath.Abs(configDir)
	if err != nil {
		return fmt.Errorf("resolving config directory: %w", err)
	}

	loaded, err := config.Load(appFs, dir, getenv)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	cfg = loaded.Config

	levelName := cfg.LogLevel
	if logLevel != "" {
		levelName = logLevel
	}
	level, err := log.ParseLevel(levelName)
	if err != nil {
		return err
	}
	logger = log.NewSlogLogger(level, cmd.ErrOrStderr())

	if loaded.Path != "" {
		logger.Debug("loaded config", "path", loaded.Path)
	}
	return nil
}

// historyStore returns the on-disk launch history, or nil when disabled.
func historyStore() *report.DiskStore {
	if cfg.History.Disabled {
		return nil
	}
	return report.NewDiskStore(appFs, cfg.HistoryDir())
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "dir", ".", "directory containing "+config.FileName)
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error); overrides the config file")

	addLaunchFlags(rootCmd)
	rootCmd.AddCommand(launchCmd, reportCmd, serveCmd, versionCmd)
}
