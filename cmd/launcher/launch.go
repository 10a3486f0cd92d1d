package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/deixis/launcher/internal/report"
	"github.com/deixis/launcher/internal/runner"
)

var (
	launchExecutable string
	launchTimeout    time.Duration
	launchMaxOutput  int
	launchJSON       bool
	launchPrint      bool
	launchExitCode   bool
	launchNoHistory  bool
)

var launchCmd = &cobra.Command{
	Use:   "launch",
	Short: "Launch the configured executable once and wait for it to exit",
	Long: `Launch the configured executable once and wait for it to exit.

By default launcher exits 0 whatever the game's exit status, and only fails
when the executable cannot be started or is killed. Use --exit-code to
propagate the game's status instead.`,
	Args: cobra.NoArgs,
	RunE: runLaunch,
}

func addLaunchFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&launchExecutable, "executable", "", "path of the executable; overrides the config file and environment")
	f.DurationVar(&launchTimeout, "timeout", 0, "kill the executable after this long; 0 disables a configured timeout")
	f.IntVar(&launchMaxOutput, "max-output", 0, "bytes of each stream to keep (0 uses the configured limit)")
	f.BoolVar(&launchJSON, "json", false, "print the launch report as JSON")
	f.BoolVar(&launchPrint, "print", false, "echo the captured stdout and stderr")
	f.BoolVar(&launchExitCode, "exit-code", false, "exit with the executable's status")
	f.BoolVar(&launchNoHistory, "no-history", false, "do not store a launch report")
}

func runLaunch(cmd *cobra.Command, args []string) error {
	exe := launchExecutable
	if exe == "" {
		var err error
		if exe, err = cfg.RequireExecutable(); err != nil {
			return err
		}
	}

	l := &runner.Launcher{
		Timeout:   cfg.Timeout(),
		MaxOutput: cfg.MaxOutputBytes(),
		Logger:    logger,
	}
	if cmd.Flags().Changed("timeout") {
		if launchTimeout < 0 {
			return fmt.Errorf("invalid --timeout %s: must not be negative", launchTimeout)
		}
		l.Timeout = launchTimeout
	}
	if launchMaxOutput > 0 {
		l.MaxOutput = launchMaxOutput
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	started := time.Now()
	res, err := l.Launch(ctx, exe)

	var r *report.Report
	if err != nil {
		r = report.FromError(exe, started, err)
	} else {
		r = report.FromResult(res)
	}
	if store := historyStore(); store != nil && !launchNoHistory {
		if saveErr := store.Save(r); saveErr != nil {
			logger.Warn("saving launch report", "run_id", r.ID, "error", saveErr)
		}
	}

	if err != nil {
		return err
	}
	if !res.Success() {
		logger.Warn("executable exited with non-zero status", "run_id", res.RunID, "exit_code", res.ExitCode)
	}

	if launchPrint {
		fmt.Fprint(cmd.OutOrStdout(), res.Stdout)
		fmt.Fprint(cmd.ErrOrStderr(), res.Stderr)
	}
	if launchJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(r); err != nil {
			return err
		}
	}

	if launchExitCode && !res.Success() {
		return &exitCodeError{code: res.ExitCode}
	}
	return nil
}

func init() {
	addLaunchFlags(launchCmd)
}
