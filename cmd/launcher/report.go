package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/deixis/launcher/internal/report"
)

var reportJSON bool

var errHistoryDisabled = errors.New("launch history is disabled in the config")

var (
	reportCmd = &cobra.Command{
		Use:   "report",
		Short: "Inspect stored launch reports",
	}

	reportListCmd = &cobra.Command{
		Use:   "list",
		Short: "List stored launches, most recent first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store := historyStore()
			if store == nil {
				return errHistoryDisabled
			}
			reports, err := store.List()
			if err != nil {
				return err
			}
			if reportJSON {
				return writeJSON(cmd, reports)
			}
			if len(reports) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no launches recorded")
				return nil
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tSTARTED\tOUTCOME\tEXIT\tDURATION\tEXECUTABLE")
			for _, r := range reports {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\n",
					shortID(r.ID),
					r.StartedAt.Local().Format(time.DateTime),
					r.Outcome,
					r.ExitCode,
					r.Duration(),
					r.Executable,
				)
			}
			return tw.Flush()
		},
	}

	reportShowCmd = &cobra.Command{
		Use:   "show <id>",
		Short: "Show one launch with its full output",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store := historyStore()
			if store == nil {
				return errHistoryDisabled
			}
			r, err := store.Find(args[0])
			if err != nil {
				return err
			}
			if reportJSON {
				return writeJSON(cmd, r)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Run:        %s\n", r.ID)
			fmt.Fprintf(out, "Executable: %s\n", r.Executable)
			fmt.Fprintf(out, "Started:    %s\n", r.StartedAt.Local().Format(time.RFC3339))
			fmt.Fprintf(out, "Duration:   %s\n", r.Duration())
			fmt.Fprintf(out, "Outcome:    %s\n", r.Outcome)
			fmt.Fprintf(out, "Exit code:  %d\n", r.ExitCode)
			if r.Error != "" {
				fmt.Fprintf(out, "Error:      %s\n", r.Error)
			}
			if r.Truncated {
				fmt.Fprintln(out, "Output was truncated.")
			}
			fmt.Fprintf(out, "\n--- stdout ---\n%s", r.Stdout)
			fmt.Fprintf(out, "\n--- stderr ---\n%s", r.Stderr)
			return nil
		},
	}

	reportDiffCmd = &cobra.Command{
		Use:   "diff <id-a> <id-b>",
		Short: "Compare the output of two launches",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store := historyStore()
			if store == nil {
				return errHistoryDisabled
			}
			a, err := store.Find(args[0])
			if err != nil {
				return err
			}
			b, err := store.Find(args[1])
			if err != nil {
				return err
			}
			out, err := report.Compare(a, b)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		},
	}
)

// shortID abbreviates a run ID for tables.
func shortID(id string) string {
	if len(id) < 8 {
		return id
	}
	return id[:8]
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	reportCmd.PersistentFlags().BoolVar(&reportJSON, "json", false, "print as JSON")
	reportCmd.AddCommand(reportListCmd, reportShowCmd, reportDiffCmd)
}
