package mcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/deixis/launcher/internal/report"
)

// tailLines is how many trailing lines of each stream the launch reply shows.
const tailLines = 20

type launchParams struct {
	Timeout string `json:"timeout,omitempty" jsonschema:"optional Go duration (e.g. 90s, 10m) after which the executable is killed; defaults to the configured timeout"`
}

func (h *handler) launchHandler(ctx context.Context, req *mcp.CallToolRequest, params launchParams) (*mcp.CallToolResult, any, error) {
	exe, err := h.cfg.RequireExecutable()
	if err != nil {
		return errorResult(err.Error())
	}

	l := *h.launcher
	if params.Timeout != "" {
		d, err := time.ParseDuration(params.Timeout)
		if err != nil || d <= 0 {
			return errorResult(fmt.Sprintf("invalid timeout %q", params.Timeout))
		}
		l.Timeout = d
	}

	started := time.Now()
	res, err := l.Launch(ctx, exe)

	var r *report.Report
	if err != nil {
		r = report.FromError(exe, started, err)
	} else {
		r = report.FromResult(res)
	}
	if saveErr := h.store.Save(r); saveErr != nil {
		h.logger.Warn("saving launch report", "run_id", r.ID, "error", saveErr)
	}

	if err != nil {
		return errorResult(formatLaunch(r))
	}
	return textResult(formatLaunch(r))
}

func formatLaunch(r *report.Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Run: %s\n", r.ID)
	fmt.Fprintf(&b, "Executable: %s\n", r.Executable)
	switch r.Outcome {
	case report.Completed:
		fmt.Fprintf(&b, "Outcome: exited with code %d after %s\n", r.ExitCode, r.Duration())
	default:
		fmt.Fprintf(&b, "Outcome: %s after %s\n", r.Outcome, r.Duration())
		fmt.Fprintf(&b, "Error: %s\n", r.Error)
		return b.String()
	}
	if r.Truncated {
		fmt.Fprintln(&b, "Output was truncated at the configured max_output.")
	}
	fmt.Fprintln(&b)

	writeTail(&b, "stdout", r.Stdout)
	writeTail(&b, "stderr", r.Stderr)

	fmt.Fprintf(&b, "Full output: launch_inspect(run_id=%q).\n", r.ID)
	return b.String()
}

func writeTail(b *strings.Builder, name, text string) {
	if text == "" {
		fmt.Fprintf(b, "%s: (empty)\n\n", name)
		return
	}
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	if len(lines) > tailLines {
		fmt.Fprintf(b, "%s (last %d of %d lines):\n", name, tailLines, len(lines))
		lines = lines[len(lines)-tailLines:]
	} else {
		fmt.Fprintf(b, "%s:\n", name)
	}
	for _, line := range lines {
		fmt.Fprintf(b, "    %s\n", line)
	}
	fmt.Fprintln(b)
}
