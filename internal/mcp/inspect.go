package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/deixis/launcher/internal/report"
)

type inspectParams struct {
	RunID  string `json:"run_id" jsonschema:"the run ID from a launch result"`
	Stream string `json:"stream,omitempty" jsonschema:"stdout or stderr; both when omitted"`
}

func (h *handler) inspectHandler(ctx context.Context, req *mcp.CallToolRequest, params inspectParams) (*mcp.CallToolResult, any, error) {
	if params.RunID == "" {
		return errorResult("run_id is required")
	}
	switch params.Stream {
	case "", "stdout", "stderr":
	default:
		return errorResult(fmt.Sprintf("unknown stream %q, want stdout or stderr", params.Stream))
	}

	r, err := h.store.Load(params.RunID)
	if err != nil {
		return errorResult(fmt.Sprintf("Failed to load run %s: %v", params.RunID, err))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Run: %s (%s, exit %d)\n", r.ID, r.Outcome, r.ExitCode)
	if r.Error != "" {
		fmt.Fprintf(&b, "Error: %s\n", r.Error)
	}
	if params.Stream == "" || params.Stream == "stdout" {
		fmt.Fprintf(&b, "\n--- stdout ---\n%s", r.Stdout)
	}
	if params.Stream == "" || params.Stream == "stderr" {
		fmt.Fprintf(&b, "\n--- stderr ---\n%s", r.Stderr)
	}
	return textResult(b.String())
}

type diffParams struct {
	RunIDA string `json:"run_id_a" jsonschema:"the earlier run ID"`
	RunIDB string `json:"run_id_b" jsonschema:"the later run ID"`
}

func (h *handler) diffHandler(ctx context.Context, req *mcp.CallToolRequest, params diffParams) (*mcp.CallToolResult, any, error) {
	if params.RunIDA == "" || params.RunIDB == "" {
		return errorResult("run_id_a and run_id_b are required")
	}
	a, err := h.store.Load(params.RunIDA)
	if err != nil {
		return errorResult(fmt.Sprintf("Failed to load run %s: %v", params.RunIDA, err))
	}
	b, err := h.store.Load(params.RunIDB)
	if err != nil {
		return errorResult(fmt.Sprintf("Failed to load run %s: %v", params.RunIDB, err))
	}
	out, err := report.Compare(a, b)
	if err != nil {
		return errorResult(err.Error())
	}
	return textResult(out)
}
