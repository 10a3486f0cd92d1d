// Package mcp exposes the launcher as an MCP server: launch the configured
// game build, then inspect or compare what it printed.
package mcp

import (
	_ "embed"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/deixis/launcher"
	"github.com/deixis/launcher/internal/config"
	"github.com/deixis/launcher/internal/log"
	"github.com/deixis/launcher/internal/report"
	"github.com/deixis/launcher/internal/runner"
)

//go:embed instructions.md
var Instructions string

// handler holds shared dependencies for all tool handlers.
type handler struct {
	cfg      *config.Config
	launcher *runner.Launcher
	store    report.Store
	logger   log.Logger
}

// NewServer creates an MCP server with the launch tools registered.
func NewServer(cfg *config.Config, l *runner.Launcher, store report.Store, opts ...ServerOption) *mcp.Server {
	so := serverOptions{logger: log.Discard()}
	for _, o := range opts {
		o(&so)
	}

	h := &handler{
		cfg:      cfg,
		launcher: l,
		store:    store,
		logger:   so.logger,
	}

	s := mcp.NewServer(&mcp.Implementation{Name: "launcher", Version: launcher.Version}, &mcp.ServerOptions{
		Instructions: Instructions,
		Capabilities: &mcp.ServerCapabilities{
			Tools: &mcp.ToolCapabilities{ListChanged: false},
		},
	})

	mcp.AddTool(s, &mcp.Tool{
		Name: "launch",
		Description: `Launch the configured game executable and wait for it to exit.

The executable runs with no arguments. Stdout and stderr are captured in full and stored;
the reply carries the run ID, exit code, duration and the tail of each stream.
A non-zero exit code is reported, not treated as a tool error.`,
	}, h.launchHandler)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "launch_inspect",
		Description: "Return the full captured output of a previous launch by run ID.",
	}, h.inspectHandler)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "launch_diff",
		Description: "Compare the output of two previous launches line by line.",
	}, h.diffHandler)

	return s
}

// ServerOption configures the launcher MCP server.
type ServerOption func(*serverOptions)

type serverOptions struct {
	logger log.Logger
}

// WithLogger routes handler logs to l.
func WithLogger(l log.Logger) ServerOption {
	return func(o *serverOptions) {
		o.logger = l
	}
}

// textResult is a helper to build a text-only tool result.
func textResult(text string) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}, nil, nil
}

// errorResult is a helper to build an error tool result.
func errorResult(text string) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
		IsError: true,
	}, nil, nil
}
