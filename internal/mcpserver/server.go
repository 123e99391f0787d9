// Package mcpserver exposes the scan engine and hub controls as MCP tools for
// coding agents.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/archbrain/core/internal/hub"
	"github.com/archbrain/core/internal/scanner"
)

const (
	Name    = "arch-brain"
	Version = "3.9.0"
)

// Services accepted by control_sentinel_service.
const (
	ServiceWatcher = "WATCHER"
	ServiceMCP     = "MCP"
)

type Server struct {
	mcpServer *mcp.Server
	ctrl      hub.Controller
	scans     scanner.Snapshotter
	logger    *slog.Logger
}

// New builds a server whose tools scan through scans and act on the hub
// through ctrl, which may be in-process or remote.
func New(ctrl hub.Controller, scans scanner.Snapshotter, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		mcpServer: mcp.NewServer(&mcp.Implementation{Name: Name, Version: Version}, nil),
		ctrl:      ctrl,
		scans:     scans,
		logger:    logger,
	}
	s.registerTools()
	return s
}

// MCP returns the underlying protocol server.
func (s *Server) MCP() *mcp.Server {
	return s.mcpServer
}

// Run serves over stdin/stdout until the client disconnects or ctx is done.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("MCP server listening on stdio", slog.String("name", Name))
	if err := s.mcpServer.Run(ctx, &mcp.StdioTransport{}); err != nil && ctx.Err() == nil {
		return fmt.Errorf("mcp server: %w", err)
	}
	return nil
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

func errorResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
		IsError: true,
	}
}

func jsonResult(v any) *mcp.CallToolResult {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errorResult(fmt.Sprintf("Failed to encode result: %v", err))
	}
	return textResult(string(data))
}

func normalizeService(service string) string {
	return strings.ToUpper(strings.TrimSpace(service))
}
