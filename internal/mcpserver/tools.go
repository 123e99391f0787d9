package mcpserver

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type AnalyzeProjectArgs struct{}

type SystemStatusArgs struct{}

type ControlServiceArgs struct {
	Service string `json:"service" jsonschema:"the service to toggle: WATCHER or MCP"`
}

type SentinelLogsArgs struct{}

type WriteLogArgs struct {
	Message string `json:"message" jsonschema:"the message to display in the UI log"`
}

type TriggerActionArgs struct {
	Action string `json:"action" jsonschema:"the UI action to trigger, for example SCAN"`
}

func (s *Server) registerTools() {
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "analyze_project",
		Description: "Deep architectural scan of the codebase.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args AnalyzeProjectArgs) (*mcp.CallToolResult, any, error) {
		snapshot, err := s.scans.Scan(ctx)
		if err != nil {
			s.logger.Error("Scan failed", slog.String("error", err.Error()))
			return errorResult(fmt.Sprintf("Scan failed: %v", err)), nil, nil
		}
		return jsonResult(snapshot), nil, nil
	})

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_system_status",
		Description: "Get real-time Sentinel metrics (Uptime, Watcher status, MCP status).",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args SystemStatusArgs) (*mcp.CallToolResult, any, error) {
		status, err := s.ctrl.Status(ctx)
		if err != nil {
			return errorResult(fmt.Sprintf("Status unavailable: %v", err)), nil, nil
		}
		return jsonResult(status), nil, nil
	})

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "control_sentinel_service",
		Description: "Toggle Sentinel services (WATCHER or MCP).",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args ControlServiceArgs) (*mcp.CallToolResult, any, error) {
		service := normalizeService(args.Service)

		var (
			state string
			err   error
		)
		switch service {
		case ServiceWatcher:
			state, err = s.ctrl.ToggleWatcher(ctx)
		case ServiceMCP:
			state, err = s.ctrl.ToggleMCP(ctx)
		default:
			return errorResult(fmt.Sprintf("Unknown service %q, expected WATCHER or MCP", args.Service)), nil, nil
		}
		if err != nil {
			return errorResult(fmt.Sprintf("Toggle failed: %v", err)), nil, nil
		}
		return textResult(fmt.Sprintf("%s is now %s", service, state)), nil, nil
	})

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_sentinel_logs",
		Description: "Read the current history of the Sentinel HUD logs.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args SentinelLogsArgs) (*mcp.CallToolResult, any, error) {
		logs, err := s.ctrl.Logs(ctx)
		if err != nil {
			return errorResult(fmt.Sprintf("Logs unavailable: %v", err)), nil, nil
		}
		return textResult(strings.Join(logs, "\n")), nil, nil
	})

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "write_to_sentinel_log",
		Description: "Write a message directly to the Sentinel HUD log panel.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args WriteLogArgs) (*mcp.CallToolResult, any, error) {
		if strings.TrimSpace(args.Message) == "" {
			return errorResult("message is required"), nil, nil
		}
		if err := s.ctrl.Log(ctx, args.Message); err != nil {
			s.logger.Warn("Hub unreachable, dropping log", slog.String("error", err.Error()))
			return errorResult(fmt.Sprintf("Log failed: %v", err)), nil, nil
		}
		return textResult("Success"), nil, nil
	})

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "trigger_ui_action",
		Description: "Remote control UI actions.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args TriggerActionArgs) (*mcp.CallToolResult, any, error) {
		if strings.TrimSpace(args.Action) == "" {
			return errorResult("action is required"), nil, nil
		}
		if err := s.ctrl.Command(ctx, args.Action); err != nil {
			return errorResult(fmt.Sprintf("Action failed: %v", err)), nil, nil
		}
		return textResult(fmt.Sprintf("Action %s triggered.", args.Action)), nil, nil
	})
}
