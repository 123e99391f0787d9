package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/archbrain/core/internal/hub"
	"github.com/archbrain/core/internal/mcpserver"
)

const hubPingTimeout = 2 * time.Second

// resolveController returns a client for the hub at addr when one answers,
// otherwise an in-process hub.
func resolveController(ctx context.Context, addr string) hub.Controller {
	client := hub.NewClient(addr, nil)

	pingCtx, cancel := context.WithTimeout(ctx, hubPingTimeout)
	defer cancel()

	if client.Ping(pingCtx) {
		slog.Info("Hub active, tool forwarding enabled", slog.String("hub", addr))
		return client
	}
	slog.Info("No hub reachable, using local state", slog.String("hub", addr))
	return hub.New(slog.Default())
}

func runMCP(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := cfg.HubAddress()
	if hubURL != "" {
		addr = hubURL
	}

	ctrl := resolveController(ctx, addr)
	scans := newScanService(cfg, cfg.ProjectRoot)
	return mcpserver.New(ctrl, scans, slog.Default()).Run(ctx)
}
