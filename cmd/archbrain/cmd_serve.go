package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/archbrain/core/cmd/archbrain/middleware"
	"github.com/archbrain/core/internal/config"
	"github.com/archbrain/core/internal/handlers"
	"github.com/archbrain/core/internal/hub"
	"github.com/archbrain/core/internal/mcpserver"
	"github.com/archbrain/core/internal/scanner"
	"github.com/archbrain/core/internal/watcher"
)

const shutdownTimeout = 5 * time.Second

func newRouter(c config.Config, h *hub.Hub, scans *scanner.Service) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", handlers.HealthHandler(c.ProjectRoot, c.SourceDir))
	mux.HandleFunc("/api/scan", handlers.ScanHandler(scans))
	mux.HandleFunc("/api/scan-internal", handlers.InternalScanHandler(scans))
	mux.HandleFunc("/api/report", handlers.ReportHandler(scans))
	mux.HandleFunc("/api/status", handlers.StatusHandler(h, scans))
	mux.HandleFunc("/api/logs", handlers.LogsHandler(h))
	mux.HandleFunc("/api/log", handlers.LogHandler(h))
	mux.HandleFunc("/api/command", handlers.CommandHandler(h))
	mux.HandleFunc("/api/toggle-watcher", handlers.ToggleWatcherHandler(h))
	mux.HandleFunc("/api/toggle-mcp", handlers.ToggleMCPHandler(h))
	mux.HandleFunc("/ws", handlers.WebSocketHandler(h, c.CORSOrigin))
	mux.Handle("/metrics", promhttp.Handler())
	return middleware.Cors(c.CORSOrigin, mux)
}

func newScanService(c config.Config, root string) *scanner.Service {
	s := scanner.New(scanner.Options{
		SourceDir: c.SourceDir,
		Ignore:    c.Ignore,
		Logger:    slog.Default(),
	})
	return scanner.NewService(s, root)
}

func bridgePath(c config.Config) string {
	if c.BridgeFile == "" || filepath.IsAbs(c.BridgeFile) {
		return c.BridgeFile
	}
	return filepath.Join(c.ProjectRoot, c.BridgeFile)
}

func runServe(cmd *cobra.Command, args []string) error {
	if cfg.MCPOnly {
		slog.Info("MCP only mode, skipping the hub")
		return runMCP(cmd, args)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := slog.Default()
	h := hub.New(logger)
	scans := newScanService(cfg, cfg.ProjectRoot)

	srv := &http.Server{
		Addr:              cfg.Address(),
		Handler:           newRouter(cfg, h, scans),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("ArchBrain hub listening", slog.String("addr", srv.Addr), slog.String("root", cfg.ProjectRoot))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		w := watcher.New(filepath.Join(cfg.ProjectRoot, cfg.SourceDir), watcher.ScanTrigger(h, logger), watcher.Options{
			Debounce:  cfg.Debounce,
			Ignore:    cfg.Ignore,
			Recursive: true,
			Logger:    logger,
		})
		return w.Run(gctx)
	})

	if path := bridgePath(cfg); path != "" {
		g.Go(func() error {
			return watcher.NewBridge(path, h, logger).Run(gctx)
		})
	}

	if serveMCP {
		g.Go(func() error {
			err := mcpserver.New(h, scans, logger).Run(gctx)
			// Stdin closing ends the agent session; keep the hub up.
			if err != nil {
				slog.Warn("MCP session ended", slog.String("error", err.Error()))
			}
			return nil
		})
	}

	return g.Wait()
}
