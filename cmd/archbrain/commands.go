package main

import (
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/archbrain/core/internal/config"
	"github.com/archbrain/core/internal/report"
)

var (
	cfg      config.Config
	cfgFile  string
	logLevel string

	serveMCP   bool
	hubURL     string
	scanOut    string
	reportOut  string
	prettyJSON bool
)

var (
	rootCmd = &cobra.Command{
		Use:          "archbrain",
		Short:        "Map the architecture of a TypeScript/JavaScript project",
		Long:         "ArchBrain scans a project's sources, classifies every module into an architectural layer and reports dependencies that point the wrong way.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			if logLevel != "" {
				loaded.LogLevel = strings.ToLower(logLevel)
				if err := loaded.Validate(); err != nil {
					return err
				}
			}
			cfg = loaded
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()})))
			return nil
		},
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Run the hub: HTTP API, WebSocket push channel and source watcher",
		Args:  cobra.NoArgs,
		RunE:  runServe, // Defined in cmd_serve.go
	}

	mcpCmd = &cobra.Command{
		Use:   "mcp",
		Short: "Serve agent tools over stdio, forwarding hub actions to a running hub",
		Args:  cobra.NoArgs,
		RunE:  runMCP, // Defined in cmd_mcp.go
	}

	scanCmd = &cobra.Command{
		Use:   "scan [project root]",
		Short: "Scan a project and print its dependency snapshot as JSON",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runScan, // Defined in cmd_scan.go
	}

	reportCmd = &cobra.Command{
		Use:   "report [project root]",
		Short: "Scan a project and write a standalone HTML report",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runReport, // Defined in cmd_scan.go
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn or error")

	serveCmd.Flags().BoolVar(&serveMCP, "mcp", false, "Also serve agent tools over stdio")

	mcpCmd.Flags().StringVar(&hubURL, "hub", "", "Base URL of the hub to forward to (defaults to the local port)")

	scanCmd.Flags().StringVarP(&scanOut, "out", "o", "", "Write the snapshot to a file instead of stdout")
	scanCmd.Flags().BoolVar(&prettyJSON, "pretty", false, "Indent the JSON output")

	reportCmd.Flags().StringVarP(&reportOut, "out", "o", report.DefaultFileName, "Report file to write")

	rootCmd.AddCommand(serveCmd, mcpCmd, scanCmd, reportCmd)
}

func projectRoot(args []string) string {
	if len(args) > 0 && args[0] != "" {
		return args[0]
	}
	return cfg.ProjectRoot
}
