package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/archbrain/core/internal/models"
	"github.com/archbrain/core/internal/report"
	"github.com/archbrain/core/internal/scanner"
)

func scanProject(cmd *cobra.Command, root string) (*models.Snapshot, error) {
	s := scanner.New(scanner.Options{
		SourceDir: cfg.SourceDir,
		Ignore:    cfg.Ignore,
		Logger:    slog.Default(),
	})
	snapshot, err := s.Scan(cmd.Context(), root)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", root, err)
	}
	slog.Info("Scan complete",
		slog.String("root", snapshot.Metadata.ProjectPath),
		slog.Int("nodes", snapshot.Metadata.TotalNodes),
		slog.Int("edges", snapshot.Metadata.TotalEdges),
		slog.Int("violations", snapshot.Metadata.TotalViolations))
	return snapshot, nil
}

func runScan(cmd *cobra.Command, args []string) error {
	snapshot, err := scanProject(cmd, projectRoot(args))
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	if prettyJSON {
		encoder.SetIndent("", "  ")
	}
	if err := encoder.Encode(snapshot); err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	if scanOut == "" {
		_, err := io.Copy(cmd.OutOrStdout(), &buf)
		return err
	}
	if err := os.WriteFile(scanOut, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	slog.Info("Snapshot written", slog.String("path", scanOut))
	return nil
}

func runReport(cmd *cobra.Command, args []string) error {
	snapshot, err := scanProject(cmd, projectRoot(args))
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := report.Render(&buf, snapshot.Report()); err != nil {
		return err
	}
	if err := os.WriteFile(reportOut, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	slog.Info("Report written", slog.String("path", reportOut))
	return nil
}
