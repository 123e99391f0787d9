// Package scanner walks a project tree and turns it into a dependency
// snapshot. It owns file discovery, the scan orchestration and the hosting
// guard that keeps concurrent triggers from stacking up.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/archbrain/core/internal/models"
	"github.com/archbrain/core/internal/parser"
)

// DefaultSourceDir is the conventional source directory under a project root.
const DefaultSourceDir = "src"

// ErrRootNotDirectory is returned when the scan root exists but is a file.
var ErrRootNotDirectory = errors.New("scan root is not a directory")

// Options configures a Scanner. Zero values fall back to the defaults.
type Options struct {
	// SourceDir is scanned relative to the root. Use "." to scan the root itself.
	SourceDir  string
	Ignore     []string
	Extensions []string
	Logger     *slog.Logger
}

// Scanner runs the full pipeline. It keeps no state between calls, so a
// single Scanner may serve concurrent scans.
type Scanner struct {
	opts   Options
	logger *slog.Logger
}

func New(opts Options) *Scanner {
	if opts.SourceDir == "" {
		opts.SourceDir = DefaultSourceDir
	}
	if opts.Ignore == nil {
		opts.Ignore = DefaultIgnore
	}
	if len(opts.Extensions) == 0 {
		opts.Extensions = DefaultExtensions
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Scanner{opts: opts, logger: logger}
}

// Scan builds a fresh snapshot of the project at root.
//
// A missing root or source directory gives an empty snapshot. A root that
// exists but cannot be opened fails the call. Unreadable files are left out
// and the scan carries on. When ctx is cancelled the scan stops and returns
// ctx.Err(); no partial snapshot is ever returned.
func (s *Scanner) Scan(ctx context.Context, root string) (*models.Snapshot, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve scan root: %w", err)
	}

	meta := models.Metadata{
		ScanID:      uuid.New().String(),
		ProjectPath: abs,
		ScanTime:    time.Now().UTC().Format(time.RFC3339),
	}

	if err := checkRoot(abs); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("Scan root does not exist", slog.String("root", abs))
			return parser.BuildGraph(nil, nil, meta), nil
		}
		return nil, err
	}

	files, err := Collect(filepath.Join(abs, s.opts.SourceDir), CollectOptions{
		IDBase:     abs,
		Ignore:     s.opts.Ignore,
		Extensions: s.opts.Extensions,
		Logger:     s.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("collect source files: %w", err)
	}

	nodes := make([]models.Node, 0, len(files))
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		data, err := os.ReadFile(f.AbsPath)
		if err != nil {
			s.logger.Warn("Analysis error, skipping file",
				slog.String("file", f.ID),
				slog.String("error", err.Error()))
			continue
		}

		content := string(data)
		nodes = append(nodes, models.Node{
			ID:       f.ID,
			Label:    filepath.Base(f.AbsPath),
			Category: parser.Classify(content),
			Content:  content,
			Size:     int64(len(data)),
		})
	}

	ids := make([]string, len(nodes))
	for i, n := range nodes {
		ids[i] = n.ID
	}
	index := parser.NewIndex(ids)

	var edges []models.Edge
	for _, n := range nodes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		edges = append(edges, parser.ExtractEdges(n, index)...)
	}

	snapshot := parser.BuildGraph(nodes, edges, meta)

	s.logger.Debug("Scan complete",
		slog.String("root", abs),
		slog.Int("nodes", snapshot.Metadata.TotalNodes),
		slog.Int("edges", snapshot.Metadata.TotalEdges),
		slog.Int("violations", snapshot.Metadata.TotalViolations))

	return snapshot, nil
}

// checkRoot verifies the root is a directory that can be listed.
func checkRoot(root string) error {
	info, err := os.Stat(root)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return err
		}
		return fmt.Errorf("stat scan root: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s: %w", root, ErrRootNotDirectory)
	}

	f, err := os.Open(root)
	if err != nil {
		return fmt.Errorf("open scan root: %w", err)
	}
	defer f.Close()

	if _, err := f.Readdirnames(1); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("list scan root: %w", err)
	}
	return nil
}
