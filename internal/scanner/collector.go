// Package scanner walks a project tree and turns it into a dependency
// snapshot. It owns file discovery, the scan orchestration and the hosting
// guard that keeps concurrent triggers from stacking up.
package scanner

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"
)

// DefaultExtensions are the source files the engine understands.
var DefaultExtensions = []string{".ts", ".tsx", ".js", ".jsx"}

// DefaultIgnore lists directory patterns skipped during collection.
var DefaultIgnore = []string{"node_modules"}

// CollectedFile is a candidate source file.
type CollectedFile struct {
	AbsPath string
	ID      string
}

type CollectOptions struct {
	// IDBase is the directory ids are made relative to. Defaults to the
	// collection root.
	IDBase string

	// Ignore holds gitignore-style patterns for directories to skip.
	Ignore []string

	Extensions []string
	Logger     *slog.Logger
}

// Collect enumerates source files under root in lexical order. Hidden and
// ignored directories are not descended into. A missing root yields no files
// and no error; subdirectories that cannot be listed are skipped. A symlinked
// root is followed, but paths and ids stay under root as given.
func Collect(root string, opts CollectOptions) ([]CollectedFile, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	base := opts.IDBase
	if base == "" {
		base = root
	}

	exts := opts.Extensions
	if len(exts) == 0 {
		exts = DefaultExtensions
	}

	var matcher *ignore.GitIgnore
	if len(opts.Ignore) > 0 {
		matcher = ignore.CompileIgnoreLines(opts.Ignore...)
	}

	resolved, err := filepath.EvalSymlinks(root)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", root, err)
	}

	var files []CollectedFile
	err = filepath.WalkDir(resolved, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == resolved {
				return err
			}
			logger.Debug("Skipping unreadable path", slog.String("path", path), slog.String("error", err.Error()))
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if path == resolved {
				return nil
			}
			if skipDir(resolved, path, d.Name(), matcher) {
				return filepath.SkipDir
			}
			return nil
		}

		if !hasExtension(d.Name(), exts) {
			return nil
		}

		under, err := filepath.Rel(resolved, path)
		if err != nil {
			return fmt.Errorf("relative path for %s: %w", path, err)
		}
		full := filepath.Join(root, under)

		rel, err := filepath.Rel(base, full)
		if err != nil {
			return fmt.Errorf("relative id for %s: %w", full, err)
		}

		files = append(files, CollectedFile{
			AbsPath: full,
			ID:      filepath.ToSlash(rel),
		})
		return nil
	})

	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return files, nil
}

func skipDir(root, path, name string, matcher *ignore.GitIgnore) bool {
	if strings.HasPrefix(name, ".") {
		return true
	}
	if matcher == nil {
		return false
	}

	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)

	return matcher.MatchesPath(rel) || matcher.MatchesPath(rel+"/")
}

func hasExtension(name string, exts []string) bool {
	ext := filepath.Ext(name)
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}
