// Package watcher turns file system activity into hub notifications: source
// edits trigger a UI rescan, and writes to the bridge file relay messages
// from external agents.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	ignore "github.com/sabhiram/go-gitignore"
)

// DefaultDebounce is the quiet period before a batch of changes is delivered.
const DefaultDebounce = 300 * time.Millisecond

// Op names the kind of change seen for a path.
type Op string

const (
	OpCreate Op = "create"
	OpWrite  Op = "write"
	OpRemove Op = "remove"
	OpRename Op = "rename"
)

// Change is a single debounced file system change.
type Change struct {
	Path string
	Op   Op
}

// Handler receives each debounced batch. It is called from the watcher's
// goroutine, one batch at a time.
type Handler func(changes []Change)

type Options struct {
	// Debounce defaults to DefaultDebounce.
	Debounce time.Duration

	// Ignore holds gitignore-style patterns matched against paths relative
	// to the watch root. Hidden directories are always skipped.
	Ignore []string

	// Recursive watches every directory below the root. Otherwise only the
	// root directory itself is watched.
	Recursive bool

	// Filter, when set, drops events whose path it rejects.
	Filter func(path string) bool

	Logger *slog.Logger
}

// Watcher delivers debounced change batches for a directory tree.
type Watcher struct {
	root     string
	handler  Handler
	debounce time.Duration
	ignore   *ignore.GitIgnore
	opts     Options
	logger   *slog.Logger
}

func New(root string, handler Handler, opts Options) *Watcher {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		root:     root,
		handler:  handler,
		debounce: opts.Debounce,
		ignore:   ignore.CompileIgnoreLines(opts.Ignore...),
		opts:     opts,
		logger:   logger,
	}
}

// Run watches until ctx is done. A root that does not exist is reported and
// then left alone; Run still blocks until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create fsnotify watcher: %w", err)
	}
	defer fw.Close()

	if err := w.add(fw, w.root); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("watch %s: %w", w.root, err)
		}
		w.logger.Warn("Watch root does not exist", slog.String("root", w.root))
		<-ctx.Done()
		return nil
	}
	w.logger.Debug("Watching", slog.String("root", w.root), slog.Bool("recursive", w.opts.Recursive))

	var (
		batch  []Change
		timer  *time.Timer
		timerC <-chan time.Time
	)
	flush := func() {
		if len(batch) > 0 && w.handler != nil {
			w.handler(dedupe(batch))
		}
		batch = nil
		timerC = nil
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			change, keep := w.convert(event)
			if !keep {
				continue
			}
			if w.opts.Recursive && change.Op == OpCreate {
				if info, err := os.Stat(change.Path); err == nil && info.IsDir() {
					if err := w.add(fw, change.Path); err != nil {
						w.logger.Debug("Failed to watch new directory", slog.String("path", change.Path), slog.String("error", err.Error()))
					}
				}
			}

			batch = append(batch, change)
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			timerC = timer.C

		case <-timerC:
			flush()

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("Watcher error", slog.String("error", err.Error()))
		}
	}
}

func (w *Watcher) add(fw *fsnotify.Watcher, dir string) error {
	if !w.opts.Recursive {
		if _, err := os.Stat(dir); err != nil {
			return err
		}
		return fw.Add(dir)
	}

	if _, err := os.Stat(dir); err != nil {
		return err
	}
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.root && w.ignored(path, true) {
			return filepath.SkipDir
		}
		return fw.Add(path)
	})
}

func (w *Watcher) ignored(path string, isDir bool) bool {
	rel, err := filepath.Rel(w.root, path)
	if err != nil || rel == "." {
		return false
	}
	rel = filepath.ToSlash(rel)
	for _, part := range strings.Split(rel, "/") {
		if strings.HasPrefix(part, ".") && len(part) > 1 {
			return true
		}
	}
	if w.ignore.MatchesPath(rel) {
		return true
	}
	return isDir && w.ignore.MatchesPath(rel+"/")
}

func (w *Watcher) convert(event fsnotify.Event) (Change, bool) {
	var op Op
	switch {
	case event.Has(fsnotify.Create):
		op = OpCreate
	case event.Has(fsnotify.Write):
		op = OpWrite
	case event.Has(fsnotify.Remove):
		op = OpRemove
	case event.Has(fsnotify.Rename):
		op = OpRename
	default:
		return Change{}, false
	}

	if w.opts.Filter != nil && !w.opts.Filter(event.Name) {
		return Change{}, false
	}
	if w.ignored(event.Name, false) {
		return Change{}, false
	}
	return Change{Path: event.Name, Op: op}, true
}

// dedupe keeps the last op per path, in first-seen order.
func dedupe(batch []Change) []Change {
	index := make(map[string]int, len(batch))
	out := make([]Change, 0, len(batch))
	for _, c := range batch {
		if i, ok := index[c.Path]; ok {
			out[i].Op = c.Op
			continue
		}
		index[c.Path] = len(out)
		out = append(out, c)
	}
	return out
}
