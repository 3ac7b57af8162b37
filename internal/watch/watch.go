// Package watch triggers rebuilds when files below a content root change.
package watch

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/adocxref/internal/foundation/errors"
	"git.home.luguber.info/inful/adocxref/internal/logfields"
)

// DefaultDebounce is the quiet window used when none is configured.
const DefaultDebounce = 300 * time.Millisecond

// RebuildFunc runs one rebuild. Its errors are logged and do not stop
// watching.
type RebuildFunc func(ctx context.Context) error

// Watcher watches a directory tree recursively.
type Watcher struct {
	root     string
	debounce time.Duration
	logger   *slog.Logger
	skip     []string

	readyOnce sync.Once
	ready     chan struct{}
}

// New creates a watcher for root.
func New(root string, debounce time.Duration, logger *slog.Logger) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{root: root, debounce: debounce, logger: logger, ready: make(chan struct{})}
}

// Skip excludes directories, such as an output directory inside the root.
func (w *Watcher) Skip(dirs ...string) *Watcher {
	for _, d := range dirs {
		if abs, err := filepath.Abs(d); err == nil {
			w.skip = append(w.skip, abs)
		}
	}
	return w
}

// Ready is closed once the initial directories are watched.
func (w *Watcher) Ready() <-chan struct{} {
	return w.ready
}

// Run watches until ctx is canceled, calling rebuild once per burst of
// changes. Rebuilds run on the watching goroutine, so changes made while
// one runs lead to exactly one follow-up.
func (w *Watcher) Run(ctx context.Context, rebuild RebuildFunc) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "create file watcher").Build()
	}
	defer func() { _ = fw.Close() }()

	if err := w.addRecursive(fw, w.root); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "watch content directory").
			WithContext("path", w.root).
			Build()
	}
	w.readyOnce.Do(func() { close(w.ready) })
	w.logger.Info("Watching for changes", logfields.Path(w.root), slog.Duration("debounce", w.debounce))

	var mu sync.Mutex
	var timer *time.Timer
	rebuildReq := make(chan struct{}, 1)
	trigger := func() {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(w.debounce, func() {
			select {
			case rebuildReq <- struct{}{}:
			default:
			}
		})
	}
	defer func() {
		mu.Lock()
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Stopped watching", logfields.Path(w.root))
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(fw, ev, trigger)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("Watcher error", logfields.Error(err))
		case <-rebuildReq:
			start := time.Now()
			if err := rebuild(ctx); err != nil {
				w.logger.Warn("Rebuild failed", logfields.Error(err))
				continue
			}
			w.logger.Info("Rebuilt", logfields.DurationMS(float64(time.Since(start).Microseconds())/1000))
		}
	}
}

func (w *Watcher) handleEvent(fw *fsnotify.Watcher, ev fsnotify.Event, trigger func()) {
	if ShouldIgnore(ev.Name) || w.skipped(ev.Name) {
		return
	}
	if ev.Has(fsnotify.Create) {
		if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
			_ = w.addRecursive(fw, ev.Name)
		}
	}
	w.logger.Debug("File change detected", logfields.Path(ev.Name), slog.String("op", ev.Op.String()))
	trigger()
}

func (w *Watcher) addRecursive(fw *fsnotify.Watcher, root string) error {
	if _, err := os.Stat(root); err != nil {
		return err
	}
	return filepath.WalkDir(root, func(p string, d os.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		if p != root && (strings.HasPrefix(d.Name(), ".") || w.skipped(p)) {
			return filepath.SkipDir
		}
		if err := fw.Add(p); err != nil {
			w.logger.Warn("Watch add failed", logfields.Path(p), logfields.Error(err))
		}
		return nil
	})
}

func (w *Watcher) skipped(p string) bool {
	abs, err := filepath.Abs(p)
	if err != nil {
		return false
	}
	for _, s := range w.skip {
		if abs == s || strings.HasPrefix(abs, s+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// ShouldIgnore reports whether a change to path never triggers a rebuild:
// hidden files, editor swap and backup files, and OS metadata files.
func ShouldIgnore(path string) bool {
	base := filepath.Base(path)
	switch {
	case strings.HasPrefix(base, "."):
		return true
	case strings.HasSuffix(base, "~"),
		strings.HasSuffix(base, ".swp"),
		strings.HasSuffix(base, ".swx"),
		strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#"):
		return true
	case base == "Thumbs.db":
		return true
	}
	return false
}
