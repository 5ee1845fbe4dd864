package folio

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long the watcher waits for a burst of events to
// settle before firing.
const DefaultDebounce = 300 * time.Millisecond

// ContentWatcher calls onChange after files under a directory change.
// Bursts of events within the debounce interval fire once.
type ContentWatcher struct {
	watcher  *fsnotify.Watcher
	logger   *slog.Logger
	onChange func()
	Debounce time.Duration

	mu    sync.Mutex
	timer *time.Timer
}

// NewContentWatcher watches dir and its subdirectories.
func NewContentWatcher(dir string, logger *slog.Logger, onChange func()) (*ContentWatcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("fsnotify: %w", err)
	}
	cw := &ContentWatcher{watcher: w, logger: logger, onChange: onChange, Debounce: DefaultDebounce}
	if err := cw.addDirsRecursive(dir); err != nil {
		_ = w.Close()
		return nil, err
	}
	return cw, nil
}

// Run handles events until ctx is cancelled, then closes the watcher.
func (cw *ContentWatcher) Run(ctx context.Context) {
	defer cw.stop()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-cw.watcher.Events:
			if !ok {
				return
			}
			cw.handleEvent(ev)
		case err, ok := <-cw.watcher.Errors:
			if !ok {
				return
			}
			cw.logger.Warn("watcher error", "error", err)
		}
	}
}

func (cw *ContentWatcher) stop() {
	cw.mu.Lock()
	if cw.timer != nil {
		cw.timer.Stop()
	}
	cw.mu.Unlock()
	_ = cw.watcher.Close()
}

func (cw *ContentWatcher) handleEvent(ev fsnotify.Event) {
	if shouldIgnoreEvent(ev.Name) {
		return
	}
	if ev.Op&fsnotify.Create == fsnotify.Create {
		if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
			_ = cw.addDirsRecursive(ev.Name)
		}
	}
	cw.logger.Debug("content change detected", "path", ev.Name, "op", ev.Op.String())
	cw.trigger()
}

func (cw *ContentWatcher) trigger() {
	cw.mu.Lock()
	defer cw.mu.Unlock()
	if cw.timer != nil {
		cw.timer.Stop()
	}
	cw.timer = time.AfterFunc(cw.Debounce, func() {
		cw.logger.Info("content changed; snapshot invalidated")
		cw.onChange()
	})
}

func (cw *ContentWatcher) addDirsRecursive(root string) error {
	if _, err := os.Stat(root); err != nil {
		return fmt.Errorf("watch %s: %w", root, err)
	}
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if err := cw.watcher.Add(path); err != nil {
				cw.logger.Warn("watch add failed", "dir", path, "error", err)
			}
		}
		return nil
	})
}

// shouldIgnoreEvent skips hidden files and editor swap or backup files.
func shouldIgnoreEvent(path string) bool {
	base := filepath.Base(path)
	return strings.HasPrefix(base, ".") ||
		strings.HasSuffix(base, "~") ||
		strings.HasSuffix(base, ".swp") ||
		strings.HasSuffix(base, ".tmp")
}
