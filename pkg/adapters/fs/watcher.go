package fs

import (
	"context"
	"fmt"
	iofs "io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/aretw0/lifecycle"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
)

// Op is the kind of change observed on a payload file.
type Op string

const (
	OpWrite  Op = "WRITE"
	OpRemove Op = "REMOVE"
)

// Change reports a payload file that was written or removed.
type Change struct {
	Path string
	Op   Op
}

// Watcher reports changes to files under Dir whose slash-separated relative
// path matches Pattern. It never touches a store: consumers receive Changes and
// sync on their own goroutine.
type Watcher struct {
	Dir          string
	Pattern      string
	Logger       *slog.Logger
	ErrorHandler func(error)

	mu         sync.RWMutex
	active     bool
	changes    uint64
	errors     uint64
	lastChange *time.Time
}

// NewWatcher creates a Watcher for pattern under dir.
func NewWatcher(dir, pattern string, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Watcher{Dir: dir, Pattern: filepath.ToSlash(pattern), Logger: logger}
}

// Watch starts watching until ctx is done. The returned channel is closed when
// the watch loop exits.
func (w *Watcher) Watch(ctx context.Context) (<-chan Change, error) {
	if !doublestar.ValidatePattern(w.Pattern) {
		return nil, fmt.Errorf("invalid pattern %q", w.Pattern)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := addRecursive(watcher, w.Dir); err != nil {
		_ = watcher.Close()
		return nil, err
	}

	out := make(chan Change, 16)
	w.setActive(true)
	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer close(out)
		defer watcher.Close()
		defer w.setActive(false)
		return w.loop(ctx, watcher, out)
	}, lifecycle.WithErrorHandler(func(err error) {
		w.handleError(fmt.Errorf("watcher panic: %w", err))
	}))

	return out, nil
}

func (w *Watcher) loop(ctx context.Context, watcher *fsnotify.Watcher, out chan<- Change) error {
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := addRecursive(watcher, event.Name); err != nil {
						w.handleError(err)
					}
					continue
				}
			}
			change, ok := w.translate(event)
			if !ok {
				continue
			}
			w.Logger.Debug("payload file changed", "path", change.Path, "op", change.Op)
			w.recordChange()
			select {
			case out <- change:
			case <-ctx.Done():
				return nil
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.handleError(err)
		}
	}
}

// translate filters an fsnotify event by pattern and maps it to a Change.
func (w *Watcher) translate(event fsnotify.Event) (Change, bool) {
	var op Op
	switch {
	case event.Has(fsnotify.Write), event.Has(fsnotify.Create):
		op = OpWrite
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		op = OpRemove
	default:
		return Change{}, false
	}

	rel, err := filepath.Rel(w.Dir, event.Name)
	if err != nil {
		return Change{}, false
	}
	matched, err := doublestar.Match(w.Pattern, filepath.ToSlash(rel))
	if err != nil || !matched {
		return Change{}, false
	}
	return Change{Path: event.Name, Op: op}, true
}

func (w *Watcher) handleError(err error) {
	w.recordError()
	w.Logger.Error("watcher error", "error", err)
	if w.ErrorHandler != nil {
		w.ErrorHandler(err)
	}
}

func addRecursive(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d iofs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if err := watcher.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}
