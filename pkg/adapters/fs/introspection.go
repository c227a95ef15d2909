package fs

import (
	"time"

	"github.com/aretw0/introspection"
)

// WatcherState exposes internal state for observability.
type WatcherState struct {
	Dir        string     `json:"dir"`
	Pattern    string     `json:"pattern"`
	Active     bool       `json:"active"`
	Changes    uint64     `json:"changes"`
	Errors     uint64     `json:"errors"`
	LastChange *time.Time `json:"last_change,omitempty"`
}

// State implements introspection.Introspectable.
func (w *Watcher) State() any {
	w.mu.RLock()
	defer w.mu.RUnlock()

	return WatcherState{
		Dir:        w.Dir,
		Pattern:    w.Pattern,
		Active:     w.active,
		Changes:    w.changes,
		Errors:     w.errors,
		LastChange: w.lastChange,
	}
}

// ComponentType implements introspection.Component.
func (w *Watcher) ComponentType() string {
	return "watcher"
}

var _ introspection.Introspectable = (*Watcher)(nil)
var _ introspection.Component = (*Watcher)(nil)

func (w *Watcher) setActive(active bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.active = active
}

func (w *Watcher) recordChange() {
	w.mu.Lock()
	defer w.mu.Unlock()
	now := time.Now()
	w.changes++
	w.lastChange = &now
}

func (w *Watcher) recordError() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.errors++
}
