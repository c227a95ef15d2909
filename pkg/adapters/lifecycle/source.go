// Package lifecycle exposes store change events as a lifecycle.Source.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync/atomic"

	"github.com/aretw0/lifecycle"

	"github.com/Archelyst/jsonapi-datastore/pkg/core"
)

// ErrAlreadyStarted is returned by Start on a source that is already running.
var ErrAlreadyStarted = errors.New("event source already started")

// Option configures a store event source.
type Option func(*storeSource)

// WithKinds forwards only events of the given kinds. By default every kind is forwarded.
func WithKinds(kinds ...core.EventKind) Option {
	return func(s *storeSource) {
		s.kinds = kinds
	}
}

// WithErrorHandler receives failures of the forwarding goroutine.
func WithErrorHandler(fn func(error)) Option {
	return func(s *storeSource) {
		s.onError = fn
	}
}

type storeSource struct {
	events  <-chan core.Event
	out     chan lifecycle.Event
	kinds   []core.EventKind
	onError func(error)
	started atomic.Bool
}

// NewSource creates a lifecycle.Source that emits store events.
// Feed it with core.ChannelListener on the same channel; the output closes when
// that channel closes or the Start context ends.
func NewSource(events <-chan core.Event, opts ...Option) lifecycle.Source {
	s := &storeSource{
		events: events,
		out:    make(chan lifecycle.Event),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *storeSource) Events() <-chan lifecycle.Event {
	return s.out
}

func (s *storeSource) wants(e core.Event) bool {
	return len(s.kinds) == 0 || slices.Contains(s.kinds, e.Kind)
}

// Start launches the forwarding goroutine. It may be called once.
func (s *storeSource) Start(ctx context.Context) error {
	if !s.started.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}

	lifecycle.Go(ctx, s.forward, lifecycle.WithErrorHandler(func(err error) {
		if s.onError != nil {
			s.onError(fmt.Errorf("store event source: %w", err))
		}
	}))
	return nil
}

func (s *storeSource) forward(ctx context.Context) error {
	defer close(s.out)
	for {
		select {
		case <-ctx.Done():
			return nil
		case e, ok := <-s.events:
			if !ok {
				return nil
			}
			if !s.wants(e) {
				continue
			}
			select {
			case s.out <- e:
			case <-ctx.Done():
				return nil
			}
		}
	}
}
