package core

import (
	"time"

	"github.com/aretw0/introspection"
)

// StoreState exposes internal state for observability.
type StoreState struct {
	Types        int        `json:"types"`
	Entities     int        `json:"entities"`
	Placeholders int        `json:"placeholders"`
	Syncs        uint64     `json:"syncs"`
	Records      uint64     `json:"records"`
	LastSync     *time.Time `json:"last_sync,omitempty"`
}

// State implements introspection.Introspectable.
func (s *Store) State() any {
	state := StoreState{
		Types:    len(s.Types()),
		Syncs:    s.syncs,
		Records:  s.records,
		LastSync: s.lastSync,
	}
	for _, b := range s.graph {
		state.Entities += len(b.entities)
		for _, e := range b.entities {
			if e.placeholder {
				state.Placeholders++
			}
		}
	}
	return state
}

// ComponentType implements introspection.Component.
func (s *Store) ComponentType() string {
	return "store"
}

var _ introspection.Introspectable = (*Store)(nil)
var _ introspection.Component = (*Store)(nil)
