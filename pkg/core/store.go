package core

import (
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"
)

// Store owns a two-level index (type -> id -> Entity) and normalizes JSON:API
// payloads into it.
//
// A Store is not safe for concurrent use. Callers that share one across
// goroutines must provide their own mutual exclusion.
type Store struct {
	graph     map[string]*bucket
	types     []string
	logger    *slog.Logger
	listeners []Listener

	syncs    uint64
	records  uint64
	lastSync *time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger for the store. Nil keeps the discarding default.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithListener registers a callback for graph mutations.
func WithListener(l Listener) Option {
	return func(s *Store) {
		if l != nil {
			s.listeners = append(s.listeners, l)
		}
	}
}

// NewStore creates an empty Store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		graph:  make(map[string]*bucket),
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// bucket keeps the entities of one type in insertion order.
type bucket struct {
	entities []*Entity
	index    map[string]int
}

func newBucket() *bucket {
	return &bucket{index: make(map[string]int)}
}

func (b *bucket) get(id string) (*Entity, bool) {
	i, ok := b.index[id]
	if !ok {
		return nil, false
	}
	return b.entities[i], true
}

func (b *bucket) add(e *Entity) {
	b.index[e.ID] = len(b.entities)
	b.entities = append(b.entities, e)
}

func (b *bucket) remove(id string) bool {
	i, ok := b.index[id]
	if !ok {
		return false
	}
	b.entities = slices.Delete(b.entities, i, i+1)
	delete(b.index, id)
	for j := i; j < len(b.entities); j++ {
		b.index[b.entities[j].ID] = j
	}
	return true
}

// bucketFor returns the bucket of typ, creating it on first use.
func (s *Store) bucketFor(typ string) *bucket {
	b, ok := s.graph[typ]
	if !ok {
		b = newBucket()
		s.graph[typ] = b
		s.types = append(s.types, typ)
	}
	return b
}

func (s *Store) emit(kind EventKind, e *Entity) {
	if len(s.listeners) == 0 {
		return
	}
	ev := Event{Kind: kind}
	if e != nil {
		ev.Type = e.Type
		ev.ID = e.ID
	}
	for _, l := range s.listeners {
		l(ev)
	}
}

// Find retrieves an entity by type and id in constant time.
func (s *Store) Find(typ, id string) (*Entity, bool) {
	b, ok := s.graph[typ]
	if !ok {
		return nil, false
	}
	return b.get(id)
}

// Resolve looks up the entity behind a Ref.
func (s *Store) Resolve(ref Ref) (*Entity, bool) {
	return s.Find(ref.Type, ref.ID)
}

// FindAll returns every entity of typ in insertion order.
// The slice is a copy; an unknown type yields an empty slice.
func (s *Store) FindAll(typ string) []*Entity {
	b, ok := s.graph[typ]
	if !ok {
		return []*Entity{}
	}
	return slices.Clone(b.entities)
}

// Types returns the types that currently hold at least one entity, in first-seen order.
func (s *Store) Types() []string {
	types := make([]string, 0, len(s.types))
	for _, typ := range s.types {
		if len(s.graph[typ].entities) > 0 {
			types = append(types, typ)
		}
	}
	return types
}

// Len returns the number of indexed entities.
func (s *Store) Len() int {
	n := 0
	for _, b := range s.graph {
		n += len(b.entities)
	}
	return n
}

// Destroy removes the entity indexed under e's (type, id) from the store.
// Relationships of other entities that point at it are left untouched.
//
// The lookup is by (type, id), not by pointer: destroying an entity held from
// before a Reset removes whichever entity now carries the same (type, id).
func (s *Store) Destroy(e *Entity) error {
	if e == nil {
		return ErrNilEntity
	}
	b, ok := s.graph[e.Type]
	if !ok || !b.remove(e.ID) {
		return &NotFoundError{Type: e.Type, ID: e.ID}
	}
	s.logger.Debug("entity destroyed", "type", e.Type, "id", e.ID)
	s.emit(EventDelete, e)
	return nil
}

// Reset empties the store. Entities handed out earlier stay readable but are
// no longer indexed.
func (s *Store) Reset() {
	n := s.Len()
	s.graph = make(map[string]*bucket)
	s.types = nil
	s.syncs, s.records, s.lastSync = 0, 0, nil
	s.logger.Debug("store reset", "dropped", n)
	s.emit(EventReset, nil)
}

// InitOrGet returns the entity for (typ, id), creating a placeholder when absent.
// The id is coerced to its string form. Every entity of the store is created here.
func (s *Store) InitOrGet(typ string, id any) (*Entity, error) {
	if typ == "" {
		return nil, fmt.Errorf("%w: type must not be empty", ErrMalformedRecord)
	}
	sid, err := FormatID(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}
	e, _ := s.initOrGet(typ, sid)
	return e, nil
}

func (s *Store) initOrGet(typ, id string) (*Entity, bool) {
	b := s.bucketFor(typ)
	if e, ok := b.get(id); ok {
		return e, false
	}
	e := newEntity(typ, id)
	b.add(e)
	s.emit(EventCreate, e)
	return e, true
}

// Create indexes a new, non-placeholder entity of typ with a client-generated UUID.
func (s *Store) Create(typ string) (*Entity, error) {
	e, err := s.InitOrGet(typ, uuid.NewString())
	if err != nil {
		return nil, err
	}
	e.placeholder = false
	return e, nil
}
