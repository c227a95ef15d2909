package typed

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"

	"github.com/Archelyst/jsonapi-datastore/pkg/core"
)

// Model wraps a core.Entity with its attributes decoded into T.
// It acts as a typed view of an entity; Entity stays the live, shared instance.
type Model[T any] struct {
	Type   string
	ID     string
	Data   T
	Entity *core.Entity
}

// Decode converts the attributes of e into T through their JSON form,
// so struct tags apply. Relationships are not part of Data.
func Decode[T any](e *core.Entity) (*Model[T], error) {
	if e == nil {
		return nil, core.ErrNilEntity
	}

	attrs := make(map[string]any)
	for _, name := range e.Attributes() {
		attrs[name], _ = e.Attribute(name)
	}

	dataBytes, err := json.Marshal(attrs)
	if err != nil {
		return nil, fmt.Errorf("attributes marshal failed for %s: %w", e, err)
	}

	var data T
	if err := json.Unmarshal(dataBytes, &data); err != nil {
		return nil, fmt.Errorf("unmarshal to target type failed for %s: %w", e, err)
	}

	return &Model[T]{
		Type:   e.Type,
		ID:     e.ID,
		Data:   data,
		Entity: e,
	}, nil
}

// Repository gives type-safe access to the entities of one resource type.
type Repository[T any] struct {
	store *core.Store
	typ   string
}

// NewRepository creates a new type-safe wrapper around an existing store.
func NewRepository[T any](store *core.Store, typ string) *Repository[T] {
	return &Repository[T]{store: store, typ: typ}
}

// Type returns the resource type the repository is bound to.
func (r *Repository[T]) Type() string {
	return r.typ
}

// Get decodes the entity with the given id.
func (r *Repository[T]) Get(id string) (*Model[T], error) {
	e, ok := r.store.Find(r.typ, id)
	if !ok {
		return nil, &core.NotFoundError{Type: r.typ, ID: id}
	}
	return Decode[T](e)
}

// List returns all entities of the type converted to the typed model.
func (r *Repository[T]) List() ([]*Model[T], error) {
	entities := r.store.FindAll(r.typ)

	result := make([]*Model[T], 0, len(entities))
	for _, e := range entities {
		model, err := Decode[T](e)
		if err != nil {
			return nil, fmt.Errorf("failed to process entity %s: %w", e.ID, err)
		}
		result = append(result, model)
	}
	return result, nil
}

// Save writes Data back onto the entity as attributes.
// A model without an entity is indexed first: under its ID when set,
// otherwise under a client-generated one.
func (r *Repository[T]) Save(m *Model[T]) error {
	// 1. Marshal Data to JSON
	dataBytes, err := json.Marshal(m.Data)
	if err != nil {
		return fmt.Errorf("failed to marshal typed data: %w", err)
	}

	// 2. Unmarshal to map
	var attrs map[string]any
	if err := json.Unmarshal(dataBytes, &attrs); err != nil {
		return fmt.Errorf("failed to convert typed data to map: %w", err)
	}

	// 3. Resolve the entity
	if m.Entity == nil {
		var e *core.Entity
		if m.ID == "" {
			e, err = r.store.Create(r.typ)
		} else {
			e, err = r.store.InitOrGet(r.typ, m.ID)
		}
		if err != nil {
			return err
		}
		m.Entity = e
	}
	m.Type = m.Entity.Type
	m.ID = m.Entity.ID

	// 4. Assign
	for _, name := range slices.Sorted(maps.Keys(attrs)) {
		m.Entity.SetAttribute(name, attrs[name])
	}
	return nil
}
