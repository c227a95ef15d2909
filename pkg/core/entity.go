package core

import (
	"fmt"
	"slices"
)

// Entity is one resource instance tracked by a Store.
//
// Attribute and relationship values live in a single field map keyed by name.
// Identity (Type, ID) is kept outside that map, so attributes named "type" or
// "id" cannot clobber it. An attribute and a relationship sharing a name do
// overwrite each other's value; avoiding that is left to the caller's schema.
//
// Relationship values are nil, *Entity or []*Entity. Sync only links
// entities indexed by the same store, but the links are not maintained
// afterwards: a target removed by Store.Destroy or Store.Reset stays reachable
// from its referrers, and SetRelationship accepts any non-nil entity.
type Entity struct {
	Type string
	ID   string

	attributes    []string
	relationships []string
	fields        map[string]any
	placeholder   bool
}

func newEntity(typ, id string) *Entity {
	return &Entity{
		Type:        typ,
		ID:          id,
		fields:      make(map[string]any),
		placeholder: true,
	}
}

// String returns the debug form "{type: T, id: I}".
func (e *Entity) String() string {
	return fmt.Sprintf("{type: %s, id: %s}", e.Type, e.ID)
}

// Ref returns the (type, id) handle of the entity.
func (e *Entity) Ref() Ref {
	return Ref{Type: e.Type, ID: e.ID}
}

// IsPlaceholder reports whether the entity was only referenced so far.
func (e *Entity) IsPlaceholder() bool {
	return e.placeholder
}

// Attributes returns the attribute names in assignment order.
func (e *Entity) Attributes() []string {
	return slices.Clone(e.attributes)
}

// Relationships returns the relationship names in assignment order.
func (e *Entity) Relationships() []string {
	return slices.Clone(e.relationships)
}

func (e *Entity) HasAttribute(name string) bool {
	return slices.Contains(e.attributes, name)
}

func (e *Entity) HasRelationship(name string) bool {
	return slices.Contains(e.relationships, name)
}

// Attribute returns the value of an attribute and whether it was assigned.
func (e *Entity) Attribute(name string) (any, bool) {
	if !e.HasAttribute(name) {
		return nil, false
	}
	return e.fields[name], true
}

// Get returns the raw field value for name, attribute or relationship.
func (e *Entity) Get(name string) any {
	return e.fields[name]
}

// One returns a to-one relationship target, or nil when unset, null or to-many.
func (e *Entity) One(name string) *Entity {
	related, _ := e.fields[name].(*Entity)
	return related
}

// Many returns a to-many relationship, or nil when unset, null or to-one.
func (e *Entity) Many(name string) []*Entity {
	related, _ := e.fields[name].([]*Entity)
	return related
}

// SetAttribute assigns an attribute value and marks the entity as real.
func (e *Entity) SetAttribute(name string, value any) {
	e.placeholder = false
	e.setAttribute(name, value)
}

// SetRelationship assigns a relationship. Value must be nil, *Entity or []*Entity.
func (e *Entity) SetRelationship(name string, value any) error {
	switch v := value.(type) {
	case nil:
		e.setRelationship(name, nil)
	case *Entity:
		if v == nil {
			e.setRelationship(name, nil)
			return nil
		}
		e.setRelationship(name, v)
	case []*Entity:
		if slices.Contains(v, nil) {
			return fmt.Errorf("%w: %s contains a nil entity", ErrInvalidRelationship, name)
		}
		e.setRelationship(name, slices.Clone(v))
	default:
		return fmt.Errorf("%w: %s has type %T", ErrInvalidRelationship, name, value)
	}
	return nil
}

func (e *Entity) setAttribute(name string, value any) {
	if !slices.Contains(e.attributes, name) {
		e.attributes = append(e.attributes, name)
	}
	e.fields[name] = value
}

func (e *Entity) setRelationship(name string, value any) {
	if !slices.Contains(e.relationships, name) {
		e.relationships = append(e.relationships, name)
	}
	e.fields[name] = value
}
