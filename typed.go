package datastore

import (
	"github.com/Archelyst/jsonapi-datastore/pkg/typed"
)

// Model pairs an entity with its attributes decoded into T.
type Model[T any] = typed.Model[T]

// TypedRepository gives type-safe access to the entities of one resource type.
type TypedRepository[T any] = typed.Repository[T]

// NewTypedRepository creates a type-safe view over the entities of type typ.
// T is the struct the attributes decode into.
func NewTypedRepository[T any](store *Store, typ string) *TypedRepository[T] {
	return typed.NewRepository[T](store, typ)
}
