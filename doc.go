// Package datastore is the Composition Root for the JSON:API datastore.
//
// It connects the in-memory identity map (pkg/core) with the file adapters
// (pkg/adapters) so that JSON:API documents can be synced from code, from
// fixture files on disk, or from a directory being watched.
//
// Philosophy:
//
// A JSON:API document is a tree on the wire and a graph in memory. The store
// keeps exactly one Entity per (type, id) pair, so every relationship that
// points at the same resource points at the same Go value. Resources that are
// referenced before their own record arrives exist as placeholders and are
// completed in place once the record is synced.
//
// Features:
//
//   - **Identity Map**: One entity per (type, id), shared by every relationship.
//   - **Placeholders**: Forward references resolve now and fill in later.
//   - **Typed Retrieval**: Generic wrapper (`NewTypedRepository[T]`) for type-safe attribute access.
//   - **Fixture Loading**: JSON and YAML payload files matched by glob patterns.
//   - **Introspection**: The store reports its own state for diagnostics.
//
// Usage:
//
//	store := datastore.New(datastore.WithLogger(logger))
//
//	res, err := store.SyncWithMeta(payload)
//	article := res.Data.One()
//	author := article.One("author")
package datastore
