// Package core normalizes JSON:API documents into an in-memory entity graph.
//
// A Store indexes entities by (type, id). Syncing a payload walks "included"
// first, then the primary "data", and resolves every relationship to the
// single *Entity indexed for its target. Targets that have not been synced yet
// become placeholders and are promoted in place once their own record arrives,
// so pointers handed out earlier keep observing current data.
//
// The package performs no I/O. It consumes decoded structures (map[string]any
// and []any, as produced by encoding/json or gopkg.in/yaml.v3) and leaves byte
// decoding to the adapters.
package core
