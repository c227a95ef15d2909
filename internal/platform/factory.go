package platform

import (
	"github.com/Archelyst/jsonapi-datastore/pkg/adapters/fs"
	"github.com/Archelyst/jsonapi-datastore/pkg/core"
)

// New creates an empty store.
//
//	store := datastore.New(datastore.WithLogger(logger))
func New(opts ...Option) *core.Store {
	return core.NewStore(resolve(opts).storeOptions()...)
}

// NewLoader creates a payload file loader rooted at the configured base directory.
func NewLoader(opts ...Option) *fs.Loader {
	o := resolve(opts)
	return fs.NewLoader(o.baseDir, o.resolvedDecoders(), o.logger)
}

// Load creates a store and syncs every file matched by patterns into it, in
// sorted path order. On error the partially filled store is still returned.
func Load(patterns []string, opts ...Option) (*core.Store, []fs.FileResult, error) {
	o := resolve(opts)
	store := core.NewStore(o.storeOptions()...)
	loader := fs.NewLoader(o.baseDir, o.resolvedDecoders(), o.logger)

	results, err := loader.SyncAll(store, patterns...)
	if err != nil {
		return store, results, err
	}
	if o.logger != nil {
		o.logger.Debug("payload files loaded", "files", len(results), "entities", store.Len())
	}
	return store, results, nil
}
