package datastore

import (
	"log/slog"

	"github.com/Archelyst/jsonapi-datastore/internal/platform"
	"github.com/Archelyst/jsonapi-datastore/pkg/adapters/codec"
	"github.com/Archelyst/jsonapi-datastore/pkg/adapters/fs"
	"github.com/Archelyst/jsonapi-datastore/pkg/core"
)

// Version exposes the version of the library.
const Version = "0.1.2"

// --- Types ---

type (
	Entity     = core.Entity
	Store      = core.Store
	Payload    = core.Payload
	Record     = core.Record
	Result     = core.Result
	Primary    = core.Primary
	Ref        = core.Ref
	Event      = core.Event
	EventKind  = core.EventKind
	Listener   = core.Listener
	StoreState = core.StoreState
	FileResult = fs.FileResult
)

// --- Errors ---

var (
	ErrNotFound            = core.ErrNotFound
	ErrNilEntity           = core.ErrNilEntity
	ErrMalformedPayload    = core.ErrMalformedPayload
	ErrMalformedRecord     = core.ErrMalformedRecord
	ErrInvalidRelationship = core.ErrInvalidRelationship
)

// --- Configuration ---

// Option defines a functional option for configuring a store.
type Option = platform.Option

// WithLogger sets the logger for the store and the file loader.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithListener registers a callback invoked synchronously on every graph mutation.
func WithListener(l Listener) Option {
	return platform.WithListener(l)
}

// WithStrict keeps numbers from payload files as json.Number.
func WithStrict(strict bool) Option {
	return platform.WithStrict(strict)
}

// WithBaseDir sets the directory Load resolves its patterns against.
func WithBaseDir(dir string) Option {
	return platform.WithBaseDir(dir)
}

// WithDecoder registers a payload decoder for a file extension.
func WithDecoder(ext string, d codec.Decoder) Option {
	return platform.WithDecoder(ext, d)
}

// --- Factory ---

// New creates an empty store.
func New(opts ...Option) *Store {
	return platform.New(opts...)
}

// Load creates a store filled from every payload file matching patterns.
func Load(patterns []string, opts ...Option) (*Store, []FileResult, error) {
	return platform.Load(patterns, opts...)
}

// NewLoader creates a file loader sharing the store configuration.
func NewLoader(opts ...Option) *fs.Loader {
	return platform.NewLoader(opts...)
}

// ChannelListener adapts a channel into a Listener. Events are dropped when the channel is full.
func ChannelListener(ch chan<- Event) Listener {
	return core.ChannelListener(ch)
}
