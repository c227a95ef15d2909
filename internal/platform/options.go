package platform

import (
	"log/slog"
	"strings"

	"github.com/Archelyst/jsonapi-datastore/pkg/adapters/codec"
	"github.com/Archelyst/jsonapi-datastore/pkg/core"
)

// options holds the internal configuration for a datastore.
type options struct {
	logger    *slog.Logger
	listeners []core.Listener
	strict    bool
	baseDir   string
	decoders  map[string]codec.Decoder
}

// Option defines a functional option for configuring a datastore.
type Option func(*options)

// defaultOptions returns the default configuration.
func defaultOptions() *options {
	return &options{
		baseDir:  ".",
		decoders: make(map[string]codec.Decoder),
	}
}

func resolve(opts []Option) *options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithLogger sets the logger for the store and its adapters.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithListener registers a callback for graph mutations.
func WithListener(l core.Listener) Option {
	return func(o *options) {
		o.listeners = append(o.listeners, l)
	}
}

// WithStrict enables strict number decoding for the default decoders.
// Numbers are kept as json.Number (string based) to preserve precision of large ids.
func WithStrict(strict bool) Option {
	return func(o *options) {
		o.strict = strict
	}
}

// WithBaseDir sets the directory glob patterns are resolved against.
// Defaults to the working directory.
func WithBaseDir(dir string) Option {
	return func(o *options) {
		o.baseDir = dir
	}
}

// WithDecoder registers a custom decoder for a file extension (e.g. ".jsonapi").
// It overrides the default decoder for that extension.
func WithDecoder(ext string, d codec.Decoder) Option {
	return func(o *options) {
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		o.decoders[strings.ToLower(ext)] = d
	}
}

func (o *options) storeOptions() []core.Option {
	opts := []core.Option{core.WithLogger(o.logger)}
	for _, l := range o.listeners {
		opts = append(opts, core.WithListener(l))
	}
	return opts
}

func (o *options) resolvedDecoders() map[string]codec.Decoder {
	decoders := codec.DefaultDecoders(o.strict)
	for ext, d := range o.decoders {
		decoders[ext] = d
	}
	return decoders
}
