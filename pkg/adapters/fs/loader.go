// Package fs loads JSON:API payload files from a directory tree and watches
// them for changes.
package fs

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/Archelyst/jsonapi-datastore/pkg/adapters/codec"
	"github.com/Archelyst/jsonapi-datastore/pkg/core"
)

// Loader resolves glob patterns under Dir and decodes the matching files.
type Loader struct {
	Dir      string
	Decoders map[string]codec.Decoder
	Logger   *slog.Logger
}

// FileResult is the outcome of syncing one payload file.
type FileResult struct {
	Path    string
	Primary core.Primary
	Meta    any
}

// NewLoader creates a Loader. Nil decoders fall back to codec.DefaultDecoders(false).
func NewLoader(dir string, decoders map[string]codec.Decoder, logger *slog.Logger) *Loader {
	if decoders == nil {
		decoders = codec.DefaultDecoders(false)
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Loader{Dir: dir, Decoders: decoders, Logger: logger}
}

// Match expands doublestar patterns (e.g. "fixtures/**/*.json") relative to Dir.
// Only files with a registered decoder are returned, sorted and de-duplicated.
func (l *Loader) Match(patterns ...string) ([]string, error) {
	fsys := os.DirFS(l.Dir)

	var rel []string
	for _, pattern := range patterns {
		pattern = filepath.ToSlash(pattern)
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid pattern %q", pattern)
		}
		matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("glob %q: %w", pattern, err)
		}
		for _, m := range matches {
			if _, err := codec.ForPath(l.Decoders, m); err != nil {
				l.Logger.Debug("skipping file without decoder", "path", m)
				continue
			}
			rel = append(rel, m)
		}
	}

	slices.Sort(rel)
	rel = slices.Compact(rel)

	paths := make([]string, len(rel))
	for i, m := range rel {
		paths[i] = filepath.Join(l.Dir, filepath.FromSlash(m))
	}
	return paths, nil
}

// Load decodes the payload stored at path.
func (l *Loader) Load(path string) (core.Payload, error) {
	d, err := codec.ForPath(l.Decoders, path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	defer f.Close()

	payload, err := d.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return payload, nil
}

// SyncFile loads one file and syncs it into store.
func (l *Loader) SyncFile(store *core.Store, path string) (FileResult, error) {
	payload, err := l.Load(path)
	if err != nil {
		return FileResult{}, err
	}
	res, err := store.SyncWithMeta(payload)
	if err != nil {
		return FileResult{}, fmt.Errorf("sync %s: %w", path, err)
	}
	l.Logger.Debug("file synced", "path", path, "records", res.Data.Len())
	return FileResult{Path: path, Primary: res.Data, Meta: res.Meta}, nil
}

// SyncAll syncs every file matched by patterns in sorted order.
// It stops at the first failure; files synced before it stay applied.
func (l *Loader) SyncAll(store *core.Store, patterns ...string) ([]FileResult, error) {
	paths, err := l.Match(patterns...)
	if err != nil {
		return nil, err
	}

	results := make([]FileResult, 0, len(paths))
	for _, path := range paths {
		res, err := l.SyncFile(store, path)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}
