package fs

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/Archelyst/jsonapi-datastore/pkg/core"
)

// Exporter writes every entity of a store as its own JSON:API document,
// one file per entity at <Dir>/<type>/<id>.json. The files load back with a Loader.
type Exporter struct {
	Dir    string
	Logger *slog.Logger
	// IncludePlaceholders also writes entities no record was synced for.
	IncludePlaceholders bool
}

// NewExporter creates an Exporter writing under dir.
func NewExporter(dir string, logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Exporter{Dir: dir, Logger: logger}
}

// ErrUnsafePath is returned when an entity cannot be mapped to a file under the
// export directory.
var ErrUnsafePath = errors.New("export path escapes directory")

// Path returns the file an entity is exported to. Type and id are
// path-escaped, with a leading dot written as %2E, so every entity maps to a
// single file below Dir.
func (x *Exporter) Path(e *core.Entity) (string, error) {
	typ, err := pathSegment(e.Type)
	if err != nil {
		return "", err
	}
	id, err := pathSegment(e.ID)
	if err != nil {
		return "", err
	}

	path := filepath.Join(x.Dir, typ, id+".json")
	rel, err := filepath.Rel(x.Dir, path)
	if err != nil || !filepath.IsLocal(rel) {
		return "", fmt.Errorf("%w: %s", ErrUnsafePath, e.Ref())
	}
	return path, nil
}

func pathSegment(s string) (string, error) {
	if s == "" {
		return "", fmt.Errorf("%w: empty path segment", ErrUnsafePath)
	}
	escaped := url.PathEscape(s)
	if strings.HasPrefix(escaped, ".") {
		escaped = "%2E" + escaped[1:]
	}
	return escaped, nil
}

// Export writes the store in type then insertion order and returns the written paths.
func (x *Exporter) Export(store *core.Store) ([]string, error) {
	var written []string
	for _, typ := range store.Types() {
		for _, e := range store.FindAll(typ) {
			if e.IsPlaceholder() && !x.IncludePlaceholders {
				continue
			}
			path, err := x.write(e)
			if err != nil {
				return written, err
			}
			written = append(written, path)
		}
	}
	x.Logger.Debug("store exported", "dir", x.Dir, "files", len(written))
	return written, nil
}

func (x *Exporter) write(e *core.Entity) (string, error) {
	data, err := json.MarshalIndent(e.Serialize(), "", "  ")
	if err != nil {
		return "", fmt.Errorf("export %s: %w", e.Ref(), err)
	}
	path, err := x.Path(e)
	if err != nil {
		return "", fmt.Errorf("export %s: %w", e.Ref(), err)
	}
	if err := writeFileAtomic(path, append(data, '\n'), 0o644); err != nil {
		return "", fmt.Errorf("export %s: %w", e.Ref(), err)
	}
	return path, nil
}
