// Package codec decodes JSON:API documents from bytes into core.Payload values.
//
// It sits outside the core: the store itself only ever sees decoded maps and
// slices. Strict mode keeps numbers as json.Number so large integer ids and
// attributes survive without float64 rounding.
package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Archelyst/jsonapi-datastore/pkg/core"
)

// Decoder reads one JSON:API top-level document.
type Decoder interface {
	Decode(r io.Reader) (core.Payload, error)
}

// DefaultDecoders returns the standard set of decoders keyed by file extension.
func DefaultDecoders(strict bool) map[string]Decoder {
	return map[string]Decoder{
		".json": NewJSONDecoder(strict),
		".yaml": NewYAMLDecoder(strict),
		".yml":  NewYAMLDecoder(strict),
	}
}

// ForPath picks the decoder registered for the extension of path.
func ForPath(decoders map[string]Decoder, path string) (Decoder, error) {
	ext := strings.ToLower(filepath.Ext(path))
	d, ok := decoders[ext]
	if !ok {
		return nil, fmt.Errorf("no decoder registered for %q", ext)
	}
	return d, nil
}

// DecodeBytes decodes data with the default decoder for ext.
func DecodeBytes(ext string, data []byte, strict bool) (core.Payload, error) {
	d, err := ForPath(DefaultDecoders(strict), "payload"+ext)
	if err != nil {
		return nil, err
	}
	return d.Decode(bytes.NewReader(data))
}

// --- JSON Decoder ---

// JSONDecoder handles JSON documents.
type JSONDecoder struct {
	// Strict enables strict number parsing (as json.Number) to avoid precision loss.
	Strict bool
}

// NewJSONDecoder creates a new JSON decoder.
func NewJSONDecoder(strict bool) *JSONDecoder {
	return &JSONDecoder{Strict: strict}
}

func (d *JSONDecoder) Decode(r io.Reader) (core.Payload, error) {
	var payload map[string]any
	decoder := json.NewDecoder(r)
	if d.Strict {
		decoder.UseNumber()
	}
	if err := decoder.Decode(&payload); err != nil {
		return nil, fmt.Errorf("invalid json: %w", err)
	}
	if payload == nil {
		return nil, fmt.Errorf("invalid json: top level must be an object")
	}
	if _, err := decoder.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("invalid json: unexpected data after top-level object")
	}
	return core.Payload(payload), nil
}

// --- YAML Decoder ---

// YAMLDecoder handles YAML documents, mostly hand-written fixtures.
type YAMLDecoder struct {
	// Strict converts every number to json.Number, matching JSONDecoder.
	Strict bool
}

// NewYAMLDecoder creates a new YAML decoder.
func NewYAMLDecoder(strict bool) *YAMLDecoder {
	return &YAMLDecoder{Strict: strict}
}

func (d *YAMLDecoder) Decode(r io.Reader) (core.Payload, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("invalid yaml: %w", err)
	}

	payload, ok := normalize(raw, d.Strict).(map[string]any)
	if !ok {
		return nil, fmt.Errorf("invalid yaml: top level must be a mapping, got %T", raw)
	}
	return core.Payload(payload), nil
}

// normalize turns yaml.v3 output into the shapes encoding/json produces:
// string-keyed maps, and json.Number for numbers in strict mode.
func normalize(val any, strict bool) any {
	switch v := val.(type) {
	case map[string]any:
		m := make(map[string]any, len(v))
		for k, item := range v {
			m[k] = normalize(item, strict)
		}
		return m
	case map[any]any:
		m := make(map[string]any, len(v))
		for k, item := range v {
			m[fmt.Sprint(k)] = normalize(item, strict)
		}
		return m
	case []any:
		l := make([]any, len(v))
		for i, item := range v {
			l[i] = normalize(item, strict)
		}
		return l
	case int:
		if strict {
			return json.Number(strconv.Itoa(v))
		}
		return v
	case int64:
		if strict {
			return json.Number(strconv.FormatInt(v, 10))
		}
		return v
	case uint64:
		if strict {
			return json.Number(strconv.FormatUint(v, 10))
		}
		return v
	case float64:
		if strict {
			return json.Number(strconv.FormatFloat(v, 'f', -1, 64))
		}
		return v
	default:
		return v
	}
}
