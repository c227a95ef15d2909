package core

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Payload is a decoded JSON:API top-level document ("data", "included", "meta").
type Payload map[string]any

// Record is a decoded JSON:API resource object or resource identifier.
type Record map[string]any

// Primary holds the normalized primary data of a payload.
type Primary struct {
	entities   []*Entity
	collection bool
}

// One returns the single primary entity, or the first one of a collection.
// It returns nil when the payload carried no primary data.
func (p Primary) One() *Entity {
	if len(p.entities) == 0 {
		return nil
	}
	return p.entities[0]
}

// All returns every primary entity in payload order.
func (p Primary) All() []*Entity {
	return p.entities
}

// IsCollection reports whether "data" was a sequence.
func (p Primary) IsCollection() bool {
	return p.collection
}

func (p Primary) Len() int {
	return len(p.entities)
}

func (p Primary) IsEmpty() bool {
	return len(p.entities) == 0
}

// Result is the outcome of SyncWithMeta.
type Result struct {
	Data Primary
	Meta any
}

// asMap accepts the map shapes produced by decoders and by Go literals.
func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case Record:
		return m, true
	case Payload:
		return m, true
	}
	return nil, false
}

// asSlice accepts the sequence shapes produced by decoders and by Go literals.
func asSlice(v any) ([]any, bool) {
	switch s := v.(type) {
	case []any:
		return s, true
	case []map[string]any:
		out := make([]any, len(s))
		for i := range s {
			out[i] = s[i]
		}
		return out, true
	case []Record:
		out := make([]any, len(s))
		for i := range s {
			out[i] = s[i]
		}
		return out, true
	}
	return nil, false
}

// isEmptyData mirrors the "no primary data" short-circuit: null, [] and {}.
func isEmptyData(v any) bool {
	if v == nil {
		return true
	}
	if s, ok := asSlice(v); ok {
		return len(s) == 0
	}
	if m, ok := asMap(v); ok {
		return len(m) == 0
	}
	return false
}

// identity extracts the (type, id) pair of a resource object or identifier.
func identity(rec map[string]any, path string) (string, string, error) {
	rawType, ok := rec["type"]
	if !ok {
		return "", "", malformedRecord(path, "missing type")
	}
	typ, ok := rawType.(string)
	if !ok || typ == "" {
		return "", "", malformedRecord(path+"/type", "type must be a non-empty string, got %T", rawType)
	}
	rawID, ok := rec["id"]
	if !ok {
		return "", "", malformedRecord(path, "missing id")
	}
	id, err := FormatID(rawID)
	if err != nil {
		return "", "", malformedRecord(path+"/id", "%v", err)
	}
	return typ, id, nil
}

// FormatID returns the string form of a resource id.
// Integral floats are formatted without a fraction so that a decoded 5 and "5" agree.
func FormatID(id any) (string, error) {
	switch v := id.(type) {
	case nil:
		return "", fmt.Errorf("id is null")
	case string:
		return v, nil
	case json.Number:
		return v.String(), nil
	case int:
		return strconv.Itoa(v), nil
	case int32:
		return strconv.FormatInt(int64(v), 10), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case uint:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint32:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint64:
		return strconv.FormatUint(v, 10), nil
	case float32:
		return formatFloat(float64(v)), nil
	case float64:
		return formatFloat(v), nil
	case fmt.Stringer:
		return v.String(), nil
	case map[string]any, []any:
		return "", fmt.Errorf("id must be a scalar, got %T", id)
	}
	return fmt.Sprint(id), nil
}

func formatFloat(f float64) string {
	if f == math.Trunc(f) && !math.IsInf(f, 0) {
		return strconv.FormatFloat(f, 'f', 0, 64)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
