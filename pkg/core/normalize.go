package core

import (
	"fmt"
	"maps"
	"slices"
	"time"
)

// relationshipData is a validated "relationships.<name>.data" member.
type relationshipData struct {
	name string
	refs []Ref
	many bool
	null bool
}

// SyncWithMeta normalizes a JSON:API document into the store.
//
// Records in "included" are synced first, in payload order, then the primary
// "data". A relationship inside "included" that targets a later included record
// first resolves to a placeholder, which that record then promotes in place.
//
// A null, empty sequence or empty object "data" returns a zero Result without
// reading "meta". Syncing is not transactional: when a record fails, the records
// before it stay applied.
func (s *Store) SyncWithMeta(p Payload) (Result, error) {
	if p == nil {
		return Result{}, malformedPayload("", "payload is nil")
	}
	primary, ok := p["data"]
	if !ok {
		return Result{}, malformedPayload("", "missing data member")
	}
	if isEmptyData(primary) {
		s.logger.Debug("payload has no primary data")
		return Result{}, nil
	}

	included := 0
	if raw, ok := p["included"]; ok && raw != nil {
		records, ok := asSlice(raw)
		if !ok {
			return Result{}, malformedPayload("/included", "included must be a sequence, got %T", raw)
		}
		for i, rec := range records {
			if _, err := s.syncRecord(rec, fmt.Sprintf("/included/%d", i)); err != nil {
				return Result{}, err
			}
		}
		included = len(records)
	}

	var data Primary
	if records, ok := asSlice(primary); ok {
		data.collection = true
		data.entities = make([]*Entity, 0, len(records))
		for i, rec := range records {
			e, err := s.syncRecord(rec, fmt.Sprintf("/data/%d", i))
			if err != nil {
				return Result{}, err
			}
			data.entities = append(data.entities, e)
		}
	} else {
		e, err := s.syncRecord(primary, "/data")
		if err != nil {
			return Result{}, err
		}
		data.entities = []*Entity{e}
	}

	now := time.Now()
	s.syncs++
	s.lastSync = &now
	s.logger.Debug("payload synced",
		"records", data.Len(),
		"included", included,
		"collection", data.collection,
	)

	return Result{Data: data, Meta: p["meta"]}, nil
}

// Sync normalizes a JSON:API document and returns its primary data.
func (s *Store) Sync(p Payload) (Primary, error) {
	res, err := s.SyncWithMeta(p)
	if err != nil {
		return Primary{}, err
	}
	return res.Data, nil
}

// SyncRecord normalizes one resource object and returns its entity.
// The returned pointer is the one already held by any earlier referrer.
func (s *Store) SyncRecord(rec map[string]any) (*Entity, error) {
	return s.syncRecord(rec, "")
}

// FindOrInit resolves a resource identifier, creating a placeholder when the
// (type, id) pair is unknown. Existing entities are returned unchanged.
func (s *Store) FindOrInit(identifier map[string]any) (*Entity, error) {
	typ, id, err := identity(identifier, "")
	if err != nil {
		return nil, err
	}
	return s.findOrInit(Ref{Type: typ, ID: id}), nil
}

func (s *Store) findOrInit(ref Ref) *Entity {
	e, created := s.initOrGet(ref.Type, ref.ID)
	if created {
		s.logger.Debug("placeholder created", "type", ref.Type, "id", ref.ID)
	}
	return e
}

func (s *Store) syncRecord(raw any, path string) (*Entity, error) {
	rec, ok := asMap(raw)
	if !ok {
		return nil, malformedRecord(path, "resource object must be an object, got %T", raw)
	}
	typ, id, err := identity(rec, path)
	if err != nil {
		return nil, err
	}

	var attrs map[string]any
	if v, ok := rec["attributes"]; ok && v != nil {
		if attrs, ok = asMap(v); !ok {
			return nil, malformedRecord(path+"/attributes", "attributes must be an object, got %T", v)
		}
	}
	rels, err := parseRelationships(rec, path)
	if err != nil {
		return nil, err
	}

	e, created := s.initOrGet(typ, id)
	wasPlaceholder := e.placeholder
	e.placeholder = false

	// Decoded maps carry no key order; names are recorded sorted.
	for _, name := range slices.Sorted(maps.Keys(attrs)) {
		e.setAttribute(name, attrs[name])
	}
	for _, rel := range rels {
		switch {
		case rel.null:
			e.setRelationship(rel.name, nil)
		case rel.many:
			targets := make([]*Entity, len(rel.refs))
			for i, ref := range rel.refs {
				targets[i] = s.findOrInit(ref)
			}
			e.setRelationship(rel.name, targets)
		default:
			e.setRelationship(rel.name, s.findOrInit(rel.refs[0]))
		}
	}

	s.records++
	switch {
	case created:
	case wasPlaceholder:
		s.emit(EventPromote, e)
	default:
		s.emit(EventUpdate, e)
	}
	return e, nil
}

// parseRelationships validates every relationship carrying a "data" member
// before the record touches the graph.
func parseRelationships(rec map[string]any, path string) ([]relationshipData, error) {
	v, ok := rec["relationships"]
	if !ok || v == nil {
		return nil, nil
	}
	relPath := path + "/relationships"
	rels, ok := asMap(v)
	if !ok {
		return nil, malformedRecord(relPath, "relationships must be an object, got %T", v)
	}

	out := make([]relationshipData, 0, len(rels))
	for _, name := range slices.Sorted(maps.Keys(rels)) {
		entry, ok := asMap(rels[name])
		if !ok {
			return nil, malformedRecord(relPath+"/"+name, "relationship must be an object, got %T", rels[name])
		}
		data, ok := entry["data"]
		if !ok {
			continue
		}
		dataPath := relPath + "/" + name + "/data"
		rel := relationshipData{name: name}
		if data == nil {
			rel.null = true
		} else if items, ok := asSlice(data); ok {
			rel.many = true
			rel.refs = make([]Ref, 0, len(items))
			for i, item := range items {
				ref, err := parseIdentifier(item, fmt.Sprintf("%s/%d", dataPath, i))
				if err != nil {
					return nil, err
				}
				rel.refs = append(rel.refs, ref)
			}
		} else {
			ref, err := parseIdentifier(data, dataPath)
			if err != nil {
				return nil, err
			}
			rel.refs = []Ref{ref}
		}
		out = append(out, rel)
	}
	return out, nil
}

func parseIdentifier(raw any, path string) (Ref, error) {
	m, ok := asMap(raw)
	if !ok {
		return Ref{}, malformedRecord(path, "resource identifier must be an object, got %T", raw)
	}
	typ, id, err := identity(m, path)
	if err != nil {
		return Ref{}, err
	}
	return Ref{Type: typ, ID: id}, nil
}
