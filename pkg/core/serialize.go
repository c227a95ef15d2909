package core

type serializeOptions struct {
	attributes    []string
	relationships []string
}

// SerializeOption restricts the members rendered by Entity.Serialize.
type SerializeOption func(*serializeOptions)

// WithAttributes limits serialization to the named attributes.
func WithAttributes(names ...string) SerializeOption {
	return func(o *serializeOptions) {
		o.attributes = names
	}
}

// WithRelationships limits serialization to the named relationships.
func WithRelationships(names ...string) SerializeOption {
	return func(o *serializeOptions) {
		o.relationships = names
	}
}

// Serialize renders the entity as a JSON:API document structure, ready for an
// encoder. Relationships are rendered as resource identifiers. Empty
// "attributes" and "relationships" members are omitted, as are names the
// entity never assigned.
func (e *Entity) Serialize(opts ...SerializeOption) map[string]any {
	o := serializeOptions{
		attributes:    e.attributes,
		relationships: e.relationships,
	}
	for _, opt := range opts {
		opt(&o)
	}

	resource := map[string]any{
		"type": e.Type,
		"id":   e.ID,
	}

	attrs := make(map[string]any)
	for _, name := range o.attributes {
		if v, ok := e.Attribute(name); ok {
			attrs[name] = v
		}
	}
	if len(attrs) > 0 {
		resource["attributes"] = attrs
	}

	rels := make(map[string]any)
	for _, name := range o.relationships {
		if !e.HasRelationship(name) {
			continue
		}
		rels[name] = map[string]any{"data": identifierData(e.fields[name])}
	}
	if len(rels) > 0 {
		resource["relationships"] = rels
	}

	return map[string]any{"data": resource}
}

func identifierData(v any) any {
	switch related := v.(type) {
	case *Entity:
		return identifier(related)
	case []*Entity:
		out := make([]any, len(related))
		for i, r := range related {
			out[i] = identifier(r)
		}
		return out
	}
	return nil
}

func identifier(e *Entity) map[string]any {
	return map[string]any{"type": e.Type, "id": e.ID}
}
