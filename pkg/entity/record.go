package entity

import (
	"encoding/json"
)

// Record is a map-backed entity. It remembers the order in which properties were first set.
type Record struct {
	Kind   string
	fields map[string]any
	order  []string
}

// NewRecord creates an empty record of the given kind.
func NewRecord(kind string) *Record {
	return &Record{
		Kind:   kind,
		fields: make(map[string]any),
	}
}

// SetField implements Setter.
func (r *Record) SetField(name string, value any) error {
	if _, ok := r.fields[name]; !ok {
		r.order = append(r.order, name)
	}
	r.fields[name] = value
	return nil
}

// Field implements Getter.
func (r *Record) Field(name string) (any, bool) {
	v, ok := r.fields[name]
	return v, ok
}

// Keys returns property names in first-set order.
func (r *Record) Keys() []string {
	return append([]string(nil), r.order...)
}

// Map converts the record, and any records nested in it, into plain maps and slices.
func (r *Record) Map() map[string]any {
	out := make(map[string]any, len(r.fields))
	for k, v := range r.fields {
		out[k] = Export(v)
	}
	return out
}

// MarshalJSON renders the record as its Map.
func (r *Record) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Map())
}

// Export replaces records inside v with plain maps.
func Export(v any) any {
	switch t := v.(type) {
	case *Record:
		if t == nil {
			return nil
		}
		return t.Map()
	case []any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = Export(t[i])
		}
		return out
	default:
		return v
	}
}
