package domain

import (
	"fmt"
	"strings"
)

// InputMap is the untyped nested input of a build call.
// Values are scalars, nested maps (single associations) or sequences of maps (collections).
type InputMap map[string]any

// AsInputMap normalises the map shapes produced by JSON and YAML decoders.
// Keys of map[any]any are rendered with fmt.Sprint, so symbol-like and string keys collapse
// onto the same entry. The returned map is always a fresh shallow copy.
func AsInputMap(v any) (InputMap, bool) {
	switch m := v.(type) {
	case InputMap:
		return m.Clone(), true
	case map[string]any:
		return InputMap(m).Clone(), true
	case map[any]any:
		out := make(InputMap, len(m))
		for k, val := range m {
			out[fmt.Sprint(k)] = val
		}
		return out, true
	default:
		return nil, false
	}
}

// AsSequence normalises the sequence shapes produced by decoders and Go callers.
func AsSequence(v any) ([]any, bool) {
	switch s := v.(type) {
	case []any:
		return s, true
	case []InputMap:
		out := make([]any, len(s))
		for i := range s {
			out[i] = s[i]
		}
		return out, true
	case []map[string]any:
		out := make([]any, len(s))
		for i := range s {
			out[i] = s[i]
		}
		return out, true
	default:
		return nil, false
	}
}

// Clone returns a shallow copy. Nested values are shared.
func (m InputMap) Clone() InputMap {
	if m == nil {
		return InputMap{}
	}
	out := make(InputMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Has reports whether key is present, even when its value is nil.
func (m InputMap) Has(key string) bool {
	_, ok := m[key]
	return ok
}

// FirstKey returns the first of keys present in m.
func (m InputMap) FirstKey(keys ...string) (string, bool) {
	for _, k := range keys {
		if m.Has(k) {
			return k, true
		}
	}
	return "", false
}

// Truthy interprets flag-like input values ("1", "true", "y", "yes", true).
func Truthy(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "1", "true", "y", "yes":
			return true
		}
	case int:
		return t == 1
	case int64:
		return t == 1
	case float64:
		return t == 1
	}
	return false
}
