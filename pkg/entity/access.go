package entity

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/aretw0/aggregate/pkg/domain"
)

// TagName is the struct tag consulted when matching property names.
const TagName = "build"

// Setter is implemented by entities that manage their own properties.
type Setter interface {
	SetField(name string, value any) error
}

// Getter is implemented by entities that expose their properties by name.
type Getter interface {
	Field(name string) (any, bool)
}

// IsNil reports whether v is nil or a typed nil pointer, map, slice or interface.
func IsNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func:
		return rv.IsNil()
	}
	return false
}

// Assign writes values onto e. For Setter entities names gives the write order;
// struct entities are decoded in a single mapstructure pass where nil zeroes the field.
func Assign(e any, names []string, values map[string]any) error {
	if s, ok := e.(Setter); ok {
		for _, name := range names {
			if err := s.SetField(name, values[name]); err != nil {
				return err
			}
		}
		return nil
	}

	if _, err := structValue(e); err != nil {
		return err
	}
	subset := make(map[string]any, len(names))
	for _, name := range names {
		subset[name] = values[name]
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      e,
		TagName:     TagName,
		ZeroFields:  true,
		ErrorUnused: true,
		MatchName:   matchName,
	})
	if err != nil {
		return fmt.Errorf("failed to create decoder: %w", err)
	}
	if err := dec.Decode(subset); err != nil {
		return fmt.Errorf("failed to assign %T: %w", e, err)
	}
	return nil
}

// Get reads one property. ok is false when the entity does not have it.
func Get(e any, name string) (any, bool) {
	if g, ok := e.(Getter); ok {
		return g.Field(name)
	}
	sv, err := structValue(e)
	if err != nil {
		return nil, false
	}
	fv, ok := fieldByName(sv, name)
	if !ok {
		return nil, false
	}
	return fv.Interface(), true
}

// Ref reads one property like Get, but returns a pointer to struct-valued fields so that
// nested entities stored by value can be updated in place. Getter entities report every
// property as present; an unset one reads as nil.
func Ref(e any, name string) (any, bool) {
	if g, ok := e.(Getter); ok {
		v, _ := g.Field(name)
		return v, true
	}
	sv, err := structValue(e)
	if err != nil {
		return nil, false
	}
	fv, ok := fieldByName(sv, name)
	if !ok {
		return nil, false
	}
	if fv.Kind() == reflect.Struct {
		return fv.Addr().Interface(), true
	}
	return fv.Interface(), true
}

// Set writes one property, converting between assignable and convertible types.
func Set(e any, name string, value any) error {
	if s, ok := e.(Setter); ok {
		return s.SetField(name, value)
	}
	sv, err := structValue(e)
	if err != nil {
		return err
	}
	fv, ok := fieldByName(sv, name)
	if !ok {
		return fmt.Errorf("%w: %T has no settable property %q", domain.ErrUnknownField, e, name)
	}
	return setValue(fv, value, name)
}

// Members reads a collection property as a fresh []any. A nil collection yields nil.
// Struct elements are returned as pointers into the collection.
func Members(e any, name string) ([]any, error) {
	v, ok := Ref(e, name)
	if !ok {
		return nil, fmt.Errorf("%w: %T has no collection %q", domain.ErrUnknownField, e, name)
	}
	if IsNil(v) {
		return nil, nil
	}
	if items, ok := v.([]any); ok {
		return append([]any(nil), items...), nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, fmt.Errorf("property %q of %T is not a collection (got %T)", name, e, v)
	}
	out := make([]any, rv.Len())
	for i := range out {
		elem := rv.Index(i)
		if elem.Kind() == reflect.Struct && elem.CanAddr() {
			out[i] = elem.Addr().Interface()
			continue
		}
		out[i] = elem.Interface()
	}
	return out, nil
}

// SetMembers writes a collection property, rebuilding the typed slice for struct entities.
func SetMembers(e any, name string, members []any) error {
	if s, ok := e.(Setter); ok {
		return s.SetField(name, members)
	}
	sv, err := structValue(e)
	if err != nil {
		return err
	}
	fv, ok := fieldByName(sv, name)
	if !ok {
		return fmt.Errorf("%w: %T has no collection %q", domain.ErrUnknownField, e, name)
	}
	if fv.Kind() != reflect.Slice {
		return setValue(fv, members, name)
	}
	out := reflect.MakeSlice(fv.Type(), 0, len(members))
	for i, m := range members {
		elem := reflect.New(fv.Type().Elem()).Elem()
		if err := setValue(elem, m, fmt.Sprintf("%s[%d]", name, i)); err != nil {
			return err
		}
		out = reflect.Append(out, elem)
	}
	fv.Set(out)
	return nil
}

func structValue(e any) (reflect.Value, error) {
	rv := reflect.ValueOf(e)
	if rv.Kind() != reflect.Ptr || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return reflect.Value{}, fmt.Errorf("entity must be a non-nil pointer to struct or implement Setter, got %T", e)
	}
	return rv.Elem(), nil
}

func fieldByName(sv reflect.Value, name string) (reflect.Value, bool) {
	st := sv.Type()
	for i := 0; i < st.NumField(); i++ {
		sf := st.Field(i)
		if !sf.IsExported() {
			continue
		}
		tag := strings.Split(sf.Tag.Get(TagName), ",")[0]
		if tag == "-" {
			continue
		}
		if tag == name || (tag == "" && matchName(name, sf.Name)) {
			return sv.Field(i), true
		}
	}
	return reflect.Value{}, false
}

func setValue(fv reflect.Value, value any, name string) error {
	if IsNil(value) {
		fv.Set(reflect.Zero(fv.Type()))
		return nil
	}
	rv := reflect.ValueOf(value)
	switch {
	case rv.Type().AssignableTo(fv.Type()):
		fv.Set(rv)
	case fv.Kind() == reflect.Ptr && rv.Type().AssignableTo(fv.Type().Elem()):
		p := reflect.New(fv.Type().Elem())
		p.Elem().Set(rv)
		fv.Set(p)
	case rv.Kind() == reflect.Ptr && rv.Elem().Type().AssignableTo(fv.Type()):
		fv.Set(rv.Elem())
	case rv.Type().ConvertibleTo(fv.Type()):
		fv.Set(rv.Convert(fv.Type()))
	default:
		return fmt.Errorf("property %q: cannot assign %T to %s", name, value, fv.Type())
	}
	return nil
}

// matchName compares a property name with a Go field name ignoring case and underscores.
func matchName(key, fieldName string) bool {
	return normalize(key) == normalize(fieldName)
}

func normalize(s string) string {
	return strings.ToLower(strings.ReplaceAll(s, "_", ""))
}
