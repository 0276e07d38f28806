package caster

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/spf13/cast"

	"github.com/aretw0/aggregate/pkg/domain"
)

// Caster defines the contract for coercing a raw value into a typed value.
type Caster interface {
	// Name returns the type token of the caster (e.g., "string", "integer").
	Name() string
	// Cast converts raw. Implementations return (nil, nil) for nil input.
	Cast(raw any) (any, error)
}

var (
	errBoolNotNumber = errors.New("booleans are not numbers")
	errOutOfRange    = errors.New("value out of range")
	errNotFinite     = errors.New("value is not finite")
)

func castErr(typ string, raw any, err error) error {
	return &domain.CastError{Type: typ, Value: raw, Err: err}
}

// --- Built-in Casters ---

// StringCaster renders scalars as strings.
type StringCaster struct{}

func (c *StringCaster) Name() string { return "string" }

func (c *StringCaster) Cast(raw any) (any, error) {
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	}
	s, err := cast.ToStringE(raw)
	if err != nil {
		return nil, castErr(c.Name(), raw, err)
	}
	return s, nil
}

// IntegerCaster accepts integers, whole floats and base-10 numeric strings.
// Values outside the range of int fail.
type IntegerCaster struct{}

func (c *IntegerCaster) Name() string { return "integer" }

func (c *IntegerCaster) Cast(raw any) (any, error) {
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case bool:
		return nil, castErr(c.Name(), raw, errBoolNotNumber)
	case float32:
		return c.fromFloat(raw, float64(v))
	case float64:
		return c.fromFloat(raw, v)
	case json.Number:
		return c.Cast(string(v))
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, strconv.IntSize)
		if err != nil {
			return nil, castErr(c.Name(), raw, err)
		}
		return int(n), nil
	case uint:
		return c.fromUnsigned(raw, uint64(v))
	case uint32:
		return c.fromUnsigned(raw, uint64(v))
	case uint64:
		return c.fromUnsigned(raw, v)
	}
	n, err := cast.ToInt64E(raw)
	if err != nil {
		return nil, castErr(c.Name(), raw, err)
	}
	if n < math.MinInt || n > math.MaxInt {
		return nil, castErr(c.Name(), raw, errOutOfRange)
	}
	return int(n), nil
}

func (c *IntegerCaster) fromFloat(raw any, f float64) (any, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, castErr(c.Name(), raw, errNotFinite)
	}
	if f != math.Trunc(f) {
		return nil, castErr(c.Name(), raw, fmt.Errorf("%v is not a whole number", f))
	}
	// -MinInt is a power of two, so the upper bound is exact as a float64.
	if f < math.MinInt || f >= -float64(math.MinInt) {
		return nil, castErr(c.Name(), raw, errOutOfRange)
	}
	return int(f), nil
}

func (c *IntegerCaster) fromUnsigned(raw any, u uint64) (any, error) {
	if u > math.MaxInt {
		return nil, castErr(c.Name(), raw, errOutOfRange)
	}
	return int(u), nil
}

// FloatCaster accepts numbers and numeric strings. NaN and infinities fail.
type FloatCaster struct{}

func (c *FloatCaster) Name() string { return "float" }

func (c *FloatCaster) Cast(raw any) (any, error) {
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case bool:
		return nil, castErr(c.Name(), raw, errBoolNotNumber)
	case json.Number:
		return c.Cast(string(v))
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return nil, castErr(c.Name(), raw, err)
		}
		return c.finite(raw, f)
	}
	f, err := cast.ToFloat64E(raw)
	if err != nil {
		return nil, castErr(c.Name(), raw, err)
	}
	return c.finite(raw, f)
}

func (c *FloatCaster) finite(raw any, f float64) (any, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, castErr(c.Name(), raw, errNotFinite)
	}
	return f, nil
}

// BooleanCaster accepts booleans and the tokens "true", "false", "1", "0" in any case.
type BooleanCaster struct{}

func (c *BooleanCaster) Name() string { return "boolean" }

func (c *BooleanCaster) Cast(raw any) (any, error) {
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case bool:
		return v, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "1":
			return true, nil
		case "false", "0":
			return false, nil
		}
	}
	return nil, castErr(c.Name(), raw, fmt.Errorf("unrecognized boolean %v", raw))
}

// ObjectCaster marks a field holding a single nested entity.
// Such fields are reconciled as associations and never cast as scalars.
type ObjectCaster struct {
	many bool
}

func (c *ObjectCaster) Name() string {
	if c.many {
		return "array_of_objects"
	}
	return "object"
}

func (c *ObjectCaster) Cast(raw any) (any, error) {
	return nil, castErr(c.Name(), raw, errors.New("association types cannot be cast as scalars"))
}

// Many reports whether the marker denotes a collection association.
func (c *ObjectCaster) Many() bool { return c.many }

// FuncCaster applies a user-defined conversion.
type FuncCaster struct {
	name string
	fn   func(any) (any, error)
}

func (c *FuncCaster) Name() string { return c.name }

// Cast delegates to the wrapped function. Plain errors are wrapped in a CastError;
// nil input is passed through to the function.
func (c *FuncCaster) Cast(raw any) (any, error) {
	v, err := c.fn(raw)
	if err != nil {
		var ce *domain.CastError
		if errors.As(err, &ce) {
			return nil, err
		}
		return nil, castErr(c.name, raw, err)
	}
	return v, nil
}

// --- Factory Functions ---

func String() Caster  { return &StringCaster{} }
func Integer() Caster { return &IntegerCaster{} }
func Float() Caster   { return &FloatCaster{} }
func Boolean() Caster { return &BooleanCaster{} }
func Date() Caster    { return &DateCaster{} }
func Time() Caster    { return &TimeCaster{name: "time"} }

// DateTime is Time under the "datetime" token.
func DateTime() Caster { return &TimeCaster{name: "datetime"} }

// Object is the single-association marker.
func Object() Caster { return &ObjectCaster{} }

// ObjectList is the collection-association marker.
func ObjectList() Caster { return &ObjectCaster{many: true} }

// Func creates a custom caster.
func Func(name string, fn func(any) (any, error)) Caster {
	return &FuncCaster{name: name, fn: fn}
}

// IsAssociation reports whether c is an association marker rather than a scalar caster.
func IsAssociation(c Caster) bool {
	_, ok := c.(*ObjectCaster)
	return ok
}
