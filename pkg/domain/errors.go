package domain

import (
	"errors"
	"fmt"
)

// ErrRequiredFieldMissing is reported when a required field has no resolvable value.
var ErrRequiredFieldMissing = errors.New("required field is missing")

// ErrCast is matched by every CastError.
var ErrCast = errors.New("cast failed")

// ErrUndefinedRootClass is returned when a rule set has no entity factory.
var ErrUndefinedRootClass = errors.New("aggregate root class is not defined")

// ErrInvalidInputShape is returned when input (or a nested association entry) has the wrong shape.
var ErrInvalidInputShape = errors.New("invalid input shape")

// ErrMaxDepthExceeded is returned when association nesting exceeds the configured bound.
var ErrMaxDepthExceeded = errors.New("maximum association depth exceeded")

// ErrNilEntity is returned by Update when no entity is supplied.
var ErrNilEntity = errors.New("entity is nil")

// ErrUnknownCaster is returned when a type token does not resolve to a caster.
var ErrUnknownCaster = errors.New("unknown type caster")

// ErrUnknownField is returned when an entity has no settable property with the given name.
var ErrUnknownField = errors.New("unknown field")

// FieldError attributes a failure to a field of a named builder.
// Under error severity a cast failure is returned as a FieldError whose Err is the
// originating *CastError; use errors.As to recover it.
type FieldError struct {
	Field   string // Field name
	Builder string // Rule set name (the builder context)
	Reason  string // Human-readable reason for failure
	Value   any    // The raw value, when relevant
	Err     error  // Underlying error or sentinel
}

func (e *FieldError) Error() string {
	msg := fmt.Sprintf("field %q", e.Field)
	if e.Builder != "" {
		msg += fmt.Sprintf(" of %s builder", e.Builder)
	}
	msg += ": " + e.Reason
	if e.Value != nil {
		msg += fmt.Sprintf(" (got %T)", e.Value)
	}
	return msg
}

func (e *FieldError) Unwrap() error { return e.Err }

// CastError reports a raw value that could not be coerced to a type.
type CastError struct {
	Type  string
	Value any
	Err   error
}

func (e *CastError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("cannot cast %v (%T) to %s: %v", e.Value, e.Value, e.Type, e.Err)
	}
	return fmt.Sprintf("cannot cast %v (%T) to %s", e.Value, e.Value, e.Type)
}

func (e *CastError) Unwrap() error { return e.Err }

// Is makes every CastError match ErrCast.
func (e *CastError) Is(target error) bool { return target == ErrCast }
