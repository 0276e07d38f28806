package runtime

import (
	"fmt"

	"github.com/aretw0/aggregate/pkg/domain"
	"github.com/aretw0/aggregate/pkg/rules"
)

// resolveScalars resolves every field in declaration order into a name -> value map.
func (b *build) resolveScalars() (map[string]any, error) {
	values := make(map[string]any, len(b.rules.Fields))
	for _, f := range b.rules.Fields {
		v, err := b.resolveField(f)
		if err != nil {
			return values, err
		}
		values[f.Name] = v
	}
	return values, nil
}

// resolveField finds, processes and casts the raw value of one field.
// Recoverable violations go through the severity boundary; anything else propagates.
func (b *build) resolveField(f rules.FieldSpec) (any, error) {
	key, found := b.input.FirstKey(f.Keys()...)

	if !found {
		required, err := b.isRequired(f)
		if err != nil {
			return nil, err
		}
		if required {
			err := b.surface(violation{
				field:  f.Name,
				kind:   domain.ErrRequiredFieldMissing,
				reason: fmt.Sprintf("required field %s is missing for %s builder", f.Name, b.rules.Name),
			})
			if err != nil {
				return nil, err
			}
		}
	}

	var raw any
	if f.Process != nil {
		v, err := f.Process(b.scope, b.entity, b.input)
		if err != nil {
			return nil, fmt.Errorf("field %q: processor: %w", f.Name, err)
		}
		raw = v
	}
	if raw == nil {
		if !found {
			key = f.Name
		}
		raw = b.input[key]
	}

	v, err := f.Caster.Cast(raw)
	if err != nil {
		return nil, b.surface(violation{
			field:  f.Name,
			kind:   domain.ErrCast,
			reason: err.Error(),
			value:  raw,
			cause:  err,
		})
	}
	return v, nil
}

func (b *build) isRequired(f rules.FieldSpec) (bool, error) {
	req := f.Required
	switch {
	case req.Always:
		return true, nil
	case req.When != nil:
		return req.When(b.scope, b.entity, b.input), nil
	case req.Method != "":
		ok, err := callPredicate(b.scope, req.Method, b.entity, b.input)
		if err != nil {
			return false, fmt.Errorf("field %q: required: %w", f.Name, err)
		}
		return ok, nil
	}
	return false, nil
}
