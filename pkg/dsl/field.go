package dsl

import (
	"fmt"

	"github.com/aretw0/aggregate/pkg/caster"
	"github.com/aretw0/aggregate/pkg/domain"
	"github.com/aretw0/aggregate/pkg/rules"
)

// FieldBuilder provides a fluent API for configuring a field.
type FieldBuilder struct {
	builder *Builder
	spec    rules.FieldSpec
	err     error

	// Set for object and array_of_objects fields.
	nested    *rules.RuleSet
	deletable bool
}

// Type sets the caster by registry token ("integer", "date", "object", ...).
func (f *FieldBuilder) Type(token string) *FieldBuilder {
	c, err := f.builder.registry.Lookup(token)
	if err != nil {
		f.err = fmt.Errorf("%s: field %q: %w", f.builder.name, f.spec.Name, err)
		return f
	}
	f.spec.Caster = c
	return f
}

// Caster sets the caster directly.
func (f *FieldBuilder) Caster(c caster.Caster) *FieldBuilder {
	f.spec.Caster = c
	return f
}

// Alias adds alternative input keys, tried in order after the field name.
func (f *FieldBuilder) Alias(names ...string) *FieldBuilder {
	f.spec.Aliases = append(f.spec.Aliases, names...)
	return f
}

// Required makes the field mandatory.
func (f *FieldBuilder) Required() *FieldBuilder {
	f.spec.Required = rules.Always()
	return f
}

// RequiredIf makes the field mandatory when the named scope method returns true.
func (f *FieldBuilder) RequiredIf(method string) *FieldBuilder {
	f.spec.Required = rules.WhenMethod(method)
	return f
}

// RequiredWhen makes the field mandatory when pred holds.
func (f *FieldBuilder) RequiredWhen(pred rules.Predicate) *FieldBuilder {
	f.spec.Required = rules.When(pred)
	return f
}

// Optional clears any requirement, typically one inherited through From.
func (f *FieldBuilder) Optional() *FieldBuilder {
	f.spec.Required = rules.Requirement{}
	return f
}

// Process computes the raw value instead of reading it from the input.
// Returning nil falls back to the input value.
func (f *FieldBuilder) Process(fn rules.ValueProcessor) *FieldBuilder {
	f.spec.Process = fn
	return f
}

// Ignore keeps the field out of assignment. It is still resolved and validated.
func (f *FieldBuilder) Ignore() *FieldBuilder {
	f.spec.Ignore = true
	return f
}

// Of sets the nested rule set of an object or array_of_objects field.
func (f *FieldBuilder) Of(nested *rules.RuleSet) *FieldBuilder {
	f.nested = nested
	return f
}

// Deletable allows an object field to be removed through its input.
func (f *FieldBuilder) Deletable() *FieldBuilder {
	f.deletable = true
	return f
}

// association converts an object-typed field into the association it declares.
func (f *FieldBuilder) association() (rules.AssociationSpec, error) {
	if f.nested == nil {
		return rules.AssociationSpec{}, fmt.Errorf("%s: field %q of type %s needs a nested rule set",
			f.builder.name, f.spec.Name, f.spec.Caster.Name())
	}
	card := domain.One
	if oc, ok := f.spec.Caster.(*caster.ObjectCaster); ok && oc.Many() {
		card = domain.Many
	}
	return rules.AssociationSpec{
		Name:        f.spec.Name,
		Cardinality: card,
		Rules:       f.nested,
		Deletable:   f.deletable,
	}, nil
}
