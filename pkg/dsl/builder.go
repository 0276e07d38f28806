package dsl

import (
	"errors"
	"fmt"

	"github.com/aretw0/aggregate/pkg/caster"
	"github.com/aretw0/aggregate/pkg/domain"
	"github.com/aretw0/aggregate/pkg/rules"
)

// Self stands for the rule set being declared. Associations pointing at Self are bound to the
// compiled result, which is how recursive aggregates are declared.
var Self = &rules.RuleSet{Name: "self"}

// Builder manages the declaration of one rule set.
type Builder struct {
	name     string
	factory  rules.Factory
	registry *caster.Registry
	parent   *rules.RuleSet

	fields    []*FieldBuilder
	assocs    []*AssociationBuilder
	decls     []declaration
	callbacks map[domain.Phase][]rules.CallbackSpec

	severity   domain.Severity
	keyMatch   rules.KeyMatchFn
	deleteIf   rules.DeletePredicateFn
	primaryKey string

	errs []error
}

// declaration records one Field, One or Many call. Exactly one side is set.
type declaration struct {
	field *FieldBuilder
	assoc *AssociationBuilder
}

// New creates a builder named name whose entities are constructed by factory.
// factory may be nil for rule sets that only serve as a base for From.
func New(name string, factory rules.Factory) *Builder {
	return &Builder{
		name:      name,
		factory:   factory,
		registry:  caster.Default(),
		callbacks: make(map[domain.Phase][]rules.CallbackSpec),
	}
}

// For creates a builder whose entities are new(T).
func For[T any](name string) *Builder {
	return New(name, func() any { return new(T) })
}

// From creates a builder starting from a copy of every declaration of parent.
// Associations of parent that point at parent itself are rebound to the new rule set.
func From(parent *rules.RuleSet) *Builder {
	rs := parent.Clone()
	b := New(rs.Name, rs.New)
	b.parent = parent
	b.severity = rs.Severity
	b.keyMatch = rs.KeyMatch
	b.deleteIf = rs.DeleteIf
	b.primaryKey = rs.PrimaryKey
	for _, f := range rs.Fields {
		b.addField(&FieldBuilder{builder: b, spec: f})
	}
	for _, a := range rs.Associations {
		b.addAssociation(&AssociationBuilder{spec: a})
	}
	for phase, cbs := range rs.Callbacks {
		b.callbacks[phase] = cbs
	}
	return b
}

// Named renames the rule set.
func (b *Builder) Named(name string) *Builder {
	b.name = name
	return b
}

// Factory sets the entity constructor.
func (b *Builder) Factory(factory rules.Factory) *Builder {
	b.factory = factory
	return b
}

// WithRegistry sets the registry Type tokens are looked up in. Defaults to caster.Default().
func (b *Builder) WithRegistry(r *caster.Registry) *Builder {
	if r != nil {
		b.registry = r
	}
	return b
}

// Field declares a string field, or returns the existing declaration of name.
func (b *Builder) Field(name string) *FieldBuilder {
	for _, fb := range b.fields {
		if fb.spec.Name == name {
			return fb
		}
	}
	fb := &FieldBuilder{
		builder: b,
		spec:    rules.FieldSpec{Name: name, Caster: caster.String()},
	}
	b.addField(fb)
	return fb
}

func (b *Builder) addField(fb *FieldBuilder) {
	b.fields = append(b.fields, fb)
	b.decls = append(b.decls, declaration{field: fb})
}

func (b *Builder) addAssociation(ab *AssociationBuilder) {
	b.assocs = append(b.assocs, ab)
	b.decls = append(b.decls, declaration{assoc: ab})
}

// Fields declares several plain string fields at once.
func (b *Builder) Fields(names ...string) *Builder {
	for _, name := range names {
		b.Field(name)
	}
	return b
}

// Primary declares the identity field, used by owners to match collection members.
func (b *Builder) Primary(name string) *FieldBuilder {
	b.primaryKey = name
	return b.Field(name)
}

// One declares a single nested entity built by nested.
func (b *Builder) One(name string, nested *rules.RuleSet) *AssociationBuilder {
	return b.association(name, domain.One, nested)
}

// Many declares a collection of nested entities built by nested.
func (b *Builder) Many(name string, nested *rules.RuleSet) *AssociationBuilder {
	return b.association(name, domain.Many, nested)
}

func (b *Builder) association(name string, card domain.Cardinality, nested *rules.RuleSet) *AssociationBuilder {
	for _, ab := range b.assocs {
		if ab.spec.Name == name {
			ab.spec.Cardinality = card
			ab.spec.Rules = nested
			return ab
		}
	}
	ab := &AssociationBuilder{spec: rules.AssociationSpec{Name: name, Cardinality: card, Rules: nested}}
	b.addAssociation(ab)
	return ab
}

// Before registers a scope method called before scalars are assigned.
func (b *Builder) Before(method string) *Builder {
	return b.callback(domain.PhaseBefore, rules.CallbackSpec{Method: method})
}

// BeforeFunc registers an inline callback called before scalars are assigned.
func (b *Builder) BeforeFunc(fn rules.CallbackFunc) *Builder {
	return b.callback(domain.PhaseBefore, rules.CallbackSpec{Func: fn})
}

// BeforeChildren registers a scope method called after scalars and before associations.
func (b *Builder) BeforeChildren(method string) *Builder {
	return b.callback(domain.PhaseBeforeChildren, rules.CallbackSpec{Method: method})
}

// BeforeChildrenFunc is the inline form of BeforeChildren.
func (b *Builder) BeforeChildrenFunc(fn rules.CallbackFunc) *Builder {
	return b.callback(domain.PhaseBeforeChildren, rules.CallbackSpec{Func: fn})
}

// After registers a scope method called once associations are reconciled.
func (b *Builder) After(method string) *Builder {
	return b.callback(domain.PhaseAfter, rules.CallbackSpec{Method: method})
}

// AfterFunc is the inline form of After.
func (b *Builder) AfterFunc(fn rules.CallbackFunc) *Builder {
	return b.callback(domain.PhaseAfter, rules.CallbackSpec{Func: fn})
}

func (b *Builder) callback(phase domain.Phase, cb rules.CallbackSpec) *Builder {
	b.callbacks[phase] = append(b.callbacks[phase], cb)
	return b
}

// Severity sets how missing required fields and cast failures are reported.
func (b *Builder) Severity(s domain.Severity) *Builder {
	b.severity = s
	return b
}

// SearchKey matches collection members on the given identity key.
func (b *Builder) SearchKey(key string) *Builder {
	b.keyMatch = rules.MatchByKey(key)
	return b
}

// KeyMatch sets a custom collection member matcher.
func (b *Builder) KeyMatch(fn rules.KeyMatchFn) *Builder {
	b.keyMatch = fn
	return b
}

// DeleteKey flags collection items for deletion through a truthy value under key.
func (b *Builder) DeleteKey(key string) *Builder {
	b.deleteIf = rules.DeleteByKey(key)
	return b
}

// DeleteIf sets a custom deletion predicate.
func (b *Builder) DeleteIf(fn rules.DeletePredicateFn) *Builder {
	b.deleteIf = fn
	return b
}

// Build compiles and validates the rule set. A factory is required.
func (b *Builder) Build() (*rules.RuleSet, error) {
	if b.factory == nil {
		return nil, fmt.Errorf("%s builder: %w", b.name, domain.ErrUndefinedRootClass)
	}
	return b.compile()
}

// BuildDefaults compiles and validates a rule set without a factory, meant as a parent for From.
func (b *Builder) BuildDefaults() (*rules.RuleSet, error) {
	return b.compile()
}

// MustBuild is Build for package-level declarations. It panics on error.
func MustBuild(b *Builder) *rules.RuleSet {
	rs, err := b.Build()
	if err != nil {
		panic(err)
	}
	return rs
}

func (b *Builder) compile() (*rules.RuleSet, error) {
	rs := &rules.RuleSet{
		Name:       b.name,
		Severity:   b.severity,
		KeyMatch:   b.keyMatch,
		DeleteIf:   b.deleteIf,
		PrimaryKey: b.primaryKey,
		New:        b.factory,
		Callbacks:  make(map[domain.Phase][]rules.CallbackSpec, len(b.callbacks)),
	}
	errs := append([]error(nil), b.errs...)

	rebind := func(nested *rules.RuleSet) *rules.RuleSet {
		if nested == Self || (b.parent != nil && nested == b.parent) {
			return rs
		}
		return nested
	}

	// Associations keep declaration order whichever way they were declared.
	for _, d := range b.decls {
		if d.assoc != nil {
			assoc := d.assoc.spec
			assoc.Rules = rebind(assoc.Rules)
			rs.Associations = append(rs.Associations, assoc)
			continue
		}
		fb := d.field
		if fb.err != nil {
			errs = append(errs, fb.err)
			continue
		}
		if caster.IsAssociation(fb.spec.Caster) {
			assoc, err := fb.association()
			if err != nil {
				errs = append(errs, err)
				continue
			}
			assoc.Rules = rebind(assoc.Rules)
			rs.Associations = append(rs.Associations, assoc)
			continue
		}
		rs.Fields = append(rs.Fields, fb.spec)
	}
	for phase, cbs := range b.callbacks {
		rs.Callbacks[phase] = append([]rules.CallbackSpec(nil), cbs...)
	}

	if err := rs.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return rs, nil
}
