package rules

import (
	"github.com/aretw0/aggregate/pkg/caster"
	"github.com/aretw0/aggregate/pkg/domain"
)

// Factory constructs a fresh, empty entity.
type Factory func() any

// ValueProcessor computes a field's raw value instead of looking it up by key.
// scope is the builder context the rule set is bound to.
type ValueProcessor func(scope, entity any, input domain.InputMap) (any, error)

// Predicate decides something about an entity being built from input.
type Predicate func(scope, entity any, input domain.InputMap) bool

// CallbackFunc is an inline lifecycle callback.
type CallbackFunc func(scope, entity any, input domain.InputMap) error

// KeyMatchFn reports whether an existing collection member is the one item refers to.
type KeyMatchFn func(member any, item domain.InputMap) bool

// DeletePredicateFn reports whether item asks for the matched member to be removed.
type DeletePredicateFn func(item domain.InputMap) bool

// RejectFn reports whether an association input item must be skipped entirely.
type RejectFn func(item domain.InputMap) bool

// Requirement describes when a field must be present in the input.
// The zero value means "never required".
type Requirement struct {
	Always bool
	When   Predicate // Evaluated against (scope, entity, input)
	Method string    // Scope method taking (entity, input) and returning bool
}

// Always is the requirement of an unconditionally required field.
func Always() Requirement { return Requirement{Always: true} }

// When makes a field required when pred holds.
func When(pred Predicate) Requirement { return Requirement{When: pred} }

// WhenMethod makes a field required when the named scope method returns true.
func WhenMethod(name string) Requirement { return Requirement{Method: name} }

// IsSet reports whether the requirement can ever apply.
func (r Requirement) IsSet() bool {
	return r.Always || r.When != nil || r.Method != ""
}

// FieldSpec describes one scalar field.
type FieldSpec struct {
	Name     string
	Aliases  []string
	Caster   caster.Caster
	Required Requirement
	Process  ValueProcessor
	// Ignore excludes the field from scalar assignment. Resolution, and therefore
	// required checks and processors, still run.
	Ignore bool
}

// Keys returns the candidate input keys: the name first, then aliases in order.
func (f FieldSpec) Keys() []string {
	return append([]string{f.Name}, f.Aliases...)
}

// AssociationSpec describes one nested entity or collection of entities.
type AssociationSpec struct {
	Name        string
	Cardinality domain.Cardinality
	Rules       *RuleSet
	Deletable   bool
	RejectIf    RejectFn
	New         Factory // Falls back to Rules.New
	Scope       any     // Builder context of nested builds; nil inherits the owner's
}

// Factory returns the constructor for new members.
func (a AssociationSpec) Factory() Factory {
	if a.New != nil {
		return a.New
	}
	if a.Rules != nil {
		return a.Rules.New
	}
	return nil
}

// CallbackSpec is either a scope method name or an inline function.
type CallbackSpec struct {
	Method string
	Func   CallbackFunc
}

// RuleSet is the compiled, read-only description of how to build one entity type.
type RuleSet struct {
	// Name identifies the builder in diagnostics and errors.
	Name         string
	Fields       []FieldSpec
	Associations []AssociationSpec
	Callbacks    map[domain.Phase][]CallbackSpec
	Severity     domain.Severity
	// KeyMatch and DeleteIf apply to the members of this rule set's collection associations.
	KeyMatch KeyMatchFn
	DeleteIf DeletePredicateFn
	// PrimaryKey is the identity field of entities built by this rule set. It feeds the
	// default KeyMatch of owners that do not configure one.
	PrimaryKey string
	New        Factory
}

// Field returns the field named name.
func (rs *RuleSet) Field(name string) (FieldSpec, bool) {
	for _, f := range rs.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldSpec{}, false
}

// Association returns the association named name.
func (rs *RuleSet) Association(name string) (AssociationSpec, bool) {
	for _, a := range rs.Associations {
		if a.Name == name {
			return a, true
		}
	}
	return AssociationSpec{}, false
}

// CallbacksFor returns the callbacks of phase in registration order.
func (rs *RuleSet) CallbacksFor(phase domain.Phase) []CallbackSpec {
	return rs.Callbacks[phase]
}

// MatcherFor returns the identity matcher used for members of assoc.
// Resolution order: this rule set's KeyMatch, the nested PrimaryKey, then the "id" key.
func (rs *RuleSet) MatcherFor(assoc AssociationSpec) KeyMatchFn {
	if rs.KeyMatch != nil {
		return rs.KeyMatch
	}
	if assoc.Rules != nil && assoc.Rules.PrimaryKey != "" {
		return MatchByKey(assoc.Rules.PrimaryKey)
	}
	return MatchByKey(domain.KeyID)
}

// DeletePredicate returns the configured delete predicate or the "_destroy" default.
func (rs *RuleSet) DeletePredicate() DeletePredicateFn {
	if rs.DeleteIf != nil {
		return rs.DeleteIf
	}
	return DeleteByKey(domain.KeyDestroy)
}

// Clone returns a deep copy. Nested rule sets are shared: they are immutable values.
func (rs *RuleSet) Clone() *RuleSet {
	out := *rs
	out.Fields = make([]FieldSpec, len(rs.Fields))
	for i, f := range rs.Fields {
		f.Aliases = append([]string(nil), f.Aliases...)
		out.Fields[i] = f
	}
	out.Associations = append([]AssociationSpec(nil), rs.Associations...)
	out.Callbacks = make(map[domain.Phase][]CallbackSpec, len(rs.Callbacks))
	for phase, cbs := range rs.Callbacks {
		out.Callbacks[phase] = append([]CallbackSpec(nil), cbs...)
	}
	return &out
}
