package dsl

import "github.com/aretw0/aggregate/pkg/rules"

// AssociationBuilder provides a fluent API for configuring an association.
type AssociationBuilder struct {
	spec rules.AssociationSpec
}

// Deletable allows members to be removed through the delete key of their input item.
func (a *AssociationBuilder) Deletable() *AssociationBuilder {
	a.spec.Deletable = true
	return a
}

// RejectIf skips every input item fn accepts.
func (a *AssociationBuilder) RejectIf(fn rules.RejectFn) *AssociationBuilder {
	a.spec.RejectIf = fn
	return a
}

// RejectKey skips input items holding a truthy value under key.
func (a *AssociationBuilder) RejectKey(key string) *AssociationBuilder {
	return a.RejectIf(rules.RejectByKey(key))
}

// Factory overrides the nested rule set's constructor for new members.
func (a *AssociationBuilder) Factory(factory rules.Factory) *AssociationBuilder {
	a.spec.New = factory
	return a
}

// Scope sets the builder context nested builds run against.
func (a *AssociationBuilder) Scope(scope any) *AssociationBuilder {
	a.spec.Scope = scope
	return a
}
