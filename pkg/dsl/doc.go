/*
Package dsl provides a fluent Go API for declaring aggregate builders.

A Builder collects field, association and callback declarations and compiles them into an
immutable *rules.RuleSet that the aggregate package executes. Declarations read top to bottom
in the order they are applied at build time.

Example usage:

	package main

	import (
		"github.com/aretw0/aggregate/pkg/dsl"
	)

	func main() {
		email := dsl.For[Email]("email")
		email.Field("id").Type("integer")
		email.Field("email").Required()
		email.Field("type").Type("integer").Required()

		contact := dsl.For[Contact]("contact")
		contact.Fields("first_name", "last_name")
		contact.Field("rating").Type("integer").Alias("score")
		contact.Field("date_of_birth").Type("date")
		contact.Many("emails", dsl.MustBuild(email)).Deletable()
		contact.Before("Normalize")

		rs, err := contact.Build()
		// ... pass rs to aggregate.New(rs, ...)
	}

Inheritance is a value copy: From(parent) starts a new Builder with every declaration of the
parent, which may then be extended or overridden field by field.
*/
package dsl
