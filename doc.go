/*
Package aggregate populates domain entities, and trees of nested entities, from loosely typed
input maps such as decoded JSON or YAML.

Each entity type is described by a rule set: which fields it accepts and under which aliases,
how raw values are cast, which fields are required, which nested entities and collections it
owns, and which callbacks run around the build. A Builder executes a rule set against an input
map and either creates a new entity or updates an existing one, reconciling collections by key
so that members are updated, added or removed in place.

# Concept

A build walks a fixed lifecycle for every entity of the tree:

 1. Resolve scalar fields: pick the first present key among name and aliases, apply the
    processor, cast the value.
 2. Run "before" callbacks.
 3. Assign the resolved scalars.
 4. Run "before children" callbacks.
 5. Reconcile associations, recursing into nested rule sets.
 6. Run "after" callbacks.

Missing required fields and cast failures follow the rule set severity: silent, warn (logged
and reported through LifecycleHooks.OnDiagnostic) or error (the build stops with a
*domain.FieldError).

# Usage

Declare rule sets with the dsl package, or load them from YAML with pkg/adapters/yaml.

	package main

	import (
		"log"

		"github.com/aretw0/aggregate"
		"github.com/aretw0/aggregate/pkg/dsl"
	)

	type Email struct {
		ID    int
		Email string
	}

	type Contact struct {
		FirstName string
		Emails    []*Email
	}

	func main() {
		email := dsl.For[Email]("email")
		email.Field("id").Type("integer")
		email.Field("email").Required()

		contact := dsl.For[Contact]("contact")
		contact.Field("first_name").Alias("name")
		contact.Many("emails", dsl.MustBuild(email)).Deletable()

		b, err := aggregate.New(dsl.MustBuild(contact))
		if err != nil {
			log.Fatal(err)
		}

		c, err := aggregate.BuildAs[*Contact](b, map[string]any{
			"name":   "John",
			"emails": []any{map[string]any{"email": "john@example.com"}},
		})
		if err != nil {
			log.Fatal(err)
		}
		log.Println(c.FirstName, len(c.Emails))
	}
*/
package aggregate
