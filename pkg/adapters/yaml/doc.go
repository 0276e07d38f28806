/*
Package yaml loads rule sets from YAML documents.

A document declares named builders that reference each other by name, so nested and even
recursive aggregates can be described without Go code. Entities are *entity.Record values
unless a factory is registered for a builder name with WithFactory.

	root: contact
	builders:
	  email:
	    primary: id
	    fields:
	      - {name: id, type: integer}
	      - {name: email, required: true}
	  contact:
	    severity: error
	    fields:
	      - first_name
	      - {name: last_name, aliases: [surname], required: NeedsLastName}
	      - {name: emails, type: array_of_objects, builder: email, deletable: true}
	    callbacks:
	      after: [Notify]

Method names (required predicates and callbacks) are resolved on the builder scope at build
time.
*/
package yaml
