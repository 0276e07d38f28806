/*
Package entity gives the builder named access to the properties of an entity.

An entity is either:

  - a pointer to a struct: properties are exported fields, matched by a `build:"name"` tag or
    by name ignoring case and underscores ("first_name" matches FirstName);
  - a value implementing Setter (and Getter, for associations);
  - a *Record, the map-backed entity used when no Go type exists (YAML rule files, the CLI).

Scalar values are written in one pass with mapstructure, so numeric widths and named types are
converted the same way decoded configuration is.
*/
package entity
