/*
Package domain contains the core vocabulary shared by the aggregate builder packages.

It defines the raw input shape, the severity policy, lifecycle phases and the error kinds
surfaced while building an object graph. This package is kept pure and free of external
dependencies so that rule definitions, adapters and the runtime can all depend on it.

# Key Types

  - InputMap: The untyped nested key-value tree a build consumes.
  - Severity: How recoverable violations (missing required fields, cast failures) are surfaced.
  - Phase: The callback phases of the build lifecycle.
  - Diagnostic: A structured warning emitted when severity is "warn".
*/
package domain
