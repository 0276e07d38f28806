package domain

// Phase identifies a callback slot in the build lifecycle.
type Phase string

const (
	// PhaseBefore runs after scalar resolution, before any scalar is assigned.
	PhaseBefore Phase = "before"
	// PhaseBeforeChildren runs after scalar assignment, before associations are reconciled.
	PhaseBeforeChildren Phase = "before_children"
	// PhaseAfter runs once the entity and its associations are fully built.
	PhaseAfter Phase = "after"
)

// Phases lists every phase in execution order.
var Phases = []Phase{PhaseBefore, PhaseBeforeChildren, PhaseAfter}

// Cardinality distinguishes single-valued from collection-valued associations.
type Cardinality string

const (
	One  Cardinality = "one"
	Many Cardinality = "many"
)

// Default keys used by the built-in identity matcher and delete predicate.
const (
	KeyID      = "id"
	KeyDestroy = "_destroy"
)

// DefaultMaxDepth bounds association recursion when no explicit limit is configured.
const DefaultMaxDepth = 32
