package domain

// BuildEvent describes one entity build, root or nested.
type BuildEvent struct {
	Builder string // Rule set name
	Path    string // Association path from the root, empty for the root entity
	Depth   int
	Entity  any
	Err     error // Set on OnBuildFinish when the build aborted
}

// MemberAction is what the reconciler did with one association input item.
type MemberAction string

const (
	MemberCreated  MemberAction = "created"
	MemberUpdated  MemberAction = "updated"
	MemberDeleted  MemberAction = "deleted"
	MemberRejected MemberAction = "rejected"
	MemberCleared  MemberAction = "cleared"
)

// MemberEvent reports one reconciliation decision.
type MemberEvent struct {
	Builder     string // Owning rule set name
	Association string
	Action      MemberAction
	Index       int // Input index, -1 for single associations
}

// Diagnostic is the structured signal emitted for a violation under SeverityWarn.
type Diagnostic struct {
	Field   string `json:"field"`
	Builder string `json:"builder"`
	Reason  string `json:"reason"`
	Kind    error  `json:"-"` // ErrRequiredFieldMissing or ErrCast
}

// LifecycleHooks defines callbacks for build observability.
// Nil hooks are skipped.
type LifecycleHooks struct {
	OnBuildStart  func(*BuildEvent)
	OnBuildFinish func(*BuildEvent)
	OnDiagnostic  func(*Diagnostic)
	OnMember      func(*MemberEvent)
}
