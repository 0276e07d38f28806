package runtime

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/aggregate/pkg/domain"
	"github.com/aretw0/aggregate/pkg/entity"
	"github.com/aretw0/aggregate/pkg/rules"
)

// Engine runs the build lifecycle of a rule set against an entity.
// It holds no per-build state and is safe for concurrent use.
type Engine struct {
	logger   *slog.Logger
	hooks    domain.LifecycleHooks
	maxDepth int
}

// EngineOption configures the Engine.
type EngineOption func(*Engine)

// WithLogger sets the structured logger. Diagnostics are logged at WARN.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithMaxDepth bounds association nesting. Values below 1 keep the default.
func WithMaxDepth(depth int) EngineOption {
	return func(e *Engine) {
		if depth > 0 {
			e.maxDepth = depth
		}
	}
}

// NewEngine creates an engine.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		maxDepth: domain.DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Build runs the full lifecycle on target, constructing it with the rule set factory when
// target is nil. scope is the builder context handed to processors, predicates and callbacks.
//
// There is no rollback: on error the returned entity carries every assignment completed
// before the failure.
func (e *Engine) Build(rs *rules.RuleSet, scope, target, raw any) (any, error) {
	if rs == nil {
		return nil, fmt.Errorf("rule set is nil")
	}
	if rs.New == nil {
		return nil, fmt.Errorf("%s builder: %w", rs.Name, domain.ErrUndefinedRootClass)
	}
	input, ok := domain.AsInputMap(raw)
	if !ok {
		return nil, fmt.Errorf("%w: attributes should be a map, got %T", domain.ErrInvalidInputShape, raw)
	}
	if entity.IsNil(target) {
		target = rs.New()
	}
	return target, e.run(frame{rules: rs, scope: scope}, target, input)
}

// frame locates one entity build inside the association tree.
type frame struct {
	rules *rules.RuleSet
	scope any
	path  string
	depth int
}

func (f frame) child(assoc rules.AssociationSpec, segment string) frame {
	scope := assoc.Scope
	if scope == nil {
		scope = f.scope
	}
	path := segment
	if f.path != "" {
		path = f.path + "." + segment
	}
	return frame{rules: assoc.Rules, scope: scope, path: path, depth: f.depth + 1}
}

type stage string

const (
	stageResolveScalars stage = "resolve_scalars"
	stageBefore         stage = "before_callbacks"
	stageAssignScalars  stage = "assign_scalars"
	stageBeforeChildren stage = "before_children_callbacks"
	stageReconcile      stage = "reconcile_associations"
	stageAfter          stage = "after_callbacks"
)

// build carries the state of one entity build.
type build struct {
	engine *Engine
	frame
	entity any
	input  domain.InputMap
	logger *slog.Logger
}

func (e *Engine) run(f frame, target any, input domain.InputMap) error {
	if f.depth > e.maxDepth {
		return fmt.Errorf("%w (%d) at %s", domain.ErrMaxDepthExceeded, e.maxDepth, f.path)
	}

	b := &build{
		engine: e,
		frame:  f,
		entity: target,
		input:  input,
		logger: e.logger.With("builder", f.rules.Name, "path", f.path),
	}

	e.emitBuildStart(b)
	err := b.execute()
	e.emitBuildFinish(b, err)
	return err
}

// execute walks the lifecycle stages in order. The first error stops the walk.
func (b *build) execute() error {
	var values map[string]any

	steps := []struct {
		name stage
		run  func() error
	}{
		{stageResolveScalars, func() (err error) {
			values, err = b.resolveScalars()
			return err
		}},
		{stageBefore, func() error { return b.runCallbacks(domain.PhaseBefore) }},
		{stageAssignScalars, func() error { return b.assignScalars(values) }},
		{stageBeforeChildren, func() error { return b.runCallbacks(domain.PhaseBeforeChildren) }},
		{stageReconcile, b.reconcileAssociations},
		{stageAfter, func() error { return b.runCallbacks(domain.PhaseAfter) }},
	}

	for _, s := range steps {
		b.logger.Debug("build stage", "stage", s.name)
		if err := s.run(); err != nil {
			return err
		}
	}
	return nil
}

func (b *build) assignScalars(values map[string]any) error {
	names := make([]string, 0, len(b.rules.Fields))
	for _, f := range b.rules.Fields {
		if f.Ignore {
			continue
		}
		names = append(names, f.Name)
	}
	if len(names) == 0 {
		return nil
	}
	return entity.Assign(b.entity, names, values)
}

// --- Hooks ---

func (e *Engine) emitBuildStart(b *build) {
	if e.hooks.OnBuildStart != nil {
		e.hooks.OnBuildStart(&domain.BuildEvent{
			Builder: b.rules.Name,
			Path:    b.path,
			Depth:   b.depth,
			Entity:  b.entity,
		})
	}
}

func (e *Engine) emitBuildFinish(b *build, err error) {
	if err != nil {
		b.logger.Debug("build aborted", "err", err)
	}
	if e.hooks.OnBuildFinish != nil {
		e.hooks.OnBuildFinish(&domain.BuildEvent{
			Builder: b.rules.Name,
			Path:    b.path,
			Depth:   b.depth,
			Entity:  b.entity,
			Err:     err,
		})
	}
}

func (e *Engine) emitDiagnostic(d *domain.Diagnostic) {
	if e.hooks.OnDiagnostic != nil {
		e.hooks.OnDiagnostic(d)
	}
}

func (e *Engine) emitMember(b *build, assoc string, action domain.MemberAction, index int) {
	b.logger.Debug("association member", "association", assoc, "action", action, "index", index)
	if e.hooks.OnMember != nil {
		e.hooks.OnMember(&domain.MemberEvent{
			Builder:     b.rules.Name,
			Association: assoc,
			Action:      action,
			Index:       index,
		})
	}
}
