package aggregate

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/aggregate/internal/runtime"
	"github.com/aretw0/aggregate/pkg/domain"
	"github.com/aretw0/aggregate/pkg/entity"
	"github.com/aretw0/aggregate/pkg/rules"
)

// Builder is the high-level entry point of the library.
// It binds a compiled rule set to a builder scope and runs builds against it.
type Builder struct {
	runtime  *runtime.Engine
	rules    *rules.RuleSet
	scope    any
	hooks    domain.LifecycleHooks
	logger   *slog.Logger
	maxDepth int
}

// Option defines a functional option for configuring the Builder.
type Option func(*Builder)

// WithScope sets the builder context. Processors, required predicates and callbacks run
// against it, and method names are resolved on it.
func WithScope(scope any) Option {
	return func(b *Builder) {
		b.scope = scope
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(b *Builder) {
		b.hooks = hooks
	}
}

// WithLogger sets a custom structured logger for the builder.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Builder) {
		b.logger = logger
	}
}

// WithMaxDepth bounds how deep associations may nest (default 32).
func WithMaxDepth(depth int) Option {
	return func(b *Builder) {
		b.maxDepth = depth
	}
}

// New creates a Builder for rs. The rule set is validated once here.
func New(rs *rules.RuleSet, opts ...Option) (*Builder, error) {
	if rs == nil {
		return nil, fmt.Errorf("rule set is required")
	}
	if err := rs.Validate(); err != nil {
		return nil, fmt.Errorf("invalid rule set: %w", err)
	}

	b := &Builder{rules: rs}
	for _, opt := range opts {
		opt(b)
	}

	// Ensure logger is initialized so the runtime never logs to a nil handler
	if b.logger == nil {
		b.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	b.runtime = runtime.NewEngine(
		runtime.WithLogger(b.logger),
		runtime.WithLifecycleHooks(b.hooks),
		runtime.WithMaxDepth(b.maxDepth),
	)
	return b, nil
}

// Rules returns the rule set the builder runs.
func (b *Builder) Rules() *rules.RuleSet {
	return b.rules
}

// Bind returns a copy of the builder running against another scope.
func (b *Builder) Bind(scope any) *Builder {
	out := *b
	out.scope = scope
	return &out
}

// Build assigns input onto target and returns it. A nil target is created with the rule set
// factory. input must be a map; nested maps and lists feed the associations.
//
// Nothing is rolled back on error: the returned entity holds every change applied before
// the failure.
func (b *Builder) Build(target, input any) (any, error) {
	return b.runtime.Build(b.rules, b.scope, target, input)
}

// Update is Build on an existing entity.
func (b *Builder) Update(target, input any) (any, error) {
	if entity.IsNil(target) {
		return nil, fmt.Errorf("%s builder: %w", b.rules.Name, domain.ErrNilEntity)
	}
	return b.Build(target, input)
}

// BuildAs builds a new entity and asserts its type.
func BuildAs[T any](b *Builder, input any) (T, error) {
	var zero T
	out, err := b.Build(nil, input)
	v, ok := out.(T)
	if !ok {
		if err != nil {
			return zero, err
		}
		return zero, fmt.Errorf("%s builder: built %T, want %T", b.rules.Name, out, zero)
	}
	return v, err
}
