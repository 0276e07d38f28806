package yaml

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"sort"

	"github.com/mitchellh/mapstructure"
	goyaml "gopkg.in/yaml.v3"

	"github.com/aretw0/aggregate/pkg/caster"
	"github.com/aretw0/aggregate/pkg/domain"
	"github.com/aretw0/aggregate/pkg/dsl"
	"github.com/aretw0/aggregate/pkg/entity"
	"github.com/aretw0/aggregate/pkg/rules"
)

// Loader compiles YAML rules documents into rule sets.
type Loader struct {
	factories map[string]rules.Factory
	registry  *caster.Registry
}

// Option defines a functional option for configuring the Loader.
type Option func(*Loader)

// WithFactory constructs the entities of the named builder with f instead of a Record.
func WithFactory(builder string, f rules.Factory) Option {
	return func(l *Loader) {
		l.factories[builder] = f
	}
}

// WithRegistry sets the registry type tokens are resolved in.
func WithRegistry(r *caster.Registry) Option {
	return func(l *Loader) {
		if r != nil {
			l.registry = r
		}
	}
}

// New creates a loader.
func New(opts ...Option) *Loader {
	l := &Loader{
		factories: make(map[string]rules.Factory),
		registry:  caster.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Set is the group of rule sets declared by one document.
type Set struct {
	Root  string
	rules map[string]*rules.RuleSet
}

// Lookup returns the rule set of the named builder.
func (s *Set) Lookup(name string) (*rules.RuleSet, bool) {
	rs, ok := s.rules[name]
	return rs, ok
}

// RootRules returns the rule set named by the document root, or the only one declared.
func (s *Set) RootRules() (*rules.RuleSet, error) {
	name := s.Root
	if name == "" {
		if len(s.rules) != 1 {
			return nil, fmt.Errorf("document declares %d builders and no root", len(s.rules))
		}
		for only := range s.rules {
			name = only
		}
	}
	rs, ok := s.rules[name]
	if !ok {
		return nil, fmt.Errorf("root builder %q is not declared", name)
	}
	return rs, nil
}

// Names returns the declared builder names in sorted order.
func (s *Set) Names() []string {
	names := make([]string, 0, len(s.rules))
	for name := range s.rules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LoadFile reads and compiles a rules file.
func (l *Loader) LoadFile(path string) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules: %w", err)
	}
	return l.Parse(data)
}

// Parse compiles a rules document.
func (l *Loader) Parse(data []byte) (*Set, error) {
	var raw map[string]any
	if err := goyaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse rules: %w", err)
	}

	var doc documentDTO
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      &doc,
		ErrorUnused: true,
		DecodeHook:  mapstructure.DecodeHookFuncType(fieldShorthand),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create decoder: %w", err)
	}
	if err := dec.Decode(raw); err != nil {
		return nil, fmt.Errorf("failed to decode rules: %w", err)
	}
	return l.compile(doc)
}

// DecodeInput parses a YAML (or JSON) document into build input.
func DecodeInput(data []byte) (map[string]any, error) {
	var input map[string]any
	if err := goyaml.Unmarshal(data, &input); err != nil {
		return nil, fmt.Errorf("failed to parse input: %w", err)
	}
	if input == nil {
		input = map[string]any{}
	}
	return input, nil
}

var fieldDTOType = reflect.TypeOf(fieldDTO{})

// fieldShorthand expands a bare field name into {name: ...}.
func fieldShorthand(from, to reflect.Type, data any) (any, error) {
	if to == fieldDTOType && from.Kind() == reflect.String {
		return map[string]any{"name": data}, nil
	}
	return data, nil
}

func (l *Loader) factory(name string) rules.Factory {
	if f, ok := l.factories[name]; ok {
		return f
	}
	return func() any { return entity.NewRecord(name) }
}

const (
	unvisited = iota
	visiting
	done
)

type compiler struct {
	loader *Loader
	doc    documentDTO
	set    *Set
	state  map[string]int
}

func (l *Loader) compile(doc documentDTO) (*Set, error) {
	if len(doc.Builders) == 0 {
		return nil, errors.New("rules document declares no builders")
	}

	// Placeholders first, so that builders can reference each other in any order.
	set := &Set{Root: doc.Root, rules: make(map[string]*rules.RuleSet, len(doc.Builders))}
	for name := range doc.Builders {
		set.rules[name] = &rules.RuleSet{Name: name, New: l.factory(name)}
	}

	c := &compiler{loader: l, doc: doc, set: set, state: make(map[string]int)}
	var errs []error
	for _, name := range set.Names() {
		if err := c.resolve(name); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	if doc.Root != "" {
		if _, ok := set.rules[doc.Root]; !ok {
			return nil, fmt.Errorf("root builder %q is not declared", doc.Root)
		}
	}
	return set, nil
}

// resolve compiles name after the builder it extends.
func (c *compiler) resolve(name string) error {
	switch c.state[name] {
	case done:
		return nil
	case visiting:
		return fmt.Errorf("%s: inheritance cycle", name)
	}
	c.state[name] = visiting

	dto := c.doc.Builders[name]
	if dto.Extends != "" {
		if _, ok := c.doc.Builders[dto.Extends]; !ok {
			return fmt.Errorf("%s: extends unknown builder %q", name, dto.Extends)
		}
		if err := c.resolve(dto.Extends); err != nil {
			return err
		}
	}

	rs, err := c.build(name, dto)
	if err != nil {
		return err
	}

	placeholder := c.set.rules[name]
	for i := range rs.Associations {
		if rs.Associations[i].Rules == rs {
			rs.Associations[i].Rules = placeholder
		}
	}
	*placeholder = *rs
	c.state[name] = done
	return nil
}

func (c *compiler) build(name string, dto builderDTO) (*rules.RuleSet, error) {
	factory := c.loader.factory(name)

	var b *dsl.Builder
	if dto.Extends != "" {
		b = dsl.From(c.set.rules[dto.Extends]).Named(name).Factory(factory)
	} else {
		b = dsl.New(name, factory)
	}
	b.WithRegistry(c.loader.registry)

	token := dto.Severity
	if token == "" {
		token = dto.LogType
	}
	if token != "" {
		severity, err := domain.ParseSeverity(token)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		b.Severity(severity)
	}
	if dto.Primary != "" {
		b.Primary(dto.Primary)
	}
	if dto.SearchKey != "" {
		b.SearchKey(dto.SearchKey)
	}
	if dto.DeleteKey != "" {
		b.DeleteKey(dto.DeleteKey)
	}

	for _, f := range dto.Fields {
		if err := c.field(b, name, f); err != nil {
			return nil, err
		}
	}
	for _, a := range dto.Associations {
		if err := c.associate(b, name, a); err != nil {
			return nil, err
		}
	}
	for phase, methods := range dto.Callbacks {
		for _, m := range methods {
			switch domain.Phase(phase) {
			case domain.PhaseBefore:
				b.Before(m)
			case domain.PhaseBeforeChildren:
				b.BeforeChildren(m)
			case domain.PhaseAfter:
				b.After(m)
			default:
				return nil, fmt.Errorf("%s: unknown callback phase %q", name, phase)
			}
		}
	}

	return b.Build()
}

func (c *compiler) field(b *dsl.Builder, owner string, f fieldDTO) error {
	if f.Name == "" {
		return fmt.Errorf("%s: field without name", owner)
	}
	typ, err := c.loader.registry.Lookup(f.Type)
	if err != nil {
		return fmt.Errorf("%s: field %q: %w", owner, f.Name, err)
	}

	if caster.IsAssociation(typ) {
		many := false
		if oc, ok := typ.(*caster.ObjectCaster); ok {
			many = oc.Many()
		}
		return c.associate(b, owner, associationDTO{
			Name:      f.Name,
			Many:      many,
			Builder:   f.Builder,
			Deletable: f.Deletable,
			RejectKey: f.RejectKey,
		})
	}

	fb := b.Field(f.Name).Alias(f.Aliases...)
	if f.Type != "" {
		fb.Caster(typ)
	}
	if f.Ignore {
		fb.Ignore()
	}
	switch req := f.Required.(type) {
	case nil:
	case bool:
		if req {
			fb.Required()
		} else {
			fb.Optional()
		}
	case string:
		fb.RequiredIf(req)
	default:
		return fmt.Errorf("%s: field %q: required must be a boolean or a method name, got %T", owner, f.Name, f.Required)
	}
	return nil
}

func (c *compiler) associate(b *dsl.Builder, owner string, a associationDTO) error {
	nested, ok := c.set.rules[a.Builder]
	if !ok {
		return fmt.Errorf("%s: association %q references unknown builder %q", owner, a.Name, a.Builder)
	}

	var ab *dsl.AssociationBuilder
	if a.Many {
		ab = b.Many(a.Name, nested)
	} else {
		ab = b.One(a.Name, nested)
	}
	if a.Deletable {
		ab.Deletable()
	}
	if a.RejectKey != "" {
		ab.RejectKey(a.RejectKey)
	}
	return nil
}
