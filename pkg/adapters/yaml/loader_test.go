package yaml_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/aggregate"
	"github.com/aretw0/aggregate/pkg/adapters/yaml"
	"github.com/aretw0/aggregate/pkg/domain"
	"github.com/aretw0/aggregate/pkg/entity"
)

const contactDoc = `
root: contact
builders:
  email:
    primary: id
    fields:
      - {name: id, type: integer}
      - {name: email, required: true}
      - {name: type, type: int}
  address:
    fields: [street, city]
  contact:
    log_type: exception
    fields:
      - {name: first_name, aliases: [name], required: true}
      - last_name
      - {name: rating, type: ":integer", aliases: [score]}
      - {name: date_of_birth, type: date}
      - {name: emails, type: array_of_objects, builder: email, deletable: true, reject_key: reject}
    associations:
      - {name: address, builder: address, deletable: true}
    callbacks:
      after: [Stamp]
`

type stamper struct{}

func (stamper) Stamp(rec *entity.Record, in map[string]any) error {
	return rec.SetField("stamped", true)
}

func TestParse_ContactDocument(t *testing.T) {
	set, err := yaml.New().Parse([]byte(contactDoc))
	require.NoError(t, err)
	assert.Equal(t, []string{"address", "contact", "email"}, set.Names())

	rs, err := set.RootRules()
	require.NoError(t, err)
	assert.Equal(t, "contact", rs.Name)
	assert.Equal(t, domain.SeverityError, rs.Severity)
	require.Len(t, rs.Fields, 4)
	assert.Equal(t, "integer", rs.Fields[2].Caster.Name())
	assert.Equal(t, []string{"score"}, rs.Fields[2].Aliases)

	emails, ok := rs.Association("emails")
	require.True(t, ok)
	assert.Equal(t, domain.Many, emails.Cardinality)
	assert.True(t, emails.Deletable)
	email, _ := set.Lookup("email")
	assert.Same(t, email, emails.Rules)
	assert.Equal(t, "id", email.PrimaryKey)

	address, ok := rs.Association("address")
	require.True(t, ok)
	assert.Equal(t, domain.One, address.Cardinality)
}

func TestParse_BuildsRecords(t *testing.T) {
	set, err := yaml.New().Parse([]byte(contactDoc))
	require.NoError(t, err)
	rs, err := set.RootRules()
	require.NoError(t, err)

	b, err := aggregate.New(rs, aggregate.WithScope(stamper{}))
	require.NoError(t, err)

	input, err := yaml.DecodeInput([]byte(`
name: John
score: "4"
date_of_birth: 12/09/1965
emails:
  - {email: a@example.com, type: 1}
  - {email: skip@example.com, reject: true}
address: {city: Lisbon}
`))
	require.NoError(t, err)

	out, err := b.Build(nil, input)
	require.NoError(t, err)
	rec := out.(*entity.Record)
	m := rec.Map()

	assert.Equal(t, "John", m["first_name"])
	assert.Equal(t, 4, m["rating"])
	assert.Equal(t, true, m["stamped"])
	assert.Equal(t, []any{map[string]any{"id": nil, "email": "a@example.com", "type": 1}}, m["emails"])
	assert.Equal(t, map[string]any{"street": nil, "city": "Lisbon"}, m["address"])

	_, err = b.Build(nil, map[string]any{"last_name": "Doe"})
	assert.ErrorIs(t, err, domain.ErrRequiredFieldMissing)
}

func TestParse_SelfReferenceAndInheritance(t *testing.T) {
	set, err := yaml.New().Parse([]byte(`
builders:
  node:
    severity: warn
    fields: [name]
    associations:
      - {name: children, many: true, builder: node}
  labelled:
    extends: node
    fields:
      - label
      - {name: name, required: true}
`))
	require.NoError(t, err)

	node, _ := set.Lookup("node")
	children, _ := node.Association("children")
	assert.Same(t, node, children.Rules)

	labelled, _ := set.Lookup("labelled")
	assert.Equal(t, domain.SeverityWarn, labelled.Severity)
	require.Len(t, labelled.Fields, 2)
	assert.True(t, labelled.Fields[0].Required.Always)
	assert.Equal(t, "label", labelled.Fields[1].Name)
	children, _ = labelled.Association("children")
	assert.Same(t, labelled, children.Rules)
	assert.Equal(t, "labelled", labelled.New().(*entity.Record).Kind)

	_, err = set.RootRules()
	assert.ErrorContains(t, err, "declares 2 builders and no root")

	b, err := aggregate.New(node)
	require.NoError(t, err)
	out, err := b.Build(nil, map[string]any{
		"name":     "root",
		"children": []any{map[string]any{"name": "leaf", "children": []any{}}},
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"name":     "root",
		"children": []any{map[string]any{"name": "leaf", "children": []any{}}},
	}, out.(*entity.Record).Map())
}

type Person struct {
	Name string
	Age  int
}

func TestLoader_WithFactory(t *testing.T) {
	set, err := yaml.New(yaml.WithFactory("person", func() any { return &Person{} })).Parse([]byte(`
root: person
builders:
  person:
    fields: [name, {name: age, type: integer}]
`))
	require.NoError(t, err)
	rs, err := set.RootRules()
	require.NoError(t, err)

	b, err := aggregate.New(rs)
	require.NoError(t, err)
	p, err := aggregate.BuildAs[*Person](b, map[string]any{"name": "Ann", "age": "30"})
	require.NoError(t, err)
	assert.Equal(t, &Person{Name: "Ann", Age: 30}, p)
}

func TestParse_Errors(t *testing.T) {
	cases := []struct {
		name string
		doc  string
		want string
	}{
		{"empty", `root: x`, "declares no builders"},
		{"syntax", "builders: [", "failed to parse rules"},
		{"unknown key", "builders: {a: {fieldz: [x]}}", "failed to decode rules"},
		{"unknown type", "builders: {a: {fields: [{name: x, type: money}]}}", `a: field "x": unknown type caster: money`},
		{"unknown builder", "builders: {a: {associations: [{name: b, builder: nope}]}}", `association "b" references unknown builder "nope"`},
		{"bad severity", "builders: {a: {severity: loud}}", "unknown severity: loud"},
		{"bad required", "builders: {a: {fields: [{name: x, required: 3}]}}", "required must be a boolean or a method name"},
		{"bad phase", "builders: {a: {callbacks: {during: [X]}}}", `unknown callback phase "during"`},
		{"cycle", "builders: {a: {extends: b}, b: {extends: a}}", "inheritance cycle"},
		{"unknown parent", "builders: {a: {extends: z}}", `extends unknown builder "z"`},
		{"missing root", "root: z\nbuilders: {a: {fields: [x]}}", `root builder "z" is not declared`},
		{"collision", "builders: {a: {fields: [x, {name: y, aliases: [x]}]}}", `key "x" of "y" already used by "x"`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := yaml.New().Parse([]byte(tc.doc))
			assert.ErrorContains(t, err, tc.want)
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contactDoc), 0o600))

	set, err := yaml.New().LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "contact", set.Root)

	_, err = yaml.New().LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read rules")
}

func TestDecodeInput(t *testing.T) {
	in, err := yaml.DecodeInput([]byte(`{"a": 1, "b": {"c": [true]}}`))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": 1, "b": map[string]any{"c": []any{true}}}, in)

	in, err = yaml.DecodeInput(nil)
	require.NoError(t, err)
	assert.Empty(t, in)

	_, err = yaml.DecodeInput([]byte("- a"))
	assert.Error(t, err)
}
