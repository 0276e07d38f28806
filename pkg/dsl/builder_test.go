package dsl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/aggregate/pkg/caster"
	"github.com/aretw0/aggregate/pkg/domain"
	"github.com/aretw0/aggregate/pkg/entity"
	"github.com/aretw0/aggregate/pkg/rules"
)

type email struct {
	ID    int
	Email string
}

type person struct {
	Name     string
	Age      int
	Emails   []*email
	Children []*person
}

func TestBuilder_Declarations(t *testing.T) {
	e := For[email]("email")
	e.Primary("id").Type("integer")
	e.Field("email").Required()
	emailRules, err := e.Build()
	require.NoError(t, err)
	assert.Equal(t, "id", emailRules.PrimaryKey)

	b := For[person]("person")
	b.Fields("name", "nickname")
	b.Field("age").Type(":Integer").Alias("years").RequiredIf("NeedsAge")
	b.Field("nickname").Ignore()
	b.Many("emails", emailRules).Deletable().RejectKey("skip")
	b.Before("Prepare").AfterFunc(func(scope, e any, in domain.InputMap) error { return nil })
	b.Severity(domain.SeverityError)

	rs, err := b.Build()
	require.NoError(t, err)

	assert.Equal(t, "person", rs.Name)
	assert.Equal(t, domain.SeverityError, rs.Severity)
	require.Len(t, rs.Fields, 3)
	assert.Equal(t, "name", rs.Fields[0].Name)
	assert.Equal(t, "string", rs.Fields[0].Caster.Name())
	assert.True(t, rs.Fields[1].Ignore)

	age := rs.Fields[2]
	assert.Equal(t, "integer", age.Caster.Name())
	assert.Equal(t, []string{"age", "years"}, age.Keys())
	assert.Equal(t, rules.WhenMethod("NeedsAge"), age.Required)

	emails, ok := rs.Association("emails")
	require.True(t, ok)
	assert.Equal(t, domain.Many, emails.Cardinality)
	assert.Same(t, emailRules, emails.Rules)
	assert.True(t, emails.Deletable)
	assert.True(t, emails.RejectIf(domain.InputMap{"skip": "yes"}))

	assert.Equal(t, []rules.CallbackSpec{{Method: "Prepare"}}, rs.CallbacksFor(domain.PhaseBefore))
	assert.Len(t, rs.CallbacksFor(domain.PhaseAfter), 1)

	_, isPerson := rs.New().(*person)
	assert.True(t, isPerson)
}

func TestBuilder_FieldRedeclarationUpdatesInPlace(t *testing.T) {
	b := New("rec", func() any { return entity.NewRecord("rec") })
	b.Field("a")
	b.Field("b")
	b.Field("a").Type("integer")

	rs, err := b.Build()
	require.NoError(t, err)
	require.Len(t, rs.Fields, 2)
	assert.Equal(t, "a", rs.Fields[0].Name)
	assert.Equal(t, "integer", rs.Fields[0].Caster.Name())
}

func TestBuilder_ObjectFieldsBecomeAssociations(t *testing.T) {
	nested := MustBuild(For[email]("email").Fields("email"))

	b := For[person]("person")
	b.Field("name")
	b.Field("emails").Type("array_of_objects").Of(nested).Deletable()
	b.Field("best").Type("object").Of(nested)

	rs, err := b.Build()
	require.NoError(t, err)
	require.Len(t, rs.Fields, 1)
	require.Len(t, rs.Associations, 2)
	assert.Equal(t, rules.AssociationSpec{Name: "emails", Cardinality: domain.Many, Rules: nested, Deletable: true}, rs.Associations[0])
	assert.Equal(t, domain.One, rs.Associations[1].Cardinality)

	b.Field("orphan").Type("object")
	_, err = b.Build()
	assert.ErrorContains(t, err, `field "orphan" of type object needs a nested rule set`)
}

func TestBuilder_AssociationsKeepDeclarationOrder(t *testing.T) {
	nested := MustBuild(For[email]("email").Fields("email"))

	b := For[person]("person")
	b.Many("emails", nested)
	b.Field("name")
	b.Field("best").Type("object").Of(nested)
	b.One("backup", nested)
	b.Field("children").Type("array_of_objects").Of(Self)

	rs, err := b.Build()
	require.NoError(t, err)

	var names []string
	for _, a := range rs.Associations {
		names = append(names, a.Name)
	}
	assert.Equal(t, []string{"emails", "best", "backup", "children"}, names)
	require.Len(t, rs.Fields, 1)

	// Order survives inheritance.
	child, err := From(rs).Build()
	require.NoError(t, err)
	for i, a := range child.Associations {
		assert.Equal(t, names[i], a.Name)
	}
	assert.Same(t, child, child.Associations[3].Rules)
}

func TestBuilder_Errors(t *testing.T) {
	_, err := New("nofactory", nil).Fields("a").Build()
	assert.ErrorIs(t, err, domain.ErrUndefinedRootClass)

	rs, err := New("base", nil).Fields("a").BuildDefaults()
	require.NoError(t, err)
	assert.Nil(t, rs.New)

	b := For[person]("person")
	b.Field("age").Type("money")
	b.Field("name").Alias("age")
	_, err = b.Build()
	assert.ErrorIs(t, err, domain.ErrUnknownCaster)
	assert.ErrorContains(t, err, `field "age": unknown type caster: money`)

	b = For[person]("person")
	b.Field("name").Alias("nick")
	b.Field("nick")
	_, err = b.Build()
	assert.ErrorContains(t, err, `key "nick" of "nick" already used by "name"`)

	assert.Panics(t, func() { MustBuild(New("x", nil)) })
}

func TestBuilder_CustomRegistry(t *testing.T) {
	reg := caster.NewRegistry()
	reg.Register("upper", caster.Func("upper", func(raw any) (any, error) { return raw, nil }))

	b := New("rec", func() any { return entity.NewRecord("rec") }).WithRegistry(reg)
	b.Field("code").Type("upper")
	rs, err := b.Build()
	require.NoError(t, err)
	assert.Equal(t, "upper", rs.Fields[0].Caster.Name())
}

func TestBuilder_SearchAndDeleteKeys(t *testing.T) {
	b := New("rec", func() any { return entity.NewRecord("rec") }).SearchKey("uuid").DeleteKey("remove")
	rs, err := b.Build()
	require.NoError(t, err)

	member := entity.NewRecord("m")
	_ = member.SetField("uuid", "abc")
	assert.True(t, rs.KeyMatch(member, domain.InputMap{"uuid": "abc"}))
	assert.False(t, rs.KeyMatch(member, domain.InputMap{"id": "abc"}))
	assert.True(t, rs.DeletePredicate()(domain.InputMap{"remove": "true"}))
	assert.False(t, rs.DeletePredicate()(domain.InputMap{"_destroy": "true"}))
}

func TestFrom_InheritsAndOverrides(t *testing.T) {
	base := New("base", nil)
	base.Field("name").Required()
	base.Field("age").Type("integer")
	base.Before("Prepare")
	base.Severity(domain.SeverityWarn)
	parent, err := base.BuildDefaults()
	require.NoError(t, err)

	child := From(parent).Named("child").Factory(func() any { return &person{} })
	child.Field("name").Optional().Alias("full_name")
	child.Field("nickname")
	child.After("Finish")
	rs, err := child.Build()
	require.NoError(t, err)

	assert.Equal(t, "child", rs.Name)
	assert.Equal(t, domain.SeverityWarn, rs.Severity)
	require.Len(t, rs.Fields, 3)
	assert.False(t, rs.Fields[0].Required.IsSet())
	assert.Equal(t, []string{"full_name"}, rs.Fields[0].Aliases)
	assert.Len(t, rs.CallbacksFor(domain.PhaseBefore), 1)
	assert.Len(t, rs.CallbacksFor(domain.PhaseAfter), 1)

	// The parent is untouched.
	require.Len(t, parent.Fields, 2)
	assert.True(t, parent.Fields[0].Required.Always)
	assert.Empty(t, parent.Fields[0].Aliases)
	assert.Empty(t, parent.CallbacksFor(domain.PhaseAfter))
}

func TestBuilder_SelfReference(t *testing.T) {
	b := For[person]("person")
	b.Field("name")
	b.Many("children", Self)
	rs, err := b.Build()
	require.NoError(t, err)

	children, _ := rs.Association("children")
	assert.Same(t, rs, children.Rules)

	derived, err := From(rs).Named("derived").Build()
	require.NoError(t, err)
	children, _ = derived.Association("children")
	assert.Same(t, derived, children.Rules)
}
