package caster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/aggregate/pkg/domain"
)

func TestRegistry_Lookup(t *testing.T) {
	reg := Default()

	tests := []struct {
		token string
		want  string
	}{
		{"", "string"},
		{"string", "string"},
		{":integer", "integer"},
		{"int", "integer"},
		{"Float", "float"},
		{"decimal", "float"},
		{"bool", "boolean"},
		{"date", "date"},
		{"time", "time"},
		{"datetime", "datetime"},
		{"object", "object"},
		{"array_of_objects", "array_of_objects"},
	}

	for _, tt := range tests {
		c, err := reg.Lookup(tt.token)
		require.NoError(t, err, tt.token)
		assert.Equal(t, tt.want, c.Name(), tt.token)
	}
}

func TestRegistry_Unknown(t *testing.T) {
	_, err := Default().Lookup("money")
	assert.ErrorIs(t, err, domain.ErrUnknownCaster)
	assert.Contains(t, err.Error(), "money")
}

func TestRegistry_RegisterCustom(t *testing.T) {
	reg := NewRegistry()
	reg.Register("Echo", Func("echo", func(raw any) (any, error) { return raw, nil }))

	c, err := reg.Lookup("echo")
	require.NoError(t, err)
	v, err := c.Cast(5)
	require.NoError(t, err)
	assert.Equal(t, 5, v)
	assert.Equal(t, []string{"echo"}, reg.Tokens())
}
