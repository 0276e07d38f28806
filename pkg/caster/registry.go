package caster

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/aretw0/aggregate/pkg/domain"
)

// Registry maps type tokens to casters.
type Registry struct {
	mu      sync.RWMutex
	casters map[string]Caster
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		casters: make(map[string]Caster),
	}
}

// Default creates a registry holding every built-in caster and its aliases.
func Default() *Registry {
	r := NewRegistry()
	for _, c := range []Caster{String(), Integer(), Float(), Boolean(), Date(), Time(), DateTime(), Object(), ObjectList()} {
		r.Register(c.Name(), c)
	}
	r.Register("int", Integer())
	r.Register("decimal", Float())
	r.Register("bool", Boolean())
	return r
}

// Register adds a caster under token.
// If a caster with the same token exists, it is overwritten.
func (r *Registry) Register(token string, c Caster) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.casters[normalizeToken(token)] = c
}

// Lookup resolves a type token. An empty token resolves to the string caster.
func (r *Registry) Lookup(token string) (Caster, error) {
	key := normalizeToken(token)
	if key == "" {
		key = "string"
	}

	r.mu.RLock()
	c, ok := r.casters[key]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownCaster, token)
	}
	return c, nil
}

// Tokens returns every registered token, sorted.
func (r *Registry) Tokens() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.casters))
	for k := range r.casters {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// normalizeToken accepts ":integer" and "Integer" as "integer".
func normalizeToken(token string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(token), ":"))
}
