package rules

import (
	"errors"
	"fmt"

	"github.com/aretw0/aggregate/pkg/caster"
	"github.com/aretw0/aggregate/pkg/domain"
)

// Validate checks the structural invariants of the rule set:
// unique field names, aliases that overlap no name or alias, associations that do not
// shadow fields, and well-formed callbacks. All failures are reported together.
func (rs *RuleSet) Validate() error {
	var errs []error
	seen := make(map[string]string) // key -> owning field

	claim := func(key, owner string) {
		if prev, ok := seen[key]; ok {
			errs = append(errs, fmt.Errorf("%s: key %q of %q already used by %q", rs.Name, key, owner, prev))
			return
		}
		seen[key] = owner
	}

	for _, f := range rs.Fields {
		if f.Name == "" {
			errs = append(errs, fmt.Errorf("%s: field without name", rs.Name))
			continue
		}
		for _, k := range f.Keys() {
			claim(k, f.Name)
		}
		if f.Caster == nil {
			errs = append(errs, fmt.Errorf("%s: field %q has no caster", rs.Name, f.Name))
		} else if caster.IsAssociation(f.Caster) {
			errs = append(errs, fmt.Errorf("%s: field %q has association type %q", rs.Name, f.Name, f.Caster.Name()))
		}
	}

	for _, a := range rs.Associations {
		if a.Name == "" {
			errs = append(errs, fmt.Errorf("%s: association without name", rs.Name))
			continue
		}
		claim(a.Name, a.Name)
		if a.Cardinality != domain.One && a.Cardinality != domain.Many {
			errs = append(errs, fmt.Errorf("%s: association %q has invalid cardinality %q", rs.Name, a.Name, a.Cardinality))
		}
		if a.Rules == nil {
			errs = append(errs, fmt.Errorf("%s: association %q has no rule set", rs.Name, a.Name))
		} else if a.Factory() == nil {
			errs = append(errs, fmt.Errorf("%s: association %q: %w", rs.Name, a.Name, domain.ErrUndefinedRootClass))
		}
	}

	for phase, cbs := range rs.Callbacks {
		if phase != domain.PhaseBefore && phase != domain.PhaseBeforeChildren && phase != domain.PhaseAfter {
			errs = append(errs, fmt.Errorf("%s: unknown callback phase %q", rs.Name, phase))
		}
		for i, cb := range cbs {
			if (cb.Method == "") == (cb.Func == nil) {
				errs = append(errs, fmt.Errorf("%s: %s callback #%d needs exactly one of method or func", rs.Name, phase, i))
			}
		}
	}

	return errors.Join(errs...)
}
