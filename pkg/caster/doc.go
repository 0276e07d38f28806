/*
Package caster converts raw input values into typed field values.

A Caster is a stateless strategy identified by a type token ("integer", "date", ...).
The Registry maps tokens to casters and accepts custom strategies:

	reg := caster.Default()
	reg.Register("cents", caster.Func("cents", func(raw any) (any, error) {
		f, err := caster.Float().Cast(raw)
		if err != nil || f == nil {
			return nil, err
		}
		return int64(f.(float64) * 100), nil
	}))

Every built-in caster maps nil to nil: absence is not a cast failure.
Failures are reported as *domain.CastError.
*/
package caster
