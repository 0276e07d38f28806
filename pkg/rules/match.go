package rules

import (
	"github.com/spf13/cast"

	"github.com/aretw0/aggregate/pkg/domain"
	"github.com/aretw0/aggregate/pkg/entity"
)

// MatchByKey matches members whose key property equals item[key].
// Values are compared in their string form, so 1 matches "1".
// An item without the key, or with a nil value, matches nothing.
func MatchByKey(key string) KeyMatchFn {
	return MatchByKeyFunc(key, func(v any) any {
		s, err := cast.ToStringE(v)
		if err != nil {
			return v
		}
		return s
	})
}

// MatchByKeyFunc is MatchByKey with a caller-supplied normalisation applied to both sides.
func MatchByKeyFunc(key string, normalize func(any) any) KeyMatchFn {
	return func(member any, item domain.InputMap) bool {
		want, ok := item[key]
		if !ok || entity.IsNil(want) {
			return false
		}
		got, ok := entity.Get(member, key)
		if !ok || entity.IsNil(got) {
			return false
		}
		return normalize(got) == normalize(want)
	}
}

// DeleteByKey flags items whose key holds a truthy value ("1", "true", "y", "yes", true).
func DeleteByKey(key string) DeletePredicateFn {
	return func(item domain.InputMap) bool {
		if item == nil {
			return false
		}
		return domain.Truthy(item[key])
	}
}

// RejectByKey skips items whose key holds a truthy value.
func RejectByKey(key string) RejectFn {
	return func(item domain.InputMap) bool {
		return domain.Truthy(item[key])
	}
}
