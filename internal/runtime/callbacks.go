package runtime

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/aretw0/aggregate/pkg/domain"
)

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// runCallbacks invokes the callbacks of phase in registration order.
// Callback errors are never filtered by the severity policy.
func (b *build) runCallbacks(phase domain.Phase) error {
	for i, cb := range b.rules.CallbacksFor(phase) {
		var err error
		name := cb.Method
		if cb.Func != nil {
			name = fmt.Sprintf("#%d", i)
			err = cb.Func(b.scope, b.entity, b.input)
		} else {
			err = callMethod(b.scope, cb.Method, b.entity, b.input)
		}
		if err != nil {
			return fmt.Errorf("%s callback %s: %w", phase, name, err)
		}
	}
	return nil
}

// callMethod invokes scope.name(entity, input). The method may return nothing or an error.
func callMethod(scope any, name string, entity any, input domain.InputMap) error {
	out, err := invoke(scope, name, entity, input)
	if err != nil {
		return err
	}
	switch {
	case len(out) == 0:
		return nil
	case len(out) == 1 && out[0].Type().Implements(errorType):
		if out[0].IsNil() {
			return nil
		}
		return out[0].Interface().(error)
	default:
		return fmt.Errorf("method %s of %T must return nothing or an error", name, scope)
	}
}

// callPredicate invokes scope.name(entity, input), which must return bool or (bool, error).
func callPredicate(scope any, name string, entity any, input domain.InputMap) (bool, error) {
	out, err := invoke(scope, name, entity, input)
	if err != nil {
		return false, err
	}
	if len(out) == 0 || len(out) > 2 || out[0].Kind() != reflect.Bool {
		return false, fmt.Errorf("method %s of %T must return bool", name, scope)
	}
	if len(out) == 2 {
		if !out[1].Type().Implements(errorType) {
			return false, fmt.Errorf("method %s of %T must return (bool, error)", name, scope)
		}
		if !out[1].IsNil() {
			return false, out[1].Interface().(error)
		}
	}
	return out[0].Bool(), nil
}

func invoke(scope any, name string, entity any, input domain.InputMap) ([]reflect.Value, error) {
	if scope == nil {
		return nil, errors.New("no builder scope to call " + name + " on")
	}
	m := reflect.ValueOf(scope).MethodByName(name)
	if !m.IsValid() {
		return nil, fmt.Errorf("builder scope %T has no method %s", scope, name)
	}
	mt := m.Type()
	if mt.NumIn() != 2 {
		return nil, fmt.Errorf("method %s of %T must take (entity, input)", name, scope)
	}

	ev := reflect.ValueOf(entity)
	if !ev.IsValid() || !ev.Type().AssignableTo(mt.In(0)) {
		return nil, fmt.Errorf("method %s of %T cannot take entity %T", name, scope, entity)
	}
	iv := reflect.ValueOf(input)
	if !iv.Type().AssignableTo(mt.In(1)) {
		return nil, fmt.Errorf("method %s of %T cannot take input %s", name, scope, iv.Type())
	}
	return m.Call([]reflect.Value{ev, iv}), nil
}
