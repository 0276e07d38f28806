package runtime

import (
	"github.com/aretw0/aggregate/pkg/domain"
)

// violation is the outcome of a recoverable failure before the severity policy decides
// whether it is swallowed, reported or returned.
type violation struct {
	field  string
	kind   error // domain.ErrRequiredFieldMissing or domain.ErrCast
	reason string
	value  any
	cause  error
}

// surface applies the rule set's severity policy to v.
// It returns a non-nil error only under domain.SeverityError.
func (b *build) surface(v violation) error {
	switch b.rules.Severity {
	case domain.SeverityWarn:
		d := &domain.Diagnostic{
			Field:   v.field,
			Builder: b.rules.Name,
			Reason:  v.reason,
			Kind:    v.kind,
		}
		b.logger.Warn("builder violation", "field", d.Field, "reason", d.Reason)
		b.engine.emitDiagnostic(d)
		return nil
	case domain.SeverityError:
		cause := v.cause
		if cause == nil {
			cause = v.kind
		}
		return &domain.FieldError{
			Field:   v.field,
			Builder: b.rules.Name,
			Reason:  v.reason,
			Value:   v.value,
			Err:     cause,
		}
	default:
		return nil
	}
}
