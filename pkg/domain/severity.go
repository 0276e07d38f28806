package domain

import (
	"fmt"
	"strings"
)

// Severity controls how recoverable violations are surfaced.
type Severity int

const (
	// SeveritySilent swallows the violation and yields nil.
	SeveritySilent Severity = iota
	// SeverityWarn swallows the violation, yields nil and emits a Diagnostic.
	SeverityWarn
	// SeverityError aborts the build with a typed error.
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeveritySilent:
		return "silent"
	case SeverityWarn:
		return "warn"
	case SeverityError:
		return "error"
	default:
		return fmt.Sprintf("severity(%d)", int(s))
	}
}

// ParseSeverity converts a configuration token to a Severity.
// "exception" is accepted as a synonym of "error".
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "silent", "":
		return SeveritySilent, nil
	case "warn", "warning":
		return SeverityWarn, nil
	case "error", "exception":
		return SeverityError, nil
	default:
		return SeveritySilent, fmt.Errorf("unknown severity: %s", s)
	}
}

// UnmarshalText lets severities be decoded from YAML and flags.
func (s *Severity) UnmarshalText(text []byte) error {
	parsed, err := ParseSeverity(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
