package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/aretw0/aggregate/pkg/domain"
)

// New creates a configured application logger.
// It writes to Stderr (to keep Stdout for the built output).
// It standardizes common keys (e.g., "error" -> "err").
func New(level slog.Level) *slog.Logger {
	return NewWriter(os.Stderr, level)
}

// NewWriter is New writing to w.
func NewWriter(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// Standardize 'error' key to 'err'
			if a.Key == "error" {
				a.Key = "err"
			}
			return a
		},
	}))
}

// NewNop returns a logger with every level disabled.
func NewNop() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// ParseLevel converts "debug", "info", "warn" or "error" to a level.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q", s)
	}
	return level, nil
}

// Hooks logs association changes at INFO and finished builds at DEBUG.
func Hooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnBuildFinish: func(e *domain.BuildEvent) {
			logger.Debug("build_finish", "builder", e.Builder, "path", e.Path, "depth", e.Depth, "err", e.Err)
		},
		OnMember: func(e *domain.MemberEvent) {
			logger.Info("member", "builder", e.Builder, "association", e.Association, "action", e.Action, "index", e.Index)
		},
	}
}
