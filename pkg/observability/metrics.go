package observability

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aretw0/aggregate/pkg/domain"
)

// Metrics records build activity as Prometheus collectors.
type Metrics struct {
	Builds      *prometheus.CounterVec
	Diagnostics *prometheus.CounterVec
	Members     *prometheus.CounterVec
	Depth       *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg. A nil reg skips registration.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Builds: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "aggregate_builds_total",
				Help: "Total number of entity builds, nested ones included",
			},
			[]string{"builder", "result"},
		),
		Diagnostics: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "aggregate_diagnostics_total",
				Help: "Total number of reported violations",
			},
			[]string{"builder", "field", "kind"},
		),
		Members: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "aggregate_members_total",
				Help: "Total number of association members touched by reconciliation",
			},
			[]string{"builder", "association", "action"},
		),
		Depth: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "aggregate_build_depth",
				Help:    "Nesting depth of entity builds",
				Buckets: prometheus.LinearBuckets(0, 1, 8),
			},
			[]string{"builder"},
		),
	}

	if reg != nil {
		for _, c := range []prometheus.Collector{m.Builds, m.Diagnostics, m.Members, m.Depth} {
			if err := reg.Register(c); err != nil {
				return nil, err
			}
		}
	}
	return m, nil
}

// Hooks returns lifecycle hooks that update the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnBuildFinish: func(e *domain.BuildEvent) {
			result := "ok"
			if e.Err != nil {
				result = "error"
			}
			m.Builds.WithLabelValues(e.Builder, result).Inc()
			m.Depth.WithLabelValues(e.Builder).Observe(float64(e.Depth))
		},
		OnDiagnostic: func(d *domain.Diagnostic) {
			m.Diagnostics.WithLabelValues(d.Builder, d.Field, kindLabel(d.Kind)).Inc()
		},
		OnMember: func(e *domain.MemberEvent) {
			m.Members.WithLabelValues(e.Builder, e.Association, string(e.Action)).Inc()
		},
	}
}

func kindLabel(err error) string {
	switch {
	case errors.Is(err, domain.ErrRequiredFieldMissing):
		return "required"
	case errors.Is(err, domain.ErrCast):
		return "cast"
	default:
		return "other"
	}
}
