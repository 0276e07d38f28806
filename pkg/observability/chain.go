package observability

import "github.com/aretw0/aggregate/pkg/domain"

// Chain merges hook sets. Each event is delivered to every set in order.
func Chain(sets ...domain.LifecycleHooks) domain.LifecycleHooks {
	var out domain.LifecycleHooks
	for _, h := range sets {
		out.OnBuildStart = chain(out.OnBuildStart, h.OnBuildStart)
		out.OnBuildFinish = chain(out.OnBuildFinish, h.OnBuildFinish)
		out.OnDiagnostic = chain(out.OnDiagnostic, h.OnDiagnostic)
		out.OnMember = chain(out.OnMember, h.OnMember)
	}
	return out
}

func chain[E any](a, b func(*E)) func(*E) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(e *E) {
		a(e)
		b(e)
	}
}
