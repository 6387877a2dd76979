package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// ProviderMetrics records outbound calls to third-party providers (Stripe,
// Postmark).
type ProviderMetrics struct {
	duration *prometheus.HistogramVec
	calls    *prometheus.CounterVec
}

// NewProviderMetrics registers the provider call metrics on the provided registerer.
func NewProviderMetrics(reg prometheus.Registerer) *ProviderMetrics {
	if reg == nil {
		return &ProviderMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "provider_call_duration_seconds",
		Help:    "Duration of outbound provider calls in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"provider", "operation"})
	calls := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "provider_calls_total",
		Help: "Outbound provider calls by outcome.",
	}, []string{"provider", "operation", "outcome"})
	reg.MustRegister(duration, calls)
	return &ProviderMetrics{
		duration: duration,
		calls:    calls,
	}
}

// Observe records one finished call that started at started.
func (p *ProviderMetrics) Observe(provider, operation string, started time.Time, err error) {
	if p == nil || p.calls == nil {
		return
	}
	provider = normalizeLabel(provider)
	operation = normalizeLabel(operation)
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeError
	}
	p.calls.WithLabelValues(provider, operation, outcome).Inc()
	p.duration.WithLabelValues(provider, operation).Observe(time.Since(started).Seconds())
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
