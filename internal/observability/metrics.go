package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups all Prometheus instruments used by the client.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	BackendRequests  *prometheus.CounterVec
	BackendRetries   *prometheus.CounterVec
	StateTransitions *prometheus.CounterVec
	RecapDiscarded   *prometheus.CounterVec
}

func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "lifecoo"
	}
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		BackendRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "backend_requests_total",
			Help:      "Backend request attempts by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
		BackendRetries: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "backend_retries_total",
			Help:      "Backend retries by endpoint.",
		}, []string{"endpoint"}),
		StateTransitions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "state_transitions_total",
			Help:      "Interaction state entries by state.",
		}, []string{"state"}),
		RecapDiscarded: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recap_discarded_total",
			Help:      "Recap audio fetched but never played, by reason.",
		}, []string{"reason"}),
	}
}

func (m *Metrics) ObserveRequest(endpoint, outcome string) {
	if m == nil {
		return
	}
	m.BackendRequests.WithLabelValues(endpoint, outcome).Inc()
}

func (m *Metrics) ObserveRetry(endpoint string) {
	if m == nil {
		return
	}
	m.BackendRetries.WithLabelValues(endpoint).Inc()
}

func (m *Metrics) ObserveState(state string) {
	if m == nil {
		return
	}
	m.StateTransitions.WithLabelValues(state).Inc()
}

func (m *Metrics) ObserveRecapDiscarded(reason string) {
	if m == nil {
		return
	}
	m.RecapDiscarded.WithLabelValues(reason).Inc()
}

// Handler exposes the private registry.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
