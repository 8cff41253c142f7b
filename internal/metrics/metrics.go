package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the guard's Prometheus collectors. A nil *Metrics is valid and
// records nothing, so components can be built without instrumentation.
type Metrics struct {
	registry *prometheus.Registry

	validations        *prometheus.CounterVec
	validationDuration *prometheus.HistogramVec
	classifierRequests *prometheus.CounterVec
	classifierDuration *prometheus.HistogramVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		validations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "guard_validations_total",
			Help: "Validator invocations by outcome.",
		}, []string{"validator", "outcome"}),
		validationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "guard_validation_duration_seconds",
			Help:    "Validator latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"validator"}),
		classifierRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "guard_classifier_requests_total",
			Help: "Classifier calls by status.",
		}, []string{"endpoint", "status"}),
		classifierDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "guard_classifier_duration_seconds",
			Help:    "Classifier round-trip latency.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"endpoint"}),
	}
}

func (m *Metrics) ObserveValidation(validator string, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.validations.WithLabelValues(validator, outcome).Inc()
	m.validationDuration.WithLabelValues(validator).Observe(d.Seconds())
}

func (m *Metrics) ObserveClassifier(endpoint string, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.classifierRequests.WithLabelValues(endpoint, status).Inc()
	m.classifierDuration.WithLabelValues(endpoint).Observe(d.Seconds())
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
