package metrics

import (
	"net/http"

	"archie-core-auth-gateway/internal/domain"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "auth_gateway"

// Prometheus implements ports.Metrics on a dedicated registry
type Prometheus struct {
	registry     *prometheus.Registry
	authAttempts *prometheus.CounterVec
	webhooks     *prometheus.CounterVec
	taskFailures *prometheus.CounterVec
}

// NewPrometheus registers the gateway collectors together with the Go and
// process collectors
func NewPrometheus() *Prometheus {
	m := &Prometheus{
		registry: prometheus.NewRegistry(),
		authAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auth_attempts_total",
			Help:      "Credential authorization attempts by auth mode and outcome.",
		}, []string{"mode", "outcome"}),
		webhooks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "webhooks_received_total",
			Help:      "Provider webhooks received by outcome.",
		}, []string{"outcome"}),
		taskFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "background_task_failures_total",
			Help:      "Background tasks that returned an error or panicked.",
		}, []string{"task"}),
	}

	m.registry.MustRegister(
		m.authAttempts,
		m.webhooks,
		m.taskFailures,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// AuthAttempt counts a finished authorization attempt
func (m *Prometheus) AuthAttempt(mode domain.AuthMode, outcome string) {
	m.authAttempts.WithLabelValues(string(mode), outcome).Inc()
}

// WebhookReceived counts a webhook by outcome
func (m *Prometheus) WebhookReceived(outcome string) {
	m.webhooks.WithLabelValues(outcome).Inc()
}

// TaskFailed counts a failed background task
func (m *Prometheus) TaskFailed(name string) {
	m.taskFailures.WithLabelValues(name).Inc()
}

// Handler serves the registry in the exposition format
func (m *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
