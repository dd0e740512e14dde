package app

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics is the Prometheus-backed implementation of session.Metrics.
type Metrics struct {
	registry *prometheus.Registry

	loginAttempts   *prometheus.CounterVec
	refreshAttempts *prometheus.CounterVec
	revocations     prometheus.Counter
	failClosed      prometheus.Counter
}

// NewMetrics builds the auth counters on a private registry, alongside the
// standard Go and process collectors.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: reg,
		loginAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "srauth_login_attempts_total",
			Help: "Login attempts by result.",
		}, []string{"result"}),
		refreshAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "srauth_refresh_attempts_total",
			Help: "Refresh attempts by result.",
		}, []string{"result"}),
		revocations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "srauth_revocations_total",
			Help: "Refresh-token jtis written to the revocation store.",
		}),
		failClosed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "srauth_fail_closed_total",
			Help: "Refreshes rejected because the revocation store was unreachable.",
		}),
	}
	reg.MustRegister(m.loginAttempts, m.refreshAttempts, m.revocations, m.failClosed)
	return m
}

// Handler serves the /metrics endpoint for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func result(ok bool) string {
	if ok {
		return "ok"
	}
	return "fail"
}

func (m *Metrics) LoginAttempt(ok bool)   { m.loginAttempts.WithLabelValues(result(ok)).Inc() }
func (m *Metrics) RefreshAttempt(ok bool) { m.refreshAttempts.WithLabelValues(result(ok)).Inc() }
func (m *Metrics) Revocation()            { m.revocations.Inc() }
func (m *Metrics) FailClosed()            { m.failClosed.Inc() }
