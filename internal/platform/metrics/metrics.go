// Package metrics holds the Prometheus collectors exported at /metrics.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// RequestsTotal counts HTTP requests by method and status class ("2xx", "4xx", ...).
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hackr_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "status"},
	)

	// RequestDuration records HTTP request duration in seconds by method.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hackr_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	// AuditWritesTotal counts access log writes by result ("ok" or "error").
	AuditWritesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hackr_audit_writes_total",
			Help: "Access log writes",
		},
		[]string{"result"},
	)

	// AuthRejectionsTotal counts requests stopped by the auth chain, by reason.
	AuthRejectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hackr_auth_rejections_total",
			Help: "Requests rejected by authentication or authorization",
		},
		[]string{"reason"},
	)

	// SimulationRequestsTotal counts outbound simulation requests by outcome ("sent" or "failed").
	SimulationRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hackr_simulation_requests_total",
			Help: "Outbound load simulation requests",
		},
		[]string{"outcome"},
	)
)

func init() {
	prometheus.MustRegister(
		RequestsTotal,
		RequestDuration,
		AuditWritesTotal,
		AuthRejectionsTotal,
		SimulationRequestsTotal,
	)
}
