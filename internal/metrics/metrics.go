package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vyaparsetu_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vyaparsetu_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
		[]string{"method", "path"},
	)

	// Business metrics
	RegistrationsAppended = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vyaparsetu_registrations_appended_total",
			Help: "Total registrations appended",
		},
	)

	RegistrationsDeleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vyaparsetu_registrations_deleted_total",
			Help: "Total registrations deleted",
		},
		[]string{"by"}, // "agent" or "admin"
	)

	Logins = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vyaparsetu_logins_total",
			Help: "Total successful logins",
		},
		[]string{"role"},
	)

	LoginFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vyaparsetu_login_failures_total",
			Help: "Total failed logins",
		},
	)

	Exports = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vyaparsetu_exports_total",
			Help: "Total report exports",
		},
		[]string{"format"},
	)

	LiveSubscriptions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "vyaparsetu_live_subscriptions",
			Help: "Open live dashboard streams",
		},
	)
)
