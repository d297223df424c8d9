package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	SignupsTotal       prometheus.Counter
	LoginsTotal        prometheus.Counter
	LoginFailuresTotal prometheus.Counter
	MessagesSentTotal  prometheus.Counter
	RequestDuration    *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		SignupsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "chirp_signups_total",
			Help: "Total number of accounts created",
		}),
		LoginsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "chirp_logins_total",
			Help: "Total number of successful logins",
		}),
		LoginFailuresTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "chirp_login_failures_total",
			Help: "Total number of rejected login attempts",
		}),
		MessagesSentTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "chirp_messages_sent_total",
			Help: "Total number of direct messages stored",
		}),
		RequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "chirp_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "status"}),
	}
}
