package companies

import (
	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	edits    prometheus.Counter
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gridview",
			Name:      "http_requests_total",
			Help:      "Total count of company API requests.",
		}, []string{"route", "method", "status_code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "gridview",
			Name:      "http_request_duration_seconds",
			Help:      "Time spent serving company API requests.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
		}, []string{"route", "method"}),
		edits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "gridview",
			Name:      "company_edits_total",
			Help:      "Total count of applied company edits.",
		}),
	}
	reg.MustRegister(m.requests, m.duration, m.edits)
	return m
}
