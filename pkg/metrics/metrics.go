package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	ProviderRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "checkout",
			Name:      "provider_requests_total",
			Help:      "Outbound checkout creation calls by payload shape and outcome",
		},
		[]string{"shape", "outcome"},
	)

	ProviderRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "checkout",
			Name:      "provider_request_duration_seconds",
			Help:      "Latency of outbound checkout creation calls",
			Buckets: []float64{
				0.05, 0.1, 0.2, 0.3, 0.5, 0.8, 1.2, 2, 3, 5, 8, 10,
			},
		},
		[]string{"shape"},
	)

	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "checkout",
			Name:      "http_requests_total",
			Help:      "Inbound HTTP requests by method, route and status",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "checkout",
			Name:      "http_request_duration_seconds",
			Help:      "Inbound HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	WebhookEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "checkout",
			Name:      "webhook_events_total",
			Help:      "Webhook notifications received by event kind",
		},
		[]string{"event"},
	)
)

func init() {
	prometheus.MustRegister(
		ProviderRequestsTotal,
		ProviderRequestDuration,
		HTTPRequestsTotal,
		HTTPRequestDuration,
		WebhookEventsTotal,
	)
}

func ObserveProviderCall(shape, outcome string, seconds float64) {
	ProviderRequestsTotal.WithLabelValues(shape, outcome).Inc()
	ProviderRequestDuration.WithLabelValues(shape).Observe(seconds)
}

func ObserveHTTPRequest(method, route string, status int, seconds float64) {
	HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(seconds)
}

func IncWebhookEvent(kind string) {
	WebhookEventsTotal.WithLabelValues(kind).Inc()
}
