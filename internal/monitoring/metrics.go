package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HttpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	ResponseTimeHistogram = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_response_time_seconds",
			Help:    "Histogram of response times",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	ReferralSettlementsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "referral_settlements_total",
			Help: "Settlement calls by outcome",
		},
		[]string{"outcome"}, // settled, noop, not_found, error
	)

	ReferralSettledAmount = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "referral_settled_amount_total",
			Help: "Sum of referral fees marked as paid",
		},
	)

	SMSMessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sms_messages_total",
			Help: "SMS send attempts by gateway and status",
		},
		[]string{"gateway", "status"},
	)
)
