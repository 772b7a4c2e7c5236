// Package metrics declares the Prometheus collectors exported at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Settlement outcomes
const (
	SettlementRecorded    = "recorded"
	SettlementOverpayment = "overpayment"
	SettlementInvalid     = "invalid"
)

// Summary cache outcomes
const (
	CacheHit    = "hit"
	CacheMiss   = "miss"
	CacheBypass = "bypass"
)

var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "settleup",
		Name:      "http_requests_total",
		Help:      "HTTP requests by method, route and status code.",
	}, []string{"method", "route", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "settleup",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by method and route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	Summaries = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "settleup",
		Name:      "summaries_total",
		Help:      "Netted balance matrices served, by cache outcome.",
	}, []string{"cache"})

	Settlements = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "settleup",
		Name:      "settlements_total",
		Help:      "Settlement attempts by result.",
	}, []string{"result"})
)
