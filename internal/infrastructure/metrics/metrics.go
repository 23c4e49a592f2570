// Package metrics defines the Prometheus metrics of the request gateway. It is
// the single source of truth for metric names, labels, and help strings.
//
// Metrics register with the default registry at package init; a CLI or
// embedding service exposes them with promhttp if it wants to.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "orange_client"

// ── Gateway metrics ───────────────────────────────────────────────────────────

// RequestsTotal counts gateway calls by classification.
// Labels:
//   - method: HTTP method
//   - outcome: "success", "session_expired", "business_error" or "transport_error"
var RequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "requests_total",
		Help:      "Total number of gateway requests, by method and outcome.",
	},
	[]string{"method", "outcome"},
)

// RequestDuration measures a gateway call from dispatch to classification.
var RequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "request_duration_seconds",
		Help:      "Duration of gateway requests, by outcome.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"outcome"},
)

// SessionExpirationsTotal counts expiry signals.
// Label:
//   - source: "hook" when the registered handler ran, "fallback" otherwise
var SessionExpirationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_expirations_total",
		Help:      "Total number of session-expired classifications, by handling path.",
	},
	[]string{"source"},
)
