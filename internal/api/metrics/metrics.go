// Package metrics defines and registers all custom Prometheus metrics for the
// storefront gateway. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics register with the default Prometheus registry at package init via
// promauto; the router exposes them on GET /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "storefront"

// ── Resource cache metrics ────────────────────────────────────────────────────

// CacheHitsTotal counts queries served from a fresh cached payload.
// Label:
//   - tag: the resource tag of the query key (e.g. "leads")
var CacheHitsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_hits_total",
		Help:      "Total number of resource queries served from cache.",
	},
	[]string{"tag"},
)

// CacheMissesTotal counts queries that required an upstream fetch (first
// read, stale entry, or version drift).
var CacheMissesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_misses_total",
		Help:      "Total number of resource queries that fetched from the upstream.",
	},
	[]string{"tag"},
)

// CacheInvalidationsTotal counts tag invalidations applied by mutations.
var CacheInvalidationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_invalidations_total",
		Help:      "Total number of tag invalidations applied after successful mutations.",
	},
	[]string{"tag"},
)

// RefreshQueueDepth tracks pending eager-refresh jobs per worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var RefreshQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "refresh_queue_depth",
		Help:      "Current number of refresh jobs pending in each refresher worker channel.",
	},
	[]string{"worker_id"},
)

// ── Upstream metrics ──────────────────────────────────────────────────────────

// UpstreamRequestsTotal counts calls through the authenticated request layer.
// Labels:
//   - method: HTTP method
//   - outcome: final HTTP status class ("2xx", "4xx", "5xx") or "transport_error"
var UpstreamRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "upstream_requests_total",
		Help:      "Total number of requests issued to the backend, by method and outcome.",
	},
	[]string{"method", "outcome"},
)

// UpstreamRequestDuration measures backend round-trip latency.
var UpstreamRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "upstream_request_duration_seconds",
		Help:      "Duration of backend requests from issue to full response read.",
		Buckets:   prometheus.DefBuckets, // .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10
	},
	[]string{"method"},
)

// ── Session metrics ───────────────────────────────────────────────────────────

// AuthFailuresTotal counts rejected authentication attempts at the gateway.
// Label:
//   - reason: "malformed_header", "invalid_token", "session_revoked"
var AuthFailuresTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_failures_total",
		Help:      "Total number of bearer credentials rejected by the auth middleware.",
	},
	[]string{"reason"},
)

// SessionsActive tracks the number of live sessions held in memory.
var SessionsActive = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "sessions_active",
		Help:      "Current number of live sessions in the session store.",
	},
)
