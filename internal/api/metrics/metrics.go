// Package metrics defines and registers all custom Prometheus metrics for the
// imagevault API. It is the single source of truth for metric names, labels,
// and help strings. Registration happens at import time via promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "imagevault"

// ── Catalog metrics ───────────────────────────────────────────────────────────

// ImagesCreatedTotal counts catalog records created after a successful
// transformation, by transformation type (e.g. "fill", "restore", "recolor").
var ImagesCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "images_created_total",
		Help:      "Total number of image records added to the catalog.",
	},
	[]string{"transformation_type"},
)

// SearchDuration measures provider-index search latency end-to-end.
var SearchDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "asset_search_duration_seconds",
		Help:      "Duration of image-provider asset index searches.",
		Buckets:   prometheus.DefBuckets,
	},
)

// ── Ledger metrics ────────────────────────────────────────────────────────────

// CreditAdjustmentsTotal counts atomic balance updates.
// Label:
//   - direction: "debit" or "credit"
var CreditAdjustmentsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "credit_adjustments_total",
		Help:      "Total number of credit balance adjustments applied.",
	},
	[]string{"direction"},
)

// ── Invalidation metrics ──────────────────────────────────────────────────────

// InvalidationsPublishedTotal counts stale-path signals delivered to the
// render-cache channel.
var InvalidationsPublishedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "invalidations_published_total",
		Help:      "Total number of cache invalidation signals published.",
	},
)

// InvalidationsDroppedTotal counts signals discarded because a dispatcher
// worker queue was full. Best-effort delivery makes drops acceptable.
var InvalidationsDroppedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "invalidations_dropped_total",
		Help:      "Total number of cache invalidation signals dropped.",
	},
)
