// Package prometheus exposes the evolution pipeline's operational metrics.
package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "refinary"

// Metrics aggregates every collector the pipeline records into.
type Metrics struct {
	GenerationsTotal    prometheus.Counter
	CandidatesTotal     *prometheus.CounterVec
	DesignFallbackTotal prometheus.Counter
	FoldCacheHitsTotal  prometheus.Counter
	BestAffinity        prometheus.Gauge

	FoldDuration      prometheus.Histogram
	DockingDuration   prometheus.Histogram
	StabilityDuration prometheus.Histogram
}

// Candidate outcome label values.
const (
	CandidateScored = "scored"
	CandidateFailed = "failed"
)

// New registers all collectors with the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		GenerationsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generations_total",
			Help:      "Number of completed evolution generations.",
		}),
		CandidatesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "candidates_total",
			Help:      "Number of candidate variants processed, by outcome.",
		}, []string{"outcome"}),
		DesignFallbackTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "design_fallback_total",
			Help:      "Number of proposal requests served by the local mutator.",
		}),
		FoldCacheHitsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fold_cache_hits_total",
			Help:      "Number of fold requests answered from the cache.",
		}),
		BestAffinity: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "best_affinity",
			Help:      "Running best binding affinity of the active session (kcal/mol).",
		}),
		FoldDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fold_duration_seconds",
			Help:      "Latency of remote structure prediction calls.",
			Buckets:   prometheus.ExponentialBuckets(0.5, 2, 10),
		}),
		DockingDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "docking_duration_seconds",
			Help:      "Latency of docking engine invocations.",
			Buckets:   prometheus.ExponentialBuckets(0.5, 2, 10),
		}),
		StabilityDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stability_duration_seconds",
			Help:      "Latency of stability engine invocations.",
			Buckets:   prometheus.ExponentialBuckets(0.5, 2, 10),
		}),
	}
}

// NewNop returns metrics backed by a throwaway registry, for tests and for
// callers that opt out of scraping.
func NewNop() *Metrics {
	return New(prometheus.NewRegistry())
}
