package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// OCRExtractions tracks extraction attempts per provider and outcome
	OCRExtractions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingredientcheck_ocr_extractions_total",
			Help: "Total number of text extraction attempts",
		},
		[]string{"provider", "outcome"},
	)

	// OCRLatency tracks extraction latency per provider
	OCRLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ingredientcheck_ocr_latency_seconds",
			Help:    "Text extraction latency in seconds",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30, 60},
		},
		[]string{"provider"},
	)

	// OCRFailovers tracks switches from the primary to the fallback extractor
	OCRFailovers = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingredientcheck_ocr_failovers_total",
			Help: "Total number of extractions answered by the fallback provider",
		},
		[]string{"primary", "fallback", "reason"},
	)

	// HazardLookups tracks hazard lookups per provider and outcome
	HazardLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingredientcheck_hazard_lookups_total",
			Help: "Total number of hazard lookups",
		},
		[]string{"provider", "outcome"},
	)

	// HazardLatency tracks hazard lookup latency
	HazardLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ingredientcheck_hazard_latency_seconds",
			Help:    "Hazard lookup latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"provider"},
	)

	// CacheRequests tracks safety cache hits and misses per tier
	CacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingredientcheck_cache_requests_total",
			Help: "Total number of safety cache reads",
		},
		[]string{"tier", "result"},
	)

	// ResolverInFlight tracks lookups currently running
	ResolverInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ingredientcheck_resolver_inflight",
			Help: "Hazard lookups currently in flight",
		},
	)

	// ScansTotal tracks completed scans by overall severity
	ScansTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingredientcheck_scans_total",
			Help: "Total number of completed scans",
		},
		[]string{"severity"},
	)
)
