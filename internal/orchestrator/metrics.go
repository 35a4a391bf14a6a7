package orchestrator

import "github.com/prometheus/client_golang/prometheus"

var (
	jobsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "svgod",
		Subsystem: "core",
		Name:      "jobs_total",
		Help:      "Total compression jobs issued to the worker",
	})

	supersededTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "svgod",
		Subsystem: "core",
		Name:      "superseded_total",
		Help:      "Jobs whose results were discarded because a newer job took over",
	})

	cacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "svgod",
		Subsystem: "core",
		Name:      "cache_hits_total",
		Help:      "Settings changes served from the result cache",
	})

	cacheMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "svgod",
		Subsystem: "core",
		Name:      "cache_misses_total",
		Help:      "Settings changes that required a worker round trip",
	})

	evictionsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "svgod",
		Subsystem: "core",
		Name:      "cache_evictions_total",
		Help:      "Artifacts evicted from the result cache under capacity pressure",
	})
)

func init() {
	prometheus.MustRegister(jobsTotal, supersededTotal, cacheHitsTotal, cacheMissesTotal, evictionsTotal)
}
