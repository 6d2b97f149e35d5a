// Package metrics exposes Prometheus collectors for imports and cached listings.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Import row outcomes and batch results used as label values.
const (
	OutcomeAccepted  = "accepted"
	OutcomeDuplicate = "duplicate"

	ResultCommitted = "committed"
	ResultFailed    = "failed"
)

// Collector owns a private registry so tests and multiple containers never
// collide on the global one.
type Collector struct {
	registry       *prometheus.Registry
	importRows     *prometheus.CounterVec
	importBatches  *prometheus.CounterVec
	importDuration prometheus.Histogram
	cacheLoads     *prometheus.CounterVec
}

// NewCollector creates and registers every collector.
func NewCollector() *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		importRows: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "inventory_import_rows_total",
				Help: "CSV rows processed by the import pipeline by outcome",
			},
			[]string{"outcome"},
		),
		importBatches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "inventory_import_batches_total",
				Help: "Import batches by commit result",
			},
			[]string{"result"},
		),
		importDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "inventory_import_duration_seconds",
				Help:    "Time spent importing one CSV upload",
				Buckets: prometheus.DefBuckets,
			},
		),
		cacheLoads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "inventory_listing_cache_loads_total",
				Help: "Listing cache misses that were loaded from the database",
			},
			[]string{"listing"},
		),
	}

	registry.MustRegister(c.importRows, c.importBatches, c.importDuration, c.cacheLoads)
	return c
}

// RecordImport records the outcome of one import batch. Row counters only
// move for committed batches.
func (c *Collector) RecordImport(accepted, duplicates int, err error, elapsed time.Duration) {
	c.importDuration.Observe(elapsed.Seconds())

	if err != nil {
		c.importBatches.WithLabelValues(ResultFailed).Inc()
		return
	}

	c.importBatches.WithLabelValues(ResultCommitted).Inc()
	c.importRows.WithLabelValues(OutcomeAccepted).Add(float64(accepted))
	c.importRows.WithLabelValues(OutcomeDuplicate).Add(float64(duplicates))
}

// RecordCacheLoad counts one listing cache miss.
func (c *Collector) RecordCacheLoad(listing string) {
	c.cacheLoads.WithLabelValues(listing).Inc()
}

// Registry returns the registry holding every collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
