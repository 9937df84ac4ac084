package serv

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// metrics carries its own registry so two services in one process
// never fight over metric names.
type metrics struct {
	reg           *prometheus.Registry
	queries       prometheus.Counter
	queryErrors   prometheus.Counter
	queryDuration prometheus.Histogram
	rowsLoaded    prometheus.Counter
}

func newMetrics() *metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	return &metrics{
		reg: reg,
		queries: f.NewCounter(prometheus.CounterOpts{
			Name: "hitsdb_queries_total",
			Help: "Number of queries served",
		}),
		queryErrors: f.NewCounter(prometheus.CounterOpts{
			Name: "hitsdb_query_errors_total",
			Help: "Number of queries that failed to compile or execute",
		}),
		queryDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "hitsdb_query_duration_seconds",
			Help:    "Query latency",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
		}),
		rowsLoaded: f.NewCounter(prometheus.CounterOpts{
			Name: "hitsdb_rows_loaded_total",
			Help: "Rows loaded over the HTTP API",
		}),
	}
}
