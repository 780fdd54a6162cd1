// Package metrics defines the Prometheus metric collectors used by the
// indexing and search daemons and exposes an HTTP handler for scraping.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus collectors for the engine.
type Metrics struct {
	DocsIndexedTotal       prometheus.Counter
	PostingsCommittedTotal prometheus.Counter
	CommitsTotal           *prometheus.CounterVec
	PopularWordsHarvested  prometheus.Counter
	QueriesTotal           *prometheus.CounterVec
	QueryLatency           *prometheus.HistogramVec
	QueryResultsCount      prometheus.Histogram
	RankCacheHitsTotal     prometheus.Counter
	RankCacheMissesTotal   prometheus.Counter
	HTTPRequestsTotal      *prometheus.CounterVec
	HTTPRequestDuration    *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	m := &Metrics{
		DocsIndexedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "fulltext_docs_indexed_total",
				Help: "Total documents fed through the indexer.",
			},
		),
		PostingsCommittedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "fulltext_postings_committed_total",
				Help: "Total keyword postings written to the index store.",
			},
		),
		CommitsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fulltext_commits_total",
				Help: "Total index commit transactions by status (ok, error).",
			},
			[]string{"status"},
		),
		PopularWordsHarvested: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "fulltext_popular_words_harvested_total",
				Help: "Total popular-keyword candidates collected from popular fields.",
			},
		),
		QueriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fulltext_queries_total",
				Help: "Total search queries by outcome (ranked, unranked, error).",
			},
			[]string{"outcome"},
		),
		QueryLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fulltext_query_latency_seconds",
				Help:    "Query latency in seconds by cache status.",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
			},
			[]string{"cache_status"},
		),
		QueryResultsCount: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "fulltext_query_results_count",
				Help:    "Number of documents matched per ranked query.",
				Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250},
			},
		),
		RankCacheHitsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "fulltext_rank_cache_hits_total",
				Help: "Total rank invocations answered from the result cache.",
			},
		),
		RankCacheMissesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "fulltext_rank_cache_misses_total",
				Help: "Total rank invocations that recomputed the result set.",
			},
		),
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fulltext_http_requests_total",
				Help: "Total HTTP requests by method, path, and status.",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fulltext_http_request_duration_seconds",
				Help:    "HTTP request latency in seconds.",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
			},
			[]string{"method", "path"},
		),
	}

	prometheus.MustRegister(
		m.DocsIndexedTotal,
		m.PostingsCommittedTotal,
		m.CommitsTotal,
		m.PopularWordsHarvested,
		m.QueriesTotal,
		m.QueryLatency,
		m.QueryResultsCount,
		m.RankCacheHitsTotal,
		m.RankCacheMissesTotal,
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
	)

	return m
}

// Handler returns the Prometheus scrape HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
