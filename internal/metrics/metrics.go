// Package metrics exposes Prometheus counters and histograms for ingestion,
// search and embedding, plus a small HTTP endpoint to scrape them.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// EmbedBuckets covers local hashing (sub-millisecond) up to remote providers.
var EmbedBuckets = []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10}

var (
	// IngestRecordsTotal counts ingested records by outcome (success/failure).
	IngestRecordsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ticketvec_ingest_records_total",
			Help: "Ingested records",
		},
		[]string{"result"},
	)

	// IngestFailuresTotal counts failed records by pipeline stage.
	IngestFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ticketvec_ingest_failures_total",
			Help: "Ingestion failures by stage",
		},
		[]string{"stage"},
	)

	// SearchRequestsTotal counts searches by mode (ranked/filter) and outcome.
	SearchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ticketvec_search_requests_total",
			Help: "Search requests",
		},
		[]string{"mode", "status"},
	)

	// SearchDuration records end-to-end search latency in seconds.
	SearchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ticketvec_search_duration_seconds",
			Help:    "Search duration",
			Buckets: EmbedBuckets,
		},
		[]string{"mode"},
	)

	// EmbedDuration records embedding latency per provider.
	EmbedDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ticketvec_embed_duration_seconds",
			Help:    "Embedding duration",
			Buckets: EmbedBuckets,
		},
		[]string{"provider"},
	)

	// ToolCallsTotal counts MCP tool invocations by tool and outcome.
	ToolCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ticketvec_tool_calls_total",
			Help: "MCP tool calls",
		},
		[]string{"tool", "status"},
	)
)

func init() {
	prometheus.MustRegister(
		IngestRecordsTotal,
		IngestFailuresTotal,
		SearchRequestsTotal,
		SearchDuration,
		EmbedDuration,
		ToolCallsTotal,
	)
}

// Outcome label values
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Status maps an error to an outcome label.
func Status(err error) string {
	if err != nil {
		return StatusError
	}
	return StatusOK
}

// ObserveEmbed records one embedding call.
func ObserveEmbed(provider string, start time.Time) {
	EmbedDuration.WithLabelValues(provider).Observe(time.Since(start).Seconds())
}

// ObserveSearch records one search with its mode and outcome.
func ObserveSearch(mode string, start time.Time, err error) {
	SearchRequestsTotal.WithLabelValues(mode, Status(err)).Inc()
	SearchDuration.WithLabelValues(mode).Observe(time.Since(start).Seconds())
}
