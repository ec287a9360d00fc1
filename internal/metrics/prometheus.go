package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"vega/pkg/errors"
)

var (
	// Worker metrics
	WorkerExecutions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vega_worker_executions_total",
			Help: "Total number of worker executions",
		},
		[]string{"worker", "status"}, // status: success|error
	)

	WorkerDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vega_worker_duration_seconds",
			Help:    "Worker execution duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"worker"},
	)

	WorkerLastRun = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "vega_worker_last_run_timestamp",
			Help: "Unix timestamp of last worker execution",
		},
		[]string{"worker"},
	)

	// Scan metrics
	Scans = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vega_scans_total",
			Help: "Total number of symbol scans",
		},
		[]string{"symbol", "status"}, // status: success|error|skipped
	)

	ScanDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vega_scan_duration_seconds",
			Help:    "Per-symbol scan duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		},
		[]string{"symbol"},
	)

	Suggestions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vega_suggestions_total",
			Help: "Total suggestions produced by pricing source",
		},
		[]string{"symbol", "source"}, // source: theoretical|chain-derived
	)

	ChainRowsDropped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vega_chain_rows_dropped_total",
			Help: "Chain rows dropped during normalization",
		},
		[]string{"symbol"},
	)

	// Provider metrics
	ProviderCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vega_provider_calls_total",
			Help: "Total number of market data provider calls",
		},
		[]string{"provider", "endpoint", "status"}, // status: success|error|rate_limited
	)

	ProviderLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vega_provider_latency_seconds",
			Help:    "Market data provider latency in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		},
		[]string{"provider", "endpoint"},
	)

	// Advisor metrics
	AdvisorCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vega_advisor_calls_total",
			Help: "Total number of advisor reviews",
		},
		[]string{"action", "status"}, // status: success|error
	)

	AdvisorLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vega_advisor_latency_seconds",
			Help:    "Advisor review latency in seconds",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60},
		},
		[]string{"action"},
	)
)

// Init registers all metrics with Prometheus
func Init() {
	prometheus.MustRegister(WorkerExecutions)
	prometheus.MustRegister(WorkerDuration)
	prometheus.MustRegister(WorkerLastRun)

	prometheus.MustRegister(Scans)
	prometheus.MustRegister(ScanDuration)
	prometheus.MustRegister(Suggestions)
	prometheus.MustRegister(ChainRowsDropped)

	prometheus.MustRegister(ProviderCalls)
	prometheus.MustRegister(ProviderLatency)

	prometheus.MustRegister(AdvisorCalls)
	prometheus.MustRegister(AdvisorLatency)
}

// Handler returns Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordWorkerExecution records a worker execution
func RecordWorkerExecution(worker string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	WorkerExecutions.WithLabelValues(worker, status).Inc()
	WorkerDuration.WithLabelValues(worker).Observe(duration.Seconds())
	WorkerLastRun.WithLabelValues(worker).SetToCurrentTime()
}

// RecordScan records the outcome of one symbol scan
func RecordScan(symbol string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	Scans.WithLabelValues(symbol, status).Inc()
	ScanDuration.WithLabelValues(symbol).Observe(duration.Seconds())
}

// RecordSuggestion records a produced suggestion by pricing source
func RecordSuggestion(symbol, source string) {
	Suggestions.WithLabelValues(symbol, source).Inc()
}

// RecordProviderCall records a market data provider call
func RecordProviderCall(provider, endpoint string, latency time.Duration, err error) {
	status := "success"
	switch {
	case err == nil:
	case errors.Is(err, errors.ErrRateLimitExceeded):
		status = "rate_limited"
	default:
		status = "error"
	}

	ProviderCalls.WithLabelValues(provider, endpoint, status).Inc()
	ProviderLatency.WithLabelValues(provider, endpoint).Observe(latency.Seconds())
}

// RecordAdvisorCall records an advisor review
func RecordAdvisorCall(action string, latency time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
		action = "none"
	}

	AdvisorCalls.WithLabelValues(action, status).Inc()
	AdvisorLatency.WithLabelValues(action).Observe(latency.Seconds())
}
