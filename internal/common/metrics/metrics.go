package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "worker_job_duration_seconds",
			Help:    "Duration of job processing in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)

	AnalyticsForecasts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analytics_forecasts_total",
			Help: "Forecasts produced, by model and confidence level",
		},
		[]string{"model", "confidence"},
	)

	AnalyticsFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analytics_fallbacks_total",
			Help: "Forecasts answered from default constants for lack of comparable data",
		},
		[]string{"model"},
	)

	AnalyticsCacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analytics_cache_requests_total",
			Help: "Result cache lookups by kind and result (hit, miss, error)",
		},
		[]string{"kind", "result"},
	)
)

// ObserveForecast records one model run.
func ObserveForecast(model, confidence string, fallback bool) {
	AnalyticsForecasts.WithLabelValues(model, confidence).Inc()
	if fallback {
		AnalyticsFallbacks.WithLabelValues(model).Inc()
	}
}
