// internal/common/metrics/metrics.go
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
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
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

	ScoreEvaluations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crs_score_evaluations_total",
			Help: "Total number of CRS score evaluations by outcome",
		},
		[]string{"outcome"},
	)

	ScoreDistribution = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "crs_score_total",
			Help:    "Distribution of computed CRS totals",
			Buckets: prometheus.LinearBuckets(0, 100, 13),
		},
	)

	RuleTableVersion = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "crs_rule_table_info",
			Help: "Loaded rule table version, value is always 1",
		},
		[]string{"version"},
	)
)
