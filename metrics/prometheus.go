// Package metrics exposes chronos's Prometheus instrumentation: job and
// trigger counters/gauges/histograms registered through promauto, and an
// http.Handler serving them in the standard exposition format.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	JobsStarted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chronos_jobs_started_total",
		Help: "Total number of job executions started",
	})

	JobsSucceeded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chronos_jobs_succeeded_total",
		Help: "Total number of job executions that completed without error",
	})

	JobsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chronos_jobs_failed_total",
		Help: "Total number of job executions that returned an error",
	})

	JobsRunning = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "chronos_jobs_running",
		Help: "Number of job executions currently in flight",
	})

	JobDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "chronos_job_duration_seconds",
		Help:    "Job execution duration in seconds",
		Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60, 300},
	})

	JobProgressPercent = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "chronos_job_progress_percent",
		Help: "Progress of the most recently reported long-running job, 0-100",
	})

	JobErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chronos_job_errors_total",
		Help: "Total number of job errors logged outside of normal completion",
	})

	JobRetries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chronos_job_retries_total",
		Help: "Total number of retry attempts made by listener delivery or job execution",
	}, []string{"operation", "success"})

	TriggerMisfires = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chronos_trigger_misfires_total",
		Help: "Total number of triggers handled via a misfire instruction",
	}, []string{"trigger_group"})

	WorkerPoolActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "chronos_worker_pool_active_threads",
		Help: "Number of worker pool threads currently executing a job",
	})

	WorkerPoolCapacity = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "chronos_worker_pool_capacity",
		Help: "Configured worker pool thread count",
	})

	BuildInfo = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "chronos_build_info",
		Help: "Build information, value is always 1",
	}, []string{"version", "go_version"})

	Up = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "chronos_up",
		Help: "Whether the scheduler facade reports itself started (1) or not (0)",
	})
)

// Handler returns the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordBuildInfo sets the build info gauge once at startup.
func RecordBuildInfo(version, goVersion string) {
	BuildInfo.WithLabelValues(version, goVersion).Set(1)
}

// Recorder adapts the package's promauto metrics to the narrow,
// name-addressed interfaces used elsewhere so that logging.JobLogger and
// core.RetryExecutor never import package metrics or prometheus directly.
type Recorder struct{}

// NewRecorder returns a Recorder backed by this package's global metrics.
func NewRecorder() *Recorder { return &Recorder{} }

// IncrementCounter implements logging.MetricsCollector.
func (r *Recorder) IncrementCounter(name string, value float64) {
	switch name {
	case "jobs_started_total":
		JobsStarted.Add(value)
	case "jobs_success_total":
		JobsSucceeded.Add(value)
	case "jobs_failed_total":
		JobsFailed.Add(value)
	case "job_errors_total":
		JobErrors.Add(value)
	case "job_retries_total":
		JobRetries.WithLabelValues("job_execution", "false").Add(value)
	}
}

// SetGauge implements logging.MetricsCollector. value is an absolute level
// for most names, but "jobs_running" is delta-style (+1/-1) to match
// JobLogger's start/complete bookkeeping.
func (r *Recorder) SetGauge(name string, value float64) {
	switch name {
	case "jobs_running":
		if value >= 0 {
			JobsRunning.Add(value)
		} else {
			JobsRunning.Sub(-value)
		}
	case "job_progress_percent":
		JobProgressPercent.Set(value)
	}
}

// ObserveHistogram implements logging.MetricsCollector.
func (r *Recorder) ObserveHistogram(name string, value float64) {
	switch name {
	case "job_duration_seconds":
		JobDuration.Observe(value)
	}
}

// RecordJobRetry implements core.MetricsRecorder.
func (r *Recorder) RecordJobRetry(name string, attempt int, success bool) {
	JobRetries.WithLabelValues(name, strconv.FormatBool(success)).Inc()
}

// RecordMisfire increments the misfire counter for a trigger's group.
func (r *Recorder) RecordMisfire(triggerGroup string) {
	TriggerMisfires.WithLabelValues(triggerGroup).Inc()
}

// RecordWorkerPoolState reports the pool's current load, sampled by the
// scheduler thread or a periodic resource collector.
func (r *Recorder) RecordWorkerPoolState(active, capacity int) {
	WorkerPoolActive.Set(float64(active))
	WorkerPoolCapacity.Set(float64(capacity))
}
