package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(jobsProcessedTotal, jobsStaleTotal, jobRetriesTotal) }

var jobsProcessedTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "jobs_processed_total",
		Help: "Total jobs processed, labeled by queue and final status.",
	},
	[]string{"queue", "status"}, // 'completed', 'failed', 'retried'
)

var jobsStaleTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "jobs_stale_total",
		Help: "Jobs forced to failed by the stale sweep, labeled by queue.",
	},
	[]string{"queue"},
)

var jobRetriesTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "job_retries_total",
		Help: "Retry attempts consumed, labeled by queue.",
	},
	[]string{"queue"},
)

func IncJobProcessed(queue, status string) {
	jobsProcessedTotal.WithLabelValues(norm(queue), norm(status)).Inc()
}

func AddStaleJobs(queue string, n int) {
	jobsStaleTotal.WithLabelValues(norm(queue)).Add(float64(n))
}

func IncJobRetry(queue string) {
	jobRetriesTotal.WithLabelValues(norm(queue)).Inc()
}
