package queue

import "github.com/prometheus/client_golang/prometheus"

var (
	jobsEnqueuedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "eventgate",
			Subsystem: "queue",
			Name:      "jobs_enqueued_total",
			Help:      "Total number of jobs accepted by a queue backend",
		},
		[]string{"queue", "kind"},
	)

	jobsHandledTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "eventgate",
			Subsystem: "queue",
			Name:      "jobs_handled_total",
			Help:      "Total number of job attempts by result (success, error, dead)",
		},
		[]string{"queue", "kind", "result"},
	)

	jobDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "eventgate",
			Subsystem: "queue",
			Name:      "job_duration_seconds",
			Help:      "Duration of job handler runs in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"queue", "kind"},
	)

	queueDepth = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "eventgate",
			Subsystem: "queue",
			Name:      "depth",
			Help:      "Jobs waiting in a memory queue",
		},
		[]string{"queue"},
	)

	backpressureTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "eventgate",
			Subsystem: "queue",
			Name:      "backpressure_total",
			Help:      "Total enqueue rejections because a queue stayed full",
		},
		[]string{"queue"},
	)
)

func init() {
	prometheus.MustRegister(jobsEnqueuedTotal, jobsHandledTotal, jobDuration, queueDepth, backpressureTotal)
}
