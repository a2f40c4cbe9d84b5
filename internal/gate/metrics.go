package gate

import "github.com/prometheus/client_golang/prometheus"

var (
	decisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "eventgate",
			Subsystem: "gate",
			Name:      "decisions_total",
			Help:      "Total dispatch decisions by outcome",
		},
		[]string{"decision"},
	)

	routedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "eventgate",
			Subsystem: "gate",
			Name:      "routed_total",
			Help:      "Total generator jobs enqueued by channel",
		},
		[]string{"channel"},
	)

	unresolvedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "eventgate",
			Subsystem: "gate",
			Name:      "unresolved_event_class_total",
			Help:      "Total events whose class is not in the registry",
		},
	)
)

func init() {
	prometheus.MustRegister(decisionsTotal, routedTotal, unresolvedTotal)
}
