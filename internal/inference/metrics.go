package inference

import "github.com/prometheus/client_golang/prometheus"

var (
	generationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "memoryd",
			Subsystem: "inference",
			Name:      "generations_total",
			Help:      "Finished generations by reason",
		},
		[]string{"reason"},
	)

	fragmentsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "memoryd",
			Subsystem: "inference",
			Name:      "fragments_total",
			Help:      "Text fragments emitted",
		},
	)

	generationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "memoryd",
			Subsystem: "inference",
			Name:      "generation_seconds",
			Help:      "Wall time of generations in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12),
		},
	)
)

func init() {
	prometheus.MustRegister(generationsTotal, fragmentsTotal, generationDuration)
}
