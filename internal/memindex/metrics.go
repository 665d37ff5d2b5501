package memindex

import "github.com/prometheus/client_golang/prometheus"

var (
	indexTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "memoryd",
			Subsystem: "memindex",
			Name:      "index_total",
			Help:      "Index requests by result (indexed, unchanged, error)",
		},
		[]string{"result"},
	)

	searchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "memoryd",
			Subsystem: "memindex",
			Name:      "search_seconds",
			Help:      "Similarity search latency in seconds",
			Buckets:   prometheus.DefBuckets,
		},
	)

	embedCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "memoryd",
			Subsystem: "memindex",
			Name:      "embed_cache_total",
			Help:      "Embedding cache lookups by result",
		},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(indexTotal, searchDuration, embedCacheTotal)
}
