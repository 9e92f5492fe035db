package feed

import "github.com/prometheus/client_golang/prometheus"
import "github.com/prometheus/client_golang/prometheus/promauto"

var opsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "plume",
	Subsystem: "feed",
	Name:      "operations_total",
	Help:      "Feed storage operations by type.",
}, []string{"op"})

var chunkRows = promauto.NewHistogram(prometheus.HistogramOpts{
	Namespace: "plume",
	Subsystem: "feed",
	Name:      "batch_chunk_rows",
	Help:      "Rows per flushed insert chunk.",
	Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
})
