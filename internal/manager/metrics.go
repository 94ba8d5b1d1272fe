package manager

import "github.com/prometheus/client_golang/prometheus"

var (
	classifyTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "grove",
			Name:      "classify_total",
			Help:      "Classify calls by outcome.",
		},
		[]string{"result"},
	)
	classifyDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "grove",
			Name:      "classify_duration_seconds",
			Help:      "Time spent classifying one upload, including decode.",
			Buckets:   prometheus.DefBuckets,
		},
	)
	queueWait = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "grove",
			Name:      "classify_queue_wait_seconds",
			Help:      "Time spent waiting for an inference slot.",
			Buckets:   []float64{.001, .005, .01, .05, .1, .5, 1, 5, 30},
		},
	)
	modelReady = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "grove",
			Name:      "model_ready",
			Help:      "1 when the model is loaded and serving.",
		},
	)
)

func init() {
	prometheus.MustRegister(classifyTotal, classifyDuration, queueWait, modelReady)
}
