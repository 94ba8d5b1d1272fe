package provision

import "github.com/prometheus/client_golang/prometheus"

var (
	downloadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "grove",
			Subsystem: "provision",
			Name:      "downloads_total",
			Help:      "Artifact provisioning attempts by result (skipped, downloaded, failed)",
		},
		[]string{"artifact", "result"},
	)

	downloadBytesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "grove",
			Subsystem: "provision",
			Name:      "download_bytes_total",
			Help:      "Bytes written while downloading artifacts",
		},
		[]string{"artifact"},
	)
)

func init() {
	prometheus.MustRegister(downloadsTotal, downloadBytesTotal)
}
