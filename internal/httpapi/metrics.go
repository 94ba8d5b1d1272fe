package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels for predictions that did not end in an error kind.
const (
	outcomeOK           = "ok"
	outcomeClientClosed = "client_closed"
)

var (
	requestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "grove",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by route pattern, method and status.",
	}, []string{"path", "method", "status"})

	requestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "grove",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency by route pattern.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"path", "method", "status"})

	inflightRequests = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "grove",
		Subsystem: "http",
		Name:      "inflight_requests",
		Help:      "HTTP requests being served.",
	}, []string{"method"})

	// predictOutcomes counts POST /predict answers by the error kind clients
	// see in ErrorResponse.kind ("ok" on success).
	predictOutcomes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "grove",
		Subsystem: "http",
		Name:      "predict_outcomes_total",
		Help:      "POST /predict responses by outcome kind.",
	}, []string{"kind"})

	// uploadBytes tracks the request size of predict uploads as declared by
	// the client; chunked uploads are not observed.
	uploadBytes = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "grove",
		Subsystem: "http",
		Name:      "predict_upload_bytes",
		Help:      "Declared Content-Length of POST /predict requests.",
		Buckets:   prometheus.ExponentialBuckets(16<<10, 4, 7),
	})
)

func init() {
	prometheus.MustRegister(requestsTotal, requestDuration, inflightRequests, predictOutcomes, uploadBytes)
}

func countPredict(kind string) {
	predictOutcomes.WithLabelValues(kind).Inc()
}

func observeUpload(r *http.Request) {
	if r.ContentLength > 0 {
		uploadBytes.Observe(float64(r.ContentLength))
	}
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

// MetricsMiddleware records request counts and latency per chi route pattern.
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		inflight := inflightRequests.WithLabelValues(r.Method)
		inflight.Inc()
		defer inflight.Dec()

		sr := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(sr, r)
		// the pattern is only known once chi has routed the request
		labels := prometheus.Labels{"path": routePattern(r), "method": r.Method, "status": strconv.Itoa(sr.status)}
		requestsTotal.With(labels).Inc()
		requestDuration.With(labels).Observe(time.Since(start).Seconds())
	})
}

// routePattern returns the matched chi pattern, or "unmatched" so raw paths
// never become label values.
func routePattern(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if p := rc.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}
