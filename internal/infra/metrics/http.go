package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// HTTPMetrics holds the request counter and latency histogram for the router.
type HTTPMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func NewHTTPMetrics(r *Registry) *HTTPMetrics {
	return &HTTPMetrics{
		requests: r.RegisterCounter(
			"http_requests_total",
			"Total number of HTTP requests",
			"method", "route", "status",
		),
		duration: r.RegisterHistogram(
			"http_request_duration_seconds",
			"HTTP request latency in seconds.",
			[]float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			"code", "method",
		),
	}
}

func (m *HTTPMetrics) IncRequest(method, route string, status int) {
	m.requests.With(prometheus.Labels{
		"method": method,
		"route":  route,
		"status": strconv.Itoa(status),
	}).Inc()
}

// Duration is the observer used by promhttp instrumentation; its labels are code and method.
func (m *HTTPMetrics) Duration() prometheus.ObserverVec { return m.duration }
