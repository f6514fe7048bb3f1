package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	requestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bookshelf",
			Name:      "http_requests_total",
			Help:      "The total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "bookshelf",
			Name:      "http_request_duration_seconds",
			Help:      "The HTTP request latencies in seconds",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method", "endpoint"},
	)
)

func init() {
	prometheus.MustRegister(requestsTotal)
	prometheus.MustRegister(requestDuration)
}

// GetRequestsTotal returns the requests total metric for middleware use
func GetRequestsTotal() *prometheus.CounterVec {
	return requestsTotal
}

// GetRequestDuration returns the request duration metric for middleware use
func GetRequestDuration() *prometheus.HistogramVec {
	return requestDuration
}

// LogMetricsInitialization logs that metrics have been initialized
func (s *Server) LogMetricsInitialization() {
	if s.logger != nil {
		s.logger.Info("Prometheus metrics initialized and registered")
		s.logger.WithFields(map[string]interface{}{
			"http_requests_total":   "Counter for HTTP requests by method, endpoint, status",
			"http_request_duration": "Histogram for HTTP request duration by method, endpoint",
			"content_cache":         "Hits by tier, misses, rebuilds, storage failures",
			"circuit_breaker":       "Catalog breaker state, transitions and outcomes",
			"metrics_endpoint":      "/metrics",
		}).Debug("Available Prometheus metrics")
	}
}

var metricsHandler http.Handler = promhttp.Handler()

func (s *Server) metricsEndpoint(c echo.Context) error {
	metricsHandler.ServeHTTP(c.Response(), c.Request())
	return nil
}
