package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ofm_location",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "ofm_location",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
	}, []string{"method", "path"})

	// UpstreamRequests counts calls to geocoding providers by outcome (ok, error, empty).
	UpstreamRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ofm_location",
		Subsystem: "geocoder",
		Name:      "upstream_requests_total",
		Help:      "Total requests sent to geocoding providers",
	}, []string{"provider", "operation", "outcome"})

	UpstreamDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "ofm_location",
		Subsystem: "geocoder",
		Name:      "upstream_duration_seconds",
		Help:      "Latency of geocoding provider requests",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	}, []string{"provider", "operation"})

	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ofm_location",
		Subsystem: "cache",
		Name:      "hits_total",
		Help:      "Total geocode cache hits",
	}, []string{"operation"})

	CacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ofm_location",
		Subsystem: "cache",
		Name:      "misses_total",
		Help:      "Total geocode cache misses",
	}, []string{"operation"})

	// StaleResponses counts picker responses dropped because a newer request superseded them.
	StaleResponses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ofm_location",
		Subsystem: "picker",
		Name:      "stale_responses_total",
		Help:      "Geocoding responses discarded by the picker as stale",
	}, []string{"operation"})
)

// ObserveUpstream records one provider call.
func ObserveUpstream(provider, operation, outcome string, started time.Time) {
	UpstreamRequests.WithLabelValues(provider, operation, outcome).Inc()
	UpstreamDuration.WithLabelValues(provider, operation).Observe(time.Since(started).Seconds())
}

// Middleware records request count and latency per matched route.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		httpRequestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

// Handler exposes the default registry for scraping.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
