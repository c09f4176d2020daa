package middleware

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricsOnce            sync.Once
	requestsTotal          *prometheus.CounterVec
	requestDurationSeconds *prometheus.HistogramVec
	uploadBytesTotal       *prometheus.CounterVec
)

func initMetrics() {
	metricsOnce.Do(func() {
		requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "evolvers_admin",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests handled by the admin gateway",
		}, []string{"method", "path", "status"})

		requestDurationSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "evolvers_admin",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests handled by the admin gateway",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"})

		uploadBytesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "evolvers_admin",
			Subsystem: "media",
			Name:      "upload_bytes_total",
			Help:      "Total bytes received through media upload endpoints",
		}, []string{"kind"})
	})
}

func MetricsMiddleware() gin.HandlerFunc {
	initMetrics()

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		requestsTotal.WithLabelValues(
			c.Request.Method,
			path,
			strconv.Itoa(c.Writer.Status()),
		).Inc()
		requestDurationSeconds.WithLabelValues(c.Request.Method, path).
			Observe(time.Since(start).Seconds())
	}
}

// RecordUploadBytes tracks intake volume per media kind.
func RecordUploadBytes(kind string, size int64) {
	initMetrics()
	if size > 0 {
		uploadBytesTotal.WithLabelValues(kind).Add(float64(size))
	}
}
