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
	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "path", "status"},
	)

	deletionDispatchCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "deletion_dispatch_count",
			Help: "Total deletion policy dispatches by table and action",
		},
		[]string{"table", "action", "result"},
	)

	auditEntryCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audit_entry_count",
			Help: "Total audit log entries written",
		},
		[]string{"action"},
	)
)

// RecordDispatch counts one deletion dispatcher operation.
func RecordDispatch(table, action string, ok bool) {
	result := "ok"
	if !ok {
		result = "error"
	}
	deletionDispatchCount.WithLabelValues(table, action, result).Inc()
}

// RecordAuditEntry counts one written audit entry.
func RecordAuditEntry(action string) {
	auditEntryCount.WithLabelValues(action).Inc()
}

// HTTPMetrics observes every request's duration, keyed by route template
// to keep the label cardinality bounded.
func HTTPMetrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		httpRequestDuration.WithLabelValues(
			c.Request.Method,
			path,
			strconv.Itoa(c.Writer.Status()),
		).Observe(time.Since(start).Seconds())
	}
}

// Register mounts the prometheus scrape endpoint.
func Register(r *gin.Engine) {
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}
