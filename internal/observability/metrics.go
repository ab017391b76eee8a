package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "locallibrary",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "locallibrary",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
	copyTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "locallibrary",
			Subsystem: "circulation",
			Name:      "transitions_total",
			Help:      "Book copy status changes by operation.",
		},
		[]string{"op", "from", "to"},
	)
	copyConflicts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "locallibrary",
			Subsystem: "circulation",
			Name:      "conflicts_total",
			Help:      "Optimistic lock conflicts on book copies.",
		},
		[]string{"op"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(httpRequests, httpDuration, copyTransitions, copyConflicts)
	})
}

func RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(method, path, statusLabel).Observe(duration.Seconds())
}

func RecordTransition(op, from, to string) {
	RegisterMetrics()
	copyTransitions.WithLabelValues(op, from, to).Inc()
}

func RecordConflict(op string) {
	RegisterMetrics()
	copyConflicts.WithLabelValues(op).Inc()
}

// RequestMetrics counts requests by route template, so ids do not blow up
// the label space. Unmatched routes are grouped under "unmatched".
func RequestMetrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		RecordHTTPRequest(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}
