package monitoring

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)

	OverdueProcessed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "quiz_overdue_attempts_processed_total",
			Help: "Attempts examined by the overdue reconciliation scan",
		},
	)

	OverdueFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "quiz_overdue_attempt_failures_total",
			Help: "Attempts the overdue scan failed to process",
		},
	)

	RegradeSlotsChanged = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "quiz_regrade_slots_changed_total",
			Help: "Question slots whose fraction changed during a regrade",
		},
	)

	RegradeFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "quiz_regrade_attempt_failures_total",
			Help: "Attempts that failed during a batch regrade",
		},
	)
)

func Init() {
	prometheus.MustRegister(RequestCounter)
	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(OverdueProcessed)
	prometheus.MustRegister(OverdueFailures)
	prometheus.MustRegister(RegradeSlotsChanged)
	prometheus.MustRegister(RegradeFailures)
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start).Seconds()
		status := c.Writer.Status()

		RequestCounter.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			strconv.Itoa(status),
		).Inc()

		RequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
		).Observe(duration)
	}
}

func PrometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
