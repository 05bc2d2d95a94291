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

	// 调度器指标：每轮扫描的转换数和失败数
	ScheduleTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "schedule_transitions_total",
			Help: "Total number of schedule-driven lock/unlock transitions",
		},
		[]string{"transition"}, // "unlock" | "expire"
	)

	ScheduleErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "schedule_evaluation_errors_total",
			Help: "Total number of per-schedule evaluation errors",
		},
	)

	SchedulePasses = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "schedule_passes_total",
			Help: "Total number of completed scheduler evaluation passes",
		},
	)
)

func Init() {
	prometheus.MustRegister(RequestCounter)
	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(ScheduleTransitions)
	prometheus.MustRegister(ScheduleErrors)
	prometheus.MustRegister(SchedulePasses)
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
