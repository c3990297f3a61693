package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	WsConnections = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "ticketdesk_ws_connections",
		Help: "Current number of active websocket connections",
	})
	BroadcastsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ticketdesk_ws_broadcasts_total",
		Help: "Total number of room broadcasts",
	})
	DroppedEventsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ticketdesk_ws_dropped_events_total",
		Help: "Events dropped because a connection's send buffer was full",
	})
	AuthOutcomesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ticketdesk_auth_outcomes_total",
		Help: "Renewal and login outcomes",
	}, []string{"operation", "outcome"})
	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})
)

func init() {
	prometheus.MustRegister(
		WsConnections,
		BroadcastsTotal,
		DroppedEventsTotal,
		AuthOutcomesTotal,
		HTTPRequestsTotal,
		HTTPRequestDuration,
	)
}

// GinMiddleware records request count and latency per route template.
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		status := strconv.Itoa(c.Writer.Status())
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		labels := prometheus.Labels{"method": c.Request.Method, "path": path, "status": status}
		HTTPRequestsTotal.With(labels).Inc()
		HTTPRequestDuration.With(labels).Observe(time.Since(start).Seconds())
	}
}
