// Package metrics provides Prometheus metrics for the Drake OS server.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP request metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "drakeos_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "drakeos_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// Tree metrics
	treeSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "drakeos_tree_nodes",
			Help: "Number of files and folders in the loaded tree",
		},
	)

	treeLoadDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "drakeos_tree_load_duration_seconds",
			Help:    "Time to fetch and index the tree",
			Buckets: prometheus.DefBuckets,
		},
	)

	treeLoadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "drakeos_tree_loads_total",
			Help: "Total tree loads",
		},
		[]string{"status"},
	)

	// Shell metrics
	shellCommandsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "drakeos_shell_commands_total",
			Help: "Total shell commands executed",
		},
		[]string{"command", "status"},
	)

	// Window metrics
	windowsOpen = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "drakeos_windows_open",
			Help: "Number of open windows",
		},
	)

	windowOpensTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "drakeos_window_opens_total",
			Help: "Total windows opened",
		},
	)

	// Push clients
	wsClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "drakeos_websocket_clients",
			Help: "Number of connected websocket clients",
		},
	)
)

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordHTTPRequest records an HTTP request metric.
func RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordTreeLoad records a tree load attempt and, on success, the tree size.
func RecordTreeLoad(nodes int, duration time.Duration, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	treeLoadsTotal.WithLabelValues(status).Inc()
	if success {
		treeLoadDuration.Observe(duration.Seconds())
		treeSize.Set(float64(nodes))
	}
}

// RecordCommand records one executed shell command.
func RecordCommand(command string, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	shellCommandsTotal.WithLabelValues(command, status).Inc()
}

// RecordWindowOpen counts a newly created window.
func RecordWindowOpen() {
	windowOpensTotal.Inc()
}

// SetWindowsOpen sets the number of open windows.
func SetWindowsOpen(count int) {
	windowsOpen.Set(float64(count))
}

// AddWebSocketClients adjusts the websocket client gauge by delta.
func AddWebSocketClients(delta int) {
	wsClients.Add(float64(delta))
}

// GinMiddleware records request metrics keyed by the matched route.
func GinMiddleware() gin.HandlerFunc {
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
