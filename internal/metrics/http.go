package metrics

import (
	"strconv"
	"time"

	"github.com/go-authgate/applink/internal/core"

	"github.com/gin-gonic/gin"
)

// unmatchedRoute labels requests no route matched, so scanners probing
// random paths cannot blow up label cardinality.
const unmatchedRoute = "unmatched"

// HTTPMetricsMiddleware records request count, latency and in-flight
// requests per route pattern. Only the Prometheus recorder has HTTP
// collectors; any other recorder gets a pass-through handler.
func HTTPMetricsMiddleware(m core.Recorder) gin.HandlerFunc {
	prom, ok := m.(*Metrics)
	if !ok {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		if c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}

		start := time.Now()
		prom.HTTPRequestsInFlight.Inc()
		defer prom.HTTPRequestsInFlight.Dec()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		method := c.Request.Method
		prom.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		prom.HTTPRequestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}
