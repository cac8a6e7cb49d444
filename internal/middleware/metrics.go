package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/instructor-directory-api/internal/service"
)

// Health check and scrape endpoints are not counted.
var unmeasuredPaths = map[string]bool{
	"/metrics": true,
	"/health":  true,
	"/ready":   true,
}

// Metrics records request duration and count per route template. Requests
// that match no route share the "unmatched" label so raw paths never become labels.
func Metrics(metricsSvc *service.MetricsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if metricsSvc == nil || unmeasuredPaths[c.Request.URL.Path] {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metricsSvc.ObserveHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
