package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/oklog/ulid/v2"

	"github.com/ParleyLabs/chatdeck-go/internal/infrastructure/observability/metrics"
)

// RequestIDMiddleware tags every request with a ULID, honoring an inbound
// X-Request-ID so upstream proxies can correlate.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = ulid.Make().String()
		}
		c.Set("requestId", requestID)
		c.Writer.Header().Set("X-Request-ID", requestID)
		c.Next()
	}
}

// RequestMetricsMiddleware counts requests by route template and status
// class. The route template keeps cardinality bounded; unmatched paths
// collapse into a single label.
func RequestMetricsMiddleware(m *metrics.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if m == nil {
			return
		}
		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status()/100) + "xx"
		m.Requests.WithLabelValues(endpoint, status).Inc()
	}
}
