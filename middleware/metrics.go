package middleware

import (
	"context"
	"time"

	aws_pkg "catalog-service/pkg/aws"

	"github.com/gin-gonic/gin"
)

// Metrics records request count, latency and error counters in CloudWatch.
// The route template is used as the Path dimension so ids don't explode
// cardinality.
func Metrics(recorder aws_pkg.MetricsRecorder, serviceName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if recorder == nil || !recorder.IsEnabled() {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		duration := time.Since(start)
		status := c.Writer.Status()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		dimensions := map[string]string{
			"Service": serviceName,
			"Method":  c.Request.Method,
			"Path":    path,
			"Status":  statusCodeToRange(status),
		}

		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			_ = recorder.RecordCount(ctx, aws_pkg.MetricHTTPRequests, dimensions)
			_ = recorder.RecordLatency(ctx, aws_pkg.MetricHTTPLatency, duration, dimensions)

			if status >= 400 {
				_ = recorder.RecordCount(ctx, aws_pkg.MetricHTTPErrors, dimensions)
				if status >= 500 {
					_ = recorder.RecordCount(ctx, aws_pkg.MetricHTTP5xx, dimensions)
				} else {
					_ = recorder.RecordCount(ctx, aws_pkg.MetricHTTP4xx, dimensions)
				}
			}
		}()
	}
}

func statusCodeToRange(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return "2xx"
	case statusCode >= 300 && statusCode < 400:
		return "3xx"
	case statusCode >= 400 && statusCode < 500:
		return "4xx"
	case statusCode >= 500:
		return "5xx"
	default:
		return "unknown"
	}
}
