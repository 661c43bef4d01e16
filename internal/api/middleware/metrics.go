package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/leozw/pdns-rest/internal/metrics"
)

func Metrics(collector *metrics.Collector) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		collector.RecordRequest(c.Request.Method, c.FullPath(), c.Writer.Status(), time.Since(start))
	}
}
