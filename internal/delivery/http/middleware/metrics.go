package middleware

import (
	"go-occupational-backend/pkg/metrics"

	"github.com/gin-gonic/gin"
)

// Metrics records every request under its route template, not the raw path.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		done := metrics.RequestStarted()
		c.Next()
		done(c.Request.Method, c.FullPath(), c.Writer.Status())
	}
}
