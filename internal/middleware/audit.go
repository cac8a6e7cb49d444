package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Audit logs a structured audit entry after each successful request. Failed
// requests (status >= 400) are not audited.
func Audit(logger *zap.Logger, action string) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("audit")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		if status >= 400 {
			return
		}

		fields := []zap.Field{
			zap.String("action", action),
			zap.String("method", c.Request.Method),
			zap.String("route", c.FullPath()),
			zap.Int("status", status),
			zap.Int64("latency_ms", time.Since(start).Milliseconds()),
			zap.String("ip", c.ClientIP()),
			zap.String("user_agent", c.GetHeader("User-Agent")),
		}
		if claims, ok := Claims(c); ok {
			fields = append(fields, zap.String("actor", claims.Subject), zap.String("role", string(claims.Role)))
		}
		if id := c.Param("fino"); id != "" {
			fields = append(fields, zap.String("fino", id))
		}
		if key := c.Param("key"); key != "" {
			fields = append(fields, zap.String("setting", key))
		}
		logger.Info("audit", fields...)
	}
}
