package middleware

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sjperalta/workpermit-api/pkg/logger"
)

// RequestLogger logs incoming HTTP requests using slog
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		// health probes are noise
		if path == "/api/v1/health" {
			return
		}

		if raw != "" {
			path = path + "?" + raw
		}
		status := c.Writer.Status()

		reqLog := logger.With(
			slog.String("method", c.Request.Method),
			slog.String("path", path),
			slog.String("ip", c.ClientIP()),
		)
		if email := GetUserEmail(c); email != "" {
			reqLog = reqLog.With(slog.String("user_email", email))
		}

		attrs := []any{
			slog.Int("status", status),
			slog.Duration("latency", time.Since(start)),
			slog.String("user_agent", c.Request.UserAgent()),
		}
		if msg := c.Errors.ByType(gin.ErrorTypePrivate).String(); msg != "" {
			attrs = append(attrs, slog.String("error", msg))
		}

		const msg = "Incoming request"
		switch {
		case status >= 500:
			reqLog.Error(msg, attrs...)
		case status >= 400:
			reqLog.Warn(msg, attrs...)
		default:
			reqLog.Info(msg, attrs...)
		}
	}
}
