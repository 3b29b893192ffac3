package plantnetserver

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
)

const requestIDHeader = "X-Request-ID"

// RequestLogger writes one structured line per request. Server errors log at
// error level, client errors at warn.
func RequestLogger(base *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := base.With(
			slog.String("method", c.Request.Method),
			slog.String("path", c.FullPath()),
			slog.String("url", c.Request.URL.Path),
			slog.String("remote_ip", c.ClientIP()),
		)
		if rid := c.GetHeader(requestIDHeader); rid != "" {
			logger = logger.With(slog.String("request_id", rid))
			c.Header(requestIDHeader, rid)
		}

		start := time.Now()
		c.Next()
		status := c.Writer.Status()
		attrs := []slog.Attr{
			slog.Int("status", status),
			slog.Int64("duration_ms", time.Since(start).Milliseconds()),
		}
		ctx := c.Request.Context()
		switch {
		case status >= 500:
			if len(c.Errors) > 0 {
				attrs = append(attrs, slog.String("error", c.Errors.String()))
			}
			logger.LogAttrs(ctx, slog.LevelError, "request completed", attrs...)
		case status >= 400:
			logger.LogAttrs(ctx, slog.LevelWarn, "request completed", attrs...)
		default:
			attrs = append(attrs, slog.Int("bytes", c.Writer.Size()))
			logger.LogAttrs(ctx, slog.LevelInfo, "request completed", attrs...)
		}
	}
}
