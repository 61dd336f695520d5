package middlewares

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	requestIDHeader = "X-Request-ID"
	loggerKey       = "logger"
)

var fallbackLogger = logrus.StandardLogger()

// RequestLogger tags every request with an id and logs its outcome.
func RequestLogger(log *logrus.Logger) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()

		requestID := ctx.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		ctx.Header(requestIDHeader, requestID)

		entry := log.WithField("request_id", requestID)
		ctx.Set(loggerKey, entry)

		ctx.Next()

		fields := logrus.Fields{
			"method":      ctx.Request.Method,
			"path":        ctx.Request.URL.Path,
			"status":      ctx.Writer.Status(),
			"duration_ms": time.Since(start).Milliseconds(),
			"client_ip":   ctx.ClientIP(),
		}
		if len(ctx.Errors) > 0 {
			fields["errors"] = ctx.Errors.String()
		}

		status := ctx.Writer.Status()
		switch {
		case status >= 500:
			entry.WithFields(fields).Error("HTTP request completed")
		case status >= 400:
			entry.WithFields(fields).Warn("HTTP request completed")
		default:
			entry.WithFields(fields).Info("HTTP request completed")
		}
	}
}

// LoggerFrom returns the request-scoped logger, or the standard logger when
// the request did not pass through RequestLogger.
func LoggerFrom(ctx *gin.Context) logrus.FieldLogger {
	if value, exists := ctx.Get(loggerKey); exists {
		if entry, ok := value.(*logrus.Entry); ok {
			return entry
		}
	}
	return fallbackLogger
}
