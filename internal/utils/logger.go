package utils

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
)

// Logger is the logging facade used across handlers and middleware. Methods
// take slog-style alternating key/value args.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	With(args ...any) Logger
}

type slogLogger struct {
	l *slog.Logger
}

// NewSlogLogger wraps a slog.Logger behind the Logger facade.
func NewSlogLogger(l *slog.Logger) Logger {
	return &slogLogger{l: l}
}

func (s *slogLogger) Debug(msg string, args ...any) { s.l.Debug(msg, args...) }
func (s *slogLogger) Info(msg string, args ...any)  { s.l.Info(msg, args...) }
func (s *slogLogger) Warn(msg string, args ...any)  { s.l.Warn(msg, args...) }
func (s *slogLogger) Error(msg string, args ...any) { s.l.Error(msg, args...) }

func (s *slogLogger) With(args ...any) Logger {
	return &slogLogger{l: s.l.With(args...)}
}

const contextLoggerKey = "logger"

// ContextLogger stores a request-scoped logger carrying the request id so
// handlers can log with correlation.
func ContextLogger(logger Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestLogger := logger
		if requestID := c.GetString("request_id"); requestID != "" {
			requestLogger = logger.With("request_id", requestID)
		}
		c.Set(contextLoggerKey, requestLogger)
		c.Next()
	}
}

// FromContext returns the request-scoped logger, falling back to the given
// default when middleware did not run.
func FromContext(c *gin.Context, fallback Logger) Logger {
	if v, exists := c.Get(contextLoggerKey); exists {
		if l, ok := v.(Logger); ok {
			return l
		}
	}
	return fallback
}

// LoggerMiddleware emits one structured access log line per request.
func LoggerMiddleware(logger Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		logger.Info("Request completed",
			"method", c.Request.Method,
			"path", path,
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		)
	}
}
