package logger

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// Logger wraps slog.Logger with helpers for the booking platform's
// recurring log shapes.
type Logger struct {
	*slog.Logger
}

// New creates a logger. Text output in debug mode for readability, JSON
// in release mode for ingestion.
func New() *Logger {
	level := parseLevel(os.Getenv("LOG_LEVEL"))

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}

	var handler slog.Handler
	if gin.Mode() == gin.DebugMode {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return &Logger{
		Logger: slog.New(handler).With(slog.String("service", "eventvenue")),
	}
}

func parseLevel(levelStr string) slog.Level {
	switch strings.ToLower(levelStr) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WithRequestID adds the request ID to every record.
func (l *Logger) WithRequestID(requestID string) *Logger {
	return &Logger{
		Logger: l.Logger.With(slog.String("request_id", requestID)),
	}
}

// WithError adds the error message to every record.
func (l *Logger) WithError(err error) *Logger {
	return &Logger{
		Logger: l.Logger.With(slog.String("error", err.Error())),
	}
}

// WithFields adds a set of fields to every record.
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	args := make([]interface{}, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, slog.Any(k, v))
	}
	return &Logger{
		Logger: l.Logger.With(args...),
	}
}

// HTTP logging

// LogHTTPRequest logs one served request.
func (l *Logger) LogHTTPRequest(c *gin.Context, duration time.Duration) {
	l.Logger.InfoContext(c.Request.Context(),
		"http request",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.String("query", c.Request.URL.RawQuery),
		slog.Int("status", c.Writer.Status()),
		slog.Duration("duration", duration),
		slog.String("ip", c.ClientIP()),
		slog.String("user_agent", c.Request.UserAgent()),
		slog.Int("size", c.Writer.Size()),
	)
}

// LogHTTPError logs a request that ended in an error response.
func (l *Logger) LogHTTPError(c *gin.Context, err error, statusCode int) {
	l.Logger.ErrorContext(c.Request.Context(),
		"http error",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.Int("status", statusCode),
		slog.String("error", err.Error()),
		slog.String("ip", c.ClientIP()),
	)
}

// Domain logging

// LogEventCreated logs a vendor publishing an event.
func (l *Logger) LogEventCreated(ctx context.Context, eventID, vendorID string) {
	l.Logger.InfoContext(ctx,
		"event created",
		slog.String("event_id", eventID),
		slog.String("vendor_id", vendorID),
	)
}

// LogBookingCreated logs a confirmed booking.
func (l *Logger) LogBookingCreated(ctx context.Context, bookingID, eventID, userID string) {
	l.Logger.InfoContext(ctx,
		"booking confirmed",
		slog.String("booking_id", bookingID),
		slog.String("event_id", eventID),
		slog.String("user_id", userID),
	)
}

// LogBookingCancelled logs a cancellation with its refund applied.
func (l *Logger) LogBookingCancelled(ctx context.Context, bookingID, eventID, userID string) {
	l.Logger.InfoContext(ctx,
		"booking cancelled",
		slog.String("booking_id", bookingID),
		slog.String("event_id", eventID),
		slog.String("user_id", userID),
	)
}

// LogLedgerMutation logs a points balance change.
func (l *Logger) LogLedgerMutation(ctx context.Context, accountID string, delta int64, reason string) {
	l.Logger.InfoContext(ctx,
		"ledger mutation",
		slog.String("account_id", accountID),
		slog.Int64("delta", delta),
		slog.String("reason", reason),
	)
}

// Security logging

// LogAuthFailure logs a rejected token or credential.
func (l *Logger) LogAuthFailure(ctx context.Context, reason, ip string) {
	l.Logger.WarnContext(ctx,
		"authentication failure",
		slog.String("reason", reason),
		slog.String("ip", ip),
	)
}

// LogRateLimitExceeded logs a throttled client.
func (l *Logger) LogRateLimitExceeded(ctx context.Context, ip, endpoint string) {
	l.Logger.WarnContext(ctx,
		"rate limit exceeded",
		slog.String("ip", ip),
		slog.String("endpoint", endpoint),
	)
}

// Helper methods for ad hoc structured records

// InfoWithContext logs an info message with a field map.
func (l *Logger) InfoWithContext(ctx context.Context, msg string, fields map[string]interface{}) {
	args := make([]interface{}, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, slog.Any(k, v))
	}
	l.Logger.InfoContext(ctx, msg, args...)
}

// ErrorWithContext logs an error message with a field map.
func (l *Logger) ErrorWithContext(ctx context.Context, msg string, err error, fields map[string]interface{}) {
	args := make([]interface{}, 0, len(fields)*2+2)
	args = append(args, slog.String("error", err.Error()))
	for k, v := range fields {
		args = append(args, slog.Any(k, v))
	}
	l.Logger.ErrorContext(ctx, msg, args...)
}

// Global logger instance
var defaultLogger = New()

// GetDefault returns the default logger instance.
func GetDefault() *Logger {
	return defaultLogger
}

// SetDefault replaces the default logger instance.
func SetDefault(logger *Logger) {
	defaultLogger = logger
}
