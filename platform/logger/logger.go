// Package logger provides structured logging infrastructure for the application.
// This is part of the platform layer and contains no business logic.
package logger

import (
	"context"
	"log/slog"
	"os"
	"strings"
)

// Context key types for storing values in context
type contextKey string

const (
	// RequestIDKey is the context key for request ID
	RequestIDKey contextKey = "request_id"
	// ViewIDKey is the context key for the portal view a request acts on
	ViewIDKey contextKey = "view_id"
)

// Logger wraps slog.Logger for structured logging
type Logger struct {
	*slog.Logger
}

// New creates a new logger based on environment
func New(env string) *Logger {
	var handler slog.Handler

	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}

	if strings.EqualFold(env, "development") {
		opts.Level = slog.LevelDebug
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewWithHandler wraps an existing handler. Tests use it to capture output.
func NewWithHandler(handler slog.Handler) *Logger {
	return &Logger{Logger: slog.New(handler)}
}

// WithContext returns a logger with request_id and view_id extracted from ctx.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	if ctx == nil {
		return l
	}

	newLogger := l

	if requestID, ok := ctx.Value(RequestIDKey).(string); ok && requestID != "" {
		newLogger = newLogger.WithRequestID(requestID)
	}

	if viewID, ok := ctx.Value(ViewIDKey).(string); ok && viewID != "" {
		newLogger = &Logger{
			Logger: newLogger.With(slog.String("view_id", viewID)),
		}
	}

	return newLogger
}

// WithRequestID returns a logger with request ID
func (l *Logger) WithRequestID(requestID string) *Logger {
	return &Logger{
		Logger: l.With(slog.String("request_id", requestID)),
	}
}

// HTTPRequest logs an HTTP request
func (l *Logger) HTTPRequest(method, path string, status int, latencyMs float64, clientIP string) {
	l.Info("http_request",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", status),
		slog.Float64("latency_ms", latencyMs),
		slog.String("client_ip", clientIP),
	)
}

// HTTPError logs an HTTP error
func (l *Logger) HTTPError(method, path string, status int, err error, clientIP string) {
	l.Error("http_error",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", status),
		slog.String("error", err.Error()),
		slog.String("client_ip", clientIP),
	)
}

// DatabaseError logs database errors
func (l *Logger) DatabaseError(operation string, err error) {
	l.Error("database_error",
		slog.String("operation", operation),
		slog.String("error", err.Error()),
	)
}

// RateLimitExceeded logs rate limit events
func (l *Logger) RateLimitExceeded(clientIP, path string) {
	l.Warn("rate_limit_exceeded",
		slog.String("client_ip", clientIP),
		slog.String("path", path),
	)
}

// MutationRefused logs a persistence-capable command that arrived without
// a valid intent. Refusals are not errors.
func (l *Logger) MutationRefused(trigger, scope, reason string) {
	l.Warn("mutation_refused",
		slog.String("trigger", trigger),
		slog.String("scope", scope),
		slog.String("reason", reason),
	)
}

// MutationCommitted logs a change persisted to a booking.
func (l *Logger) MutationCommitted(bookingID, kind string, oldTotal, newTotal int64) {
	l.Info("mutation_committed",
		slog.String("booking_id", bookingID),
		slog.String("kind", kind),
		slog.Int64("old_total", oldTotal),
		slog.Int64("new_total", newTotal),
	)
}

// ExternalCallFailed logs a failed call to a collaborator service.
func (l *Logger) ExternalCallFailed(service string, err error) {
	l.Warn("external_call_failed",
		slog.String("service", service),
		slog.String("error", err.Error()),
	)
}

// SessionTransition logs an edit session phase change.
func (l *Logger) SessionTransition(sessionID, from, to string) {
	l.Debug("session_transition",
		slog.String("session_id", sessionID),
		slog.String("from", from),
		slog.String("to", to),
	)
}
