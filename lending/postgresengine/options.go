package postgresengine

import (
	"context"
)

// Logger interface for SQL query logging, operational messages, warnings, and error reporting.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// ContextualLogger interface for context-aware logging.
// It follows the same dependency-free pattern as Logger, allowing users to
// integrate with any logging backend that supports context-based correlation.
type ContextualLogger interface {
	DebugContext(ctx context.Context, msg string, args ...any)
	InfoContext(ctx context.Context, msg string, args ...any)
	WarnContext(ctx context.Context, msg string, args ...any)
	ErrorContext(ctx context.Context, msg string, args ...any)
}

// Option defines a functional option for configuring a Store.
type Option func(*Store) error

// WithTablePrefix sets a prefix that is applied to every table name.
// Useful for running multiple engines, or tests, against one database.
func WithTablePrefix(prefix string) Option {
	return func(s *Store) error {
		s.tablePrefix = prefix
		return nil
	}
}

// WithLogger sets the logger for the Store.
// The logger will receive messages at different levels based on the logger's configured level:
//
// Debug level: SQL queries with execution timing (development use)
// Info level: Operation summaries (production-safe)
// Warn level: Non-critical issues like cleanup failures
// Error level: Critical failures that cause operation failures.
func WithLogger(logger Logger) Option {
	return func(s *Store) error {
		s.logger = logger
		return nil
	}
}

// WithContextualLogger sets the contextual logger for the Store.
// When both loggers are configured the contextual logger takes precedence.
func WithContextualLogger(logger ContextualLogger) Option {
	return func(s *Store) error {
		s.ctxLogger = logger
		return nil
	}
}
