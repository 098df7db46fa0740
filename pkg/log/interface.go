// Package log provides structured logging for the pipeline and its estimators.
//
// The package defines a minimal, slog-compatible logging interface so that the
// backend can be swapped without touching call sites. The default backend is
// zerolog. Structured attribute keys for ML operations (operation types, data
// shapes, metrics) live in attributes.go.
//
// Example usage:
//
//	logger := log.GetLogger().With(
//	    log.ModelNameKey, "LinearRegression",
//	)
//	logger.Info("Training started",
//	    log.OperationKey, log.OperationFit,
//	    log.SamplesKey, 1000,
//	    log.FeaturesKey, 5,
//	)

package log

import (
	"context"
)

// Logger is a structured logging interface compatible with Go's log/slog
// field conventions: variadic fields are alternating key-value pairs.
//
// With returns contextual loggers with pre-populated fields, so packages can
// build a component logger once and reuse it.
type Logger interface {
	// Debug logs a debug-level message with optional structured fields.
	// Used for detailed diagnostics such as per-iteration training state.
	//
	// Example:
	//
	//	logger.Debug("epoch finished",
	//	    log.EpochKey, 42,
	//	    log.LossKey, 0.0173,
	//	)
	Debug(msg string, fields ...any)

	// Info logs an info-level message with optional structured fields.
	// Used for the operational flow of a pipeline run.
	Info(msg string, fields ...any)

	// Warn logs a warning-level message with optional structured fields.
	// Used for situations that do not stop the run, such as a convergence
	// warning from an iterative trainer.
	Warn(msg string, fields ...any)

	// Error logs an error-level message with optional structured fields.
	// When a field value is an error carrying a stack trace, the trace is
	// included under StacktraceKey.
	//
	// Example:
	//
	//	logger.Error("training failed",
	//	    "error", err,
	//	    log.OperationKey, log.OperationFit,
	//	)
	Error(msg string, fields ...any)

	// With returns a new Logger that includes the given fields in every
	// subsequent log message.
	//
	// Example:
	//
	//	contextLogger := logger.With(log.ModelNameKey, "MLPRegressor")
	//	contextLogger.Info("starting training") // includes model.name
	With(fields ...any) Logger

	// Enabled reports whether the logger emits records at the given level.
	// Callers can use it to skip building expensive field values.
	Enabled(ctx context.Context, level Level) bool
}

// Level represents a logging level. Values are compatible with slog.Level.
type Level int

// Standard logging levels.
const (
	LevelDebug Level = -4 // detailed diagnostic information
	LevelInfo  Level = 0  // general operational information
	LevelWarn  Level = 4  // warning conditions
	LevelError Level = 8  // error conditions
)

// String returns the string representation of the log level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// LoggerProvider creates and configures loggers. It exists so tests can
// inject a capturing implementation.
type LoggerProvider interface {
	// GetLogger returns the default logger instance.
	GetLogger() Logger

	// GetLoggerWithName returns a logger tagged with a component name.
	GetLoggerWithName(name string) Logger

	// SetLevel sets the minimum level for loggers created by this provider.
	SetLevel(level Level)
}
