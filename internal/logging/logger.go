package logging

import (
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/muurk/meshcfg/internal/redact"
)

var logger *zap.Logger

// LogLevelEnvVar is the environment variable that controls logging verbosity.
// When unset or empty, logging is silent (no zap output).
// Valid values: "debug", "info", "warn", "error"
const LogLevelEnvVar = "MESHCFG_LOG_LEVEL"

// Initialize creates a new logger with the specified level.
// If level is empty, it checks MESHCFG_LOG_LEVEL environment variable.
// If neither is set, logging is disabled (silent mode).
func Initialize(level string) error {
	if level == "" {
		level = os.Getenv(LogLevelEnvVar)
	}

	if level == "" {
		logger = zap.NewNop()
		return nil
	}

	var zapLevel zapcore.Level
	switch strings.ToLower(level) {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	// stdout belongs to command output (snapshots, reports), so logs go to stderr.
	config := zap.Config{
		Level:            zap.NewAtomicLevelAt(zapLevel),
		Development:      false,
		Encoding:         "console",
		EncoderConfig:    zap.NewDevelopmentEncoderConfig(),
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	}

	config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.EncodeCaller = zapcore.ShortCallerEncoder

	var err error
	logger, err = config.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	return nil
}

// GetLogger returns the global logger instance
func GetLogger() *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return logger
}

// Named returns a child of the global logger scoped to a component.
func Named(component string) *zap.Logger {
	return GetLogger().Named(component)
}

// Info logs an info message
func Info(msg string, fields ...zap.Field) {
	GetLogger().Info(msg, fields...)
}

// Debug logs a debug message
func Debug(msg string, fields ...zap.Field) {
	GetLogger().Debug(msg, fields...)
}

// Warn logs a warning message
func Warn(msg string, fields ...zap.Field) {
	GetLogger().Warn(msg, fields...)
}

// Error logs an error message
func Error(msg string, fields ...zap.Field) {
	GetLogger().Error(msg, fields...)
}

// Fatal logs a fatal message and exits
func Fatal(msg string, fields ...zap.Field) {
	GetLogger().Fatal(msg, fields...)
}

// LogDiff logs a computed configuration diff. The diff is always passed
// through the redactor first; callers must never log a diff any other way.
func LogDiff(l *zap.Logger, diff map[string]any) {
	if l == nil {
		l = GetLogger()
	}
	l.Info("Computed configuration diff",
		zap.Any("diff", redact.Value(diff)),
	)
}

// LogCommand logs an external tool invocation with secret arguments masked.
func LogCommand(l *zap.Logger, section string, tool string, args []string) {
	if l == nil {
		l = GetLogger()
	}
	l.Info("Running configuration tool",
		zap.String("section", section),
		zap.String("command", tool+" "+strings.Join(redact.Args(args), " ")),
	)
}

// LogCommandResult logs the outcome of an external tool invocation.
func LogCommandResult(l *zap.Logger, section string, exitCode int, duration time.Duration) {
	if l == nil {
		l = GetLogger()
	}
	fields := []zap.Field{
		zap.String("section", section),
		zap.Int("exit_code", exitCode),
		zap.Duration("duration", duration),
	}
	if exitCode != 0 {
		l.Warn("Configuration tool failed", fields...)
		return
	}
	l.Debug("Configuration tool finished", fields...)
}

// LogStateTransition logs an apply state machine transition
func LogStateTransition(l *zap.Logger, from, to string) {
	if l == nil {
		l = GetLogger()
	}
	l.Debug("Apply state transition",
		zap.String("from", from),
		zap.String("to", to),
	)
}

// Sync flushes any buffered log entries
func Sync() {
	if logger != nil {
		_ = logger.Sync()
	}
}
