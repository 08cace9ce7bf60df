package internal

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogLevel represents different logging verbosity levels
type LogLevel int

const (
	LogLevelError LogLevel = iota
	LogLevelWarn
	LogLevelInfo
	LogLevelDebug
	LogLevelTrace
)

// ParseLogLevel maps ERROR/WARN/INFO/DEBUG/TRACE to a level, defaulting to INFO
func ParseLogLevel(s string) LogLevel {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ERROR":
		return LogLevelError
	case "WARN":
		return LogLevelWarn
	case "DEBUG":
		return LogLevelDebug
	case "TRACE":
		return LogLevelTrace
	default:
		return LogLevelInfo
	}
}

// zap has no trace level; trace shares debug and is filtered here
func (l LogLevel) zapLevel() zapcore.Level {
	switch l {
	case LogLevelError:
		return zapcore.ErrorLevel
	case LogLevelWarn:
		return zapcore.WarnLevel
	case LogLevelInfo:
		return zapcore.InfoLevel
	default:
		return zapcore.DebugLevel
	}
}

// Logger provides leveled printf-style logging on top of zap
type Logger struct {
	level LogLevel
	sugar *zap.SugaredLogger
}

// NewLogger creates a console logger with the specified level
func NewLogger(level LogLevel) *Logger {
	return newLogger(level, false)
}

// NewDefaultLogger creates a logger from the LOG_LEVEL and LOG_FORMAT
// environment variables. LOG_FORMAT=json switches to the JSON encoder.
func NewDefaultLogger() *Logger {
	return newLogger(ParseLogLevel(os.Getenv("LOG_LEVEL")), strings.EqualFold(os.Getenv("LOG_FORMAT"), "json"))
}

// NewNopLogger discards everything; used by tests
func NewNopLogger() *Logger {
	return &Logger{level: LogLevelError, sugar: zap.NewNop().Sugar()}
}

func newLogger(level LogLevel, jsonOutput bool) *Logger {
	config := zap.NewDevelopmentConfig()
	if jsonOutput {
		config = zap.NewProductionConfig()
	}
	config.Level = zap.NewAtomicLevelAt(level.zapLevel())
	config.DisableStacktrace = true

	base, err := config.Build()
	if err != nil {
		base = zap.NewNop()
	}
	return &Logger{level: level, sugar: base.Sugar()}
}

// With returns a child logger carrying structured key/value fields
func (l *Logger) With(keysAndValues ...interface{}) *Logger {
	return &Logger{level: l.level, sugar: l.sugar.With(keysAndValues...)}
}

// Named returns a child logger with a component name
func (l *Logger) Named(name string) *Logger {
	return &Logger{level: l.level, sugar: l.sugar.Named(name)}
}

// Error logs error messages
func (l *Logger) Error(format string, args ...interface{}) {
	l.sugar.Errorf(format, args...)
}

// Warn logs warning messages
func (l *Logger) Warn(format string, args ...interface{}) {
	l.sugar.Warnf(format, args...)
}

// Info logs info messages
func (l *Logger) Info(format string, args ...interface{}) {
	l.sugar.Infof(format, args...)
}

// Debug logs debug messages
func (l *Logger) Debug(format string, args ...interface{}) {
	l.sugar.Debugf(format, args...)
}

// Trace logs trace messages
func (l *Logger) Trace(format string, args ...interface{}) {
	if l.level >= LogLevelTrace {
		l.sugar.Debugf(format, args...)
	}
}

// GetLevel returns the current log level
func (l *Logger) GetLevel() LogLevel {
	return l.level
}

// Zap exposes the underlying logger for libraries that take one
func (l *Logger) Zap() *zap.Logger {
	return l.sugar.Desugar()
}

// Sync flushes buffered entries
func (l *Logger) Sync() error {
	return l.sugar.Sync()
}

// Global logger instance
var DefaultLogger = NewDefaultLogger()
