package internal

import (
	"log"
	"os"
	"strings"
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

var levelNames = map[string]LogLevel{
	"ERROR": LogLevelError,
	"WARN":  LogLevelWarn,
	"INFO":  LogLevelInfo,
	"DEBUG": LogLevelDebug,
	"TRACE": LogLevelTrace,
}

// ParseLogLevel accepts ERROR, WARN, INFO, DEBUG or TRACE in any case
func ParseLogLevel(s string) (LogLevel, bool) {
	level, ok := levelNames[strings.ToUpper(strings.TrimSpace(s))]
	return level, ok
}

// Logger provides leveled logging with a bracketed component prefix
type Logger struct {
	level     LogLevel
	component string
}

// NewLogger creates a logger for component at level
func NewLogger(component string, level LogLevel) *Logger {
	return &Logger{level: level, component: component}
}

// NewDefaultLogger creates a logger for component using LOG_LEVEL (default INFO)
func NewDefaultLogger(component string) *Logger {
	level := LogLevelInfo
	if parsed, ok := ParseLogLevel(os.Getenv("LOG_LEVEL")); ok {
		level = parsed
	}
	return NewLogger(component, level)
}

func (l *Logger) printf(level LogLevel, format string, args ...interface{}) {
	if l.level < level {
		return
	}
	log.Printf("["+l.component+"] "+format, args...)
}

// Error logs error messages
func (l *Logger) Error(format string, args ...interface{}) { l.printf(LogLevelError, format, args...) }

// Warn logs warning messages
func (l *Logger) Warn(format string, args ...interface{}) { l.printf(LogLevelWarn, format, args...) }

// Info logs info messages
func (l *Logger) Info(format string, args ...interface{}) { l.printf(LogLevelInfo, format, args...) }

// Debug logs debug messages
func (l *Logger) Debug(format string, args ...interface{}) { l.printf(LogLevelDebug, format, args...) }

// Trace logs per-step messages
func (l *Logger) Trace(format string, args ...interface{}) { l.printf(LogLevelTrace, format, args...) }

// Enabled reports whether messages at level are printed
func (l *Logger) Enabled(level LogLevel) bool {
	return l.level >= level
}

// GetLevel returns the current log level
func (l *Logger) GetLevel() LogLevel {
	return l.level
}
