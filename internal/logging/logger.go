// Package logging provides the leveled console logger shared by the studio packages.
// It wraps the standard log package so every component logs with the same format
// and honours the level configured under logging.log_level.
package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
)

// LogLevel represents the severity level of log messages
type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
	FATAL
)

// String returns the string representation of the log level
func (l LogLevel) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	case FATAL:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

// ParseLogLevel converts a string to LogLevel, defaulting to INFO
func ParseLogLevel(level string) LogLevel {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return DEBUG
	case "INFO":
		return INFO
	case "WARN", "WARNING":
		return WARN
	case "ERROR":
		return ERROR
	case "FATAL":
		return FATAL
	default:
		return INFO
	}
}

// Logger is a leveled wrapper around *log.Logger
type Logger struct {
	logger *log.Logger
	level  LogLevel
}

var (
	globalMu     sync.RWMutex
	globalLogger *Logger
)

// New creates a logger writing to w at the given level
func New(w io.Writer, level string) *Logger {
	return &Logger{
		logger: log.New(w, "", log.LstdFlags),
		level:  ParseLogLevel(level),
	}
}

// InitializeLogging installs the global console logger with the specified level
func InitializeLogging(level string) error {
	SetLogger(New(os.Stderr, level))
	return nil
}

// SetLogger replaces the global logger. Passing nil silences package-level logging.
func SetLogger(l *Logger) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalLogger = l
}

func current() *Logger {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalLogger
}

func (l *Logger) shouldLog(level LogLevel) bool {
	return level >= l.level
}

func (l *Logger) output(level LogLevel, format string, args ...interface{}) {
	if !l.shouldLog(level) {
		return
	}
	l.logger.Printf("[%s] %s", level.String(), fmt.Sprintf(format, args...))
}

// Debug logs a debug message
func (l *Logger) Debug(format string, args ...interface{}) { l.output(DEBUG, format, args...) }

// Info logs an info message
func (l *Logger) Info(format string, args ...interface{}) { l.output(INFO, format, args...) }

// Warn logs a warning message
func (l *Logger) Warn(format string, args ...interface{}) { l.output(WARN, format, args...) }

// Error logs an error message
func (l *Logger) Error(format string, args ...interface{}) { l.output(ERROR, format, args...) }

// Fatal logs a fatal message and exits the program
func (l *Logger) Fatal(format string, args ...interface{}) {
	l.output(FATAL, format, args...)
	os.Exit(1)
}

// Level returns the logger's minimum level
func (l *Logger) Level() LogLevel {
	return l.level
}

// Debug logs a debug message using the global logger
func Debug(format string, args ...interface{}) {
	if l := current(); l != nil {
		l.Debug(format, args...)
	}
}

// Info logs an info message using the global logger
func Info(format string, args ...interface{}) {
	if l := current(); l != nil {
		l.Info(format, args...)
	}
}

// Warn logs a warning message using the global logger
func Warn(format string, args ...interface{}) {
	if l := current(); l != nil {
		l.Warn(format, args...)
	}
}

// Error logs an error message using the global logger
func Error(format string, args ...interface{}) {
	if l := current(); l != nil {
		l.Error(format, args...)
	}
}

// Fatal logs a fatal message and exits. Falls back to the standard logger
// when logging has not been initialized yet.
func Fatal(format string, args ...interface{}) {
	if l := current(); l != nil {
		l.Fatal(format, args...)
		return
	}
	log.Fatalf(format, args...)
}

// IsInitialized returns true if the global logger has been initialized
func IsInitialized() bool {
	return current() != nil
}

// GetLogLevel returns the current log level
func GetLogLevel() LogLevel {
	if l := current(); l != nil {
		return l.level
	}
	return INFO
}
