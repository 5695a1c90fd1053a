// Package logging is a small leveled wrapper over the standard log
// package, used by the daemon. Debug output is gated by a verbosity
// switch set once at startup.
package logging

import (
	"log"
	"os"
	"sync/atomic"
)

type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
)

type Logger struct {
	logger *log.Logger
}

var std = &Logger{
	logger: log.New(os.Stderr, "", log.LstdFlags),
}

var verbose atomic.Bool

// SetVerbose enables or disables DEBUG output. INFO and above are
// always logged.
func SetVerbose(on bool) {
	verbose.Store(on)
}

func (l *Logger) shouldLog(level Level) bool {
	if level == DEBUG {
		return verbose.Load()
	}
	return true
}

func (l *Logger) Debug(format string, v ...any) {
	if l.shouldLog(DEBUG) {
		l.logger.Printf("[DEBUG] "+format, v...)
	}
}

func (l *Logger) Info(format string, v ...any) {
	if l.shouldLog(INFO) {
		l.logger.Printf("[INFO] "+format, v...)
	}
}

func (l *Logger) Warn(format string, v ...any) {
	if l.shouldLog(WARN) {
		l.logger.Printf("[WARN] "+format, v...)
	}
}

func (l *Logger) Error(format string, v ...any) {
	if l.shouldLog(ERROR) {
		l.logger.Printf("[ERROR] "+format, v...)
	}
}

// Package-level functions
func Debug(format string, v ...any) {
	std.Debug(format, v...)
}

func Info(format string, v ...any) {
	std.Info(format, v...)
}

func Warn(format string, v ...any) {
	std.Warn(format, v...)
}

func Error(format string, v ...any) {
	std.Error(format, v...)
}
