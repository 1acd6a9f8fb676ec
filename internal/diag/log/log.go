// Package log provides categorized, zap-backed logging for the engine's
// internal subsystems (lexer, parser, compiler, VM, GC). Logging is a
// diagnostic side channel only: nothing in internal/vm or internal/heap
// branches on whether a logger is attached.
package log

import (
	"os"
	"sync"

	"go.uber.org/zap"
)

// Category names an engine subsystem for log correlation.
type Category string

const (
	Boot     Category = "boot"
	Lexer    Category = "lexer"
	Parser   Category = "parser"
	Compiler Category = "compiler"
	VM       Category = "vm"
	GC       Category = "gc"
	Shape    Category = "shape"
	Env      Category = "env"
	Realm    Category = "realm"
	Job      Category = "job"
)

// Logger wraps a *zap.Logger with category tagging.
type Logger struct {
	z *zap.Logger
}

// New wraps an existing zap logger. Passing nil produces a no-op logger.
func New(z *zap.Logger) *Logger {
	if z == nil {
		z = zap.NewNop()
	}
	return &Logger{z: z}
}

var (
	defaultOnce   sync.Once
	defaultLogger *Logger
)

// Default returns the process-wide logger, built lazily the first time
// it's requested. Debug-level output is gated by the ESPRIT_DEBUG
// environment variable.
func Default() *Logger {
	defaultOnce.Do(func() {
		cfg := zap.NewProductionConfig()
		if os.Getenv("ESPRIT_DEBUG") != "" {
			cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
		}
		z, err := cfg.Build()
		if err != nil {
			z = zap.NewNop()
		}
		defaultLogger = New(z)
	})
	return defaultLogger
}

// Debugf logs a debug-level message tagged with category.
func (l *Logger) Debugf(cat Category, format string, args ...interface{}) {
	if l == nil || l.z == nil {
		return
	}
	l.z.Sugar().Debugf(string(cat)+": "+format, args...)
}

// Infof logs an info-level message tagged with category.
func (l *Logger) Infof(cat Category, format string, args ...interface{}) {
	if l == nil || l.z == nil {
		return
	}
	l.z.Sugar().Infof(string(cat)+": "+format, args...)
}

// Errorf logs an error-level message tagged with category.
func (l *Logger) Errorf(cat Category, format string, args ...interface{}) {
	if l == nil || l.z == nil {
		return
	}
	l.z.Sugar().Errorf(string(cat)+": "+format, args...)
}

// Sync flushes any buffered log entries.
func (l *Logger) Sync() {
	if l != nil && l.z != nil {
		_ = l.z.Sync()
	}
}
