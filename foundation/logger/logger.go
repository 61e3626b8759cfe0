// Package logger provides support for initializing the log system.
package logger

import (
	"context"
	"fmt"
	"io"
	"log"
	"runtime/debug"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// TraceIDFn represents a function that can return the trace id from
// the specified context.
type TraceIDFn func(ctx context.Context) string

// Logger represents a logger for logging information.
type Logger struct {
	zap       *zap.Logger
	sugar     *zap.SugaredLogger
	traceIDFn TraceIDFn
	events    Events
}

// New constructs a new log for application use.
func New(w io.Writer, minLevel Level, serviceName string, traceIDFn TraceIDFn) *Logger {
	return new(w, minLevel, serviceName, traceIDFn, Events{})
}

// NewWithEvents constructs a new log for application use with events.
func NewWithEvents(w io.Writer, minLevel Level, serviceName string, traceIDFn TraceIDFn, events Events) *Logger {
	return new(w, minLevel, serviceName, traceIDFn, events)
}

// NewStdLogger returns a standard library Logger that wraps the zap Logger.
func NewStdLogger(logger *Logger, level Level) *log.Logger {
	std, err := zap.NewStdLogAt(logger.zap, zapcore.Level(level))
	if err != nil {
		return zap.NewStdLog(logger.zap)
	}

	return std
}

// Debug logs at LevelDebug with the given context.
func (log *Logger) Debug(ctx context.Context, msg string, args ...any) {
	log.write(ctx, LevelDebug, msg, args...)
}

// Info logs at LevelInfo with the given context.
func (log *Logger) Info(ctx context.Context, msg string, args ...any) {
	log.write(ctx, LevelInfo, msg, args...)
}

// Warn logs at LevelWarn with the given context.
func (log *Logger) Warn(ctx context.Context, msg string, args ...any) {
	log.write(ctx, LevelWarn, msg, args...)
}

// Error logs at LevelError with the given context.
func (log *Logger) Error(ctx context.Context, msg string, args ...any) {
	log.write(ctx, LevelError, msg, args...)
}

// BuildInfo logs information about the binary and its dependencies.
func (log *Logger) BuildInfo(ctx context.Context) {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}

	args := []any{"go", info.GoVersion, "path", info.Path}
	for _, s := range info.Settings {
		if s.Value == "" {
			continue
		}
		args = append(args, s.Key, s.Value)
	}

	log.write(ctx, LevelInfo, "build info", args...)
}

// Sync flushes any buffered log entries.
func (log *Logger) Sync() error {
	return log.zap.Sync()
}

func (log *Logger) write(ctx context.Context, level Level, msg string, args ...any) {
	lvl := zapcore.Level(level)
	if !log.zap.Core().Enabled(lvl) {
		return
	}

	if log.traceIDFn != nil {
		if traceID := log.traceIDFn(ctx); traceID != "" {
			args = append(args, "trace_id", traceID)
		}
	}

	switch level {
	case LevelDebug:
		log.sugar.Debugw(msg, args...)
	case LevelWarn:
		log.sugar.Warnw(msg, args...)
	case LevelError:
		log.sugar.Errorw(msg, args...)
	default:
		log.sugar.Infow(msg, args...)
	}

	log.fire(ctx, level, msg, args)
}

func (log *Logger) fire(ctx context.Context, level Level, msg string, args []any) {
	var fn EventFn

	switch level {
	case LevelDebug:
		fn = log.events.Debug
	case LevelInfo:
		fn = log.events.Info
	case LevelWarn:
		fn = log.events.Warn
	case LevelError:
		fn = log.events.Error
	}

	if fn == nil {
		return
	}

	attrs := make(map[string]any, len(args)/2)
	for i := 0; i+1 < len(args); i += 2 {
		attrs[fmt.Sprint(args[i])] = args[i+1]
	}

	fn(ctx, Record{
		Time:       time.Now(),
		Message:    msg,
		Level:      level,
		Attributes: attrs,
	})
}

// =============================================================================

func new(w io.Writer, minLevel Level, serviceName string, traceIDFn TraceIDFn, events Events) *Logger {
	encCfg := zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		MessageKey:     "msg",
		CallerKey:      "file",
		NameKey:        "logger",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encCfg),
		zapcore.AddSync(w),
		zap.NewAtomicLevelAt(zapcore.Level(minLevel)),
	)

	// Skip write and the exported level method so the caller is the
	// function that logged.
	zl := zap.New(core, zap.AddCaller(), zap.AddCallerSkip(2))
	if serviceName != "" {
		zl = zl.With(zap.String("service", serviceName))
	}

	return &Logger{
		zap:       zl,
		sugar:     zl.Sugar(),
		traceIDFn: traceIDFn,
		events:    events,
	}
}
