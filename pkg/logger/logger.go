// Package logger provides a zap-based application logger whose methods take a
// context so that every record can be correlated with the active trace.
package logger

import (
	"context"
	"io"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level is the minimum severity a Logger emits.
type Level int8

const (
	LevelDebug Level = iota - 1
	LevelInfo
	LevelWarn
	LevelError
)

// ParseLevel maps a level name to a Level, defaulting to LevelInfo.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// TraceIDFn extracts a trace ID from a context, or returns "".
type TraceIDFn func(ctx context.Context) string

// Logger writes structured JSON records.
type Logger struct {
	z       *zap.SugaredLogger
	traceID TraceIDFn
}

// New creates a Logger writing JSON to w. traceIDFn may be nil.
func New(w io.Writer, minLevel Level, service string, traceIDFn TraceIDFn) *Logger {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encCfg),
		zapcore.AddSync(w),
		zapcore.Level(minLevel),
	)
	z := zap.New(core).With(zap.String("service", service))
	return &Logger{z: z.Sugar(), traceID: traceIDFn}
}

// Debug logs at debug level.
func (l *Logger) Debug(ctx context.Context, msg string, kv ...any) {
	l.with(ctx).Debugw(msg, kv...)
}

// Info logs at info level.
func (l *Logger) Info(ctx context.Context, msg string, kv ...any) {
	l.with(ctx).Infow(msg, kv...)
}

// Warn logs at warn level.
func (l *Logger) Warn(ctx context.Context, msg string, kv ...any) {
	l.with(ctx).Warnw(msg, kv...)
}

// Error logs at error level.
func (l *Logger) Error(ctx context.Context, msg string, kv ...any) {
	l.with(ctx).Errorw(msg, kv...)
}

// Sync flushes buffered records.
func (l *Logger) Sync() error {
	return l.z.Sync()
}

func (l *Logger) with(ctx context.Context) *zap.SugaredLogger {
	if l.traceID == nil || ctx == nil {
		return l.z
	}
	if id := l.traceID(ctx); id != "" {
		return l.z.With("trace_id", id)
	}
	return l.z
}
