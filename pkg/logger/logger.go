package logger

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps a zap logger with context-aware helpers
type Logger struct {
	zl *zap.Logger
}

var (
	mu     sync.RWMutex
	global = &Logger{zl: zap.NewNop()}
)

// Init replaces the global logger. level is a zap level name.
func Init(level string, asJSON bool) error {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("logger.Init: %w", err)
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	cfg := zap.Config{
		Level:            zap.NewAtomicLevelAt(lvl),
		Encoding:         "console",
		EncoderConfig:    encCfg,
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	}
	if asJSON {
		cfg.Encoding = "json"
	} else {
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	zl, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("logger.Init: %w", err)
	}

	SetLogger(zl)
	return nil
}

// SetLogger installs an existing zap logger, mainly for tests
func SetLogger(zl *zap.Logger) {
	mu.Lock()
	defer mu.Unlock()
	global = &Logger{zl: zl}
}

// L returns the global zap logger
func L() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return global.zl
}

func current() *Logger {
	mu.RLock()
	defer mu.RUnlock()
	return global
}

// With returns a child logger carrying the given fields
func With(fields ...Field) *Logger {
	return &Logger{zl: L().With(fields...)}
}

func (l *Logger) Debug(ctx context.Context, msg string, fields ...Field) {
	l.zl.Debug(msg, withRequestID(ctx, fields)...)
}

func (l *Logger) Info(ctx context.Context, msg string, fields ...Field) {
	l.zl.Info(msg, withRequestID(ctx, fields)...)
}

func (l *Logger) Warn(ctx context.Context, msg string, fields ...Field) {
	l.zl.Warn(msg, withRequestID(ctx, fields)...)
}

func (l *Logger) Error(ctx context.Context, msg string, fields ...Field) {
	l.zl.Error(msg, withRequestID(ctx, fields)...)
}

func Debug(ctx context.Context, msg string, fields ...Field) { current().Debug(ctx, msg, fields...) }
func Info(ctx context.Context, msg string, fields ...Field)  { current().Info(ctx, msg, fields...) }
func Warn(ctx context.Context, msg string, fields ...Field)  { current().Warn(ctx, msg, fields...) }
func Error(ctx context.Context, msg string, fields ...Field) { current().Error(ctx, msg, fields...) }

// Sync flushes buffered entries
func Sync() error {
	return L().Sync()
}

type requestIDKey struct{}

// WithRequestID stores a request id that every log line made with ctx carries
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func withRequestID(ctx context.Context, fields []Field) []Field {
	if ctx == nil {
		return fields
	}
	if id, ok := ctx.Value(requestIDKey{}).(string); ok && id != "" {
		return append(fields, zap.String("request_id", id))
	}
	return fields
}
