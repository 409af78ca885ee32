package log

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	defaultLogger *Logger
	defaultOnce   sync.Once
)

// Logger is a thin wrapper around zap used across the module. It exists so
// packages can share one logging surface without each of them owning zap
// configuration.
type Logger struct {
	zapLogger *zap.Logger
}

// New builds a production JSON logger writing to stderr at the given level.
func New(level zapcore.Level) *Logger {
	config := zap.Config{
		Level:       zap.NewAtomicLevelAt(level),
		Development: false,
		Sampling: &zap.SamplingConfig{
			Initial:    100,
			Thereafter: 100,
		},
		Encoding:         "json",
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
		DisableCaller:    true,
	}

	zapLogger, err := config.Build()
	if err != nil {
		panic(err)
	}

	return &Logger{zapLogger: zapLogger}
}

// Nop returns a logger that discards everything. Library types fall back to
// it when the embedder does not inject a logger.
func Nop() *Logger {
	return &Logger{zapLogger: zap.NewNop()}
}

// Provide returns the process-wide default logger, constructing it at info
// level on first use.
func Provide() *Logger {
	defaultOnce.Do(func() {
		defaultLogger = New(zapcore.InfoLevel)
	})
	return defaultLogger
}

func (l *Logger) Debug(msg string, fields ...zap.Field) {
	l.zapLogger.Debug(msg, fields...)
}

func (l *Logger) Info(msg string, fields ...zap.Field) {
	l.zapLogger.Info(msg, fields...)
}

func (l *Logger) Warn(msg string, fields ...zap.Field) {
	l.zapLogger.Warn(msg, fields...)
}

func (l *Logger) Error(msg string, fields ...zap.Field) {
	l.zapLogger.Error(msg, fields...)
}

// With returns a child logger carrying the given fields.
func (l *Logger) With(fields ...zap.Field) *Logger {
	return &Logger{zapLogger: l.zapLogger.With(fields...)}
}
