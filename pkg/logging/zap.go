package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ZapLogger implements Logger interface using zap
type ZapLogger struct {
	logger    *zap.Logger
	component string
	context   map[string]interface{}
}

// Options controls how the underlying zap logger is built
type Options struct {
	Level  string
	Format string
}

// NewZapLogger creates a new ZapLogger with the production defaults
func NewZapLogger(component string) *ZapLogger {
	return NewZapLoggerWithOptions(component, Options{Level: "info", Format: "json"})
}

// NewZapLoggerWithOptions creates a ZapLogger honoring the configured level and format
func NewZapLoggerWithOptions(component string, opts Options) *ZapLogger {
	config := zap.NewProductionConfig()
	if strings.EqualFold(opts.Format, "text") {
		config = zap.NewDevelopmentConfig()
	}
	config.Level = zap.NewAtomicLevelAt(ParseLevel(opts.Level))

	logger, err := config.Build()
	if err != nil {
		// Fallback to a no-op logger if configuration fails
		logger = zap.NewNop()
	}

	return newZapLogger(logger, component)
}

// NewZapLoggerFrom wraps an existing zap logger, mainly for tests using zaptest/observer
func NewZapLoggerFrom(logger *zap.Logger, component string) *ZapLogger {
	return newZapLogger(logger, component)
}

func newZapLogger(logger *zap.Logger, component string) *ZapLogger {
	return &ZapLogger{
		logger:    logger,
		component: component,
		context:   make(map[string]interface{}),
	}
}

// ParseLevel maps a config level string onto a zap level, defaulting to info
func ParseLevel(level string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// Info logs an info message
func (z *ZapLogger) Info(msg string, fields map[string]interface{}) {
	z.logger.Info(z.format(msg), z.buildZapFields(fields)...)
}

// Error logs an error message
func (z *ZapLogger) Error(msg string, err error, fields map[string]interface{}) {
	zapFields := z.buildZapFields(fields)
	if err != nil {
		zapFields = append(zapFields, zap.Error(err))
	}
	z.logger.Error(z.format(msg), zapFields...)
}

// Warn logs a warning message
func (z *ZapLogger) Warn(msg string, fields map[string]interface{}) {
	z.logger.Warn(z.format(msg), z.buildZapFields(fields)...)
}

// Debug logs a debug message
func (z *ZapLogger) Debug(msg string, fields map[string]interface{}) {
	z.logger.Debug(z.format(msg), z.buildZapFields(fields)...)
}

// WithPipeline creates a new logger with pipeline context
func (z *ZapLogger) WithPipeline(pipeline string) Logger {
	newContext := z.copyContext()
	newContext["pipeline"] = pipeline

	return &ZapLogger{
		logger:    z.logger,
		component: z.component,
		context:   newContext,
	}
}

// WithContext creates a new logger with additional context
func (z *ZapLogger) WithContext(ctx map[string]interface{}) Logger {
	newContext := z.copyContext()
	for k, v := range ctx {
		newContext[k] = v
	}

	return &ZapLogger{
		logger:    z.logger,
		component: z.component,
		context:   newContext,
	}
}

// Sync flushes buffered entries
func (z *ZapLogger) Sync() error {
	return z.logger.Sync()
}

func (z *ZapLogger) format(msg string) string {
	return fmt.Sprintf("[%s] %s", z.component, msg)
}

func (z *ZapLogger) copyContext() map[string]interface{} {
	newContext := make(map[string]interface{}, len(z.context))
	for k, v := range z.context {
		newContext[k] = v
	}
	return newContext
}

// buildZapFields converts map fields to zap fields
func (z *ZapLogger) buildZapFields(fields map[string]interface{}) []zap.Field {
	zapFields := make([]zap.Field, 0, len(z.context)+len(fields))

	// Context fields first, call-site fields may shadow them
	for k, v := range z.context {
		if _, overridden := fields[k]; overridden {
			continue
		}
		zapFields = append(zapFields, zap.Any(k, v))
	}
	for k, v := range fields {
		zapFields = append(zapFields, zap.Any(k, v))
	}

	return zapFields
}
