package oteladapters

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	otellog "go.opentelemetry.io/otel/log"

	"github.com/dcbkit/dcb-runtime-go/eventstore"
)

var (
	_ eventstore.ContextualLogger = (*Logger)(nil)
	_ eventstore.Logger           = (*Logger)(nil)
	_ eventstore.ContextualLogger = (*LogEmitter)(nil)
)

// Logger logs through log/slog. Built with NewLogger it writes to the global OpenTelemetry LoggerProvider,
// and records carry the trace and span of the context.
type Logger struct {
	logger *slog.Logger
}

// NewLogger returns a Logger backed by the otelslog bridge.
func NewLogger(name string) *Logger {
	return &Logger{logger: otelslog.NewLogger(name)}
}

// NewLoggerFromHandler returns a Logger that writes to handler, without trace correlation.
func NewLoggerFromHandler(handler slog.Handler) *Logger {
	return &Logger{logger: slog.New(handler)}
}

func (l *Logger) Debug(msg string, args ...any) { l.logger.Debug(msg, args...) }
func (l *Logger) Info(msg string, args ...any)  { l.logger.Info(msg, args...) }
func (l *Logger) Warn(msg string, args ...any)  { l.logger.Warn(msg, args...) }
func (l *Logger) Error(msg string, args ...any) { l.logger.Error(msg, args...) }

func (l *Logger) DebugContext(ctx context.Context, msg string, args ...any) {
	l.logger.DebugContext(ctx, msg, args...)
}

func (l *Logger) InfoContext(ctx context.Context, msg string, args ...any) {
	l.logger.InfoContext(ctx, msg, args...)
}

func (l *Logger) WarnContext(ctx context.Context, msg string, args ...any) {
	l.logger.WarnContext(ctx, msg, args...)
}

func (l *Logger) ErrorContext(ctx context.Context, msg string, args ...any) {
	l.logger.ErrorContext(ctx, msg, args...)
}

// LogEmitter writes records to an OpenTelemetry log.Logger directly.
// Arguments are slog style key/value pairs, a trailing key without value is dropped.
type LogEmitter struct {
	logger otellog.Logger
}

func NewLogEmitter(logger otellog.Logger) *LogEmitter {
	return &LogEmitter{logger: logger}
}

func (e *LogEmitter) DebugContext(ctx context.Context, msg string, args ...any) {
	e.emit(ctx, otellog.SeverityDebug, msg, args)
}

func (e *LogEmitter) InfoContext(ctx context.Context, msg string, args ...any) {
	e.emit(ctx, otellog.SeverityInfo, msg, args)
}

func (e *LogEmitter) WarnContext(ctx context.Context, msg string, args ...any) {
	e.emit(ctx, otellog.SeverityWarn, msg, args)
}

func (e *LogEmitter) ErrorContext(ctx context.Context, msg string, args ...any) {
	e.emit(ctx, otellog.SeverityError, msg, args)
}

func (e *LogEmitter) emit(ctx context.Context, severity otellog.Severity, msg string, args []any) {
	var record otellog.Record
	record.SetSeverity(severity)
	record.SetBody(otellog.StringValue(msg))

	for i := 0; i+1 < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			continue
		}

		record.AddAttributes(otellog.String(key, valueString(args[i+1])))
	}

	e.logger.Emit(ctx, record)
}

func valueString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}

	return slog.AnyValue(v).String()
}
