package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel/log/global"
	"go.opentelemetry.io/otel/trace"
)

// Config holds logger configuration
type Config struct {
	Level string
	// ServiceName enables the OTLP log bridge when set together with Export
	ServiceName string
	Export      bool
}

// Setup initializes the global logger with the specified configuration
func Setup(cfg Config) {
	slog.SetDefault(slog.New(NewHandler(os.Stdout, cfg)))
}

// NewHandler builds the JSON handler wrapped with trace and context field enrichment
func NewHandler(w io.Writer, cfg Config) slog.Handler {
	var handler slog.Handler = slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: parseLevel(cfg.Level),
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				return slog.Attr{
					Key:   a.Key,
					Value: slog.StringValue(a.Value.Time().Format("2006-01-02 15:04:05")),
				}
			}
			return a
		},
	})

	if cfg.Export && cfg.ServiceName != "" {
		handler = fanout{
			handler,
			otelslog.NewHandler(cfg.ServiceName, otelslog.WithLoggerProvider(global.GetLoggerProvider())),
		}
	}

	return NewTraceHandler(handler)
}

// TraceHandler adds trace ids and context LogFields to every record
type TraceHandler struct {
	slog.Handler
}

// NewTraceHandler wraps h
func NewTraceHandler(h slog.Handler) *TraceHandler {
	return &TraceHandler{Handler: h}
}

func (h *TraceHandler) Handle(ctx context.Context, r slog.Record) error {
	if span := trace.SpanFromContext(ctx); span.SpanContext().IsValid() {
		sc := span.SpanContext()
		r.AddAttrs(
			slog.String("trace_id", sc.TraceID().String()),
			slog.String("span_id", sc.SpanID().String()),
		)
	}

	fields := GetLogFields(ctx)
	if fields.PeriodID != "" {
		r.AddAttrs(slog.String("period_id", fields.PeriodID))
	}
	if fields.EmployeeID != "" {
		r.AddAttrs(slog.String("employee_id", fields.EmployeeID))
	}
	if fields.Step != "" {
		r.AddAttrs(slog.String("step", fields.Step))
	}
	if fields.EvaluatorID != "" {
		r.AddAttrs(slog.String("evaluator_id", fields.EvaluatorID))
	}
	if fields.RequestID != "" {
		r.AddAttrs(slog.String("revision_request_id", fields.RequestID))
	}
	if fields.ActorID != "" {
		r.AddAttrs(slog.String("actor_id", fields.ActorID))
	}
	if fields.Component != "" {
		r.AddAttrs(slog.String("component", fields.Component))
	}

	return h.Handler.Handle(ctx, r)
}

func (h *TraceHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &TraceHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h *TraceHandler) WithGroup(name string) slog.Handler {
	return &TraceHandler{Handler: h.Handler.WithGroup(name)}
}

// fanout sends each record to every handler
type fanout []slog.Handler

func (f fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f fanout) Handle(ctx context.Context, r slog.Record) error {
	var firstErr error
	for _, h := range f {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (f fanout) WithGroup(name string) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithGroup(name)
	}
	return out
}

// parseLevel converts a string log level to slog.Level
func parseLevel(levelStr string) slog.Level {
	switch strings.ToUpper(levelStr) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// GetLevel returns the normalized log level string
func GetLevel(levelStr string) string {
	level := strings.ToUpper(levelStr)
	switch level {
	case "DEBUG", "INFO", "WARN", "ERROR":
		return level
	default:
		return "INFO"
	}
}
