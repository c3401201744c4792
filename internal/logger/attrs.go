package logger

import (
	"context"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
)

// instanceID: явное значение, затем INSTANCE_ID (под в k8s), затем hostname с коротким суффиксом.
func instanceID(v string) string {
	if v != "" {
		return v
	}
	if env := os.Getenv("INSTANCE_ID"); env != "" {
		return env
	}
	hn, err := os.Hostname()
	if err != nil || hn == "" {
		hn = "thread"
	}
	return hn + "-" + uuid.NewString()[:8]
}

// baseAttrs добавляются к каждой записи логгера по умолчанию.
func baseAttrs(cfg Config) []slog.Attr {
	attrs := make([]slog.Attr, 0, 4)
	attrs = append(attrs,
		slog.String("service", cfg.Service),
		slog.String("env", string(cfg.Env)),
		slog.String("instance_id", cfg.InstanceID),
	)
	if cfg.Version != "" {
		attrs = append(attrs, slog.String("version", cfg.Version))
	}
	return attrs
}

// traceAttrs - trace_id/span_id активного span, если он есть.
func traceAttrs(ctx context.Context) []any {
	sc := trace.SpanFromContext(ctx).SpanContext()
	if !sc.IsValid() {
		return nil
	}
	return []any{
		slog.String("trace_id", sc.TraceID().String()),
		slog.String("span_id", sc.SpanID().String()),
	}
}
