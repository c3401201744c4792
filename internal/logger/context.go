package logger

import (
	"context"
	"log/slog"
)

type ctxKey struct{}

// WithContext кладёт логгер запроса в контекст.
func WithContext(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext возвращает логгер запроса или глобальный, дополненный trace_id/span_id.
func FromContext(ctx context.Context) *slog.Logger {
	l := L()
	if v, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok && v != nil {
		l = v
	}
	if args := traceAttrs(ctx); args != nil {
		l = l.With(args...)
	}
	return l
}
