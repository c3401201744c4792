// Package identity хранит в контексте запроса текущего актора и снимок фич.
package identity

import (
	"context"

	"github.com/cwrk-planet/thread-service/internal/domain"
)

type ctxKey string

const (
	ctxKeyActor    ctxKey = "actor"
	ctxKeyFeatures ctxKey = "features"
)

func WithActor(ctx context.Context, ref domain.ActorRef) context.Context {
	return context.WithValue(ctx, ctxKeyActor, ref)
}

// ActorFrom возвращает нулевой ActorRef, если актор не установлен.
func ActorFrom(ctx context.Context) domain.ActorRef {
	if v, ok := ctx.Value(ctxKeyActor).(domain.ActorRef); ok {
		return v
	}
	return domain.ActorRef{}
}

// WithFeatures фиксирует снимок фич на всё время запроса.
func WithFeatures(ctx context.Context, f domain.Features) context.Context {
	return context.WithValue(ctx, ctxKeyFeatures, f)
}

func FeaturesFrom(ctx context.Context) (domain.Features, bool) {
	f, ok := ctx.Value(ctxKeyFeatures).(domain.Features)
	return f, ok
}
