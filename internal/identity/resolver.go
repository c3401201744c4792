package identity

import (
	"context"
	"errors"

	"github.com/cwrk-planet/thread-service/internal/domain"
)

var ErrNoActor = errors.New("no actor in context")

// Resolver превращает ActorRef из контекста в загруженного провайдера.
type Resolver struct {
	registry *domain.Registry
}

func NewResolver(reg *domain.Registry) *Resolver {
	return &Resolver{registry: reg}
}

// Check проверяет, что тип провайдера зарегистрирован. Запись не загружается.
func (r *Resolver) Check(ref domain.ActorRef) error {
	if ref.IsZero() || ref.ID == "" {
		return ErrNoActor
	}
	if !r.registry.Known(ref.Type) {
		return domain.ErrUnknownProvider
	}
	return nil
}

// Current загружает текущего актора. Удалённая запись даёт domain.Ghost.
func (r *Resolver) Current(ctx context.Context) (domain.Provider, error) {
	ref := ActorFrom(ctx)
	if ref.IsZero() {
		return nil, ErrNoActor
	}
	return r.registry.Resolve(ctx, ref)
}

func (r *Resolver) Resolve(ctx context.Context, ref domain.ActorRef) (domain.Provider, error) {
	return r.registry.Resolve(ctx, ref)
}
