package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/cwrk-planet/thread-service/internal/domain"
	"github.com/cwrk-planet/thread-service/internal/identity"

	"github.com/samber/lo"
)

// CurrentActor загружает провайдера текущего запроса (identity.Resolver).
type CurrentActor interface {
	Current(ctx context.Context) (domain.Provider, error)
}

// AuditAccess пускает к журналу аудита только провайдеров из списка readers.
// Журнал содержит события всех тредов, поэтому участия в треде недостаточно.
type AuditAccess struct {
	actors  CurrentActor
	readers []domain.ActorRef
}

func NewAuditAccess(actors CurrentActor, readers []domain.ActorRef) *AuditAccess {
	return &AuditAccess{actors: actors, readers: readers}
}

func (a *AuditAccess) CanRead(ctx context.Context) error {
	p, err := a.actors.Current(ctx)
	if errors.Is(err, identity.ErrNoActor) {
		return domain.ErrForbidden
	}
	if err != nil {
		return fmt.Errorf("resolve actor: %w", err)
	}
	// удалённая запись приходит как Ghost и в список не попадает
	if domain.IsGhost(p) || !lo.ContainsBy(a.readers, p.Identity().Equal) {
		return domain.ErrForbidden
	}
	return nil
}
