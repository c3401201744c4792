package postgres

import (
	"context"
	"time"

	"github.com/cwrk-planet/thread-service/internal/domain"
)

type StatusRepository struct {
	q querier
}

func (r *StatusRepository) Upsert(ctx context.Context, s *domain.Status) error {
	_, err := r.q.Exec(ctx, queryUpsertStatus, s.Owner.Type, s.Owner.ID, s.Away, s.LastSeen, s.UpdatedAt)
	return mapPgError(err)
}

// Touch - best-effort: отсутствие строки не ошибка.
func (r *StatusRepository) Touch(ctx context.Context, owner domain.ActorRef, at time.Time) error {
	_, err := r.q.Exec(ctx, queryTouchStatus, owner.Type, owner.ID, at)
	return mapPgError(err)
}

func (r *StatusRepository) Get(ctx context.Context, owner domain.ActorRef) (*domain.Status, error) {
	var (
		s                  domain.Status
		ownerType, ownerID string
	)
	err := r.q.QueryRow(ctx, queryGetStatus, owner.Type, owner.ID).
		Scan(&ownerType, &ownerID, &s.Away, &s.LastSeen, &s.UpdatedAt)
	if err != nil {
		return nil, mapPgError(err)
	}
	s.Owner = scanOwner(ownerType, ownerID)
	return &s, nil
}
