package postgres

import (
	"context"
	"errors"

	"github.com/cwrk-planet/thread-service/internal/domain"
	"github.com/cwrk-planet/thread-service/internal/repository"
)

type ParticipantRepository struct {
	q querier
}

func (r *ParticipantRepository) Get(ctx context.Context, threadID string, owner domain.ActorRef) (*domain.Participant, error) {
	var (
		p                  domain.Participant
		ownerType, ownerID string
	)
	err := r.q.QueryRow(ctx, queryGetParticipant, threadID, owner.Type, owner.ID).
		Scan(&p.ID, &p.ThreadID, &ownerType, &ownerID, &p.Admin, &p.CreatedAt, &p.DeletedAt)
	if err != nil {
		return nil, mapPgError(err)
	}
	p.Owner = scanOwner(ownerType, ownerID)
	return &p, nil
}

// Exists - всегда свежий запрос, без кэша: участник мог покинуть тред после мутации.
func (r *ParticipantRepository) Exists(ctx context.Context, threadID string, owner domain.ActorRef) (bool, error) {
	var exists bool
	err := mapPgError(r.q.QueryRow(ctx, queryParticipantExists, threadID, owner.Type, owner.ID).Scan(&exists))
	if errors.Is(err, repository.ErrNotFound) {
		return false, nil
	}
	return exists, err
}
