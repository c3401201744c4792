package service

import (
	"context"

	"github.com/cwrk-planet/thread-service/internal/domain"
	"github.com/cwrk-planet/thread-service/internal/repository"
)

// PresenceLookup отвечает, состоит ли актор в треде прямо сейчас.
// Результат не кешируется: важен состав треда на момент уведомления.
type PresenceLookup struct {
	participants repository.ParticipantRepository
}

func NewPresenceLookup(repos repository.Repos) *PresenceLookup {
	return &PresenceLookup{participants: repos.Participants()}
}

func (l *PresenceLookup) IsParticipant(ctx context.Context, threadID string, who domain.ActorRef) (bool, error) {
	return l.participants.Exists(ctx, threadID, who)
}
