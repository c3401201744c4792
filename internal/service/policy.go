package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/cwrk-planet/thread-service/internal/domain"
	"github.com/cwrk-planet/thread-service/internal/repository"
)

// Policy принимает решения об авторизации. Сервисы только спрашивают.
type Policy interface {
	CanView(ctx context.Context, actor domain.ActorRef, threadID string) error
	CanReact(ctx context.Context, actor domain.ActorRef, msg *domain.Message) error
	CanRemoveReaction(ctx context.Context, actor domain.ActorRef, msg *domain.Message, r *domain.Reaction) error
	CanLeaveCall(ctx context.Context, actor domain.ActorRef, call *domain.Call) error
}

// ParticipantPolicy - политика по умолчанию: всё разрешено живым участникам треда,
// удалить реакцию может её автор, автор сообщения или админ треда.
type ParticipantPolicy struct {
	participants repository.ParticipantRepository
}

func NewParticipantPolicy(repos repository.Repos) *ParticipantPolicy {
	return &ParticipantPolicy{participants: repos.Participants()}
}

func (p *ParticipantPolicy) participant(ctx context.Context, actor domain.ActorRef, threadID string) (*domain.Participant, error) {
	part, err := p.participants.Get(ctx, threadID, actor)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.ErrNotParticipant
		}
		return nil, fmt.Errorf("participants.Get: %w", err)
	}
	return part, nil
}

func (p *ParticipantPolicy) CanView(ctx context.Context, actor domain.ActorRef, threadID string) error {
	_, err := p.participant(ctx, actor, threadID)
	return err
}

func (p *ParticipantPolicy) CanReact(ctx context.Context, actor domain.ActorRef, msg *domain.Message) error {
	_, err := p.participant(ctx, actor, msg.ThreadID)
	return err
}

func (p *ParticipantPolicy) CanRemoveReaction(ctx context.Context, actor domain.ActorRef, msg *domain.Message, r *domain.Reaction) error {
	part, err := p.participant(ctx, actor, msg.ThreadID)
	if err != nil {
		return err
	}
	if r.OwnedBy(actor) || msg.OwnedBy(actor) || part.Admin {
		return nil
	}
	return domain.ErrForbidden
}

func (p *ParticipantPolicy) CanLeaveCall(ctx context.Context, actor domain.ActorRef, call *domain.Call) error {
	_, err := p.participant(ctx, actor, call.ThreadID)
	return err
}
