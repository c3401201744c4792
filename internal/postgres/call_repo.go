package postgres

import (
	"context"
	"time"

	"github.com/cwrk-planet/thread-service/internal/domain"
)

type CallRepository struct {
	q querier
}

func (r *CallRepository) Get(ctx context.Context, threadID, callID string) (*domain.Call, error) {
	var (
		c                  domain.Call
		ownerType, ownerID string
	)
	err := r.q.QueryRow(ctx, queryGetCall, callID, threadID).
		Scan(&c.ID, &c.ThreadID, &ownerType, &ownerID, &c.Type, &c.CreatedAt, &c.CallEnded)
	if err != nil {
		return nil, mapPgError(err)
	}
	c.Owner = scanOwner(ownerType, ownerID)
	return &c, nil
}

func (r *CallRepository) CurrentParticipant(ctx context.Context, callID string, owner domain.ActorRef) (*domain.CallParticipant, error) {
	var (
		p                  domain.CallParticipant
		ownerType, ownerID string
	)
	err := r.q.QueryRow(ctx, queryCurrentCallParticipant, callID, owner.Type, owner.ID).
		Scan(&p.ID, &p.CallID, &ownerType, &ownerID, &p.CreatedAt, &p.LeftCallAt)
	if err != nil {
		return nil, mapPgError(err)
	}
	p.Owner = scanOwner(ownerType, ownerID)
	return &p, nil
}

// MarkLeft возвращает false, если участник уже покинул звонок.
func (r *CallRepository) MarkLeft(ctx context.Context, participantID string, at time.Time) (bool, error) {
	tag, err := r.q.Exec(ctx, queryMarkLeftCall, participantID, at)
	if err != nil {
		return false, mapPgError(err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *CallRepository) CountActive(ctx context.Context, callID string) (int, error) {
	var count int
	err := r.q.QueryRow(ctx, queryCountActiveInCall, callID).Scan(&count)
	return count, mapPgError(err)
}

func (r *CallRepository) End(ctx context.Context, callID string, at time.Time) (bool, error) {
	tag, err := r.q.Exec(ctx, queryEndCall, callID, at)
	if err != nil {
		return false, mapPgError(err)
	}
	return tag.RowsAffected() > 0, nil
}
