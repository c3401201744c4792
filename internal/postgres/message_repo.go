package postgres

import (
	"context"

	"github.com/cwrk-planet/thread-service/internal/domain"
)

type MessageRepository struct {
	q querier
}

func (r *MessageRepository) Get(ctx context.Context, threadID, messageID string) (*domain.Message, error) {
	var (
		m                  domain.Message
		ownerType, ownerID string
	)
	err := r.q.QueryRow(ctx, queryGetMessage, messageID, threadID).
		Scan(&m.ID, &m.ThreadID, &ownerType, &ownerID, &m.Type, &m.Body, &m.Reacted, &m.CreatedAt)
	if err != nil {
		return nil, mapPgError(err)
	}
	m.Owner = scanOwner(ownerType, ownerID)
	return &m, nil
}

func (r *MessageRepository) MarkReacted(ctx context.Context, messageID string) error {
	// уже выставленный флаг не трогаем, 0 строк - не ошибка
	if _, err := r.q.Exec(ctx, queryMarkReacted, messageID); err != nil {
		return mapPgError(err)
	}
	return nil
}

func (r *MessageRepository) ClearReactedIfEmpty(ctx context.Context, messageID string) (bool, error) {
	tag, err := r.q.Exec(ctx, queryClearReactedIfEmpty, messageID)
	if err != nil {
		return false, mapPgError(err)
	}
	return tag.RowsAffected() > 0, nil
}
