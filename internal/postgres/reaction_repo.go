package postgres

import (
	"context"

	"github.com/cwrk-planet/thread-service/internal/domain"
	"github.com/cwrk-planet/thread-service/internal/repository"
)

type ReactionRepository struct {
	q querier
}

func scanReaction(row interface{ Scan(dest ...any) error }) (*domain.Reaction, error) {
	var (
		r                  domain.Reaction
		ownerType, ownerID string
	)
	if err := row.Scan(&r.ID, &r.MessageID, &ownerType, &ownerID, &r.Reaction, &r.CreatedAt); err != nil {
		return nil, err
	}
	r.Owner = scanOwner(ownerType, ownerID)
	return &r, nil
}

func (r *ReactionRepository) Get(ctx context.Context, messageID, reactionID string) (*domain.Reaction, error) {
	out, err := scanReaction(r.q.QueryRow(ctx, queryGetReaction, reactionID, messageID))
	if err != nil {
		return nil, mapPgError(err)
	}
	return out, nil
}

func (r *ReactionRepository) CountForMessage(ctx context.Context, messageID string) (int, error) {
	var count int
	err := r.q.QueryRow(ctx, queryCountReactions, messageID).Scan(&count)
	return count, mapPgError(err)
}

func (r *ReactionRepository) Exists(ctx context.Context, messageID string, owner domain.ActorRef, reaction string) (bool, error) {
	var exists bool
	err := r.q.QueryRow(ctx, queryReactionExists, messageID, owner.Type, owner.ID, reaction).Scan(&exists)
	return exists, mapPgError(err)
}

func (r *ReactionRepository) UniqueValues(ctx context.Context, messageID string) ([]string, error) {
	rows, err := r.q.Query(ctx, queryUniqueReactions, messageID)
	if err != nil {
		return nil, mapPgError(err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// List возвращает реакции сообщения с курсорной пагинацией (created_at,id DESC).
func (r *ReactionRepository) List(ctx context.Context, messageID string, after *repository.Cursor, limit int) ([]domain.Reaction, error) {
	var createdAt any
	var id any
	if after != nil {
		createdAt = after.CreatedAt
		id = after.ID
	}

	rows, err := r.q.Query(ctx, queryListReactions, messageID, createdAt, id, limit)
	if err != nil {
		return nil, mapPgError(err)
	}
	defer rows.Close()

	out := make([]domain.Reaction, 0, limit)
	for rows.Next() {
		item, err := scanReaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *item)
	}
	return out, rows.Err()
}

func (r *ReactionRepository) Create(ctx context.Context, in *domain.Reaction) error {
	_, err := r.q.Exec(ctx, queryCreateReaction,
		in.ID, in.MessageID, in.Owner.Type, in.Owner.ID, in.Reaction, in.CreatedAt)
	return mapPgError(err)
}

func (r *ReactionRepository) Delete(ctx context.Context, reactionID string) error {
	tag, err := r.q.Exec(ctx, queryDeleteReaction, reactionID)
	if err != nil {
		return mapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}
