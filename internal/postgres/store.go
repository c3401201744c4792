package postgres

import (
	"context"

	"github.com/cwrk-planet/thread-service/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store - repository.Store поверх pgxpool. Транзакции SERIALIZABLE,
// конфликты сериализации повторяются через repository.Retry.
type Store struct {
	pool    *pgxpool.Pool
	onRetry repository.RetryObserver
	repos
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool, repos: repos{q: pool}}
}

func (s *Store) OnRetry(fn repository.RetryObserver) { s.onRetry = fn }

func (s *Store) Ping(ctx context.Context) error { return ping(ctx, s.pool) }

func (s *Store) Close() { s.pool.Close() }

func (s *Store) InTx(ctx context.Context, attempts int, fn repository.TxFunc) error {
	return repository.Retry(ctx, attempts, s.onRetry, func() error {
		return s.runTx(ctx, fn)
	})
}

func (s *Store) runTx(ctx context.Context, fn repository.TxFunc) error {
	pgTx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return mapPgError(err)
	}
	defer pgTx.Rollback(ctx)

	t := &tx{repos: repos{q: pgTx}}
	if err := fn(ctx, t); err != nil {
		return mapPgError(err)
	}
	if err := pgTx.Commit(ctx); err != nil {
		return mapPgError(err)
	}

	t.hooks.Run()
	return nil
}

type tx struct {
	repos
	hooks repository.Hooks
}

func (t *tx) AfterCommit(fn func()) { t.hooks.Add(fn) }

type repos struct {
	q querier
}

func (r repos) Reactions() repository.ReactionRepository       { return &ReactionRepository{q: r.q} }
func (r repos) Messages() repository.MessageRepository         { return &MessageRepository{q: r.q} }
func (r repos) Participants() repository.ParticipantRepository { return &ParticipantRepository{q: r.q} }
func (r repos) Calls() repository.CallRepository               { return &CallRepository{q: r.q} }
func (r repos) Statuses() repository.StatusRepository          { return &StatusRepository{q: r.q} }
