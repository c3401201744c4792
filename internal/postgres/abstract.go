package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/cwrk-planet/thread-service/internal/domain"
	"github.com/cwrk-planet/thread-service/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

/*
абстрактный слой над *pgxpool.Pool / pgx.Tx,
одни и те же репозитории работают и напрямую, и внутри транзакции
*/
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

const (
	codeUniqueViolation      = "23505"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeInvalidText          = "22P02" // id из пути не приводится к uuid
)

func mapPgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return repository.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeUniqueViolation:
			return fmt.Errorf("%w: %s", repository.ErrAlreadyExists, pgErr.ConstraintName)
		case codeSerializationFailure, codeDeadlockDetected:
			return fmt.Errorf("%w: %s", repository.ErrSerialization, pgErr.Message)
		case codeInvalidText:
			// несуществующий по формату id - та же ситуация, что и отсутствующая строка
			return fmt.Errorf("%w: %s", repository.ErrNotFound, pgErr.Message)
		}
	}

	return err
}

// scanOwner собирает полиморфную ссылку из пары колонок owner_type/owner_id.
func scanOwner(ownerType, ownerID string) domain.ActorRef {
	return domain.ActorRef{Type: ownerType, ID: ownerID}
}
