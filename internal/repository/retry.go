package repository

import (
	"context"
	"errors"
	"log/slog"

	"github.com/cwrk-planet/thread-service/internal/domain"
)

// RetryObserver вызывается перед каждой повторной попыткой.
type RetryObserver func(attempt int, err error)

// Retry выполняет run до attempts раз, пока ошибка - конфликт сериализации.
// После исчерпания попыток возвращает *domain.TransactionConflictError.
func Retry(ctx context.Context, attempts int, observe RetryObserver, run func() error) error {
	if attempts < 1 {
		attempts = 1
	}
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = run(); err == nil {
			return nil
		}
		if !errors.Is(err, ErrSerialization) {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if attempt < attempts {
			slog.DebugContext(ctx, "tx retry", "attempt", attempt, "err", err)
			if observe != nil {
				observe(attempt, err)
			}
		}
	}

	return &domain.TransactionConflictError{Attempts: attempts, Err: err}
}

// Hooks копит AfterCommit-колбэки одной попытки транзакции.
type Hooks struct {
	fns []func()
}

func (h *Hooks) Add(fn func()) {
	if fn != nil {
		h.fns = append(h.fns, fn)
	}
}

func (h *Hooks) Run() {
	for _, fn := range h.fns {
		fn()
	}
	h.fns = nil
}
