package service

import (
	"context"

	"github.com/cwrk-planet/thread-service/internal/domain"
	"github.com/cwrk-planet/thread-service/internal/fanout"
	"github.com/cwrk-planet/thread-service/internal/identity"
	"github.com/cwrk-planet/thread-service/internal/repository"
)

// txAttempts - сколько раз повторяем транзакцию при конфликте сериализации.
const txAttempts = 3

// TxScope задаёт, открывает ли операция свою транзакцию или работает внутри чужой.
type TxScope struct {
	tx repository.Tx
}

// Standalone - операция сама решает, нужна ли ей транзакция.
func Standalone() TxScope { return TxScope{} }

// Inherited - операция выполняется внутри уже открытой транзакции вызывающего.
func Inherited(tx repository.Tx) TxScope { return TxScope{tx: tx} }

func (s TxScope) Chained() bool { return s.tx != nil }

func (s TxScope) repos(store repository.Store) repository.Repos {
	if s.tx != nil {
		return s.tx
	}
	return store
}

// run выполняет fn в транзакции вызывающего либо в новой транзакции с повторами.
func (s TxScope) run(ctx context.Context, store repository.Store, fn func(ctx context.Context, r repository.Repos) error) error {
	if s.tx != nil {
		return fn(ctx, s.tx)
	}
	return store.InTx(ctx, txAttempts, func(ctx context.Context, tx repository.Tx) error {
		return fn(ctx, tx)
	})
}

// afterCommit: в цепочке откладываем до коммита внешней транзакции,
// иначе наша транзакция уже закоммичена и fn выполняется сразу.
func (s TxScope) afterCommit(fn func()) {
	if s.tx != nil {
		s.tx.AfterCommit(fn)
		return
	}
	fn()
}

// FeatureSource отдаёт текущий снимок фич.
type FeatureSource interface {
	Snapshot() domain.Features
}

// StaticFeatures - неизменяемый FeatureSource.
type StaticFeatures domain.Features

func (f StaticFeatures) Snapshot() domain.Features { return domain.Features(f) }

// Notifier рассылает уведомления о закоммиченной мутации.
type Notifier interface {
	Dispatch(ctx context.Context, f domain.Features, n fanout.Notice)
}

// pin берёт снимок фич один раз на запрос и кладёт его в контекст.
func pin(ctx context.Context, src FeatureSource) (context.Context, domain.Features) {
	if f, ok := identity.FeaturesFrom(ctx); ok {
		return ctx, f
	}
	f := src.Snapshot()
	return identity.WithFeatures(ctx, f), f
}
