package repository

import (
	"context"
	"time"

	"github.com/cwrk-planet/thread-service/internal/domain"
)

// Cursor - позиция курсорной пагинации (created_at, id).
type Cursor struct {
	CreatedAt time.Time
	ID        string
}

type ReactionRepository interface {
	Get(ctx context.Context, messageID, reactionID string) (*domain.Reaction, error)
	CountForMessage(ctx context.Context, messageID string) (int, error)
	Exists(ctx context.Context, messageID string, owner domain.ActorRef, reaction string) (bool, error)
	// UniqueValues - различные значения реакций на сообщении.
	UniqueValues(ctx context.Context, messageID string) ([]string, error)
	List(ctx context.Context, messageID string, after *Cursor, limit int) ([]domain.Reaction, error)
	Create(ctx context.Context, r *domain.Reaction) error
	Delete(ctx context.Context, reactionID string) error
}

type MessageRepository interface {
	Get(ctx context.Context, threadID, messageID string) (*domain.Message, error)
	MarkReacted(ctx context.Context, messageID string) error
	// ClearReactedIfEmpty снимает флаг reacted только если живых реакций не осталось.
	ClearReactedIfEmpty(ctx context.Context, messageID string) (bool, error)
}

type ParticipantRepository interface {
	Get(ctx context.Context, threadID string, owner domain.ActorRef) (*domain.Participant, error)
	Exists(ctx context.Context, threadID string, owner domain.ActorRef) (bool, error)
}

type CallRepository interface {
	Get(ctx context.Context, threadID, callID string) (*domain.Call, error)
	// CurrentParticipant - последняя запись участия актора в звонке (в том числе уже покинувшая).
	CurrentParticipant(ctx context.Context, callID string, owner domain.ActorRef) (*domain.CallParticipant, error)
	MarkLeft(ctx context.Context, participantID string, at time.Time) (bool, error)
	CountActive(ctx context.Context, callID string) (int, error)
	End(ctx context.Context, callID string, at time.Time) (bool, error)
}

type StatusRepository interface {
	Upsert(ctx context.Context, s *domain.Status) error
	Touch(ctx context.Context, owner domain.ActorRef, at time.Time) error
	Get(ctx context.Context, owner domain.ActorRef) (*domain.Status, error)
}

type Repos interface {
	Reactions() ReactionRepository
	Messages() MessageRepository
	Participants() ParticipantRepository
	Calls() CallRepository
	Statuses() StatusRepository
}

// Tx - набор репозиториев внутри открытой транзакции.
type Tx interface {
	Repos
	// AfterCommit откладывает fn до успешного коммита внешней транзакции.
	AfterCommit(fn func())
}

// TxFunc выполняется внутри транзакции; может быть вызвана повторно при конфликте сериализации.
type TxFunc func(ctx context.Context, tx Tx) error

type Store interface {
	Repos
	InTx(ctx context.Context, attempts int, fn TxFunc) error
	Ping(ctx context.Context) error
	Close()
}
