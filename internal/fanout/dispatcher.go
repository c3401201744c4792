// Package fanout вычисляет аудиторию мутации и рассылает уведомления:
// broadcast в presence-канал треда, адресный broadcast владельцу ресурса
// и доменное событие во внутреннюю шину.
package fanout

import (
	"context"
	"log/slog"

	"github.com/cwrk-planet/thread-service/internal/domain"
	"github.com/cwrk-planet/thread-service/internal/events"
)

//go:generate go run go.uber.org/mock/mockgen -source=dispatcher.go -destination=../mocks/mock_fanout.go -package=mocks

const (
	KindReactionAdded   = "reaction.added"
	KindReactionRemoved = "reaction.removed"
	KindCallLeft        = "call.left"
	KindCallEnded       = "call.ended"
)

type Broadcast struct {
	Kind    string
	Payload any
}

// Broadcaster - транспорт real-time рассылки. Доставка асинхронная, best-effort.
type Broadcaster interface {
	ToPresence(ctx context.Context, threadID string, b Broadcast) error
	To(ctx context.Context, recipient domain.ActorRef, b Broadcast) error
}

type Publisher interface {
	Publish(ctx context.Context, e events.Event)
}

// PresenceChecker отвечает, является ли актор всё ещё участником треда.
type PresenceChecker interface {
	IsParticipant(ctx context.Context, threadID string, who domain.ActorRef) (bool, error)
}

// Notice - результат завершённой мутации.
type Notice struct {
	ThreadID string
	Actor    domain.ActorRef
	// Owner - владелец затронутого ресурса; нулевое значение отключает адресный broadcast.
	Owner     domain.ActorRef
	Broadcast Broadcast
	// Event.Name == "" - событие не публикуется.
	Event events.Event
}

type Dispatcher struct {
	log         *slog.Logger
	broadcaster Broadcaster
	publisher   Publisher
	presence    PresenceChecker
}

func NewDispatcher(log *slog.Logger, b Broadcaster, p Publisher, presence PresenceChecker) *Dispatcher {
	return &Dispatcher{log: log, broadcaster: b, publisher: p, presence: presence}
}

// Dispatch вызывается только после коммита. Ошибки доставки логируются и не возвращаются.
func (d *Dispatcher) Dispatch(ctx context.Context, f domain.Features, n Notice) {
	if f.Broadcasting && n.Broadcast.Kind != "" {
		d.broadcast(ctx, n)
	}
	if f.Events && n.Event.Name != "" {
		e := n.Event
		e.ThreadID = n.ThreadID
		e.Provider = n.Actor
		d.publisher.Publish(ctx, e)
	}
}

func (d *Dispatcher) broadcast(ctx context.Context, n Notice) {
	if err := d.broadcaster.ToPresence(ctx, n.ThreadID, n.Broadcast); err != nil {
		d.log.WarnContext(ctx, "presence broadcast failed",
			"thread_id", n.ThreadID, "kind", n.Broadcast.Kind, "err", err)
	}

	if !d.shouldNotifyOwner(ctx, n) {
		return
	}
	if err := d.broadcaster.To(ctx, n.Owner, n.Broadcast); err != nil {
		d.log.WarnContext(ctx, "owner broadcast failed",
			"owner", n.Owner.String(), "kind", n.Broadcast.Kind, "err", err)
	}
}

// Владельцу шлём только если это не сам актор и он всё ещё участник треда.
func (d *Dispatcher) shouldNotifyOwner(ctx context.Context, n Notice) bool {
	if n.Owner.IsZero() || n.Owner.Type == domain.ProviderGhost || n.Owner.Equal(n.Actor) {
		return false
	}
	ok, err := d.presence.IsParticipant(ctx, n.ThreadID, n.Owner)
	if err != nil {
		d.log.WarnContext(ctx, "owner presence lookup failed",
			"thread_id", n.ThreadID, "owner", n.Owner.String(), "err", err)
		return false
	}
	return ok
}
