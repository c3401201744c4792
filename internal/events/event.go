package events

import (
	"time"

	"github.com/cwrk-planet/thread-service/internal/domain"
)

const (
	ReactionAdded   = "ReactionAddedEvent"
	ReactionRemoved = "ReactionRemovedEvent"
	CallLeft        = "CallLeftEvent"
	CallEnded       = "CallEndedEvent"
	StatusHeartbeat = "StatusHeartbeatEvent"
)

// Event - доменное событие для внутренних потребителей (аудит, метрики, поиск).
// Provider содержит только идентичность актора, без связанных данных.
type Event struct {
	Name     string
	ThreadID string
	Provider domain.ActorRef
	Payload  map[string]any
	At       time.Time
}
