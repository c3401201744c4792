package ws

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/cwrk-planet/thread-service/internal/domain"
	"github.com/cwrk-planet/thread-service/internal/fanout"
)

type Conn interface {
	Send(msg Message) error
	Close() error
	Actor() domain.ActorRef
	ThreadID() string
}

// Hub держит подписки соединений на каналы: presence треда и личный канал актора.
type Hub struct {
	log *slog.Logger

	mu       sync.RWMutex
	channels map[string]map[Conn]struct{} // channel -> set of connections
}

func NewHub(log *slog.Logger) *Hub {
	return &Hub{log: log, channels: make(map[string]map[Conn]struct{})}
}

func subscriptions(c Conn) []string {
	return []string{PresenceChannel(c.ThreadID()), PrivateChannel(c.Actor())}
}

func (h *Hub) Add(c Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, ch := range subscriptions(c) {
		set, ok := h.channels[ch]
		if !ok {
			set = make(map[Conn]struct{})
			h.channels[ch] = set
		}
		set[c] = struct{}{}
	}
}

func (h *Hub) Remove(c Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, ch := range subscriptions(c) {
		if set, ok := h.channels[ch]; ok {
			delete(set, c)
			if len(set) == 0 {
				delete(h.channels, ch)
			}
		}
	}
}

// Publish отправляет сообщение всем подписчикам канала, возвращает число адресатов.
func (h *Hub) Publish(channel string, msg Message) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	msg.Channel = channel
	n := 0
	for c := range h.channels[channel] {
		err := c.Send(msg) // best-effort
		switch {
		case err == nil:
			n++
		case errors.Is(err, ErrSendQueueFull):
			h.log.Warn("ws message dropped", "channel", channel, "type", msg.Type,
				"provider", c.Actor().String())
		}
	}
	return n
}

// Subscribers - число соединений в канале.
func (h *Hub) Subscribers(channel string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.channels[channel])
}

func (h *Hub) ToPresence(_ context.Context, threadID string, b fanout.Broadcast) error {
	h.Publish(PresenceChannel(threadID), Message{Type: b.Kind, Payload: b.Payload})
	return nil
}

func (h *Hub) To(_ context.Context, recipient domain.ActorRef, b fanout.Broadcast) error {
	h.Publish(PrivateChannel(recipient), Message{Type: b.Kind, Payload: b.Payload})
	return nil
}
