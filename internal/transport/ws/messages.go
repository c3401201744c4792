package ws

import "github.com/cwrk-planet/thread-service/internal/domain"

// Типы сообщений, которые сервер шлёт в WS помимо broadcast-видов fanout
const (
	TypePresenceJoined = "presence.joined" // участник подключился к треду
	TypePresenceLeft   = "presence.left"   // участник отключился
	TypeHeartbeat      = "heartbeat"       // от клиента: {"away": bool}
)

type Message struct {
	Type    string `json:"type"`
	Channel string `json:"channel,omitempty"`
	Payload any    `json:"payload"`
}

type PresencePayload struct {
	ThreadID string          `json:"thread_id"`
	Provider domain.ActorRef `json:"provider"`
}

type HeartbeatPayload struct {
	Away bool `json:"away"`
}

// PresenceChannel - канал всех подключённых участников треда.
func PresenceChannel(threadID string) string { return "presence-thread." + threadID }

// PrivateChannel - личный канал провайдера.
func PrivateChannel(ref domain.ActorRef) string { return "private-" + ref.Type + "." + ref.ID }
