package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/cwrk-planet/thread-service/internal/domain"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

type PresenceChecker interface {
	IsParticipant(ctx context.Context, threadID string, who domain.ActorRef) (bool, error)
}

type StatusSvc interface {
	Heartbeat(ctx context.Context, actor domain.ActorRef, away bool) error
	Touch(ctx context.Context, actor domain.ActorRef) error
}

type ActorChecker interface {
	Check(ref domain.ActorRef) error
}

// Gauge - счётчик открытых соединений (prometheus.Gauge подходит).
type Gauge interface {
	Inc()
	Dec()
}

type Server struct {
	log      *slog.Logger
	upgrader websocket.Upgrader
	hub      *Hub
	presence PresenceChecker
	status   StatusSvc
	actors   ActorChecker
	conns    Gauge

	pingEvery time.Duration
	queueSize int
}

func NewServer(log *slog.Logger, hub *Hub, presence PresenceChecker, status StatusSvc, actors ActorChecker) *Server {
	return &Server{
		log:      log,
		hub:      hub,
		presence: presence,
		status:   status,
		actors:   actors,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		pingEvery: 15 * time.Second,
		queueSize: 64,
	}
}

func (s *Server) SetPingInterval(d time.Duration) {
	if d > 0 {
		s.pingEvery = d
	}
}

func (s *Server) SetQueueSize(n int) {
	if n > 0 {
		s.queueSize = n
	}
}

func (s *Server) SetConnGauge(g Gauge) { s.conns = g }

// WS endpoint: GET /ws/threads/{thread}?access_token=...&provider_id=...&provider_type=...
func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if strings.TrimSpace(q.Get("access_token")) == "" {
		http.Error(w, "missing access_token", http.StatusUnauthorized)
		return
	}
	actor := domain.ActorRef{
		Type: strings.TrimSpace(q.Get("provider_type")),
		ID:   strings.TrimSpace(q.Get("provider_id")),
	}
	if actor.Type == "" {
		actor.Type = domain.ProviderUser
	}
	if err := s.actors.Check(actor); err != nil {
		http.Error(w, "invalid provider", http.StatusUnauthorized)
		return
	}
	threadID := chi.URLParam(r, "thread")
	if threadID == "" {
		http.Error(w, "missing thread id", http.StatusBadRequest)
		return
	}

	ok, err := s.presence.IsParticipant(r.Context(), threadID, actor)
	if err != nil {
		s.log.ErrorContext(r.Context(), "ws presence check failed", "thread_id", threadID, "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if !ok {
		http.Error(w, "not a participant", http.StatusForbidden)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("ws upgrade failed", "err", err)
		return
	}

	c := newWsConn(conn, threadID, actor, s.queueSize)
	s.hub.Add(c)
	if s.conns != nil {
		s.conns.Inc()
	}

	joined := Message{Type: TypePresenceJoined, Payload: PresencePayload{ThreadID: threadID, Provider: actor}}
	s.hub.Publish(PresenceChannel(threadID), joined)

	ctx := r.Context()
	go s.writeLoop(ctx, c)
	s.readLoop(ctx, c)

	s.hub.Remove(c)
	if s.conns != nil {
		s.conns.Dec()
	}
	if err := c.Close(); err != nil {
		s.log.Debug("ws close failed", "thread_id", threadID, "provider", actor.String(), "err", err)
	}

	left := Message{Type: TypePresenceLeft, Payload: PresencePayload{ThreadID: threadID, Provider: actor}}
	s.hub.Publish(PresenceChannel(threadID), left)
}

type incoming struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func (s *Server) readLoop(ctx context.Context, c *wsConn) {
	defer func() { _ = c.Close() }()

	_ = s.status.Touch(ctx, c.actor)

	c.conn.SetReadLimit(1 << 16)
	_ = c.conn.SetReadDeadline(time.Now().Add(2 * s.pingEvery))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(2 * s.pingEvery))
		_ = s.status.Touch(ctx, c.actor)
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			break
		}
		var msg incoming
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}

		switch msg.Type {
		case TypeHeartbeat:
			var p HeartbeatPayload
			if err := json.Unmarshal(msg.Payload, &p); err != nil {
				continue
			}
			if err := s.status.Heartbeat(ctx, c.actor, p.Away); err != nil {
				s.log.Warn("ws heartbeat failed", "provider", c.actor.String(), "err", err)
			}
		default:
			// ignore
		}
	}
}

func (s *Server) writeLoop(ctx context.Context, c *wsConn) {
	ticker := time.NewTicker(s.pingEvery)
	defer ticker.Stop()

	for {
		select {
		case msg := <-c.send:
			if err := c.write(msg); err != nil {
				_ = c.Close()
				return
			}
		case <-ticker.C:
			if !s.stillParticipant(ctx, c) {
				s.log.Info("ws participant left thread, closing", "thread_id", c.threadID, "provider", c.actor.String())
				_ = c.conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "not a participant"),
					time.Now().Add(writeWait))
				_ = c.Close()
				return
			}
			_ = c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
			_ = s.status.Touch(ctx, c.actor)
		case <-ctx.Done():
			return
		case <-c.closed:
			return
		}
	}
}

// stillParticipant перепроверяет членство на каждом ping. Ошибка хранилища соединение не рвёт.
func (s *Server) stillParticipant(ctx context.Context, c *wsConn) bool {
	ok, err := s.presence.IsParticipant(ctx, c.threadID, c.actor)
	if err != nil {
		s.log.Warn("ws presence recheck failed", "thread_id", c.threadID, "err", err)
		return true
	}
	return ok
}
