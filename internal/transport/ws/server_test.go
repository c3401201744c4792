package ws

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cwrk-planet/thread-service/internal/domain"
	"github.com/cwrk-planet/thread-service/internal/fanout"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

type members struct {
	mu  sync.Mutex
	set map[string]bool
}

func newMembers(keys ...string) *members {
	m := &members{set: map[string]bool{}}
	for _, k := range keys {
		m.set[k] = true
	}
	return m
}

func (m *members) IsParticipant(_ context.Context, threadID string, who domain.ActorRef) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.set[threadID+"/"+who.String()], nil
}

func (m *members) remove(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.set, key)
}

type actorsOK struct{}

func (actorsOK) Check(ref domain.ActorRef) error {
	if ref.ID == "" {
		return errors.New("no id")
	}
	return nil
}

type statusRec struct {
	mu         sync.Mutex
	heartbeats []bool
}

func (s *statusRec) Heartbeat(_ context.Context, _ domain.ActorRef, away bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.heartbeats = append(s.heartbeats, away)
	return nil
}

func (s *statusRec) Touch(context.Context, domain.ActorRef) error { return nil }

func (s *statusRec) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.heartbeats)
}

func startServer(t *testing.T) (*Hub, *statusRec, string) {
	return startServerWith(t, newMembers("t1/user:1"), 0)
}

func startServerWith(t *testing.T, m *members, ping time.Duration) (*Hub, *statusRec, string) {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	hub := NewHub(log)
	status := &statusRec{}
	srv := NewServer(log, hub, m, status, actorsOK{})
	srv.SetPingInterval(ping)

	r := chi.NewRouter()
	r.Get("/ws/threads/{thread}", srv.HandleWS)
	ts := httptest.NewServer(r)
	t.Cleanup(ts.Close)

	return hub, status, "ws" + strings.TrimPrefix(ts.URL, "http")
}

func TestServer_Rejects(t *testing.T) {
	_, _, base := startServer(t)

	tests := []struct {
		name  string
		query string
		code  int
	}{
		{"no token", "?provider_id=1", http.StatusUnauthorized},
		{"no provider", "?access_token=x", http.StatusUnauthorized},
		{"not a participant", "?access_token=x&provider_id=2", http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, resp, err := websocket.DefaultDialer.Dial(base+"/ws/threads/t1"+tt.query, nil)
			require.Error(t, err)
			require.NotNil(t, resp)
			require.Equal(t, tt.code, resp.StatusCode)
		})
	}
}

func TestServer_ReceivesBroadcasts(t *testing.T) {
	req := require.New(t)
	hub, status, base := startServer(t)

	conn, _, err := websocket.DefaultDialer.Dial(base+"/ws/threads/t1?access_token=x&provider_id=1", nil)
	req.NoError(err)
	defer conn.Close()

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var msg Message
	req.NoError(conn.ReadJSON(&msg))
	req.Equal(TypePresenceJoined, msg.Type)
	req.Equal("presence-thread.t1", msg.Channel)

	req.NoError(hub.To(context.Background(), domain.ActorRef{Type: "user", ID: "1"},
		fanout.Broadcast{Kind: fanout.KindCallLeft, Payload: map[string]any{"call_id": "c1"}}))

	req.NoError(conn.ReadJSON(&msg))
	req.Equal(fanout.KindCallLeft, msg.Type)
	req.Equal("private-user.1", msg.Channel)
	req.Equal(map[string]any{"call_id": "c1"}, msg.Payload)

	// heartbeat from the client
	req.NoError(conn.WriteJSON(map[string]any{"type": TypeHeartbeat, "payload": map[string]any{"away": true}}))
	req.Eventually(func() bool { return status.count() == 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestServer_DropsRemovedParticipant(t *testing.T) {
	req := require.New(t)
	m := newMembers("t1/user:1")
	hub, _, base := startServerWith(t, m, 200*time.Millisecond)

	conn, _, err := websocket.DefaultDialer.Dial(base+"/ws/threads/t1?access_token=x&provider_id=1", nil)
	req.NoError(err)
	defer conn.Close()
	req.Eventually(func() bool { return hub.Subscribers(PresenceChannel("t1")) == 1 }, 2*time.Second, 10*time.Millisecond)

	// When the participant is removed from the thread
	m.remove("t1/user:1")

	// Then the server closes the connection on the next ping and unsubscribes it
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var closeErr error
	for closeErr == nil {
		_, _, closeErr = conn.ReadMessage()
	}
	req.True(websocket.IsCloseError(closeErr, websocket.ClosePolicyViolation), "got %v", closeErr)
	req.Eventually(func() bool { return hub.Subscribers(PresenceChannel("t1")) == 0 }, 2*time.Second, 10*time.Millisecond)
}
