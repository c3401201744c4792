package ws

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/cwrk-planet/thread-service/internal/domain"
	"github.com/cwrk-planet/thread-service/internal/fanout"

	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	mu       sync.Mutex
	actor    domain.ActorRef
	threadID string
	full     bool
	got      []Message
}

func (c *fakeConn) Send(msg Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.full {
		return ErrSendQueueFull
	}
	c.got = append(c.got, msg)
	return nil
}

func (c *fakeConn) Close() error           { return nil }
func (c *fakeConn) Actor() domain.ActorRef { return c.actor }
func (c *fakeConn) ThreadID() string       { return c.threadID }
func (c *fakeConn) messages() []Message    { c.mu.Lock(); defer c.mu.Unlock(); return c.got }

func newTestHub() *Hub { return NewHub(slog.New(slog.NewTextHandler(io.Discard, nil))) }

func TestHub_Routing(t *testing.T) {
	req := require.New(t)
	hub := newTestHub()
	ctx := context.Background()

	alice := &fakeConn{actor: domain.ActorRef{Type: "user", ID: "1"}, threadID: "t1"}
	bob := &fakeConn{actor: domain.ActorRef{Type: "user", ID: "2"}, threadID: "t1"}
	other := &fakeConn{actor: domain.ActorRef{Type: "bot", ID: "3"}, threadID: "t2"}
	hub.Add(alice)
	hub.Add(bob)
	hub.Add(other)

	b := fanout.Broadcast{Kind: fanout.KindReactionRemoved, Payload: map[string]any{"id": "r1"}}

	// presence reaches everyone in the thread only
	req.NoError(hub.ToPresence(ctx, "t1", b))
	req.Len(alice.messages(), 1)
	req.Len(bob.messages(), 1)
	req.Empty(other.messages())
	req.Equal("presence-thread.t1", alice.messages()[0].Channel)
	req.Equal(fanout.KindReactionRemoved, alice.messages()[0].Type)

	// private reaches the actor only
	req.NoError(hub.To(ctx, bob.actor, b))
	req.Len(alice.messages(), 1)
	req.Len(bob.messages(), 2)
	req.Equal("private-user.2", bob.messages()[1].Channel)

	hub.Remove(bob)
	req.Equal(1, hub.Subscribers(PresenceChannel("t1")))
	req.Zero(hub.Subscribers(PrivateChannel(bob.actor)))

	hub.Remove(alice)
	req.Zero(hub.Subscribers(PresenceChannel("t1")))
}

func TestHub_Publish_SkipsFullQueues(t *testing.T) {
	hub := newTestHub()
	ok := &fakeConn{actor: domain.ActorRef{Type: "user", ID: "1"}, threadID: "t1"}
	full := &fakeConn{actor: domain.ActorRef{Type: "user", ID: "2"}, threadID: "t1", full: true}
	hub.Add(ok)
	hub.Add(full)

	n := hub.Publish(PresenceChannel("t1"), Message{Type: "x"})
	require.Equal(t, 1, n)
}
