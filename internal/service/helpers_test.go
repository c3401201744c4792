package service_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/cwrk-planet/thread-service/internal/domain"
	"github.com/cwrk-planet/thread-service/internal/events"
	"github.com/cwrk-planet/thread-service/internal/fanout"
	"github.com/cwrk-planet/thread-service/internal/repository/memory"
	"github.com/cwrk-planet/thread-service/internal/service"
)

const threadID = "t1"

var (
	alice = domain.ActorRef{Type: domain.ProviderUser, ID: "1"}
	bob   = domain.ActorRef{Type: domain.ProviderUser, ID: "2"}
	carol = domain.ActorRef{Type: domain.ProviderBot, ID: "3"}
)

type delivery struct {
	Channel   string
	Broadcast fanout.Broadcast
}

// recorder - Broadcaster и Publisher, запоминающий всё отправленное.
type recorder struct {
	mu        sync.Mutex
	delivered []delivery
	published []events.Event
}

func (r *recorder) ToPresence(_ context.Context, threadID string, b fanout.Broadcast) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.delivered = append(r.delivered, delivery{Channel: "presence-thread." + threadID, Broadcast: b})
	return nil
}

func (r *recorder) To(_ context.Context, who domain.ActorRef, b fanout.Broadcast) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.delivered = append(r.delivered, delivery{Channel: "private-" + who.Type + "." + who.ID, Broadcast: b})
	return nil
}

func (r *recorder) Publish(_ context.Context, e events.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.published = append(r.published, e)
}

func (r *recorder) channels() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.delivered))
	for _, d := range r.delivered {
		out = append(out, d.Channel)
	}
	return out
}

func (r *recorder) eventNames() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.published))
	for _, e := range r.published {
		out = append(out, e.Name)
	}
	return out
}

type env struct {
	store     *memory.Store
	rec       *recorder
	registry  *domain.Registry
	reactions *service.ReactionService
	calls     *service.CallService
	statuses  *service.StatusService
}

func discardLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func newEnv(t *testing.T, f domain.Features) *env {
	t.Helper()
	store := memory.New()
	rec := &recorder{}
	features := service.StaticFeatures(f)

	registry := domain.NewRegistry()
	store.Register(registry)

	dispatcher := fanout.NewDispatcher(discardLogger(), rec, rec, service.NewPresenceLookup(store))
	policy := service.NewParticipantPolicy(store)

	e := &env{
		store:     store,
		rec:       rec,
		registry:  registry,
		reactions: service.NewReactionService(store, features, policy, dispatcher),
		calls:     service.NewCallService(discardLogger(), store, features, policy, dispatcher),
		statuses:  service.NewStatusService(store, registry, features, dispatcher),
	}

	now := time.Now().Add(-time.Hour)
	for i, ref := range []domain.ActorRef{alice, bob, carol} {
		store.AddParticipant(domain.Participant{
			ID:        "p-" + ref.ID,
			ThreadID:  threadID,
			Owner:     ref,
			Admin:     i == 2,
			CreatedAt: now,
		})
		store.AddProvider(domain.Profile{Ref: ref, Name: "provider " + ref.ID})
	}
	return e
}

func (e *env) seedMessage(id string, owner domain.ActorRef) *domain.Message {
	m := domain.Message{ID: id, ThreadID: threadID, Owner: owner, Body: "hi", CreatedAt: time.Now().Add(-time.Minute)}
	e.store.AddMessage(m)
	return &m
}

func (e *env) seedReaction(id, messageID string, owner domain.ActorRef, value string, at time.Time) *domain.Reaction {
	r := domain.Reaction{ID: id, MessageID: messageID, Owner: owner, Reaction: value, CreatedAt: at}
	e.store.SeedReaction(r)
	return &r
}

func (e *env) message(id string) domain.Message {
	m, _ := e.store.Message(id)
	return m
}
