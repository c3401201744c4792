package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cwrk-planet/thread-service/internal/audit"
	"github.com/cwrk-planet/thread-service/internal/domain"
	"github.com/cwrk-planet/thread-service/internal/events"
	"github.com/cwrk-planet/thread-service/internal/fanout"
	"github.com/cwrk-planet/thread-service/internal/identity"
	"github.com/cwrk-planet/thread-service/internal/repository/memory"
	"github.com/cwrk-planet/thread-service/internal/service"

	"github.com/stretchr/testify/require"
)

type nopBroadcaster struct{}

func (nopBroadcaster) ToPresence(context.Context, string, fanout.Broadcast) error  { return nil }
func (nopBroadcaster) To(context.Context, domain.ActorRef, fanout.Broadcast) error { return nil }

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, events.Event) {}

type fakeAudit []audit.Entry

func (f fakeAudit) Recent(context.Context, int) ([]audit.Entry, error) { return f, nil }

type testAPI struct {
	store *memory.Store
	srv   *httptest.Server
}

func newTestAPI(t *testing.T, f domain.Features) *testAPI {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := memory.New()
	registry := domain.NewRegistry()
	store.Register(registry)

	features := service.StaticFeatures(f)
	policy := service.NewParticipantPolicy(store)
	dispatcher := fanout.NewDispatcher(log, nopBroadcaster{}, nopPublisher{}, service.NewPresenceLookup(store))

	reactions := service.NewReactionService(store, features, policy, dispatcher)
	calls := service.NewCallService(log, store, features, policy, dispatcher)
	statuses := service.NewStatusService(store, registry, features, dispatcher)

	resolver := identity.NewResolver(registry)
	auditors := service.NewAuditAccess(resolver, []domain.ActorRef{{Type: domain.ProviderUser, ID: "1"}})
	h := NewHandler(reactions, calls, statuses, fakeAudit{{ID: "a1", Event: events.CallLeft}}, auditors)
	router := NewRouter(Deps{
		Handler:  h,
		Actors:   resolver,
		Features: features,
		Toucher:  statuses,
		Health:   store.Ping,
	})
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	now := time.Now().Add(-time.Hour)
	for _, id := range []string{"1", "2"} {
		ref := domain.ActorRef{Type: domain.ProviderUser, ID: id}
		store.AddProvider(domain.Profile{Ref: ref, Name: "user " + id})
		store.AddParticipant(domain.Participant{ID: "p" + id, ThreadID: "t1", Owner: ref, CreatedAt: now})
	}
	store.AddMessage(domain.Message{ID: "m1", ThreadID: "t1", Owner: domain.ActorRef{Type: domain.ProviderUser, ID: "2"}, CreatedAt: now})

	return &testAPI{store: store, srv: srv}
}

func (a *testAPI) do(t *testing.T, method, path, providerID, body string) (*http.Response, map[string]any) {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, a.srv.URL+path, rd)
	require.NoError(t, err)
	if providerID != "" {
		req.Header.Set("Authorization", "Bearer token")
		req.Header.Set("X-Provider-ID", providerID)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	data, _ := io.ReadAll(resp.Body)
	if len(data) > 0 {
		_ = json.Unmarshal(data, &out)
	}
	return resp, out
}

func TestHeartbeat(t *testing.T) {
	api := newTestAPI(t, domain.DefaultFeatures())

	resp, _ := api.do(t, http.MethodPost, "/api/heartbeat", "1", `{"away":true}`)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = api.do(t, http.MethodPost, "/api/heartbeat", "1", `{"away":false}`)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	require.Equal(t, 1, api.store.StatusCount())

	// away is required
	resp, body := api.do(t, http.MethodPost, "/api/heartbeat", "1", `{}`)
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	require.Equal(t, "validation failed", body["error"].(map[string]any)["message"])

	resp, _ = api.do(t, http.MethodPost, "/api/heartbeat", "1", `not json`)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = api.do(t, http.MethodPost, "/api/heartbeat", "", `{"away":true}`)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, body = api.do(t, http.MethodGet, "/api/providers/user/1/status", "2", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "online", body["state"])
	require.Equal(t, "user 1", body["name"])
}

func TestReactionsFlow(t *testing.T) {
	req := require.New(t)
	api := newTestAPI(t, domain.DefaultFeatures())
	base := "/api/threads/t1/messages/m1/reactions"

	resp, body := api.do(t, http.MethodPost, base, "1", `{"reaction":":joy:"}`)
	req.Equal(http.StatusCreated, resp.StatusCode)
	id, _ := body["id"].(string)
	req.NotEmpty(id)
	req.Equal("1", body["owner_id"])

	resp, _ = api.do(t, http.MethodPost, base, "1", `{"reaction":":joy:"}`)
	req.Equal(http.StatusConflict, resp.StatusCode)

	resp, body = api.do(t, http.MethodGet, base+"?limit=10", "2", "")
	req.Equal(http.StatusOK, resp.StatusCode)
	req.Len(body["data"], 1)

	// bob is neither the reaction owner nor an admin, but owns the message
	resp, body = api.do(t, http.MethodDelete, base+"/"+id, "2", "")
	req.Equal(http.StatusOK, resp.StatusCode)
	req.Equal(map[string]any{"id": id, "message_id": "m1", "reaction": ":joy:"}, body)
	m, _ := api.store.Message("m1")
	req.False(m.Reacted)

	resp, _ = api.do(t, http.MethodDelete, base+"/"+id, "2", "")
	req.Equal(http.StatusNotFound, resp.StatusCode)

	resp, _ = api.do(t, http.MethodGet, "/api/threads/t1/messages/m1/reactions?cursor=***", "2", "")
	req.Equal(http.StatusBadRequest, resp.StatusCode)
}

func TestReactions_FeatureDisabled(t *testing.T) {
	f := domain.DefaultFeatures()
	f.Reactions = false
	api := newTestAPI(t, f)

	resp, body := api.do(t, http.MethodDelete, "/api/threads/t1/messages/m1/reactions/r1", "1", "")
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	require.Equal(t, "Message reactions are currently disabled", body["error"].(map[string]any)["message"])
}

func TestLeaveCall(t *testing.T) {
	req := require.New(t)
	api := newTestAPI(t, domain.DefaultFeatures())
	owner := domain.ActorRef{Type: domain.ProviderUser, ID: "1"}
	api.store.AddCall(domain.Call{ID: "c1", ThreadID: "t1", Owner: owner, CreatedAt: time.Now()})
	api.store.AddCallParticipant(domain.CallParticipant{ID: "cp1", CallID: "c1", Owner: owner, CreatedAt: time.Now()})

	resp, body := api.do(t, http.MethodPost, "/api/threads/t1/calls/c1/leave", "1", "")
	req.Equal(http.StatusOK, resp.StatusCode)
	req.Equal(map[string]any{"participant_id": "cp1", "call_ended": true}, body)

	// second leave is a no-op success
	resp, body = api.do(t, http.MethodPost, "/api/threads/t1/calls/c1/leave", "1", "")
	req.Equal(http.StatusOK, resp.StatusCode)
	req.Equal(true, body["call_ended"])

	resp, _ = api.do(t, http.MethodPost, "/api/threads/t1/calls/c1/leave", "2", "")
	req.Equal(http.StatusForbidden, resp.StatusCode)

	resp, _ = api.do(t, http.MethodPost, "/api/threads/t1/calls/nope/leave", "1", "")
	req.Equal(http.StatusNotFound, resp.StatusCode)
}

func TestAudit_OnlyConfiguredReaders(t *testing.T) {
	api := newTestAPI(t, domain.DefaultFeatures())

	resp, body := api.do(t, http.MethodGet, "/api/admin/audit", "1", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, body["data"], 1)

	// participant of a thread, but not an audit reader
	resp, body = api.do(t, http.MethodGet, "/api/admin/audit", "2", "")
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	require.Nil(t, body["data"])

	// provider without a record
	resp, body = api.do(t, http.MethodGet, "/api/admin/audit", "777", "")
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	require.Nil(t, body["data"])
}

func TestHealthAndProviderStatus(t *testing.T) {
	api := newTestAPI(t, domain.DefaultFeatures())

	resp, body := api.do(t, http.MethodGet, "/healthz", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "ok", body["status"])

	resp, _ = api.do(t, http.MethodGet, "/api/providers/robot/1/status", "1", "")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestErrorStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{&domain.FeatureDisabledError{Feature: "Calling"}, http.StatusForbidden},
		{&domain.TransactionConflictError{Attempts: 3}, http.StatusServiceUnavailable},
		{domain.ErrCallNotFound, http.StatusNotFound},
		{domain.ErrNotInCall, http.StatusForbidden},
		{domain.ErrTooManyReactions, http.StatusConflict},
		{domain.ErrInvalidReaction, http.StatusBadRequest},
		{context.Canceled, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, errorStatus(tt.err), tt.err.Error())
	}
}
