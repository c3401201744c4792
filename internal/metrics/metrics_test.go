package metrics_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cwrk-planet/thread-service/internal/domain"
	"github.com/cwrk-planet/thread-service/internal/events"
	"github.com/cwrk-planet/thread-service/internal/fanout"
	"github.com/cwrk-planet/thread-service/internal/metrics"
	"github.com/cwrk-planet/thread-service/internal/mocks"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestBroadcaster_Counts(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	inner := mocks.NewMockBroadcaster(ctrl)
	m := metrics.New()
	b := m.Broadcaster(inner)
	ctx := context.Background()
	br := fanout.Broadcast{Kind: fanout.KindReactionAdded}
	owner := domain.ActorRef{Type: "user", ID: "1"}

	inner.EXPECT().ToPresence(ctx, "t1", br).Return(nil)
	inner.EXPECT().To(ctx, owner, br).Return(errors.New("closed"))

	req.NoError(b.ToPresence(ctx, "t1", br))
	req.Error(b.To(ctx, owner, br))

	req.Equal(1.0, testutil.ToFloat64(m.Broadcasts.WithLabelValues(fanout.KindReactionAdded, "presence")))
	req.Equal(1.0, testutil.ToFloat64(m.BroadcastErrors.WithLabelValues(fanout.KindReactionAdded, "owner")))
}

func TestSinkAndRetries(t *testing.T) {
	req := require.New(t)
	m := metrics.New()
	sink := m.Sink()

	req.Equal("metrics", sink.Name())
	req.NoError(sink.Consume(context.Background(), events.Event{Name: events.CallLeft}))
	req.NoError(sink.Consume(context.Background(), events.Event{Name: events.CallLeft}))
	req.Equal(2.0, testutil.ToFloat64(m.Events.WithLabelValues(events.CallLeft)))

	m.ObserveRetry(1, errors.New("conflict"))
	req.Equal(1.0, testutil.ToFloat64(m.TxRetries))
}

func TestMiddlewareAndHandler(t *testing.T) {
	req := require.New(t)
	m := metrics.New()

	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/api/things/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	r.Handle("/metrics", m.Handler())

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/things/42", nil))
	req.Equal(http.StatusTeapot, rec.Code)
	req.Equal(1.0, testutil.ToFloat64(m.Requests.WithLabelValues("/api/things/{id}", "GET", "418")))

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	req.Equal(http.StatusOK, rec.Code)
	req.True(strings.Contains(rec.Body.String(), "thread_service_http_requests_total"))
}
