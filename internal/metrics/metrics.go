// Package metrics - prometheus-метрики сервиса: рассылки, доменные события,
// повторы транзакций, WS-соединения и HTTP-запросы.
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/cwrk-planet/thread-service/internal/domain"
	"github.com/cwrk-planet/thread-service/internal/events"
	"github.com/cwrk-planet/thread-service/internal/fanout"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "thread_service"

type Metrics struct {
	registry *prometheus.Registry

	Broadcasts      *prometheus.CounterVec
	BroadcastErrors *prometheus.CounterVec
	Events          *prometheus.CounterVec
	TxRetries       prometheus.Counter
	WSConnections   prometheus.Gauge
	Requests        *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Broadcasts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "broadcasts_total",
			Help:      "Broadcasts handed to the transport, by kind and target.",
		}, []string{"kind", "target"}),
		BroadcastErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "broadcast_errors_total",
			Help:      "Broadcasts the transport failed to accept.",
		}, []string{"kind", "target"}),
		Events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "domain_events_total",
			Help:      "Domain events consumed from the event bus.",
		}, []string{"event"}),
		TxRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tx_retries_total",
			Help:      "Transactions retried after a serialization conflict.",
		}),
		WSConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "ws_connections",
			Help:      "Open websocket connections.",
		}),
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route pattern, method and status.",
		}, []string{"route", "method", "status"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route pattern.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.Broadcasts, m.BroadcastErrors, m.Events, m.TxRetries,
		m.WSConnections, m.Requests, m.RequestDuration,
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveRetry подходит как repository.RetryObserver.
func (m *Metrics) ObserveRetry(int, error) { m.TxRetries.Inc() }

// Middleware считает запросы по шаблону маршрута chi.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.Requests.WithLabelValues(route, r.Method, strconv.Itoa(status)).Inc()
		m.RequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

// Broadcaster оборачивает транспорт и считает отправленные рассылки.
func (m *Metrics) Broadcaster(next fanout.Broadcaster) fanout.Broadcaster {
	return &broadcaster{m: m, next: next}
}

type broadcaster struct {
	m    *Metrics
	next fanout.Broadcaster
}

func (b *broadcaster) ToPresence(ctx context.Context, threadID string, br fanout.Broadcast) error {
	err := b.next.ToPresence(ctx, threadID, br)
	b.observe(br.Kind, "presence", err)
	return err
}

func (b *broadcaster) To(ctx context.Context, recipient domain.ActorRef, br fanout.Broadcast) error {
	err := b.next.To(ctx, recipient, br)
	b.observe(br.Kind, "owner", err)
	return err
}

func (b *broadcaster) observe(kind, target string, err error) {
	if err != nil {
		b.m.BroadcastErrors.WithLabelValues(kind, target).Inc()
		return
	}
	b.m.Broadcasts.WithLabelValues(kind, target).Inc()
}

// Sink - потребитель шины событий, считающий события по имени.
func (m *Metrics) Sink() events.Sink { return eventSink{m: m} }

type eventSink struct{ m *Metrics }

func (eventSink) Name() string { return "metrics" }

func (s eventSink) Consume(_ context.Context, e events.Event) error {
	s.m.Events.WithLabelValues(e.Name).Inc()
	return nil
}
