package http

import (
	"context"
	"net/http"
	"time"

	"github.com/cwrk-planet/thread-service/internal/transport/http/httputil"
	httpmw "github.com/cwrk-planet/thread-service/internal/transport/http/middleware"

	"github.com/go-chi/chi/v5"
	middlewareChi "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type Deps struct {
	Handler  *Handler
	Actors   httpmw.ActorChecker
	Features httpmw.FeatureSource
	Toucher  httpmw.Toucher

	// WS - обработчик /ws/threads/{thread}; nil - без websocket.
	WS http.HandlerFunc
	// Metrics - middleware и обработчик /metrics; nil - без метрик.
	Metrics interface {
		Middleware(http.Handler) http.Handler
		Handler() http.Handler
	}
	Health func(ctx context.Context) error

	CORSOrigins []string
}

func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middlewareChi.RealIP)
	r.Use(middlewareChi.Recoverer)
	r.Use(httputil.MiddlewareRequestID)
	r.Use(httputil.MiddlewareLogging)
	if d.Metrics != nil {
		r.Use(d.Metrics.Middleware)
	}

	origins := d.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:5173", "http://127.0.0.1:5173"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID",
			httpmw.HeaderProviderID, httpmw.HeaderProviderType},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// WS endpoint: токен и провайдер передаются в query
	if d.WS != nil {
		r.Get("/ws/threads/{thread}", d.WS)
	}

	h := d.Handler
	r.Route("/api", func(api chi.Router) {
		api.Use(httpmw.Auth(d.Actors))
		api.Use(httpmw.Features(d.Features))
		api.Use(httpmw.Heartbeat(d.Toucher))
		api.Use(middlewareChi.Timeout(30 * time.Second))

		api.Post("/heartbeat", h.Heartbeat)
		api.Get("/providers/{type}/{id}/status", h.ProviderStatus)

		api.Route("/threads/{thread}", func(tr chi.Router) {
			tr.Route("/messages/{message}/reactions", func(rr chi.Router) {
				rr.Get("/", h.ListReactions)
				rr.Post("/", h.AddReaction)
				rr.Delete("/{reaction}", h.RemoveReaction)
			})
			tr.Post("/calls/{call}/leave", h.LeaveCall)
		})

		api.Get("/admin/audit", h.Audit)
	})

	if d.Metrics != nil {
		r.Handle("/metrics", d.Metrics.Handler())
	}

	// health
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if d.Health != nil {
			if err := d.Health(r.Context()); err != nil {
				httputil.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		httputil.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return r
}
