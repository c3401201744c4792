package httpmw

import (
	"context"
	"net/http"

	"github.com/cwrk-planet/thread-service/internal/domain"
	"github.com/cwrk-planet/thread-service/internal/identity"
)

// Toucher обновляет last_seen актора.
type Toucher interface {
	Touch(ctx context.Context, actor domain.ActorRef) error
}

func Heartbeat(status Toucher) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if actor := identity.ActorFrom(r.Context()); !actor.IsZero() {
				// best-effort: ошибки не прерывают запрос
				_ = status.Touch(r.Context(), actor)
			}
			next.ServeHTTP(w, r)
		})
	}
}
