package httputil

import (
	"context"
	"net/http"

	"github.com/cwrk-planet/thread-service/internal/logger"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

const HeaderRequestID = "X-Request-ID"

// MiddlewareRequestID берёт X-Request-ID клиента или выдаёт uuid, возвращает его в ответе
// и кладёт в контекст (совместимо с middleware.GetReqID) вместе с логгером запроса.
func MiddlewareRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(HeaderRequestID)
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		w.Header().Set(HeaderRequestID, id)

		ctx := context.WithValue(r.Context(), middleware.RequestIDKey, id)
		ctx = logger.WithContext(ctx, logger.FromContext(ctx).With("req_id", id))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequestIDFrom - id текущего запроса или "".
func RequestIDFrom(ctx context.Context) string {
	return middleware.GetReqID(ctx)
}
