package httputil

import (
	"net/http"
	"time"

	"github.com/cwrk-planet/thread-service/internal/logger"

	"github.com/go-chi/chi/v5/middleware"
)

// MiddlewareLogging логирует метод, путь, статус и длительность запроса.
func MiddlewareLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		log := logger.FromContext(r.Context())
		args := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start).String(),
		}
		if status >= http.StatusInternalServerError {
			log.ErrorContext(r.Context(), "http request", args...)
			return
		}
		log.InfoContext(r.Context(), "http request", args...)
	})
}
