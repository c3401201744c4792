package httpmw

import (
	"net/http"

	"github.com/cwrk-planet/thread-service/internal/domain"
	"github.com/cwrk-planet/thread-service/internal/identity"
)

type FeatureSource interface {
	Snapshot() domain.Features
}

// Features фиксирует снимок фич на весь запрос: перезагрузка конфига
// не меняет флаги посреди операции.
func Features(src FeatureSource) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := identity.WithFeatures(r.Context(), src.Snapshot())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
