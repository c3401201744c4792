package httpmw

import (
	"net/http"
	"strings"

	"github.com/cwrk-planet/thread-service/internal/domain"
	"github.com/cwrk-planet/thread-service/internal/identity"
	"github.com/cwrk-planet/thread-service/internal/transport/http/httputil"
)

const (
	HeaderProviderID   = "X-Provider-ID"
	HeaderProviderType = "X-Provider-Type"
)

type ActorChecker interface {
	Check(ref domain.ActorRef) error
}

// простая авторизация: требуем Bearer + X-Provider-ID, токен проверяет шлюз.
// X-Provider-Type по умолчанию user.
func Auth(actors ActorChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") || len(auth) <= 7 {
				httputil.Error(r.Context(), w, http.StatusUnauthorized, "missing bearer token", nil)
				return
			}

			ref := domain.ActorRef{
				Type: strings.TrimSpace(r.Header.Get(HeaderProviderType)),
				ID:   strings.TrimSpace(r.Header.Get(HeaderProviderID)),
			}
			if ref.Type == "" {
				ref.Type = domain.ProviderUser
			}
			if ref.ID == "" {
				httputil.Error(r.Context(), w, http.StatusUnauthorized, "missing "+HeaderProviderID, nil)
				return
			}
			if err := actors.Check(ref); err != nil {
				httputil.Error(r.Context(), w, http.StatusUnauthorized, "invalid provider", map[string]any{"provider_type": ref.Type})
				return
			}

			ctx := identity.WithActor(r.Context(), ref)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
