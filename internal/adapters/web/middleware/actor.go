package middleware

import (
	"net/http"
	"strings"

	"github.com/lcalzada-xor/reconrisk/internal/core/domain"
)

// ActorHeader names the caller recorded on reports and audit entries.
const ActorHeader = "X-Actor"

const maxActorLength = 128

// ActorMiddleware attaches the X-Actor header to the request context.
// Requests without it run as domain.SystemActor.
func ActorMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor := strings.TrimSpace(r.Header.Get(ActorHeader))
		if len(actor) > maxActorLength {
			http.Error(w, "Actor header too long", http.StatusBadRequest)
			return
		}
		if actor != "" {
			r = r.WithContext(domain.WithActor(r.Context(), actor))
		}
		next.ServeHTTP(w, r)
	})
}
