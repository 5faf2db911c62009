package middlewares

import (
	"log"
	"net/http"

	"github.com/modaltela/modal-tela-api/app/apperrors"
	"github.com/modaltela/modal-tela-api/app/helpers"
	"github.com/modaltela/modal-tela-api/app/utils/sessions"
	"github.com/unrolled/render"
)

// GuestSession exposes the session key of an existing cookie, if any.
func GuestSession(store sessions.SessionStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if key := store.GetSessionKey(r); key != "" {
				r = r.WithContext(helpers.WithSessionKey(r.Context(), key))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// EnsureGuestSession mints a session key for anonymous callers so guest carts
// and orders have an owner. Authenticated requests are left alone.
func EnsureGuestSession(rnd *render.Render, store sessions.SessionStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if helpers.UserFromContext(r.Context()) == nil {
				key, err := store.EnsureSessionKey(w, r)
				if err != nil {
					log.Printf("EnsureGuestSession: failed to save session: %v", err)
					helpers.RenderError(rnd, w, r, apperrors.Unexpected("could not start session", err))
					return
				}
				r = r.WithContext(helpers.WithSessionKey(r.Context(), key))
			}
			next.ServeHTTP(w, r)
		})
	}
}
