package middlewares

import (
	"context"
	"log"
	"net/http"
	"strings"

	"github.com/modaltela/modal-tela-api/app/apperrors"
	"github.com/modaltela/modal-tela-api/app/helpers"
	"github.com/modaltela/modal-tela-api/app/models"
	"github.com/unrolled/render"
)

type Authenticator interface {
	Authenticate(ctx context.Context, access string) (*models.User, error)
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if len(header) < 7 || !strings.EqualFold(header[:7], "Bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}

// Authenticate attaches the user behind a bearer token. Requests without a
// token pass through anonymously; a bad token is rejected.
func Authenticate(rnd *render.Render, auth Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}
			user, err := auth.Authenticate(r.Context(), token)
			if err != nil {
				log.Printf("Authenticate: rejected token on %s: %v", r.URL.Path, err)
				helpers.RenderError(rnd, w, r, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(helpers.WithUser(r.Context(), user)))
		})
	}
}

func RequireAuth(rnd *render.Render) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if helpers.UserFromContext(r.Context()) == nil {
				helpers.RenderError(rnd, w, r, apperrors.Authentication("authentication credentials were not provided"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
