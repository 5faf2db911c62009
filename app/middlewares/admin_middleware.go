package middlewares

import (
	"log"
	"net/http"

	"github.com/modaltela/modal-tela-api/app/apperrors"
	"github.com/modaltela/modal-tela-api/app/helpers"
	"github.com/modaltela/modal-tela-api/app/models"
	"github.com/unrolled/render"
)

func requireRole(rnd *render.Render, allowed func(*models.User) bool, msg string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := helpers.UserFromContext(r.Context())
			if user == nil {
				helpers.RenderError(rnd, w, r, apperrors.Authentication("authentication credentials were not provided"))
				return
			}
			if !allowed(user) {
				log.Printf("requireRole: user %s (%s) denied on %s", user.ID, user.Role, r.URL.Path)
				helpers.RenderError(rnd, w, r, apperrors.Authorization(msg))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireStaff lets admins and super admins through.
func RequireStaff(rnd *render.Render) func(http.Handler) http.Handler {
	return requireRole(rnd, (*models.User).IsStaff, "staff access required")
}

func RequireSuperAdmin(rnd *render.Render) func(http.Handler) http.Handler {
	return requireRole(rnd, func(u *models.User) bool { return u.Role == models.RoleSuperAdmin }, "super admin access required")
}
