package handlers

import (
	"net/http"

	"github.com/gorilla/csrf"
	"github.com/unrolled/render"
)

type HomeHandler struct {
	render *render.Render
}

func NewHomeHandler(r *render.Render) *HomeHandler {
	return &HomeHandler{render: r}
}

func (h *HomeHandler) Health(w http.ResponseWriter, r *http.Request) {
	_ = h.render.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// CSRFToken returns the token to echo in X-CSRF-Token. It is empty when CSRF
// protection is disabled.
func (h *HomeHandler) CSRFToken(w http.ResponseWriter, r *http.Request) {
	_ = h.render.JSON(w, http.StatusOK, map[string]string{"csrf_token": csrf.Token(r)})
}
