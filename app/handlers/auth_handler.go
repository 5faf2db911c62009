package handlers

import (
	"net/http"

	"github.com/modaltela/modal-tela-api/app/helpers"
	"github.com/modaltela/modal-tela-api/app/services"
	"github.com/unrolled/render"
)

type AuthHandler struct {
	render *render.Render
	auth   *services.AuthService
}

func NewAuthHandler(r *render.Render, auth *services.AuthService) *AuthHandler {
	return &AuthHandler{render: r, auth: auth}
}

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var in services.RegisterInput
	if err := helpers.DecodeJSON(r, &in); err != nil {
		helpers.RenderError(h.render, w, r, err)
		return
	}
	user, err := h.auth.Register(r.Context(), in)
	if err != nil {
		helpers.RenderError(h.render, w, r, err)
		return
	}
	_ = h.render.JSON(w, http.StatusCreated, user)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var in services.LoginInput
	if err := helpers.DecodeJSON(r, &in); err != nil {
		helpers.RenderError(h.render, w, r, err)
		return
	}
	result, err := h.auth.Login(r.Context(), in)
	if err != nil {
		helpers.RenderError(h.render, w, r, err)
		return
	}
	_ = h.render.JSON(w, http.StatusOK, result)
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var in refreshRequest
	if err := helpers.DecodeJSON(r, &in); err != nil {
		helpers.RenderError(h.render, w, r, err)
		return
	}
	pair, err := h.auth.Refresh(r.Context(), in.Refresh)
	if err != nil {
		helpers.RenderError(h.render, w, r, err)
		return
	}
	_ = h.render.JSON(w, http.StatusOK, pair)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var in refreshRequest
	if err := helpers.DecodeJSON(r, &in); err != nil {
		helpers.RenderError(h.render, w, r, err)
		return
	}
	if err := h.auth.Logout(r.Context(), in.Refresh); err != nil {
		helpers.RenderError(h.render, w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	_ = h.render.JSON(w, http.StatusOK, helpers.UserFromContext(r.Context()))
}

func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var in services.ProfileInput
	if err := helpers.DecodeJSON(r, &in); err != nil {
		helpers.RenderError(h.render, w, r, err)
		return
	}
	user, err := h.auth.UpdateProfile(r.Context(), helpers.UserFromContext(r.Context()), in)
	if err != nil {
		helpers.RenderError(h.render, w, r, err)
		return
	}
	_ = h.render.JSON(w, http.StatusOK, user)
}

func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var in services.ChangePasswordInput
	if err := helpers.DecodeJSON(r, &in); err != nil {
		helpers.RenderError(h.render, w, r, err)
		return
	}
	if err := h.auth.ChangePassword(r.Context(), helpers.UserFromContext(r.Context()), in); err != nil {
		helpers.RenderError(h.render, w, r, err)
		return
	}
	_ = h.render.JSON(w, http.StatusOK, map[string]string{"detail": "password updated"})
}
