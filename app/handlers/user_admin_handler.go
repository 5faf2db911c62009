package handlers

import (
	"net/http"

	"github.com/modaltela/modal-tela-api/app/helpers"
	"github.com/modaltela/modal-tela-api/app/models"
	"github.com/modaltela/modal-tela-api/app/repositories"
	"github.com/modaltela/modal-tela-api/app/services"
	"github.com/unrolled/render"
)

type UserAdminHandler struct {
	render *render.Render
	users  *services.UserAdminService
	paging Paging
}

func NewUserAdminHandler(r *render.Render, users *services.UserAdminService, paging Paging) *UserAdminHandler {
	return &UserAdminHandler{render: r, users: users, paging: paging}
}

func (h *UserAdminHandler) List(w http.ResponseWriter, r *http.Request) {
	page := h.paging.parse(r)
	q := r.URL.Query()
	users, total, err := h.users.List(r.Context(), helpers.ActorFromContext(r.Context()), repositories.UserFilter{
		Role:     q.Get("role"),
		Search:   q.Get("search"),
		Page:     page.Page,
		PageSize: page.PageSize,
	})
	if err != nil {
		helpers.RenderError(h.render, w, r, err)
		return
	}
	_ = h.render.JSON(w, http.StatusOK, helpers.NewPage[models.User](users, total, page))
}

func (h *UserAdminHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in services.CreateStaffInput
	if err := helpers.DecodeJSON(r, &in); err != nil {
		helpers.RenderError(h.render, w, r, err)
		return
	}
	user, err := h.users.CreateStaff(r.Context(), helpers.ActorFromContext(r.Context()), in)
	if err != nil {
		helpers.RenderError(h.render, w, r, err)
		return
	}
	_ = h.render.JSON(w, http.StatusCreated, user)
}

func (h *UserAdminHandler) Update(w http.ResponseWriter, r *http.Request) {
	var in services.UpdateUserInput
	if err := helpers.DecodeJSON(r, &in); err != nil {
		helpers.RenderError(h.render, w, r, err)
		return
	}
	user, err := h.users.Update(r.Context(), helpers.ActorFromContext(r.Context()), pathVar(r, "id"), in)
	if err != nil {
		helpers.RenderError(h.render, w, r, err)
		return
	}
	_ = h.render.JSON(w, http.StatusOK, user)
}

func (h *UserAdminHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.users.Delete(r.Context(), helpers.ActorFromContext(r.Context()), pathVar(r, "id")); err != nil {
		helpers.RenderError(h.render, w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
