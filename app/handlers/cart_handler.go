package handlers

import (
	"net/http"

	"github.com/modaltela/modal-tela-api/app/helpers"
	"github.com/modaltela/modal-tela-api/app/services"
	"github.com/unrolled/render"
)

type CartHandler struct {
	render *render.Render
	carts  *services.CartService
}

func NewCartHandler(r *render.Render, carts *services.CartService) *CartHandler {
	return &CartHandler{render: r, carts: carts}
}

func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	cart, err := h.carts.GetCart(r.Context(), helpers.ActorFromContext(r.Context()))
	if err != nil {
		helpers.RenderError(h.render, w, r, err)
		return
	}
	_ = h.render.JSON(w, http.StatusOK, cart)
}

func (h *CartHandler) Add(w http.ResponseWriter, r *http.Request) {
	var in services.AddCartItemInput
	if err := helpers.DecodeJSON(r, &in); err != nil {
		helpers.RenderError(h.render, w, r, err)
		return
	}
	cart, err := h.carts.AddItem(r.Context(), helpers.ActorFromContext(r.Context()), in)
	if err != nil {
		helpers.RenderError(h.render, w, r, err)
		return
	}
	_ = h.render.JSON(w, http.StatusCreated, cart)
}

func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	var in services.UpdateCartItemInput
	if err := helpers.DecodeJSON(r, &in); err != nil {
		helpers.RenderError(h.render, w, r, err)
		return
	}
	cart, err := h.carts.UpdateItem(r.Context(), helpers.ActorFromContext(r.Context()), pathVar(r, "id"), in)
	if err != nil {
		helpers.RenderError(h.render, w, r, err)
		return
	}
	_ = h.render.JSON(w, http.StatusOK, cart)
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	cart, err := h.carts.RemoveItem(r.Context(), helpers.ActorFromContext(r.Context()), pathVar(r, "id"))
	if err != nil {
		helpers.RenderError(h.render, w, r, err)
		return
	}
	_ = h.render.JSON(w, http.StatusOK, cart)
}

func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if err := h.carts.Clear(r.Context(), helpers.ActorFromContext(r.Context())); err != nil {
		helpers.RenderError(h.render, w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
