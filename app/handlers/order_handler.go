package handlers

import (
	"net/http"

	"github.com/modaltela/modal-tela-api/app/helpers"
	"github.com/modaltela/modal-tela-api/app/services"
	"github.com/unrolled/render"
)

type OrderHandler struct {
	render   *render.Render
	orders   *services.OrderService
	payments *services.PaymentService
	paging   Paging
}

func NewOrderHandler(r *render.Render, orders *services.OrderService, payments *services.PaymentService, paging Paging) *OrderHandler {
	return &OrderHandler{render: r, orders: orders, payments: payments, paging: paging}
}

func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	page := h.paging.parse(r)
	q := r.URL.Query()
	orders, total, err := h.orders.List(r.Context(), helpers.ActorFromContext(r.Context()), services.ListOrdersInput{
		Status:          q.Get("status"),
		AssignedAdminID: q.Get("assigned_admin"),
		Page:            page.Page,
		PageSize:        page.PageSize,
	})
	if err != nil {
		helpers.RenderError(h.render, w, r, err)
		return
	}
	_ = h.render.JSON(w, http.StatusOK, helpers.NewPage[*services.OrderView](orders, total, page))
}

func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in services.CreateOrderInput
	if err := helpers.DecodeJSON(r, &in); err != nil {
		helpers.RenderError(h.render, w, r, err)
		return
	}
	order, err := h.orders.Create(r.Context(), helpers.ActorFromContext(r.Context()), in)
	if err != nil {
		helpers.RenderError(h.render, w, r, err)
		return
	}
	_ = h.render.JSON(w, http.StatusCreated, order)
}

func (h *OrderHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	var in services.LookupOrderInput
	if err := helpers.DecodeJSON(r, &in); err != nil {
		helpers.RenderError(h.render, w, r, err)
		return
	}
	order, err := h.orders.Lookup(r.Context(), in)
	if err != nil {
		helpers.RenderError(h.render, w, r, err)
		return
	}
	_ = h.render.JSON(w, http.StatusOK, order)
}

func (h *OrderHandler) Detail(w http.ResponseWriter, r *http.Request) {
	order, err := h.orders.Get(r.Context(), helpers.ActorFromContext(r.Context()), pathVar(r, "id"))
	if err != nil {
		helpers.RenderError(h.render, w, r, err)
		return
	}
	_ = h.render.JSON(w, http.StatusOK, order)
}

func (h *OrderHandler) AdminDetail(w http.ResponseWriter, r *http.Request) {
	order, err := h.orders.AdminDetail(r.Context(), helpers.ActorFromContext(r.Context()), pathVar(r, "id"))
	if err != nil {
		helpers.RenderError(h.render, w, r, err)
		return
	}
	_ = h.render.JSON(w, http.StatusOK, order)
}

func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var in services.UpdateStatusInput
	if err := helpers.DecodeJSON(r, &in); err != nil {
		helpers.RenderError(h.render, w, r, err)
		return
	}
	order, err := h.orders.UpdateStatus(r.Context(), helpers.ActorFromContext(r.Context()), pathVar(r, "id"), in)
	if err != nil {
		helpers.RenderError(h.render, w, r, err)
		return
	}
	_ = h.render.JSON(w, http.StatusOK, order)
}

func (h *OrderHandler) Assign(w http.ResponseWriter, r *http.Request) {
	var in services.AssignOrderInput
	if err := helpers.DecodeJSON(r, &in); err != nil {
		helpers.RenderError(h.render, w, r, err)
		return
	}
	order, err := h.orders.Assign(r.Context(), helpers.ActorFromContext(r.Context()), pathVar(r, "id"), in)
	if err != nil {
		helpers.RenderError(h.render, w, r, err)
		return
	}
	_ = h.render.JSON(w, http.StatusOK, order)
}

func (h *OrderHandler) Reject(w http.ResponseWriter, r *http.Request) {
	var in services.RejectOrderInput
	if err := helpers.DecodeJSON(r, &in); err != nil {
		helpers.RenderError(h.render, w, r, err)
		return
	}
	order, err := h.orders.Reject(r.Context(), helpers.ActorFromContext(r.Context()), pathVar(r, "id"), in)
	if err != nil {
		helpers.RenderError(h.render, w, r, err)
		return
	}
	_ = h.render.JSON(w, http.StatusOK, order)
}

func (h *OrderHandler) UpdatePreparation(w http.ResponseWriter, r *http.Request) {
	var in services.PreparationInput
	if err := helpers.DecodeJSON(r, &in); err != nil {
		helpers.RenderError(h.render, w, r, err)
		return
	}
	order, err := h.orders.UpdatePreparation(r.Context(), helpers.ActorFromContext(r.Context()), pathVar(r, "id"), in)
	if err != nil {
		helpers.RenderError(h.render, w, r, err)
		return
	}
	_ = h.render.JSON(w, http.StatusOK, order)
}

func (h *OrderHandler) Payment(w http.ResponseWriter, r *http.Request) {
	link, err := h.payments.CreatePayment(r.Context(), helpers.ActorFromContext(r.Context()), pathVar(r, "id"))
	if err != nil {
		helpers.RenderError(h.render, w, r, err)
		return
	}
	_ = h.render.JSON(w, http.StatusOK, link)
}
