package handlers

import (
	"net/http"

	"github.com/modaltela/modal-tela-api/app/helpers"
	"github.com/modaltela/modal-tela-api/app/models"
	"github.com/modaltela/modal-tela-api/app/repositories"
	"github.com/modaltela/modal-tela-api/app/services"
	"github.com/unrolled/render"
)

// ProductHandler serves the public catalog.
type ProductHandler struct {
	render   *render.Render
	catalog  *services.CatalogService
	variants *services.VariantService
	paging   Paging
}

func NewProductHandler(r *render.Render, catalog *services.CatalogService, variants *services.VariantService, paging Paging) *ProductHandler {
	return &ProductHandler{render: r, catalog: catalog, variants: variants, paging: paging}
}

func productFilter(r *http.Request, page helpers.PageRequest) repositories.ProductFilter {
	q := r.URL.Query()
	return repositories.ProductFilter{
		CategoryID:    q.Get("category"),
		SubcategoryID: q.Get("subcategory"),
		BrandID:       q.Get("brand"),
		Featured:      queryBool(r, "featured"),
		Search:        q.Get("search"),
		Ordering:      q.Get("ordering"),
		Page:          page.Page,
		PageSize:      page.PageSize,
	}
}

func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	page := h.paging.parse(r)
	products, total, err := h.catalog.ListProducts(r.Context(), helpers.ActorFromContext(r.Context()), false, productFilter(r, page))
	if err != nil {
		helpers.RenderError(h.render, w, r, err)
		return
	}
	_ = h.render.JSON(w, http.StatusOK, helpers.NewPage[models.Product](products, total, page))
}

func (h *ProductHandler) Featured(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.FeaturedProducts(r.Context())
	if err != nil {
		helpers.RenderError(h.render, w, r, err)
		return
	}
	if products == nil {
		products = []models.Product{}
	}
	_ = h.render.JSON(w, http.StatusOK, products)
}

func (h *ProductHandler) Detail(w http.ResponseWriter, r *http.Request) {
	product, err := h.catalog.GetProduct(r.Context(), helpers.ActorFromContext(r.Context()), pathVar(r, "id"), false)
	if err != nil {
		helpers.RenderError(h.render, w, r, err)
		return
	}
	_ = h.render.JSON(w, http.StatusOK, product)
}

func (h *ProductHandler) VariantChoices(w http.ResponseWriter, r *http.Request) {
	_ = h.render.JSON(w, http.StatusOK, h.variants.Choices())
}

func (h *ProductHandler) Categories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalog.ListCategories(r.Context(), false)
	if err != nil {
		helpers.RenderError(h.render, w, r, err)
		return
	}
	_ = h.render.JSON(w, http.StatusOK, nonNil(categories))
}

func (h *ProductHandler) Subcategories(w http.ResponseWriter, r *http.Request) {
	subs, err := h.catalog.ListSubcategories(r.Context(), r.URL.Query().Get("category"), false)
	if err != nil {
		helpers.RenderError(h.render, w, r, err)
		return
	}
	_ = h.render.JSON(w, http.StatusOK, nonNil(subs))
}

func (h *ProductHandler) Brands(w http.ResponseWriter, r *http.Request) {
	brands, err := h.catalog.ListBrands(r.Context(), false)
	if err != nil {
		helpers.RenderError(h.render, w, r, err)
		return
	}
	_ = h.render.JSON(w, http.StatusOK, nonNil(brands))
}

// nonNil keeps empty lists encoded as [] instead of null.
func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
