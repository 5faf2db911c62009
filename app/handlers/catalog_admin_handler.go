package handlers

import (
	"net/http"

	"github.com/modaltela/modal-tela-api/app/apperrors"
	"github.com/modaltela/modal-tela-api/app/helpers"
	"github.com/modaltela/modal-tela-api/app/models"
	"github.com/modaltela/modal-tela-api/app/services"
	"github.com/unrolled/render"
)

const maxImageUploadBytes = 10 << 20

// CatalogAdminHandler serves the staff catalog endpoints.
type CatalogAdminHandler struct {
	render   *render.Render
	catalog  *services.CatalogService
	images   *services.ImageService
	variants *services.VariantService
	paging   Paging
}

func NewCatalogAdminHandler(r *render.Render, catalog *services.CatalogService, images *services.ImageService, variants *services.VariantService, paging Paging) *CatalogAdminHandler {
	return &CatalogAdminHandler{render: r, catalog: catalog, images: images, variants: variants, paging: paging}
}

// Products

func (h *CatalogAdminHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	page := h.paging.parse(r)
	filter := productFilter(r, page)
	filter.Active = queryBool(r, "is_active")
	products, total, err := h.catalog.ListProducts(r.Context(), helpers.ActorFromContext(r.Context()), true, filter)
	if err != nil {
		helpers.RenderError(h.render, w, r, err)
		return
	}
	_ = h.render.JSON(w, http.StatusOK, helpers.NewPage[models.Product](products, total, page))
}

func (h *CatalogAdminHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var in services.ProductInput
	if err := helpers.DecodeJSON(r, &in); err != nil {
		helpers.RenderError(h.render, w, r, err)
		return
	}
	product, err := h.catalog.CreateProduct(r.Context(), helpers.ActorFromContext(r.Context()), in)
	if err != nil {
		helpers.RenderError(h.render, w, r, err)
		return
	}
	_ = h.render.JSON(w, http.StatusCreated, product)
}

func (h *CatalogAdminHandler) ProductDetail(w http.ResponseWriter, r *http.Request) {
	product, err := h.catalog.GetProduct(r.Context(), helpers.ActorFromContext(r.Context()), pathVar(r, "id"), true)
	if err != nil {
		helpers.RenderError(h.render, w, r, err)
		return
	}
	_ = h.render.JSON(w, http.StatusOK, product)
}

func (h *CatalogAdminHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	var in services.ProductInput
	if err := helpers.DecodeJSON(r, &in); err != nil {
		helpers.RenderError(h.render, w, r, err)
		return
	}
	product, err := h.catalog.UpdateProduct(r.Context(), helpers.ActorFromContext(r.Context()), pathVar(r, "id"), in)
	if err != nil {
		helpers.RenderError(h.render, w, r, err)
		return
	}
	_ = h.render.JSON(w, http.StatusOK, product)
}

func (h *CatalogAdminHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.DeleteProduct(r.Context(), helpers.ActorFromContext(r.Context()), pathVar(r, "id")); err != nil {
		helpers.RenderError(h.render, w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Images

// UploadImage expects multipart/form-data with an "image" file and optional
// "alt_text" and "is_main" fields.
func (h *CatalogAdminHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImageUploadBytes)
	if err := r.ParseMultipartForm(maxImageUploadBytes); err != nil {
		helpers.RenderError(h.render, w, r, apperrors.ValidationField("image", "a multipart image upload is required"))
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		helpers.RenderError(h.render, w, r, apperrors.ValidationField("image", "this field is required"))
		return
	}
	defer file.Close()

	image, err := h.images.Upload(r.Context(), helpers.ActorFromContext(r.Context()), pathVar(r, "id"), services.ImageUpload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Body:        file,
		AltText:     r.FormValue("alt_text"),
		IsMain:      r.FormValue("is_main") == "true",
	})
	if err != nil {
		helpers.RenderError(h.render, w, r, err)
		return
	}
	_ = h.render.JSON(w, http.StatusCreated, image)
}

func (h *CatalogAdminHandler) SetMainImage(w http.ResponseWriter, r *http.Request) {
	image, err := h.images.SetMain(r.Context(), helpers.ActorFromContext(r.Context()), pathVar(r, "id"), pathVar(r, "imageId"))
	if err != nil {
		helpers.RenderError(h.render, w, r, err)
		return
	}
	_ = h.render.JSON(w, http.StatusOK, image)
}

func (h *CatalogAdminHandler) DeleteImage(w http.ResponseWriter, r *http.Request) {
	if err := h.images.Delete(r.Context(), helpers.ActorFromContext(r.Context()), pathVar(r, "id"), pathVar(r, "imageId")); err != nil {
		helpers.RenderError(h.render, w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Variants

func (h *CatalogAdminHandler) ListVariants(w http.ResponseWriter, r *http.Request) {
	variants, err := h.variants.List(r.Context(), helpers.ActorFromContext(r.Context()), pathVar(r, "id"))
	if err != nil {
		helpers.RenderError(h.render, w, r, err)
		return
	}
	_ = h.render.JSON(w, http.StatusOK, nonNil(variants))
}

func (h *CatalogAdminHandler) CreateVariant(w http.ResponseWriter, r *http.Request) {
	var in services.VariantInput
	if err := helpers.DecodeJSON(r, &in); err != nil {
		helpers.RenderError(h.render, w, r, err)
		return
	}
	variant, err := h.variants.Create(r.Context(), helpers.ActorFromContext(r.Context()), pathVar(r, "id"), in)
	if err != nil {
		helpers.RenderError(h.render, w, r, err)
		return
	}
	_ = h.render.JSON(w, http.StatusCreated, variant)
}

func (h *CatalogAdminHandler) UpdateVariant(w http.ResponseWriter, r *http.Request) {
	var in services.VariantInput
	if err := helpers.DecodeJSON(r, &in); err != nil {
		helpers.RenderError(h.render, w, r, err)
		return
	}
	variant, err := h.variants.Update(r.Context(), helpers.ActorFromContext(r.Context()), pathVar(r, "variantId"), in)
	if err != nil {
		helpers.RenderError(h.render, w, r, err)
		return
	}
	_ = h.render.JSON(w, http.StatusOK, variant)
}

func (h *CatalogAdminHandler) DeleteVariant(w http.ResponseWriter, r *http.Request) {
	if err := h.variants.Delete(r.Context(), helpers.ActorFromContext(r.Context()), pathVar(r, "variantId")); err != nil {
		helpers.RenderError(h.render, w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Categories

func (h *CatalogAdminHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalog.ListCategories(r.Context(), true)
	if err != nil {
		helpers.RenderError(h.render, w, r, err)
		return
	}
	_ = h.render.JSON(w, http.StatusOK, nonNil(categories))
}

func (h *CatalogAdminHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var in services.CategoryInput
	if err := helpers.DecodeJSON(r, &in); err != nil {
		helpers.RenderError(h.render, w, r, err)
		return
	}
	category, err := h.catalog.CreateCategory(r.Context(), helpers.ActorFromContext(r.Context()), in)
	if err != nil {
		helpers.RenderError(h.render, w, r, err)
		return
	}
	_ = h.render.JSON(w, http.StatusCreated, category)
}

func (h *CatalogAdminHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	var in services.CategoryInput
	if err := helpers.DecodeJSON(r, &in); err != nil {
		helpers.RenderError(h.render, w, r, err)
		return
	}
	category, err := h.catalog.UpdateCategory(r.Context(), helpers.ActorFromContext(r.Context()), pathVar(r, "id"), in)
	if err != nil {
		helpers.RenderError(h.render, w, r, err)
		return
	}
	_ = h.render.JSON(w, http.StatusOK, category)
}

func (h *CatalogAdminHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.DeleteCategory(r.Context(), helpers.ActorFromContext(r.Context()), pathVar(r, "id")); err != nil {
		helpers.RenderError(h.render, w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Subcategories

func (h *CatalogAdminHandler) ListSubcategories(w http.ResponseWriter, r *http.Request) {
	subs, err := h.catalog.ListSubcategories(r.Context(), r.URL.Query().Get("category"), true)
	if err != nil {
		helpers.RenderError(h.render, w, r, err)
		return
	}
	_ = h.render.JSON(w, http.StatusOK, nonNil(subs))
}

func (h *CatalogAdminHandler) CreateSubcategory(w http.ResponseWriter, r *http.Request) {
	var in services.SubcategoryInput
	if err := helpers.DecodeJSON(r, &in); err != nil {
		helpers.RenderError(h.render, w, r, err)
		return
	}
	sub, err := h.catalog.CreateSubcategory(r.Context(), helpers.ActorFromContext(r.Context()), in)
	if err != nil {
		helpers.RenderError(h.render, w, r, err)
		return
	}
	_ = h.render.JSON(w, http.StatusCreated, sub)
}

func (h *CatalogAdminHandler) UpdateSubcategory(w http.ResponseWriter, r *http.Request) {
	var in services.SubcategoryInput
	if err := helpers.DecodeJSON(r, &in); err != nil {
		helpers.RenderError(h.render, w, r, err)
		return
	}
	sub, err := h.catalog.UpdateSubcategory(r.Context(), helpers.ActorFromContext(r.Context()), pathVar(r, "id"), in)
	if err != nil {
		helpers.RenderError(h.render, w, r, err)
		return
	}
	_ = h.render.JSON(w, http.StatusOK, sub)
}

func (h *CatalogAdminHandler) DeleteSubcategory(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.DeleteSubcategory(r.Context(), helpers.ActorFromContext(r.Context()), pathVar(r, "id")); err != nil {
		helpers.RenderError(h.render, w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Brands

func (h *CatalogAdminHandler) ListBrands(w http.ResponseWriter, r *http.Request) {
	brands, err := h.catalog.ListBrands(r.Context(), true)
	if err != nil {
		helpers.RenderError(h.render, w, r, err)
		return
	}
	_ = h.render.JSON(w, http.StatusOK, nonNil(brands))
}

func (h *CatalogAdminHandler) CreateBrand(w http.ResponseWriter, r *http.Request) {
	var in services.BrandInput
	if err := helpers.DecodeJSON(r, &in); err != nil {
		helpers.RenderError(h.render, w, r, err)
		return
	}
	brand, err := h.catalog.CreateBrand(r.Context(), helpers.ActorFromContext(r.Context()), in)
	if err != nil {
		helpers.RenderError(h.render, w, r, err)
		return
	}
	_ = h.render.JSON(w, http.StatusCreated, brand)
}

func (h *CatalogAdminHandler) UpdateBrand(w http.ResponseWriter, r *http.Request) {
	var in services.BrandInput
	if err := helpers.DecodeJSON(r, &in); err != nil {
		helpers.RenderError(h.render, w, r, err)
		return
	}
	brand, err := h.catalog.UpdateBrand(r.Context(), helpers.ActorFromContext(r.Context()), pathVar(r, "id"), in)
	if err != nil {
		helpers.RenderError(h.render, w, r, err)
		return
	}
	_ = h.render.JSON(w, http.StatusOK, brand)
}

func (h *CatalogAdminHandler) DeleteBrand(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.DeleteBrand(r.Context(), helpers.ActorFromContext(r.Context()), pathVar(r, "id")); err != nil {
		helpers.RenderError(h.render, w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
