package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/catalog/internal/domain"
	"github.com/utafrali/catalog/internal/service"
	"github.com/utafrali/catalog/pkg/httputil"
	"github.com/utafrali/catalog/pkg/pagination"
)

// Multipart field names of the product forms.
const (
	fieldImages        = "images"
	fieldThumbnail     = "productthumbnailimage"
	fieldSpecs         = "specifications"
	fieldRemovedImages = "removedImages"
)

// ProductHandler handles HTTP requests for product endpoints.
type ProductHandler struct {
	service *service.ProductService
	query   *service.QueryEngine
	logger  *slog.Logger
}

// NewProductHandler creates a new product HTTP handler.
func NewProductHandler(svc *service.ProductService, query *service.QueryEngine, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{
		service: svc,
		query:   query,
		logger:  logger,
	}
}

// productInput reads the writable product fields of a form. Fields that are
// not sent stay nil.
func productInput(f *form) (service.ProductInput, error) {
	in := service.ProductInput{
		CategoryName:          f.value("categoryName"),
		SubCategoryName:       f.value("subCategoryName"),
		SubSubCategoryName:    f.value("subSubCategoryName"),
		Level3SubCategoryName: f.value("level3subCategoryName"),
		Level4SubCategoryName: f.value("level4subCategoryName"),
		Title:                 f.value("title"),
		Brand:                 f.value("brand"),
		BrandImage:            f.value("brandimage"),
		ModelNumber:           f.value("modelNumber"),
		Price:                 f.value("price"),
		Discount:              f.value("discount"),
		OfferPrice:            f.value("offerPrice"),
		InStockAvailable:      f.value("inStockAvailable"),
		SoldOutStock:          f.value("soldOutStock"),
		FullTitleDescription:  f.value("fullTitleDescription"),
		FullDescription:       f.value("fullDescription"),
	}

	var err error
	if in.Active, err = f.boolean("active"); err != nil {
		return in, err
	}
	if in.IsDraft, err = f.boolean("isdraft"); err != nil {
		return in, err
	}

	var specs []domain.Specification
	ok, err := f.jsonValue(fieldSpecs, &specs)
	if err != nil {
		return in, err
	}
	if ok {
		in.Specifications = &specs
	}
	return in, nil
}

// --- Handlers ---

// CreateProduct handles POST /api/products/add (multipart/form-data).
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	f, err := parseForm(w, r)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	fields, err := productInput(f)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	images, err := f.files(fieldImages)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	thumbnail, err := f.file(fieldThumbnail)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	product, err := h.service.CreateProduct(r.Context(), &service.CreateProductInput{
		ProductInput: fields,
		Images:       images,
		Thumbnail:    thumbnail,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: product})
}

// UpdateProduct handles PUT /api/products/update/{id} (multipart/form-data).
// removedImages is a JSON array of image URLs to drop; new files under
// images are appended.
func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.RequireParam(w, "id", chi.URLParam(r, "id"))
	if !ok {
		return
	}

	f, err := parseForm(w, r)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	fields, err := productInput(f)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	var removed []string
	if _, err := f.jsonValue(fieldRemovedImages, &removed); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	images, err := f.files(fieldImages)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	thumbnail, err := f.file(fieldThumbnail)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	product, err := h.service.UpdateProduct(r.Context(), id, &service.UpdateProductInput{
		ProductInput:  fields,
		RemovedImages: removed,
		NewImages:     images,
		Thumbnail:     thumbnail,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: product})
}

// DeleteProduct handles DELETE /api/products/delete/{id}
func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.RequireParam(w, "id", chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if err := h.service.DeleteProduct(r.Context(), id); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteMessage(w, http.StatusOK, "Product deleted successfully")
}

// GetProduct handles GET /api/products/{id}
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.RequireParam(w, "id", chi.URLParam(r, "id"))
	if !ok {
		return
	}

	product, err := h.service.GetProduct(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: product})
}

// ToggleActive handles PUT /api/products/toggle-active/{id}
func (h *ProductHandler) ToggleActive(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.RequireParam(w, "id", chi.URLParam(r, "id"))
	if !ok {
		return
	}

	product, err := h.service.ToggleActive(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: product})
}

// ListProducts handles GET /api/products/all
// Supports page, limit, categoryName, subCategoryName, subSubCategoryName,
// brand, isdraft and active. An empty page is not an error.
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	params, err := pagination.FromRequest(r)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	q := r.URL.Query()
	optional := func(name string) *string {
		if !q.Has(name) {
			return nil
		}
		v := q.Get(name)
		return &v
	}

	page, err := h.query.List(r.Context(), service.ProductQuery{
		CategoryName:       optional("categoryName"),
		SubCategoryName:    optional("subCategoryName"),
		SubSubCategoryName: optional("subSubCategoryName"),
		Brand:              optional("brand"),
		IsDraft:            optional("isdraft"),
		Active:             optional("active"),
	}, params)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: page})
}

// ListByCategory handles
//
//	GET /api/products/category/{categoryName}
//	GET /api/products/category/{categoryName}/subcategory/{subCategoryName}
//	GET /api/products/category/{categoryName}/subcategory/{subCategoryName}/subsubcategory/{subSubCategoryName}
func (h *ProductHandler) ListByCategory(w http.ResponseWriter, r *http.Request) {
	params, err := pagination.FromRequest(r)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	page, err := h.query.ByCategory(r.Context(), service.CategoryScope{
		Category: chi.URLParam(r, "categoryName"),
		Sub:      chi.URLParam(r, "subCategoryName"),
		SubSub:   chi.URLParam(r, "subSubCategoryName"),
	}, params)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: page})
}

// ListByBrand handles GET /api/products/brand/{brand}
func (h *ProductHandler) ListByBrand(w http.ResponseWriter, r *http.Request) {
	brand, ok := httputil.RequireParam(w, "brand", chi.URLParam(r, "brand"))
	if !ok {
		return
	}
	params, err := pagination.FromRequest(r)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	page, err := h.query.ByBrand(r.Context(), brand, params)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: page})
}
