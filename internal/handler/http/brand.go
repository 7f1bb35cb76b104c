package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/catalog/internal/domain"
	"github.com/utafrali/catalog/internal/service"
	"github.com/utafrali/catalog/pkg/httputil"
)

const (
	fieldBrandName  = "brandname"
	fieldBrandImage = "brandimage"
)

// BrandHandler handles HTTP requests for brand endpoints.
type BrandHandler struct {
	service *service.BrandService
	logger  *slog.Logger
}

// NewBrandHandler creates a new brand HTTP handler.
func NewBrandHandler(svc *service.BrandService, logger *slog.Logger) *BrandHandler {
	return &BrandHandler{
		service: svc,
		logger:  logger,
	}
}

// BrandCountResponse is the payload of the brand count endpoint.
type BrandCountResponse struct {
	Count int `json:"count"`
}

// CreateBrand handles POST /api/brands/createbrand (multipart/form-data).
func (h *BrandHandler) CreateBrand(w http.ResponseWriter, r *http.Request) {
	f, err := parseForm(w, r)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	image, err := f.file(fieldBrandImage)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	name := ""
	if v := f.value(fieldBrandName); v != nil {
		name = *v
	}

	brand, err := h.service.CreateBrand(r.Context(), name, image)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: brand})
}

// ListBrands handles GET /api/brands/getbrand
func (h *BrandHandler) ListBrands(w http.ResponseWriter, r *http.Request) {
	brands, err := h.service.ListBrands(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	if brands == nil {
		brands = []domain.Brand{}
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: brands})
}

// CountBrands handles GET /api/brands/getbrandcount
func (h *BrandHandler) CountBrands(w http.ResponseWriter, r *http.Request) {
	n, err := h.service.CountBrands(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: BrandCountResponse{Count: n}})
}

// UpdateBrand handles PUT /api/brands/updatebrands/{brandId}
// The logo is replaced only when a new brandimage file is sent.
func (h *BrandHandler) UpdateBrand(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.RequireParam(w, "brandId", chi.URLParam(r, "brandId"))
	if !ok {
		return
	}

	f, err := parseForm(w, r)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	image, err := f.file(fieldBrandImage)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	brand, err := h.service.UpdateBrand(r.Context(), id, f.value(fieldBrandName), image)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: brand})
}

// DeleteBrand handles DELETE /api/brands/deletebrands/{brandId}
func (h *BrandHandler) DeleteBrand(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.RequireParam(w, "brandId", chi.URLParam(r, "brandId"))
	if !ok {
		return
	}

	if err := h.service.DeleteBrand(r.Context(), id); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteMessage(w, http.StatusOK, "Brand deleted successfully")
}
