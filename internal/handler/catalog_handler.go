package handler

import (
	"net/http"
	"strconv"

	"storefront/internal/model"
	"storefront/internal/service"

	"github.com/rs/zerolog"
)

// CatalogHandler handles category, subcategory and product requests.
type CatalogHandler struct {
	service service.CatalogService
	logger  zerolog.Logger
}

// NewCatalogHandler creates a new catalog handler.
func NewCatalogHandler(service service.CatalogService, logger zerolog.Logger) *CatalogHandler {
	return &CatalogHandler{
		service: service,
		logger:  logger.With().Str("handler", "catalog").Logger(),
	}
}

// CreateCategory handles POST /api/admin/categories.
func (h *CatalogHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req model.CreateCategoryRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	category, err := h.service.CreateCategory(r.Context(), &req)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, category)
}

// UpdateCategory handles PUT /api/admin/categories/{id}.
func (h *CatalogHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	var req model.UpdateCategoryRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	category, err := h.service.UpdateCategory(r.Context(), id, &req)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, category)
}

// CreateSubcategory handles POST /api/admin/categories/{id}/subcategories.
func (h *CatalogHandler) CreateSubcategory(w http.ResponseWriter, r *http.Request) {
	categoryID, ok := pathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	var req model.CreateSubcategoryRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}
	req.CategoryID = categoryID

	subcategory, err := h.service.CreateSubcategory(r.Context(), &req)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, subcategory)
}

// CreateProduct handles POST /api/admin/products.
func (h *CatalogHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req model.CreateProductRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	product, err := h.service.CreateProduct(r.Context(), &req)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, product)
}

// SetCategoryActive handles PATCH /api/admin/categories/{id}/active.
func (h *CatalogHandler) SetCategoryActive(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}
	active, ok := h.decodeActive(w, r)
	if !ok {
		return
	}

	result, err := h.service.SetCategoryActive(r.Context(), id, active)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// SetSubcategoryActive handles PATCH /api/admin/subcategories/{id}/active.
func (h *CatalogHandler) SetSubcategoryActive(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}
	active, ok := h.decodeActive(w, r)
	if !ok {
		return
	}

	result, err := h.service.SetSubcategoryActive(r.Context(), id, active)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// SetProductActive handles PATCH /api/admin/products/{id}/active.
func (h *CatalogHandler) SetProductActive(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}
	active, ok := h.decodeActive(w, r)
	if !ok {
		return
	}

	product, err := h.service.SetProductActive(r.Context(), id, active)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, product)
}

func (h *CatalogHandler) decodeActive(w http.ResponseWriter, r *http.Request) (bool, bool) {
	var req model.SetActiveRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return false, false
	}
	if req.Active == nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeMissingField, "active is required", h.logger)
		return false, false
	}
	return *req.Active, true
}

// CategoryCounts handles GET /api/admin/categories/{id}/counts.
func (h *CatalogHandler) CategoryCounts(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	if _, err := h.service.GetCategory(r.Context(), id); err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	subcategories, err := h.service.CountSubcategories(r.Context(), id)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}
	products, err := h.service.CountCategoryProducts(r.Context(), id)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, model.HierarchyCounts{Subcategories: subcategories, Products: products})
}

// SubcategoryCounts handles GET /api/admin/subcategories/{id}/counts.
func (h *CatalogHandler) SubcategoryCounts(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	if _, err := h.service.GetSubcategory(r.Context(), id); err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	products, err := h.service.CountSubcategoryProducts(r.Context(), id)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, model.HierarchyCounts{Products: products})
}

// UpdateProductPrice handles PATCH /api/admin/products/{id}/price.
func (h *CatalogHandler) UpdateProductPrice(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	var req model.UpdatePriceRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}
	if req.Price == nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeMissingField, "price is required", h.logger)
		return
	}

	product, err := h.service.UpdateProductPrice(r.Context(), id, *req.Price)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, product)
}

// DeleteProduct handles DELETE /api/admin/products/{id}.
func (h *CatalogHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	if err := h.service.DeleteProduct(r.Context(), id); err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DeleteCategory handles DELETE /api/admin/categories/{id}.
func (h *CatalogHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	if err := h.service.DeleteCategory(r.Context(), id); err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListCategories handles GET /api/categories. Pass ?all=true to include
// inactive categories.
func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	activeOnly := true
	if s := r.URL.Query().Get("all"); s != "" {
		all, err := strconv.ParseBool(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, model.ErrCodeInvalidField, "invalid all parameter", h.logger)
			return
		}
		activeOnly = !all
	}

	categories, err := h.service.ListCategories(r.Context(), activeOnly)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, categories)
}

// GetProduct handles GET /api/products/{id}.
func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	product, err := h.service.GetProduct(r.Context(), id)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, product)
}
