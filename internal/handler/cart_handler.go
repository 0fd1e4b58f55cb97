package handler

import (
	"net/http"

	"storefront/internal/model"
	"storefront/internal/service"

	"github.com/rs/zerolog"
)

// CartHandler handles cart requests for the user in X-User-ID.
type CartHandler struct {
	service service.CartService
	logger  zerolog.Logger
}

// NewCartHandler creates a new cart handler.
func NewCartHandler(service service.CartService, logger zerolog.Logger) *CartHandler {
	return &CartHandler{
		service: service,
		logger:  logger.With().Str("handler", "cart").Logger(),
	}
}

// Get handles GET /api/cart.
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r, h.logger)
	if !ok {
		return
	}

	lines, err := h.service.Lines(r.Context(), userID)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}
	if lines == nil {
		lines = []model.CartLine{}
	}

	writeJSON(w, http.StatusOK, model.CartResponse{
		UserID: userID,
		Lines:  lines,
		Total:  model.CartTotal(lines),
	})
}

// PutItem handles PUT /api/cart/items/{productId}. The body carries the
// absolute quantity wanted for the line.
func (h *CartHandler) PutItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r, h.logger)
	if !ok {
		return
	}
	productID, ok := pathUUID(w, r, "productId", h.logger)
	if !ok {
		return
	}

	var req model.CartItemRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	line, err := h.service.AddOrUpdate(r.Context(), userID, productID, req.Quantity)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, line)
}

// RemoveItem handles DELETE /api/cart/items/{productId}.
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r, h.logger)
	if !ok {
		return
	}
	productID, ok := pathUUID(w, r, "productId", h.logger)
	if !ok {
		return
	}

	if err := h.service.Remove(r.Context(), userID, productID); err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Clear handles DELETE /api/cart.
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r, h.logger)
	if !ok {
		return
	}

	if err := h.service.Clear(r.Context(), userID); err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Total handles GET /api/cart/total.
func (h *CartHandler) Total(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r, h.logger)
	if !ok {
		return
	}

	total, err := h.service.Total(r.Context(), userID)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, model.CartTotalResponse{UserID: userID, Total: total})
}
