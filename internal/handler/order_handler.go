package handler

import (
	"net/http"

	"storefront/internal/model"
	"storefront/internal/service"

	"github.com/rs/zerolog"
)

// OrderHandler handles order-related HTTP requests.
type OrderHandler struct {
	service service.OrderService
	logger  zerolog.Logger
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(service service.OrderService, logger zerolog.Logger) *OrderHandler {
	return &OrderHandler{
		service: service,
		logger:  logger.With().Str("handler", "order").Logger(),
	}
}

// Create handles POST /api/orders, converting the caller's cart into an order.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r, h.logger)
	if !ok {
		return
	}

	var req model.OrderRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	order, err := h.service.CreateFromCart(r.Context(), userID, &req)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, order)
}

// History handles GET /api/orders for the caller.
func (h *OrderHandler) History(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r, h.logger)
	if !ok {
		return
	}
	limit, offset, ok := parsePage(w, r, h.logger)
	if !ok {
		return
	}

	orders, err := h.service.GetUserOrderHistory(r.Context(), userID, limit, offset)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}
	if orders == nil {
		orders = []model.Order{}
	}

	writeJSON(w, http.StatusOK, orders)
}

// GetByID handles GET /api/orders/{id}.
func (h *OrderHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	order, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

// Transition handles POST /api/orders/{id}/transition.
func (h *OrderHandler) Transition(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	var req model.TransitionRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}
	if req.State == "" {
		writeError(w, http.StatusBadRequest, model.ErrCodeMissingField, "state is required", h.logger)
		return
	}

	order, err := h.service.Transition(r.Context(), id, req.State)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

// Cancel handles POST /api/orders/{id}/cancel.
func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	order, err := h.service.Cancel(r.Context(), id)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

// Delete handles DELETE /api/orders/{id}. Orders are never removed.
func (h *OrderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListByState handles GET /api/admin/orders?state=.
func (h *OrderHandler) ListByState(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("state")
	if raw == "" {
		writeError(w, http.StatusBadRequest, model.ErrCodeMissingField, "state is required", h.logger)
		return
	}
	state, valid := model.ParseOrderState(raw)
	if !valid {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidField, "unknown order state", h.logger)
		return
	}
	limit, offset, ok := parsePage(w, r, h.logger)
	if !ok {
		return
	}

	orders, err := h.service.GetOrdersByState(r.Context(), state, limit, offset)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}
	if orders == nil {
		orders = []model.Order{}
	}

	writeJSON(w, http.StatusOK, orders)
}
