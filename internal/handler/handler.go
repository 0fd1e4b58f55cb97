package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"storefront/internal/middleware"
	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// retryAfterSeconds is sent with 503 responses.
const retryAfterSeconds = "1"

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log the error but don't expose it to the client
		return
	}
}

// writeError writes an error response with the given status code, code and message.
func writeError(w http.ResponseWriter, status int, code, message string, logger zerolog.Logger) {
	event := logger.Warn()
	if status >= http.StatusInternalServerError {
		event = logger.Error()
	}
	event.Str("error", code).Str("message", message).Int("status", status).Msg("handler error")
	writeJSON(w, status, model.ErrorResponse{Error: code, Message: message})
}

// writeDomainError maps err onto a status code and the standard error body.
func writeDomainError(w http.ResponseWriter, err error, logger zerolog.Logger) {
	var stockErr *model.InsufficientStockError
	if errors.As(err, &stockErr) {
		logger.Warn().Err(err).Int("status", http.StatusConflict).Msg("handler error")
		writeJSON(w, http.StatusConflict, model.ErrorResponse{
			Error:     model.ErrCodeInsufficientStock,
			Message:   err.Error(),
			Available: &stockErr.Available,
			Requested: &stockErr.Requested,
		})
		return
	}

	code := model.Code(err)
	status := statusFor(code)
	message := err.Error()

	switch status {
	case http.StatusServiceUnavailable:
		w.Header().Set("Retry-After", retryAfterSeconds)
		message = model.ErrStoreUnavailable.Message
	case http.StatusInternalServerError:
		message = "internal server error"
	}

	logger.Debug().Err(err).Msg("request failed")
	writeError(w, status, code, message, logger)
}

func statusFor(code string) int {
	switch code {
	case model.ErrCodeNotFound:
		return http.StatusNotFound
	case model.ErrCodeInsufficientStock,
		model.ErrCodeCannotCancel,
		model.ErrCodeInvalidTransition,
		model.ErrCodeProductInactive,
		model.ErrCodeInactiveParent,
		model.ErrCodeDuplicateName,
		model.ErrCodeProductInUse:
		return http.StatusConflict
	case model.ErrCodeInvalidQuantity,
		model.ErrCodeHierarchyMismatch,
		model.ErrCodeInvalidOrderDetails,
		model.ErrCodeMissingField,
		model.ErrCodeInvalidField,
		model.ErrCodeInvalidJSON:
		return http.StatusBadRequest
	case model.ErrCodeEmptyCart:
		return http.StatusUnprocessableEntity
	case model.ErrCodeOrderDeletionForbidden:
		return http.StatusForbidden
	case model.ErrCodeStoreUnavailable:
		return http.StatusServiceUnavailable
	case model.ErrCodeUnauthorised:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// decodeJSON decodes the request body into v, writing a 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}, logger zerolog.Logger) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", logger)
		return false
	}
	return true
}

// pathUUID parses the named path value as a uuid, writing a 400 on failure.
func pathUUID(w http.ResponseWriter, r *http.Request, name string, logger zerolog.Logger) (uuid.UUID, bool) {
	raw := r.PathValue(name)
	if raw == "" {
		writeError(w, http.StatusBadRequest, model.ErrCodeMissingField, name+" is required", logger)
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidField, "invalid "+name+" format", logger)
		return uuid.Nil, false
	}
	return id, true
}

// currentUser returns the id placed in the context by middleware.RequireUser.
func currentUser(w http.ResponseWriter, r *http.Request, logger zerolog.Logger) (uuid.UUID, bool) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, model.ErrCodeUnauthorised, "missing user id", logger)
		return uuid.Nil, false
	}
	return userID, true
}

// parsePage reads limit and offset query parameters. Missing values are
// left at zero for the service to default.
func parsePage(w http.ResponseWriter, r *http.Request, logger zerolog.Logger) (limit, offset int, ok bool) {
	if s := r.URL.Query().Get("limit"); s != "" {
		var err error
		if limit, err = strconv.Atoi(s); err != nil {
			writeError(w, http.StatusBadRequest, model.ErrCodeInvalidField, "invalid limit parameter", logger)
			return 0, 0, false
		}
	}
	if s := r.URL.Query().Get("offset"); s != "" {
		var err error
		if offset, err = strconv.Atoi(s); err != nil {
			writeError(w, http.StatusBadRequest, model.ErrCodeInvalidField, "invalid offset parameter", logger)
			return 0, 0, false
		}
	}
	return limit, offset, true
}
