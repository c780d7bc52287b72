package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/lushhair/storefront/internal/auth"
	"github.com/lushhair/storefront/internal/cart"
	"github.com/lushhair/storefront/internal/catalog"
	"github.com/lushhair/storefront/internal/order"
	"github.com/lushhair/storefront/internal/user"
)

// Pagination is the envelope attached to every list response.
type Pagination struct {
	Total int `json:"total"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Pages int `json:"pages"`
}

func newPagination(total, page, limit int) Pagination {
	return Pagination{
		Total: total,
		Page:  page,
		Limit: limit,
		Pages: int(math.Ceil(float64(total) / float64(limit))),
	}
}

type ValidationErrorResponse struct {
	Error   string            `json:"error"`
	Details map[string]string `json:"details"`
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"Failed to marshal JSON response"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := w.Write(response); err != nil {
		log.Error().Err(err).Msg("Failed to write JSON response")
	}
}

func formatValidationErrors(errs validator.ValidationErrors) map[string]string {
	details := make(map[string]string, len(errs))
	for _, fieldErr := range errs {
		details[fieldErr.Field()] = fmt.Sprintf("failed on the '%s' rule", fieldErr.Tag())
	}
	return details
}

// decodeAndValidate decodes a JSON body into payload and runs struct
// validation, writing the 400 response itself on failure.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, validate *validator.Validate, payload interface{}) bool {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(payload); err != nil {
		log.Warn().Err(err).Msg("Failed to decode request body")
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return false
	}

	if err := validate.Struct(payload); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			respondWithJSON(w, http.StatusBadRequest, ValidationErrorResponse{
				Error:   "Validation failed",
				Details: formatValidationErrors(validationErrors),
			})
		} else {
			log.Error().Err(err).Msg("Unexpected error type during validation")
			respondWithError(w, http.StatusInternalServerError, "Internal validation error")
		}
		return false
	}

	return true
}

func mapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, order.ErrOrderNotFound),
		errors.Is(err, catalog.ErrProductNotFound),
		errors.Is(err, user.ErrNotFound),
		errors.Is(err, cart.ErrLineNotFound):
		return http.StatusNotFound
	case errors.Is(err, order.ErrEmptyCart),
		errors.Is(err, order.ErrAddressIncomplete),
		errors.Is(err, order.ErrInvalidStatus),
		errors.Is(err, order.ErrInvalidTransition),
		errors.Is(err, order.ErrTrackingNotAllowed),
		errors.Is(err, cart.ErrInvalidQuantity),
		errors.Is(err, catalog.ErrInvalidProduct),
		errors.Is(err, user.ErrInvalidRole):
		return http.StatusBadRequest
	case errors.Is(err, user.ErrEmailExists),
		errors.Is(err, user.ErrHasOrders),
		errors.Is(err, catalog.ErrProductOrdered):
		return http.StatusConflict
	case errors.Is(err, user.ErrInvalidCredentials),
		errors.Is(err, auth.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, order.ErrForbidden):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// respondWithMappedError hides internal detail behind a generic message
// while typed failures keep their own text.
func respondWithMappedError(w http.ResponseWriter, err error, fallback string) {
	code := mapErrorToStatusCode(err)
	message := fallback
	if code != http.StatusInternalServerError {
		message = clientMessage(err)
	}
	respondWithError(w, code, message)
}

func clientMessage(err error) string {
	switch {
	case errors.Is(err, order.ErrOrderNotFound):
		return "Order not found"
	case errors.Is(err, catalog.ErrProductNotFound):
		return "Product not found"
	case errors.Is(err, user.ErrNotFound):
		return "User not found"
	case errors.Is(err, cart.ErrLineNotFound):
		return "Cart item not found"
	case errors.Is(err, order.ErrEmptyCart):
		return "Cart is empty"
	case errors.Is(err, order.ErrAddressIncomplete):
		return "Shipping address is incomplete"
	case errors.Is(err, order.ErrInvalidStatus):
		return "Invalid order status"
	case errors.Is(err, order.ErrInvalidTransition):
		return "Invalid order status transition"
	case errors.Is(err, order.ErrTrackingNotAllowed):
		return "Tracking can only be set on shipped orders"
	case errors.Is(err, cart.ErrInvalidQuantity):
		return "Quantity must be at least 1"
	case errors.Is(err, catalog.ErrInvalidProduct):
		return "Invalid product data"
	case errors.Is(err, user.ErrInvalidRole):
		return "Invalid role"
	case errors.Is(err, user.ErrEmailExists):
		return "Email already exists"
	case errors.Is(err, user.ErrHasOrders):
		return "Cannot delete user with existing orders"
	case errors.Is(err, catalog.ErrProductOrdered):
		return "Cannot delete product that has been ordered"
	case errors.Is(err, user.ErrInvalidCredentials):
		return "Invalid email or password"
	case errors.Is(err, auth.ErrUnauthenticated):
		return "Unauthorized"
	case errors.Is(err, order.ErrForbidden):
		return "Forbidden"
	default:
		return "Internal server error"
	}
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return fallback
	}
	return v
}
