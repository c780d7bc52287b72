package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"

	"github.com/lushhair/storefront/internal/auth"
	"github.com/lushhair/storefront/internal/cart"
	"github.com/lushhair/storefront/internal/order"
)

type CheckoutShippingPayload struct {
	Street  string `json:"street" validate:"required"`
	Apt     string `json:"apt"`
	City    string `json:"city" validate:"required"`
	State   string `json:"state" validate:"required"`
	Zip     string `json:"zip" validate:"required"`
	Country string `json:"country" validate:"required"`
}

type CheckoutPaymentPayload struct {
	Method string `json:"method" validate:"required"`
	Last4  string `json:"last4"`
	Brand  string `json:"brand"`
	Email  string `json:"email" validate:"omitempty,email"`
}

type CheckoutRequest struct {
	Shipping CheckoutShippingPayload `json:"shipping" validate:"required"`
	Payment  CheckoutPaymentPayload  `json:"payment" validate:"required"`
	Coupon   string                  `json:"coupon"`
}

type UpdateOrderRequest struct {
	Status          *string `json:"status,omitempty"`
	TrackingCarrier *string `json:"tracking_carrier,omitempty"`
	TrackingNumber  *string `json:"tracking_number,omitempty"`
	TrackingURL     *string `json:"tracking_url,omitempty"`
	Notes           *string `json:"notes,omitempty"`
}

type OrderListResponse struct {
	Orders     []order.Order `json:"orders"`
	Pagination Pagination    `json:"pagination"`
}

type OrderHandler struct {
	orders   order.Service
	carts    cart.Service
	validate *validator.Validate
}

func NewOrderHandler(orders order.Service, carts cart.Service) *OrderHandler {
	return &OrderHandler{orders: orders, carts: carts, validate: validator.New()}
}

func (h *OrderHandler) RegisterRoutes(router chi.Router) {
	router.Post("/checkout", h.handleCheckout)
	router.Get("/orders", h.handleListOwnOrders)
	router.Get("/orders/{id}", h.handleGetOrder)
}

func (h *OrderHandler) RegisterAdminRoutes(router chi.Router) {
	router.Get("/orders", h.handleListAllOrders)
	router.Get("/orders/{id}", h.handleGetOrder)
	router.Put("/orders/{id}", h.handleUpdateOrder)
}

// handleCheckout turns the session's cart into a PENDING order and clears
// the cart afterwards. Clearing is the caller's job, not the aggregate's.
func (h *OrderHandler) handleCheckout(w http.ResponseWriter, r *http.Request) {
	u := auth.UserFromContext(r.Context())

	var requestPayload CheckoutRequest
	if !decodeAndValidate(w, r, h.validate, &requestPayload) {
		return
	}

	cookie, err := r.Cookie(cartCookieName)
	if err != nil || cookie.Value == "" {
		respondWithError(w, http.StatusBadRequest, "Cart is empty")
		return
	}
	cartID := cookie.Value

	c, err := h.carts.Get(cartID)
	if err != nil {
		log.Error().Err(err).Msg("Failed to load cart for checkout")
		respondWithError(w, http.StatusInternalServerError, "Failed to load cart")
		return
	}

	created, err := h.orders.Checkout(r.Context(), order.CheckoutInput{
		UserID: u.ID,
		Cart:   c,
		Coupon: requestPayload.Coupon,
		Shipping: order.ShippingAddress{
			Street:  requestPayload.Shipping.Street,
			Apt:     requestPayload.Shipping.Apt,
			City:    requestPayload.Shipping.City,
			State:   requestPayload.Shipping.State,
			Zip:     requestPayload.Shipping.Zip,
			Country: requestPayload.Shipping.Country,
		},
		Payment: order.PaymentInfo{
			Method: requestPayload.Payment.Method,
			Last4:  requestPayload.Payment.Last4,
			Brand:  requestPayload.Payment.Brand,
			Email:  requestPayload.Payment.Email,
		},
	})
	if err != nil {
		log.Warn().Err(err).Stringer("user_id", u.ID).Msg("Checkout failed")
		respondWithMappedError(w, err, "Failed to create order")
		return
	}

	if err := h.carts.Clear(cartID); err != nil {
		log.Warn().Err(err).Str("cart_id", cartID).Msg("Failed to clear cart after checkout")
	}

	respondWithJSON(w, http.StatusCreated, created)
}

func (h *OrderHandler) handleListOwnOrders(w http.ResponseWriter, r *http.Request) {
	u := auth.UserFromContext(r.Context())

	opts := order.ListOptions{
		UserID: u.ID,
		Page:   queryInt(r, "page", 1),
		Limit:  queryInt(r, "limit", 10),
	}

	orders, total, err := h.orders.ListOrders(r.Context(), opts)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list orders")
		respondWithMappedError(w, err, "Failed to list orders")
		return
	}

	respondWithJSON(w, http.StatusOK, OrderListResponse{
		Orders:     orders,
		Pagination: newPagination(total, opts.Page, opts.Limit),
	})
}

func (h *OrderHandler) handleListAllOrders(w http.ResponseWriter, r *http.Request) {
	opts := order.ListOptions{
		Sort:  r.URL.Query().Get("sort"),
		Order: r.URL.Query().Get("order"),
		Page:  queryInt(r, "page", 1),
		Limit: queryInt(r, "limit", 10),
	}
	if raw := r.URL.Query().Get("status"); raw != "" {
		status, err := order.ParseStatus(raw)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid order status")
			return
		}
		opts.Status = status
	}

	orders, total, err := h.orders.ListOrders(r.Context(), opts)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list orders")
		respondWithMappedError(w, err, "Failed to list orders")
		return
	}

	respondWithJSON(w, http.StatusOK, OrderListResponse{
		Orders:     orders,
		Pagination: newPagination(total, opts.Page, opts.Limit),
	})
}

func (h *OrderHandler) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	u := auth.UserFromContext(r.Context())

	orderID, err := uuid.FromString(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid id parameter")
		return
	}

	o, err := h.orders.GetOrder(r.Context(), orderID, u.ID, u.IsAdmin())
	if err != nil {
		respondWithMappedError(w, err, "Failed to get order")
		return
	}
	respondWithJSON(w, http.StatusOK, o)
}

func (h *OrderHandler) handleUpdateOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.FromString(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid id parameter")
		return
	}

	var requestPayload UpdateOrderRequest
	if !decodeAndValidate(w, r, h.validate, &requestPayload) {
		return
	}

	updated, err := h.orders.UpdateOrder(r.Context(), orderID, order.UpdateInput{
		Status:          requestPayload.Status,
		TrackingCarrier: requestPayload.TrackingCarrier,
		TrackingNumber:  requestPayload.TrackingNumber,
		TrackingURL:     requestPayload.TrackingURL,
		Notes:           requestPayload.Notes,
	})
	if err != nil {
		log.Warn().Err(err).Stringer("order_id", orderID).Msg("Failed to update order")
		respondWithMappedError(w, err, "Failed to update order")
		return
	}

	respondWithJSON(w, http.StatusOK, updated)
}
