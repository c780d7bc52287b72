package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"

	"github.com/lushhair/storefront/internal/cart"
)

// cartCookieName identifies the browsing session's cart. The cookie holds
// an opaque id, never cart contents.
const cartCookieName = "cart_id"

const cartCookieTTL = 30 * 24 * time.Hour

type AddCartItemRequest struct {
	ProductID   string  `json:"product_id" validate:"required,uuid4"`
	ProductName string  `json:"product_name" validate:"required"`
	Price       float64 `json:"price" validate:"required,gt=0"`
	Quantity    int     `json:"quantity" validate:"required,min=1"`
	Color       string  `json:"color"`
	Length      string  `json:"length"`
}

type UpdateCartItemRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid4"`
	Color     string `json:"color"`
	Length    string `json:"length"`
	Quantity  int    `json:"quantity" validate:"required"`
}

type RemoveCartItemRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid4"`
	Color     string `json:"color"`
	Length    string `json:"length"`
}

type CartResponse struct {
	Lines []cart.Line `json:"lines"`
	Quote cart.Quote  `json:"quote"`
}

type CartHandler struct {
	carts    cart.Service
	validate *validator.Validate
	secure   bool
	newID    func() (uuid.UUID, error)
}

func NewCartHandler(carts cart.Service, secureCookies bool) *CartHandler {
	return &CartHandler{
		carts:    carts,
		validate: validator.New(),
		secure:   secureCookies,
		newID:    uuid.NewV4,
	}
}

func (h *CartHandler) RegisterRoutes(router chi.Router) {
	router.Get("/cart", h.handleGetCart)
	router.Get("/cart/quote", h.handleQuote)
	router.Get("/cart/items", h.handleGetCart)
	router.Post("/cart/items", h.handleAddItem)
	router.Put("/cart/items", h.handleUpdateItem)
	router.Delete("/cart/items", h.handleRemoveItem)
	router.Post("/cart/clear", h.handleClear)
}

// cartID returns the session's cart id, minting a cookie when absent. A
// generation failure must not hand out an empty id: every such session
// would end up sharing one cart row.
func (h *CartHandler) cartID(w http.ResponseWriter, r *http.Request) (string, error) {
	if cookie, err := r.Cookie(cartCookieName); err == nil && cookie.Value != "" {
		return cookie.Value, nil
	}

	id, err := h.newID()
	if err != nil {
		return "", fmt.Errorf("failed to generate cart id: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     cartCookieName,
		Value:    id.String(),
		Path:     "/",
		Expires:  time.Now().Add(cartCookieTTL),
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return id.String(), nil
}

func (h *CartHandler) respondCart(w http.ResponseWriter, r *http.Request, code int, c *cart.Cart) {
	respondWithJSON(w, code, CartResponse{
		Lines: c.Lines,
		Quote: cart.CartQuote(c, r.URL.Query().Get("coupon")),
	})
}

func (h *CartHandler) handleGetCart(w http.ResponseWriter, r *http.Request) {
	cartID, err := h.cartID(w, r)
	if err != nil {
		log.Error().Err(err).Msg("Failed to mint cart id")
		respondWithError(w, http.StatusInternalServerError, "Failed to create cart")
		return
	}

	c, err := h.carts.Get(cartID)
	if err != nil {
		log.Error().Err(err).Msg("Failed to load cart")
		respondWithMappedError(w, err, "Failed to load cart")
		return
	}
	h.respondCart(w, r, http.StatusOK, c)
}

// handleQuote prices the current cart the way the checkout page does,
// including tax.
func (h *CartHandler) handleQuote(w http.ResponseWriter, r *http.Request) {
	cartID, err := h.cartID(w, r)
	if err != nil {
		log.Error().Err(err).Msg("Failed to mint cart id")
		respondWithError(w, http.StatusInternalServerError, "Failed to create cart")
		return
	}

	c, err := h.carts.Get(cartID)
	if err != nil {
		log.Error().Err(err).Msg("Failed to load cart for quote")
		respondWithMappedError(w, err, "Failed to load cart")
		return
	}
	respondWithJSON(w, http.StatusOK, cart.CheckoutQuote(c, r.URL.Query().Get("coupon")))
}

func (h *CartHandler) handleAddItem(w http.ResponseWriter, r *http.Request) {
	var requestPayload AddCartItemRequest
	if !decodeAndValidate(w, r, h.validate, &requestPayload) {
		return
	}

	productID, err := uuid.FromString(requestPayload.ProductID)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid product id")
		return
	}

	cartID, err := h.cartID(w, r)
	if err != nil {
		log.Error().Err(err).Msg("Failed to mint cart id")
		respondWithError(w, http.StatusInternalServerError, "Failed to create cart")
		return
	}

	c, err := h.carts.Add(cartID, cart.Line{
		ProductID:   productID,
		ProductName: requestPayload.ProductName,
		Price:       requestPayload.Price,
		Quantity:    requestPayload.Quantity,
		Color:       requestPayload.Color,
		Length:      requestPayload.Length,
	})
	if err != nil {
		log.Error().Err(err).Msg("Failed to add cart item")
		respondWithMappedError(w, err, "Failed to add cart item")
		return
	}
	h.respondCart(w, r, http.StatusOK, c)
}

func (h *CartHandler) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	var requestPayload UpdateCartItemRequest
	if !decodeAndValidate(w, r, h.validate, &requestPayload) {
		return
	}

	productID, err := uuid.FromString(requestPayload.ProductID)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid product id")
		return
	}

	cartID, err := h.cartID(w, r)
	if err != nil {
		log.Error().Err(err).Msg("Failed to mint cart id")
		respondWithError(w, http.StatusInternalServerError, "Failed to create cart")
		return
	}

	key := cart.LineKey{ProductID: productID, Color: requestPayload.Color, Length: requestPayload.Length}
	c, err := h.carts.UpdateQuantity(cartID, key, requestPayload.Quantity)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to update cart item")
		respondWithMappedError(w, err, "Failed to update cart item")
		return
	}
	h.respondCart(w, r, http.StatusOK, c)
}

func (h *CartHandler) handleRemoveItem(w http.ResponseWriter, r *http.Request) {
	var requestPayload RemoveCartItemRequest
	if !decodeAndValidate(w, r, h.validate, &requestPayload) {
		return
	}

	productID, err := uuid.FromString(requestPayload.ProductID)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid product id")
		return
	}

	cartID, err := h.cartID(w, r)
	if err != nil {
		log.Error().Err(err).Msg("Failed to mint cart id")
		respondWithError(w, http.StatusInternalServerError, "Failed to create cart")
		return
	}

	key := cart.LineKey{ProductID: productID, Color: requestPayload.Color, Length: requestPayload.Length}
	c, err := h.carts.Remove(cartID, key)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to remove cart item")
		respondWithMappedError(w, err, "Failed to remove cart item")
		return
	}
	h.respondCart(w, r, http.StatusOK, c)
}

func (h *CartHandler) handleClear(w http.ResponseWriter, r *http.Request) {
	cartID, err := h.cartID(w, r)
	if err != nil {
		log.Error().Err(err).Msg("Failed to mint cart id")
		respondWithError(w, http.StatusInternalServerError, "Failed to create cart")
		return
	}

	if err := h.carts.Clear(cartID); err != nil {
		log.Error().Err(err).Msg("Failed to clear cart")
		respondWithMappedError(w, err, "Failed to clear cart")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]bool{"success": true})
}
