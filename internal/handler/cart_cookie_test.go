package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/require"

	"github.com/lushhair/storefront/internal/cart"
)

func TestCartHandler_IDGenerationFailureIsServerError(t *testing.T) {
	h := NewCartHandler(cart.NewService(cart.NewMemoryStorage()), false)
	h.newID = func() (uuid.UUID, error) {
		return uuid.Nil, errors.New("entropy source unavailable")
	}

	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	rec := httptest.NewRecorder()
	h.handleGetCart(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	// No cookie may be handed out for a cart id that was never minted.
	require.Empty(t, rec.Result().Cookies())
}

func TestCartHandler_ExistingCookieSkipsGeneration(t *testing.T) {
	h := NewCartHandler(cart.NewService(cart.NewMemoryStorage()), false)
	h.newID = func() (uuid.UUID, error) {
		t.Fatal("id generator must not run when the cookie is present")
		return uuid.Nil, nil
	}

	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	req.AddCookie(&http.Cookie{Name: cartCookieName, Value: "existing-cart"})
	rec := httptest.NewRecorder()
	h.handleGetCart(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
}
