package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/lushhair/storefront/internal/cart"
	"github.com/lushhair/storefront/internal/handler"
	"github.com/lushhair/storefront/internal/order"
)

type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) Checkout(ctx context.Context, input order.CheckoutInput) (*order.Order, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderService) GetOrder(ctx context.Context, orderID, requesterID uuid.UUID, admin bool) (*order.Order, error) {
	args := m.Called(ctx, orderID, requesterID, admin)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderService) ListOrders(ctx context.Context, opts order.ListOptions) ([]order.Order, int, error) {
	args := m.Called(ctx, opts)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]order.Order), args.Int(1), args.Error(2)
}

func (m *MockOrderService) UpdateOrder(ctx context.Context, orderID uuid.UUID, input order.UpdateInput) (*order.Order, error) {
	args := m.Called(ctx, orderID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func newAdminOrderServer(t *testing.T, orders order.Service) *httptest.Server {
	t.Helper()
	router := chi.NewRouter()
	carts := cart.NewService(cart.NewMemoryStorage())
	handler.NewOrderHandler(orders, carts).RegisterAdminRoutes(router)
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server
}

func getOrderList(t *testing.T, url string) handler.OrderListResponse {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out handler.OrderListResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestOrderHandler_AdminList_ForwardsSortAndFilter(t *testing.T) {
	mockOrders := new(MockOrderService)
	server := newAdminOrderServer(t, mockOrders)

	mockOrders.On("ListOrders", mock.Anything, order.ListOptions{
		Status: order.StatusPending,
		Sort:   "total",
		Order:  "asc",
		Page:   2,
		Limit:  5,
	}).Return([]order.Order{}, 12, nil).Once()

	out := getOrderList(t, server.URL+"/orders?status=PENDING&sort=total&order=asc&page=2&limit=5")

	require.Equal(t, 12, out.Pagination.Total)
	require.Equal(t, 2, out.Pagination.Page)
	mockOrders.AssertExpectations(t)
}

func TestOrderHandler_AdminList_LastPageEnvelope(t *testing.T) {
	mockOrders := new(MockOrderService)
	server := newAdminOrderServer(t, mockOrders)

	// 41 orders at 10 per page: page 5 holds the final one.
	mockOrders.On("ListOrders", mock.Anything, order.ListOptions{Page: 5, Limit: 10}).
		Return([]order.Order{{ID: uuid.Must(uuid.NewV4())}}, 41, nil).
		Once()

	out := getOrderList(t, server.URL+"/orders?page=5")

	require.Len(t, out.Orders, 1)
	require.Equal(t, 41, out.Pagination.Total)
	require.Equal(t, 5, out.Pagination.Pages)
	mockOrders.AssertExpectations(t)
}

func TestOrderHandler_AdminList_PastTheEndPageIsEmpty(t *testing.T) {
	mockOrders := new(MockOrderService)
	server := newAdminOrderServer(t, mockOrders)

	mockOrders.On("ListOrders", mock.Anything, order.ListOptions{Page: 6, Limit: 10}).
		Return([]order.Order{}, 41, nil).
		Once()

	out := getOrderList(t, server.URL+"/orders?page=6")

	require.Empty(t, out.Orders)
	require.Equal(t, 5, out.Pagination.Pages)
	require.Equal(t, 6, out.Pagination.Page)
	mockOrders.AssertExpectations(t)
}

func TestOrderHandler_AdminList_RejectsUnknownStatus(t *testing.T) {
	mockOrders := new(MockOrderService)
	server := newAdminOrderServer(t, mockOrders)

	resp, err := http.Get(server.URL + "/orders?status=MISPLACED")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	mockOrders.AssertNotCalled(t, "ListOrders")
}
