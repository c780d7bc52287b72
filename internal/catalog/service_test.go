package catalog_test

import (
	"context"
	"testing"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/lushhair/storefront/internal/catalog"
)

type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) List(ctx context.Context, opts catalog.ListOptions) ([]catalog.Product, int, error) {
	args := m.Called(ctx, opts)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]catalog.Product), args.Int(1), args.Error(2)
}

func (m *MockProductRepository) GetByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) Create(ctx context.Context, p *catalog.Product) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockProductRepository) Update(ctx context.Context, p *catalog.Product) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func TestCatalogService_CreateProduct_Success(t *testing.T) {
	mockRepo := new(MockProductRepository)
	catalogService := catalog.NewService(mockRepo)

	mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*catalog.Product")).
		Return(nil).
		Once()

	created, err := catalogService.CreateProduct(context.Background(), &catalog.Product{
		Name:     "Malaysian Curly",
		Category: "bundles",
		Price:    99.99,
		Stock:    25,
		Colors:   []catalog.Color{{Name: "Natural Black", Value: "#1a1a1a"}},
		Lengths:  []catalog.Length{{Label: "18\""}, {Label: "20\""}},
	})

	require.NoError(t, err)
	require.Equal(t, "Malaysian Curly", created.Name)
	mockRepo.AssertExpectations(t)
}

func TestCatalogService_CreateProduct_Validation(t *testing.T) {
	tests := []struct {
		name    string
		product catalog.Product
	}{
		{"missing name", catalog.Product{Category: "bundles", Price: 10}},
		{"missing category", catalog.Product{Name: "X", Price: 10}},
		{"zero price", catalog.Product{Name: "X", Category: "bundles", Price: 0}},
		{"negative price", catalog.Product{Name: "X", Category: "bundles", Price: -5}},
		{"negative stock", catalog.Product{Name: "X", Category: "bundles", Price: 10, Stock: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockProductRepository)
			catalogService := catalog.NewService(mockRepo)

			p := tt.product
			_, err := catalogService.CreateProduct(context.Background(), &p)

			require.ErrorIs(t, err, catalog.ErrInvalidProduct)
			mockRepo.AssertNotCalled(t, "Create")
		})
	}
}

func TestCatalogService_ListProducts_DefaultsPaging(t *testing.T) {
	mockRepo := new(MockProductRepository)
	catalogService := catalog.NewService(mockRepo)

	mockRepo.On("List", mock.Anything, catalog.ListOptions{Page: 1, Limit: 20}).
		Return([]catalog.Product{}, 0, nil).
		Once()

	_, total, err := catalogService.ListProducts(context.Background(), catalog.ListOptions{})

	require.NoError(t, err)
	require.Zero(t, total)
	mockRepo.AssertExpectations(t)
}

func TestCatalogService_UpdateProduct_NilVariantsKeepCurrent(t *testing.T) {
	mockRepo := new(MockProductRepository)
	catalogService := catalog.NewService(mockRepo)

	id := uuid.Must(uuid.NewV4())
	current := &catalog.Product{
		ID:       id,
		Name:     "Old Name",
		Category: "bundles",
		Price:    89.99,
		Colors:   []catalog.Color{{Name: "1B"}},
	}
	mockRepo.On("GetByID", mock.Anything, id).Return(current, nil).Once()
	mockRepo.On("Update", mock.Anything, mock.AnythingOfType("*catalog.Product")).Return(nil).Once()

	name := "New Name"
	updated, err := catalogService.UpdateProduct(context.Background(), id, catalog.UpdateInput{Name: &name})

	require.NoError(t, err)
	require.Equal(t, "New Name", updated.Name)
	require.Equal(t, current.Colors, updated.Colors)
	mockRepo.AssertExpectations(t)
}

func TestCatalogService_UpdateProduct_EmptyVariantsClear(t *testing.T) {
	mockRepo := new(MockProductRepository)
	catalogService := catalog.NewService(mockRepo)

	id := uuid.Must(uuid.NewV4())
	mockRepo.On("GetByID", mock.Anything, id).
		Return(&catalog.Product{ID: id, Name: "X", Category: "bundles", Price: 10, Colors: []catalog.Color{{Name: "1B"}}}, nil).
		Once()
	mockRepo.On("Update", mock.Anything, mock.AnythingOfType("*catalog.Product")).Return(nil).Once()

	colors := []catalog.Color{}
	updated, err := catalogService.UpdateProduct(context.Background(), id, catalog.UpdateInput{Colors: &colors})

	require.NoError(t, err)
	require.Empty(t, updated.Colors)
	mockRepo.AssertExpectations(t)
}

func TestCatalogService_UpdateProduct_RejectsNonPositivePrice(t *testing.T) {
	mockRepo := new(MockProductRepository)
	catalogService := catalog.NewService(mockRepo)

	id := uuid.Must(uuid.NewV4())
	mockRepo.On("GetByID", mock.Anything, id).
		Return(&catalog.Product{ID: id, Name: "X", Category: "bundles", Price: 10}, nil).
		Once()

	price := -1.0
	_, err := catalogService.UpdateProduct(context.Background(), id, catalog.UpdateInput{Price: &price})

	require.ErrorIs(t, err, catalog.ErrInvalidProduct)
	mockRepo.AssertNotCalled(t, "Update")
}

func TestCatalogService_DeleteProduct_BlockedByOrders(t *testing.T) {
	mockRepo := new(MockProductRepository)
	catalogService := catalog.NewService(mockRepo)

	id := uuid.Must(uuid.NewV4())
	mockRepo.On("Delete", mock.Anything, id).
		Return(catalog.ErrProductOrdered).
		Once()

	err := catalogService.DeleteProduct(context.Background(), id)

	require.ErrorIs(t, err, catalog.ErrProductOrdered)
	mockRepo.AssertExpectations(t)
}

func TestCatalogService_GetProduct_NotFound(t *testing.T) {
	mockRepo := new(MockProductRepository)
	catalogService := catalog.NewService(mockRepo)

	id := uuid.Must(uuid.NewV4())
	mockRepo.On("GetByID", mock.Anything, id).
		Return(nil, catalog.ErrProductNotFound).
		Once()

	_, err := catalogService.GetProduct(context.Background(), id)

	require.ErrorIs(t, err, catalog.ErrProductNotFound)
	mockRepo.AssertExpectations(t)
}
