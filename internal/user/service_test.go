package user_test

import (
	"context"
	"testing"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/lushhair/storefront/internal/user"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, u *user.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context, opts user.ListOptions) ([]user.User, int, error) {
	args := m.Called(ctx, opts)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]user.User), args.Int(1), args.Error(2)
}

func (m *MockUserRepository) Update(ctx context.Context, u *user.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUserRepository) HasOrders(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func TestUserService_Register_HashesPassword(t *testing.T) {
	mockRepo := new(MockUserRepository)
	userService := user.NewService(mockRepo)

	mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*user.User")).
		Return(nil).
		Once()

	created, err := userService.Register(context.Background(), &user.User{
		Name:  "Test Customer",
		Email: "customer@example.com",
	}, "s3cretpass")

	require.NoError(t, err)
	require.Equal(t, user.RoleUser, created.Role)
	require.NotEqual(t, "s3cretpass", created.PasswordHash)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(created.PasswordHash), []byte("s3cretpass")))
	mockRepo.AssertExpectations(t)
}

func TestUserService_Register_EmptyPassword(t *testing.T) {
	mockRepo := new(MockUserRepository)
	userService := user.NewService(mockRepo)

	_, err := userService.Register(context.Background(), &user.User{Email: "a@b.com"}, "")

	require.Error(t, err)
	mockRepo.AssertNotCalled(t, "Create")
}

func TestUserService_Register_EmailExists(t *testing.T) {
	mockRepo := new(MockUserRepository)
	userService := user.NewService(mockRepo)

	mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*user.User")).
		Return(user.ErrEmailExists).
		Once()

	_, err := userService.Register(context.Background(), &user.User{
		Name:  "Dup",
		Email: "duplicate@example.com",
	}, "s3cretpass")

	require.ErrorIs(t, err, user.ErrEmailExists)
	mockRepo.AssertExpectations(t)
}

func TestUserService_Authenticate_Success(t *testing.T) {
	mockRepo := new(MockUserRepository)
	userService := user.NewService(mockRepo)

	hash, err := bcrypt.GenerateFromPassword([]byte("s3cretpass"), bcrypt.DefaultCost)
	require.NoError(t, err)

	stored := &user.User{
		ID:           uuid.Must(uuid.NewV4()),
		Email:        "customer@example.com",
		PasswordHash: string(hash),
		Role:         user.RoleUser,
	}
	mockRepo.On("GetByEmail", mock.Anything, "customer@example.com").
		Return(stored, nil).
		Once()

	u, err := userService.Authenticate(context.Background(), "customer@example.com", "s3cretpass")

	require.NoError(t, err)
	require.Equal(t, stored.ID, u.ID)
	mockRepo.AssertExpectations(t)
}

func TestUserService_Authenticate_WrongPassword(t *testing.T) {
	mockRepo := new(MockUserRepository)
	userService := user.NewService(mockRepo)

	hash, err := bcrypt.GenerateFromPassword([]byte("s3cretpass"), bcrypt.DefaultCost)
	require.NoError(t, err)

	mockRepo.On("GetByEmail", mock.Anything, "customer@example.com").
		Return(&user.User{PasswordHash: string(hash)}, nil).
		Once()

	_, err = userService.Authenticate(context.Background(), "customer@example.com", "wrong")

	require.ErrorIs(t, err, user.ErrInvalidCredentials)
	mockRepo.AssertExpectations(t)
}

func TestUserService_Authenticate_UnknownEmailSameError(t *testing.T) {
	mockRepo := new(MockUserRepository)
	userService := user.NewService(mockRepo)

	mockRepo.On("GetByEmail", mock.Anything, "nobody@example.com").
		Return(nil, user.ErrNotFound).
		Once()

	_, err := userService.Authenticate(context.Background(), "nobody@example.com", "whatever")

	require.ErrorIs(t, err, user.ErrInvalidCredentials)
	mockRepo.AssertExpectations(t)
}

func TestUserService_UpdateUser_OverlaysFields(t *testing.T) {
	mockRepo := new(MockUserRepository)
	userService := user.NewService(mockRepo)

	id := uuid.Must(uuid.NewV4())
	mockRepo.On("GetByID", mock.Anything, id).
		Return(&user.User{ID: id, Name: "Old Name", Email: "old@example.com", Role: user.RoleUser}, nil).
		Once()
	mockRepo.On("Update", mock.Anything, mock.AnythingOfType("*user.User")).
		Return(nil).
		Once()

	name := "New Name"
	role := "ADMIN"
	updated, err := userService.UpdateUser(context.Background(), id, user.UpdateInput{Name: &name, Role: &role})

	require.NoError(t, err)
	require.Equal(t, "New Name", updated.Name)
	require.Equal(t, "old@example.com", updated.Email)
	require.Equal(t, user.RoleAdmin, updated.Role)
	mockRepo.AssertExpectations(t)
}

func TestUserService_UpdateUser_RejectsUnknownRole(t *testing.T) {
	mockRepo := new(MockUserRepository)
	userService := user.NewService(mockRepo)

	id := uuid.Must(uuid.NewV4())
	mockRepo.On("GetByID", mock.Anything, id).
		Return(&user.User{ID: id, Role: user.RoleUser}, nil).
		Once()

	role := "SUPERUSER"
	_, err := userService.UpdateUser(context.Background(), id, user.UpdateInput{Role: &role})

	require.ErrorIs(t, err, user.ErrInvalidRole)
	mockRepo.AssertNotCalled(t, "Update")
}

func TestUserService_DeleteUser_BlockedByOrders(t *testing.T) {
	mockRepo := new(MockUserRepository)
	userService := user.NewService(mockRepo)

	id := uuid.Must(uuid.NewV4())
	mockRepo.On("HasOrders", mock.Anything, id).
		Return(true, nil).
		Once()

	err := userService.DeleteUser(context.Background(), id)

	require.ErrorIs(t, err, user.ErrHasOrders)
	mockRepo.AssertNotCalled(t, "Delete")
}

func TestUserService_BulkDeleteUsers_AccumulatesResults(t *testing.T) {
	mockRepo := new(MockUserRepository)
	userService := user.NewService(mockRepo)

	deletable := uuid.Must(uuid.NewV4())
	guarded := uuid.Must(uuid.NewV4())
	missing := uuid.Must(uuid.NewV4())

	mockRepo.On("HasOrders", mock.Anything, deletable).Return(false, nil).Once()
	mockRepo.On("Delete", mock.Anything, deletable).Return(nil).Once()
	mockRepo.On("HasOrders", mock.Anything, guarded).Return(true, nil).Once()
	mockRepo.On("HasOrders", mock.Anything, missing).Return(false, nil).Once()
	mockRepo.On("Delete", mock.Anything, missing).Return(user.ErrNotFound).Once()

	result := userService.BulkDeleteUsers(context.Background(), []uuid.UUID{deletable, guarded, missing})

	require.Equal(t, 1, result.Deleted)
	require.Equal(t, 2, result.Failed)
	require.Len(t, result.Errors, 2)
	mockRepo.AssertExpectations(t)
}

func TestUserService_ListUsers_DefaultsPaging(t *testing.T) {
	mockRepo := new(MockUserRepository)
	userService := user.NewService(mockRepo)

	mockRepo.On("List", mock.Anything, user.ListOptions{Page: 1, Limit: 20}).
		Return([]user.User{}, 0, nil).
		Once()

	_, total, err := userService.ListUsers(context.Background(), user.ListOptions{})

	require.NoError(t, err)
	require.Zero(t, total)
	mockRepo.AssertExpectations(t)
}
