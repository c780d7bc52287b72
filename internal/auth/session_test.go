package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/lushhair/storefront/internal/auth"
	"github.com/lushhair/storefront/internal/user"
)

type MockSessionRepository struct {
	mock.Mock
}

func (m *MockSessionRepository) Create(ctx context.Context, s *auth.Session) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockSessionRepository) GetByToken(ctx context.Context, token string) (*auth.Session, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.Session), args.Error(1)
}

func (m *MockSessionRepository) DeleteByToken(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) Register(ctx context.Context, u *user.User, password string) (*user.User, error) {
	args := m.Called(ctx, u, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserService) Authenticate(ctx context.Context, email, password string) (*user.User, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserService) GetUser(ctx context.Context, id uuid.UUID) (*user.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserService) ListUsers(ctx context.Context, opts user.ListOptions) ([]user.User, int, error) {
	args := m.Called(ctx, opts)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]user.User), args.Int(1), args.Error(2)
}

func (m *MockUserService) UpdateUser(ctx context.Context, id uuid.UUID, input user.UpdateInput) (*user.User, error) {
	args := m.Called(ctx, id, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserService) DeleteUser(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUserService) BulkDeleteUsers(ctx context.Context, ids []uuid.UUID) user.BulkDeleteResult {
	args := m.Called(ctx, ids)
	return args.Get(0).(user.BulkDeleteResult)
}

func TestAuthService_CreateSession(t *testing.T) {
	mockSessions := new(MockSessionRepository)
	mockUsers := new(MockUserService)
	authService := auth.NewService(mockSessions, mockUsers, 7*24*time.Hour)

	userID := uuid.Must(uuid.NewV4())
	mockSessions.On("Create", mock.Anything, mock.AnythingOfType("*auth.Session")).
		Return(nil).
		Once()

	session, err := authService.CreateSession(context.Background(), userID)

	require.NoError(t, err)
	require.Equal(t, userID, session.UserID)
	// 32 random bytes hex-encoded.
	require.Len(t, session.Token, 64)
	require.WithinDuration(t, time.Now().UTC().Add(7*24*time.Hour), session.ExpiresAt, time.Minute)
	mockSessions.AssertExpectations(t)
}

func TestAuthService_ResolveToken_Success(t *testing.T) {
	mockSessions := new(MockSessionRepository)
	mockUsers := new(MockUserService)
	authService := auth.NewService(mockSessions, mockUsers, time.Hour)

	userID := uuid.Must(uuid.NewV4())
	mockSessions.On("GetByToken", mock.Anything, "tok").
		Return(&auth.Session{UserID: userID, Token: "tok", ExpiresAt: time.Now().UTC().Add(time.Hour)}, nil).
		Once()
	mockUsers.On("GetUser", mock.Anything, userID).
		Return(&user.User{ID: userID, Role: user.RoleUser}, nil).
		Once()

	u, err := authService.ResolveToken(context.Background(), "tok")

	require.NoError(t, err)
	require.Equal(t, userID, u.ID)
	mockSessions.AssertExpectations(t)
	mockUsers.AssertExpectations(t)
}

func TestAuthService_ResolveToken_EmptyToken(t *testing.T) {
	authService := auth.NewService(new(MockSessionRepository), new(MockUserService), time.Hour)

	_, err := authService.ResolveToken(context.Background(), "")

	require.ErrorIs(t, err, auth.ErrUnauthenticated)
}

func TestAuthService_ResolveToken_UnknownToken(t *testing.T) {
	mockSessions := new(MockSessionRepository)
	authService := auth.NewService(mockSessions, new(MockUserService), time.Hour)

	mockSessions.On("GetByToken", mock.Anything, "stale").
		Return(nil, auth.ErrUnauthenticated).
		Once()

	_, err := authService.ResolveToken(context.Background(), "stale")

	require.ErrorIs(t, err, auth.ErrUnauthenticated)
	mockSessions.AssertExpectations(t)
}

func TestAuthService_ResolveToken_ExpiredSessionDeleted(t *testing.T) {
	mockSessions := new(MockSessionRepository)
	mockUsers := new(MockUserService)
	authService := auth.NewService(mockSessions, mockUsers, time.Hour)

	mockSessions.On("GetByToken", mock.Anything, "old").
		Return(&auth.Session{Token: "old", ExpiresAt: time.Now().UTC().Add(-time.Minute)}, nil).
		Once()
	mockSessions.On("DeleteByToken", mock.Anything, "old").
		Return(nil).
		Once()

	_, err := authService.ResolveToken(context.Background(), "old")

	require.ErrorIs(t, err, auth.ErrUnauthenticated)
	mockSessions.AssertExpectations(t)
	mockUsers.AssertNotCalled(t, "GetUser")
}

func TestAuthService_ResolveToken_DeletedUser(t *testing.T) {
	mockSessions := new(MockSessionRepository)
	mockUsers := new(MockUserService)
	authService := auth.NewService(mockSessions, mockUsers, time.Hour)

	userID := uuid.Must(uuid.NewV4())
	mockSessions.On("GetByToken", mock.Anything, "tok").
		Return(&auth.Session{UserID: userID, Token: "tok", ExpiresAt: time.Now().UTC().Add(time.Hour)}, nil).
		Once()
	mockUsers.On("GetUser", mock.Anything, userID).
		Return(nil, user.ErrNotFound).
		Once()

	_, err := authService.ResolveToken(context.Background(), "tok")

	require.ErrorIs(t, err, auth.ErrUnauthenticated)
	mockSessions.AssertExpectations(t)
}

func TestAuthService_DestroySession_IgnoresEmptyToken(t *testing.T) {
	mockSessions := new(MockSessionRepository)
	authService := auth.NewService(mockSessions, new(MockUserService), time.Hour)

	require.NoError(t, authService.DestroySession(context.Background(), ""))
	mockSessions.AssertNotCalled(t, "DeleteByToken")
}
