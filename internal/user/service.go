package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = 10

// UpdateInput carries an admin profile edit. Nil fields are left unchanged.
type UpdateInput struct {
	Name    *string
	Email   *string
	Phone   *string
	Street  *string
	City    *string
	State   *string
	Zip     *string
	Country *string
	Role    *string
}

// BulkDeleteResult reports the per-item outcome of a bulk delete. Partial
// success is expected and tolerated.
type BulkDeleteResult struct {
	Deleted int      `json:"deleted"`
	Failed  int      `json:"failed"`
	Errors  []string `json:"errors,omitempty"`
}

type Service interface {
	Register(ctx context.Context, u *User, password string) (*User, error)
	Authenticate(ctx context.Context, email, password string) (*User, error)
	GetUser(ctx context.Context, id uuid.UUID) (*User, error)
	ListUsers(ctx context.Context, opts ListOptions) ([]User, int, error)
	UpdateUser(ctx context.Context, id uuid.UUID, input UpdateInput) (*User, error)
	DeleteUser(ctx context.Context, id uuid.UUID) error
	BulkDeleteUsers(ctx context.Context, ids []uuid.UUID) BulkDeleteResult
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Register(ctx context.Context, u *User, password string) (*User, error) {
	if password == "" {
		return nil, errors.New("password cannot be empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to hash password")
		return nil, fmt.Errorf("service: failed to hash password: %w", err)
	}
	u.PasswordHash = string(hash)
	if u.Role == "" {
		u.Role = RoleUser
	}

	if err := s.repo.Create(ctx, u); err != nil {
		if errors.Is(err, ErrEmailExists) {
			return nil, ErrEmailExists
		}
		log.Error().Err(err).Str("email", u.Email).Msg("service: failed to create user")
		return nil, fmt.Errorf("service: failed to create user: %w", err)
	}

	log.Info().Stringer("user_id", u.ID).Str("email", u.Email).Msg("service: user registered")
	return u, nil
}

// Authenticate returns the user when the password matches the stored bcrypt
// hash. An unknown email and a wrong password produce the same error.
func (s *service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		log.Error().Err(err).Msg("service: failed to look up user for login")
		return nil, fmt.Errorf("service: failed to look up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return u, nil
}

func (s *service) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		log.Error().Err(err).Stringer("user_id", id).Msg("service: failed to get user")
		return nil, fmt.Errorf("service: failed to get user: %w", err)
	}
	return u, nil
}

func (s *service) ListUsers(ctx context.Context, opts ListOptions) ([]User, int, error) {
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit < 1 {
		opts.Limit = 20
	}

	users, total, err := s.repo.List(ctx, opts)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to list users")
		return nil, 0, fmt.Errorf("service: failed to list users: %w", err)
	}
	return users, total, nil
}

func (s *service) UpdateUser(ctx context.Context, id uuid.UUID, input UpdateInput) (*User, error) {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		log.Error().Err(err).Stringer("user_id", id).Msg("service: failed to get user for update")
		return nil, fmt.Errorf("service: failed to get user for update: %w", err)
	}

	updated := *current
	if input.Name != nil {
		updated.Name = *input.Name
	}
	if input.Email != nil {
		updated.Email = *input.Email
	}
	if input.Phone != nil {
		updated.Phone = *input.Phone
	}
	if input.Street != nil {
		updated.Street = *input.Street
	}
	if input.City != nil {
		updated.City = *input.City
	}
	if input.State != nil {
		updated.State = *input.State
	}
	if input.Zip != nil {
		updated.Zip = *input.Zip
	}
	if input.Country != nil {
		updated.Country = *input.Country
	}
	if input.Role != nil {
		role, err := ParseRole(*input.Role)
		if err != nil {
			return nil, err
		}
		updated.Role = role
	}

	if err := s.repo.Update(ctx, &updated); err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrEmailExists) {
			return nil, err
		}
		log.Error().Err(err).Stringer("user_id", id).Msg("service: failed to update user")
		return nil, fmt.Errorf("service: failed to update user: %w", err)
	}

	log.Info().Stringer("user_id", id).Msg("service: user updated")
	return &updated, nil
}

// DeleteUser refuses to remove a customer that still owns orders, keeping
// order history intact.
func (s *service) DeleteUser(ctx context.Context, id uuid.UUID) error {
	hasOrders, err := s.repo.HasOrders(ctx, id)
	if err != nil {
		log.Error().Err(err).Stringer("user_id", id).Msg("service: failed to check user orders")
		return fmt.Errorf("service: failed to check user orders: %w", err)
	}
	if hasOrders {
		return ErrHasOrders
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		log.Error().Err(err).Stringer("user_id", id).Msg("service: failed to delete user")
		return fmt.Errorf("service: failed to delete user: %w", err)
	}

	log.Info().Stringer("user_id", id).Msg("service: user deleted")
	return nil
}

// BulkDeleteUsers deletes each id independently and accumulates results,
// so one guarded customer does not abort the whole batch.
func (s *service) BulkDeleteUsers(ctx context.Context, ids []uuid.UUID) BulkDeleteResult {
	var result BulkDeleteResult
	for _, id := range ids {
		if err := s.DeleteUser(ctx, id); err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", id, err))
			continue
		}
		result.Deleted++
	}

	log.Info().Int("deleted", result.Deleted).Int("failed", result.Failed).Msg("service: bulk user delete finished")
	return result
}
