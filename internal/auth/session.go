package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/lushhair/storefront/internal/user"
)

// CookieName is the session cookie carried by authenticated requests.
const CookieName = "session_token"

var ErrUnauthenticated = errors.New("not authenticated")

type Session struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
}

func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

type SessionRepository interface {
	Create(ctx context.Context, session *Session) error
	GetByToken(ctx context.Context, token string) (*Session, error)
	DeleteByToken(ctx context.Context, token string) error
}

type postgresSessionRepository struct {
	db *pgxpool.Pool
}

func NewSessionRepository(db *pgxpool.Pool) SessionRepository {
	return &postgresSessionRepository{db: db}
}

func (r *postgresSessionRepository) Create(ctx context.Context, s *Session) error {
	if s.ID == uuid.Nil {
		genID, err := uuid.NewV4()
		if err != nil {
			return fmt.Errorf("repository: failed to generate session id: %w", err)
		}
		s.ID = genID
	}
	s.CreatedAt = time.Now().UTC()

	_, err := r.db.Exec(ctx,
		`INSERT INTO sessions (id, user_id, token, expires_at, created_at) VALUES ($1, $2, $3, $4, $5)`,
		s.ID, s.UserID, s.Token, s.ExpiresAt, s.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("repository: failed to insert session: %w", err)
	}
	return nil
}

func (r *postgresSessionRepository) GetByToken(ctx context.Context, token string) (*Session, error) {
	var s Session
	err := r.db.QueryRow(ctx,
		`SELECT id, user_id, token, expires_at, created_at FROM sessions WHERE token = $1`, token,
	).Scan(&s.ID, &s.UserID, &s.Token, &s.ExpiresAt, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUnauthenticated
		}
		return nil, fmt.Errorf("repository: failed to select session: %w", err)
	}
	return &s, nil
}

func (r *postgresSessionRepository) DeleteByToken(ctx context.Context, token string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM sessions WHERE token = $1`, token)
	if err != nil {
		return fmt.Errorf("repository: failed to delete session: %w", err)
	}
	return nil
}

type Service interface {
	CreateSession(ctx context.Context, userID uuid.UUID) (*Session, error)
	ResolveToken(ctx context.Context, token string) (*user.User, error)
	DestroySession(ctx context.Context, token string) error
}

type service struct {
	sessions SessionRepository
	users    user.Service
	ttl      time.Duration
}

func NewService(sessions SessionRepository, users user.Service, ttl time.Duration) Service {
	return &service{sessions: sessions, users: users, ttl: ttl}
}

// CreateSession issues an opaque random token stored server-side, so
// sessions can be revoked individually.
func (s *service) CreateSession(ctx context.Context, userID uuid.UUID) (*Session, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return nil, fmt.Errorf("service: failed to generate session token: %w", err)
	}

	session := &Session{
		UserID:    userID,
		Token:     hex.EncodeToString(raw),
		ExpiresAt: time.Now().UTC().Add(s.ttl),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		log.Error().Err(err).Stringer("user_id", userID).Msg("service: failed to create session")
		return nil, fmt.Errorf("service: failed to create session: %w", err)
	}

	return session, nil
}

// ResolveToken maps a session token to its user. Expired sessions are
// deleted on touch and treated as unauthenticated.
func (s *service) ResolveToken(ctx context.Context, token string) (*user.User, error) {
	if token == "" {
		return nil, ErrUnauthenticated
	}

	session, err := s.sessions.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, ErrUnauthenticated) {
			return nil, ErrUnauthenticated
		}
		log.Error().Err(err).Msg("service: failed to look up session")
		return nil, fmt.Errorf("service: failed to look up session: %w", err)
	}

	if session.Expired(time.Now().UTC()) {
		if err := s.sessions.DeleteByToken(ctx, token); err != nil {
			log.Warn().Err(err).Msg("service: failed to delete expired session")
		}
		return nil, ErrUnauthenticated
	}

	u, err := s.users.GetUser(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, fmt.Errorf("service: failed to load session user: %w", err)
	}

	return u, nil
}

func (s *service) DestroySession(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.sessions.DeleteByToken(ctx, token); err != nil {
		log.Error().Err(err).Msg("service: failed to destroy session")
		return fmt.Errorf("service: failed to destroy session: %w", err)
	}
	return nil
}
