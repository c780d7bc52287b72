package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

var (
	ErrNotFound           = errors.New("user not found")
	ErrEmailExists        = errors.New("email already exists")
	ErrHasOrders          = errors.New("user has existing orders")
	ErrInvalidRole        = errors.New("unrecognized role")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

var sortColumns = map[string]string{
	"name":       "name",
	"email":      "email",
	"role":       "role",
	"created_at": "created_at",
}

type ListOptions struct {
	Search string
	Role   Role
	Sort   string
	Order  string
	Page   int
	Limit  int
}

type Repository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context, opts ListOptions) ([]User, int, error)
	Update(ctx context.Context, user *User) error
	Delete(ctx context.Context, id uuid.UUID) error
	HasOrders(ctx context.Context, id uuid.UUID) (bool, error)
}

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &postgresRepository{db: db}
}

const userColumns = `id, name, email, password_hash, role, phone, street, city, state, zip, country, created_at, updated_at`

func scanUser(row pgx.Row, u *User) error {
	return row.Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.PasswordHash,
		&u.Role,
		&u.Phone,
		&u.Street,
		&u.City,
		&u.State,
		&u.Zip,
		&u.Country,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
}

func (r *postgresRepository) Create(ctx context.Context, u *User) error {
	if u.ID == uuid.Nil {
		genID, err := uuid.NewV4()
		if err != nil {
			return fmt.Errorf("repository: failed to generate user id: %w", err)
		}
		u.ID = genID
	}

	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now

	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := r.db.Exec(ctx, query,
		u.ID, u.Name, u.Email, u.PasswordHash, string(u.Role),
		u.Phone, u.Street, u.City, u.State, u.Zip, u.Country,
		u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return ErrEmailExists
		}
		return fmt.Errorf("repository: failed to insert user: %w", err)
	}
	return nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	var u User
	err := scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id), &u)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("repository: failed to select user %s: %w", id, err)
	}
	return &u, nil
}

func (r *postgresRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	var u User
	err := scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email), &u)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("repository: failed to select user by email: %w", err)
	}
	return &u, nil
}

func (r *postgresRepository) List(ctx context.Context, opts ListOptions) ([]User, int, error) {
	where := ` WHERE 1=1`
	args := []any{}

	if opts.Search != "" {
		args = append(args, "%"+opts.Search+"%")
		where += fmt.Sprintf(" AND (name ILIKE $%d OR email ILIKE $%d)", len(args), len(args))
	}
	if opts.Role != "" {
		args = append(args, string(opts.Role))
		where += fmt.Sprintf(" AND role = $%d", len(args))
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM users`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repository: failed to count users: %w", err)
	}

	column, ok := sortColumns[opts.Sort]
	if !ok {
		column = "created_at"
	}
	direction := "DESC"
	if opts.Order == "asc" {
		direction = "ASC"
	}

	args = append(args, opts.Limit, (opts.Page-1)*opts.Limit)
	query := fmt.Sprintf(`
		SELECT u.id, u.name, u.email, u.password_hash, u.role, u.phone, u.street, u.city, u.state, u.zip, u.country,
			u.created_at, u.updated_at,
			(SELECT count(*) FROM orders o WHERE o.user_id = u.id) AS order_count
		FROM users u%s
		ORDER BY %s %s
		LIMIT $%d OFFSET $%d`, where, column, direction, len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("repository: failed to query users: %w", err)
	}
	defer rows.Close()

	users := make([]User, 0)
	for rows.Next() {
		var u User
		err := rows.Scan(
			&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role,
			&u.Phone, &u.Street, &u.City, &u.State, &u.Zip, &u.Country,
			&u.CreatedAt, &u.UpdatedAt, &u.OrderCount,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("repository: failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("repository: error iterating users: %w", err)
	}

	return users, total, nil
}

func (r *postgresRepository) Update(ctx context.Context, u *User) error {
	query := `
		UPDATE users
		SET name = $1, email = $2, password_hash = $3, role = $4, phone = $5,
			street = $6, city = $7, state = $8, zip = $9, country = $10, updated_at = $11
		WHERE id = $12
	`
	cmdTag, err := r.db.Exec(ctx, query,
		u.Name, u.Email, u.PasswordHash, string(u.Role), u.Phone,
		u.Street, u.City, u.State, u.Zip, u.Country, time.Now().UTC(),
		u.ID,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return ErrEmailExists
		}
		log.Error().Err(err).Stringer("user_id", u.ID).Msg("repository: failed to update user")
		return fmt.Errorf("repository: failed to update user %s: %w", u.ID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *postgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("repository: failed to delete user %s: %w", id, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *postgresRepository) HasOrders(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM orders WHERE user_id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("repository: failed to check orders for user %s: %w", id, err)
	}
	return exists, nil
}
