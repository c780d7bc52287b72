package user

import (
	"time"

	"github.com/gofrs/uuid"
)

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

func ParseRole(raw string) (Role, error) {
	switch Role(raw) {
	case RoleUser, RoleAdmin:
		return Role(raw), nil
	default:
		return "", ErrInvalidRole
	}
}

type User struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	Phone        string    `json:"phone,omitempty"`
	Street       string    `json:"street,omitempty"`
	City         string    `json:"city,omitempty"`
	State        string    `json:"state,omitempty"`
	Zip          string    `json:"zip,omitempty"`
	Country      string    `json:"country,omitempty"`
	// OrderCount is populated on admin listings only.
	OrderCount int       `json:"order_count"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
