package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Projection selects which columns a user lookup reads.
type Projection int

const (
	// WithPasswordHash loads the full record, including the password hash.
	WithPasswordHash Projection = iota
	// WithoutPasswordHash never reads the password hash column.
	WithoutPasswordHash
)

// UserStore defines persistence operations for users.
//
// Create must reject duplicate usernames and emails itself with
// ErrDuplicateUsername / ErrDuplicateEmail: a lookup before Create is not
// atomic with it, so the store is the only reliable uniqueness guard.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (User, error)
	GetByUsername(ctx context.Context, username string) (User, error)
	GetByID(ctx context.Context, id uuid.UUID, projection Projection) (User, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	Create(ctx context.Context, user User) (User, error)
}

// User represents a stored user with authentication material.
type User struct {
	ID           uuid.UUID
	Username     string
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PublicUser is the client-facing user representation.
type PublicUser struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Public returns u without the password hash.
func (u User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// RegisterParams contains the fields needed to register a user.
type RegisterParams struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// Session is the result of a successful registration or login.
type Session struct {
	User  User
	Token string
}
