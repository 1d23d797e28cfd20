package model

import "github.com/google/uuid"

// TokenManager issues and validates session tokens.
type TokenManager interface {
	Issue(userID uuid.UUID) (string, error)
	Parse(token string) (uuid.UUID, error)
}

// PasswordHasher hashes and verifies user passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) (bool, error)
}
