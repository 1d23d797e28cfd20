package context

import (
	"context"

	"github.com/dtroode/authkeeper/internal/model"
)

type contextKey struct{}

// userKey is the request context key holding the authenticated user.
var userKey = contextKey{}

// Manager stores the authenticated user on an HTTP request context.
type Manager struct{}

// NewManager creates a new context manager instance.
func NewManager() *Manager {
	return &Manager{}
}

// SetUserToContext stores the authenticated user on the context.
// The user is stored by value, so later changes to the caller's copy are
// not visible to handlers.
//
// Parameters:
//   - ctx: The request context
//   - user: The authenticated user, without its password hash
//
// Returns a new context carrying the user.
func (m *Manager) SetUserToContext(ctx context.Context, user model.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// GetUserFromContext retrieves the user stored by SetUserToContext.
//
// Parameters:
//   - ctx: The request context
//
// Returns the user and a boolean indicating if a user was found.
func (m *Manager) GetUserFromContext(ctx context.Context) (model.User, bool) {
	user, ok := ctx.Value(userKey).(model.User)
	return user, ok
}
