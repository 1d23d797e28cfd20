// Package memory provides an in-process UserStore for local development and tests.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/authkeeper/internal/model"
)

var _ model.UserStore = (*UserRepository)(nil)

// UserRepository keeps users in maps guarded by a mutex. Uniqueness of
// username and email is checked and recorded under the same lock as the insert.
type UserRepository struct {
	mu         sync.RWMutex
	byID       map[uuid.UUID]model.User
	byEmail    map[string]uuid.UUID
	byUsername map[string]uuid.UUID
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		byID:       make(map[uuid.UUID]model.User),
		byEmail:    make(map[string]uuid.UUID),
		byUsername: make(map[string]uuid.UUID),
	}
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return model.User{}, model.ErrNotFound
	}
	return r.byID[id], nil
}

func (r *UserRepository) GetByUsername(_ context.Context, username string) (model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byUsername[username]
	if !ok {
		return model.User{}, model.ErrNotFound
	}
	return r.byID[id], nil
}

func (r *UserRepository) GetByID(_ context.Context, id uuid.UUID, projection model.Projection) (model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.byID[id]
	if !ok {
		return model.User{}, model.ErrNotFound
	}
	if projection == model.WithoutPasswordHash {
		user.PasswordHash = ""
	}
	return user, nil
}

func (r *UserRepository) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.byID[id]
	return ok, nil
}

func (r *UserRepository) Create(_ context.Context, user model.User) (model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byUsername[user.Username]; ok {
		return model.User{}, model.ErrDuplicateUsername
	}
	if _, ok := r.byEmail[user.Email]; ok {
		return model.User{}, model.ErrDuplicateEmail
	}

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	if user.UpdatedAt.IsZero() {
		user.UpdatedAt = now
	}

	r.byID[user.ID] = user
	r.byEmail[user.Email] = user.ID
	r.byUsername[user.Username] = user.ID

	return user, nil
}

// Delete removes a user and frees its username and email.
func (r *UserRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.byID[id]
	if !ok {
		return model.ErrNotFound
	}
	delete(r.byID, id)
	delete(r.byEmail, user.Email)
	delete(r.byUsername, user.Username)
	return nil
}
