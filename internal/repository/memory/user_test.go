package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/authkeeper/internal/model"
)

func TestUserRepository_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	r := NewUserRepository()

	saved, err := r.Create(ctx, model.User{Username: "jane", Email: "jane@example.com", PasswordHash: "hash"})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, saved.ID)
	assert.False(t, saved.CreatedAt.IsZero())

	byEmail, err := r.GetByEmail(ctx, "jane@example.com")
	require.NoError(t, err)
	assert.Equal(t, saved, byEmail)

	byUsername, err := r.GetByUsername(ctx, "jane")
	require.NoError(t, err)
	assert.Equal(t, saved, byUsername)

	full, err := r.GetByID(ctx, saved.ID, model.WithPasswordHash)
	require.NoError(t, err)
	assert.Equal(t, "hash", full.PasswordHash)

	public, err := r.GetByID(ctx, saved.ID, model.WithoutPasswordHash)
	require.NoError(t, err)
	assert.Empty(t, public.PasswordHash)

	stored, err := r.GetByID(ctx, saved.ID, model.WithPasswordHash)
	require.NoError(t, err)
	assert.Equal(t, "hash", stored.PasswordHash)
}

func TestUserRepository_NotFound(t *testing.T) {
	ctx := context.Background()
	r := NewUserRepository()

	_, err := r.GetByEmail(ctx, "x@example.com")
	assert.ErrorIs(t, err, model.ErrNotFound)
	_, err = r.GetByUsername(ctx, "x")
	assert.ErrorIs(t, err, model.ErrNotFound)
	_, err = r.GetByID(ctx, uuid.New(), model.WithoutPasswordHash)
	assert.ErrorIs(t, err, model.ErrNotFound)
	assert.ErrorIs(t, r.Delete(ctx, uuid.New()), model.ErrNotFound)
}

func TestUserRepository_Duplicates(t *testing.T) {
	ctx := context.Background()
	r := NewUserRepository()

	_, err := r.Create(ctx, model.User{Username: "jane", Email: "jane@example.com"})
	require.NoError(t, err)

	_, err = r.Create(ctx, model.User{Username: "jane", Email: "other@example.com"})
	assert.ErrorIs(t, err, model.ErrDuplicateUsername)

	_, err = r.Create(ctx, model.User{Username: "other", Email: "jane@example.com"})
	assert.ErrorIs(t, err, model.ErrDuplicateEmail)
}

func TestUserRepository_ConcurrentCreate(t *testing.T) {
	ctx := context.Background()
	r := NewUserRepository()

	const workers = 32
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := r.Create(ctx, model.User{Username: fmt.Sprintf("u%d", i), Email: "same@example.com"})
			if err == nil {
				mu.Lock()
				created++
				mu.Unlock()
				return
			}
			assert.ErrorIs(t, err, model.ErrDuplicateEmail)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, created)
}

func TestUserRepository_Delete(t *testing.T) {
	ctx := context.Background()
	r := NewUserRepository()

	saved, err := r.Create(ctx, model.User{Username: "jane", Email: "jane@example.com"})
	require.NoError(t, err)
	require.NoError(t, r.Delete(ctx, saved.ID))

	_, err = r.GetByID(ctx, saved.ID, model.WithoutPasswordHash)
	assert.ErrorIs(t, err, model.ErrNotFound)

	_, err = r.Create(ctx, model.User{Username: "jane", Email: "jane@example.com"})
	assert.NoError(t, err)
}

func TestUserRepository_Exists(t *testing.T) {
	ctx := context.Background()
	r := NewUserRepository()

	saved, err := r.Create(ctx, model.User{Username: "jane", Email: "jane@example.com"})
	require.NoError(t, err)

	exists, err := r.Exists(ctx, saved.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, r.Delete(ctx, saved.ID))

	exists, err = r.Exists(ctx, saved.ID)
	require.NoError(t, err)
	assert.False(t, exists)
}
