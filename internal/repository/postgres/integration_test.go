//go:build integration

package postgres_test

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/dtroode/authkeeper/internal/model"
	repo "github.com/dtroode/authkeeper/internal/repository/postgres"
)

var dsn string

func TestMain(m *testing.M) {
	ctx := context.Background()
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: tc.ContainerRequest{
			Image:        "postgres:15-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "postgres",
				"POSTGRES_PASSWORD": "password",
				"POSTGRES_DB":       "authkeeper_test",
			},
			WaitingFor: wait.ForListeningPort("5432/tcp").WithStartupTimeout(2 * time.Minute),
		},
		Started: true,
	})
	if err != nil {
		panic(err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		panic(err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		panic(err)
	}
	dsn = fmt.Sprintf("postgres://postgres:password@%s:%s/authkeeper_test?sslmode=disable", host, port.Port())

	code := m.Run()
	_ = container.Terminate(ctx)
	os.Exit(code)
}

func newUser(username, email string) model.User {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return model.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        email,
		PasswordHash: "$2a$10$abcdefghijklmnopqrstuv",
		FirstName:    "Jane",
		LastName:     "Doe",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestUserRepository_CRUD(t *testing.T) {
	ctx := context.Background()
	conn, err := repo.NewConnection(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	ur := repo.NewUserRepository(conn)
	u := newUser("crud_user", "crud@example.com")

	saved, err := ur.Create(ctx, u)
	require.NoError(t, err)
	require.Equal(t, u.ID, saved.ID)

	byEmail, err := ur.GetByEmail(ctx, u.Email)
	require.NoError(t, err)
	require.Equal(t, u.ID, byEmail.ID)
	require.Equal(t, u.PasswordHash, byEmail.PasswordHash)

	byUsername, err := ur.GetByUsername(ctx, u.Username)
	require.NoError(t, err)
	require.Equal(t, u.ID, byUsername.ID)

	public, err := ur.GetByID(ctx, u.ID, model.WithoutPasswordHash)
	require.NoError(t, err)
	require.Equal(t, u.Email, public.Email)
	require.Empty(t, public.PasswordHash)

	full, err := ur.GetByID(ctx, u.ID, model.WithPasswordHash)
	require.NoError(t, err)
	require.Equal(t, u.PasswordHash, full.PasswordHash)

	_, err = ur.GetByID(ctx, uuid.New(), model.WithoutPasswordHash)
	require.ErrorIs(t, err, model.ErrNotFound)
}

func TestUserRepository_Duplicates(t *testing.T) {
	ctx := context.Background()
	conn, err := repo.NewConnection(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	ur := repo.NewUserRepository(conn)
	_, err = ur.Create(ctx, newUser("dup_user", "dup@example.com"))
	require.NoError(t, err)

	_, err = ur.Create(ctx, newUser("other_user", "dup@example.com"))
	require.ErrorIs(t, err, model.ErrDuplicateEmail)

	_, err = ur.Create(ctx, newUser("dup_user", "other@example.com"))
	require.ErrorIs(t, err, model.ErrDuplicateUsername)
}

func TestUserRepository_ConcurrentCreateSameEmail(t *testing.T) {
	ctx := context.Background()
	conn, err := repo.NewConnection(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	ur := repo.NewUserRepository(conn)

	const workers = 8
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = ur.Create(ctx, newUser(fmt.Sprintf("race_%d", i), "race@example.com"))
		}(i)
	}
	wg.Wait()

	created := 0
	for _, err := range errs {
		if err == nil {
			created++
			continue
		}
		assert.ErrorIs(t, err, model.ErrDuplicateEmail)
	}
	assert.Equal(t, 1, created)
}
