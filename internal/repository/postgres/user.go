package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dtroode/authkeeper/internal/model"
)

const (
	uniqueViolation = "23505"

	usernameConstraint = "users_username_key"
	emailConstraint    = "users_email_key"
)

var _ model.UserStore = (*UserRepository)(nil)

type UserRepository struct {
	db *Connection
}

func NewUserRepository(db *Connection) *UserRepository {
	return &UserRepository{
		db: db,
	}
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (model.User, error) {
	query := `SELECT id, username, email, password_hash, first_name, last_name, created_at, updated_at
			  FROM users WHERE email = $1`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, model.ErrNotFound
		}
		return model.User{}, fmt.Errorf("failed to get user by email: %w", err)
	}

	return user, nil
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (model.User, error) {
	query := `SELECT id, username, email, password_hash, first_name, last_name, created_at, updated_at
			  FROM users WHERE username = $1`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, username))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, model.ErrNotFound
		}
		return model.User{}, fmt.Errorf("failed to get user by username: %w", err)
	}

	return user, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID, projection model.Projection) (model.User, error) {
	var (
		user model.User
		err  error
	)

	if projection == model.WithoutPasswordHash {
		query := `SELECT id, username, email, first_name, last_name, created_at, updated_at
				  FROM users WHERE id = $1`
		err = r.db.QueryRowContext(ctx, query, id).Scan(
			&user.ID, &user.Username, &user.Email, &user.FirstName, &user.LastName,
			&user.CreatedAt, &user.UpdatedAt,
		)
	} else {
		query := `SELECT id, username, email, password_hash, first_name, last_name, created_at, updated_at
				  FROM users WHERE id = $1`
		user, err = scanUser(r.db.QueryRowContext(ctx, query, id))
	}
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, model.ErrNotFound
		}
		return model.User{}, fmt.Errorf("failed to get user by id: %w", err)
	}

	return user, nil
}

func (r *UserRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check user existence: %w", err)
	}

	return exists, nil
}

func (r *UserRepository) Create(ctx context.Context, user model.User) (model.User, error) {
	query := `INSERT INTO users (id, username, email, password_hash, first_name, last_name, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			  RETURNING id, username, email, password_hash, first_name, last_name, created_at, updated_at`

	savedUser, err := scanUser(r.db.QueryRowContext(ctx, query,
		user.ID, user.Username, user.Email, user.PasswordHash, user.FirstName, user.LastName,
		user.CreatedAt, user.UpdatedAt,
	))
	if err != nil {
		if dupErr := duplicateError(err); dupErr != nil {
			return model.User{}, dupErr
		}
		return model.User{}, fmt.Errorf("failed to create user: %w", err)
	}

	return savedUser, nil
}

func scanUser(row *sql.Row) (model.User, error) {
	var user model.User
	err := row.Scan(
		&user.ID, &user.Username, &user.Email, &user.PasswordHash,
		&user.FirstName, &user.LastName, &user.CreatedAt, &user.UpdatedAt,
	)
	return user, err
}

// duplicateError maps a unique violation on users to the matching model error.
func duplicateError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
		return nil
	}

	switch pgErr.ConstraintName {
	case usernameConstraint:
		return model.ErrDuplicateUsername
	case emailConstraint:
		return model.ErrDuplicateEmail
	default:
		return nil
	}
}
