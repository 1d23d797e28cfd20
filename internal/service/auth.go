// Package service implements the registration, login and session flows.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/authkeeper/internal/logger"
	"github.com/dtroode/authkeeper/internal/model"
)

// dummyPassword is hashed once and compared against when a login email is
// unknown, so a miss costs the same as a wrong password.
const dummyPassword = "authkeeper-dummy-password"

type loginFailure int

const (
	reasonNotFound loginFailure = iota + 1
	reasonWrongPassword
)

func (r loginFailure) String() string {
	switch r {
	case reasonNotFound:
		return "user not found"
	case reasonWrongPassword:
		return "wrong password"
	default:
		return "unknown"
	}
}

type Auth struct {
	userStore model.UserStore
	hasher    model.PasswordHasher
	tokens    model.TokenManager
	logger    *logger.Logger

	dummyOnce sync.Once
	dummyHash string
}

func NewAuth(
	userStore model.UserStore,
	hasher model.PasswordHasher,
	tokens model.TokenManager,
	logger *logger.Logger,
) *Auth {
	return &Auth{
		userStore: userStore,
		hasher:    hasher,
		tokens:    tokens,
		logger:    logger,
	}
}

// NormalizeEmail trims surrounding whitespace and lowercases the address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizeUsername trims surrounding whitespace. Case is preserved.
func NormalizeUsername(username string) string {
	return strings.TrimSpace(username)
}

func normalizeRegister(p model.RegisterParams) model.RegisterParams {
	p.Email = NormalizeEmail(p.Email)
	p.Username = NormalizeUsername(p.Username)
	p.FirstName = strings.TrimSpace(p.FirstName)
	p.LastName = strings.TrimSpace(p.LastName)
	return p
}

// Register creates a user and opens a session for it. Input is expected to be
// validated already.
func (a *Auth) Register(ctx context.Context, params model.RegisterParams) (model.Session, error) {
	params = normalizeRegister(params)

	a.logger.Debug("Auth service: starting user registration",
		"username", params.Username,
		"email", params.Email)

	_, err := a.userStore.GetByUsername(ctx, params.Username)
	switch {
	case err == nil:
		a.logger.Info("Auth service: username already taken",
			"username", params.Username)
		return model.Session{}, model.ErrDuplicateUsername
	case !errors.Is(err, model.ErrNotFound):
		a.logger.Error("Auth service: failed to get user by username",
			"username", params.Username,
			"error", err.Error())
		return model.Session{}, fmt.Errorf("failed to get user by username: %w", err)
	}

	_, err = a.userStore.GetByEmail(ctx, params.Email)
	switch {
	case err == nil:
		a.logger.Info("Auth service: email already taken",
			"email", params.Email)
		return model.Session{}, model.ErrDuplicateEmail
	case !errors.Is(err, model.ErrNotFound):
		a.logger.Error("Auth service: failed to get user by email",
			"email", params.Email,
			"error", err.Error())
		return model.Session{}, fmt.Errorf("failed to get user by email: %w", err)
	}

	hash, err := a.hasher.Hash(params.Password)
	if err != nil {
		a.logger.Error("Auth service: failed to hash password",
			"email", params.Email,
			"error", err.Error())
		return model.Session{}, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	user, err := a.userStore.Create(ctx, model.User{
		ID:           uuid.New(),
		Username:     params.Username,
		Email:        params.Email,
		PasswordHash: hash,
		FirstName:    params.FirstName,
		LastName:     params.LastName,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if errors.Is(err, model.ErrDuplicateUsername) || errors.Is(err, model.ErrDuplicateEmail) {
		// lost a race with a concurrent signup after the pre-check
		a.logger.Info("Auth service: duplicate user on create",
			"username", params.Username,
			"email", params.Email,
			"error", err.Error())
		return model.Session{}, err
	}
	if err != nil {
		a.logger.Error("Auth service: failed to create user",
			"email", params.Email,
			"error", err.Error())
		return model.Session{}, fmt.Errorf("failed to create user: %w", err)
	}

	session, err := a.openSession(user)
	if err != nil {
		return model.Session{}, err
	}

	a.logger.Info("Auth service: user registered successfully",
		"user_id", user.ID)

	return session, nil
}

// Login checks credentials and opens a session. Unknown email and wrong
// password are both reported as model.ErrInvalidCredentials.
func (a *Auth) Login(ctx context.Context, email, password string) (model.Session, error) {
	email = NormalizeEmail(email)

	a.logger.Debug("Auth service: starting user login",
		"email", email)

	user, reason, err := a.verifyCredentials(ctx, email, password)
	if err != nil {
		a.logger.Error("Auth service: failed to verify credentials",
			"email", email,
			"error", err.Error())
		return model.Session{}, err
	}
	if reason != 0 {
		a.logger.Info("Auth service: login rejected",
			"email", email,
			"reason", reason.String())
		return model.Session{}, model.ErrInvalidCredentials
	}

	session, err := a.openSession(user)
	if err != nil {
		return model.Session{}, err
	}

	a.logger.Info("Auth service: user logged in successfully",
		"user_id", user.ID)

	return session, nil
}

func (a *Auth) verifyCredentials(ctx context.Context, email, password string) (model.User, loginFailure, error) {
	user, err := a.userStore.GetByEmail(ctx, email)
	if errors.Is(err, model.ErrNotFound) {
		if dummy := a.dummyDigest(); dummy != "" {
			_, _ = a.hasher.Verify(password, dummy)
		}
		return model.User{}, reasonNotFound, nil
	}
	if err != nil {
		return model.User{}, 0, fmt.Errorf("failed to get user by email: %w", err)
	}

	ok, err := a.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		return model.User{}, 0, fmt.Errorf("failed to verify password: %w", err)
	}
	if !ok {
		return model.User{}, reasonWrongPassword, nil
	}

	return user, 0, nil
}

// Warmup computes the dummy digest up front so the first login for an unknown
// email does not pay for an extra hash.
func (a *Auth) Warmup() {
	a.dummyDigest()
}

func (a *Auth) dummyDigest() string {
	a.dummyOnce.Do(func() {
		hash, err := a.hasher.Hash(dummyPassword)
		if err != nil {
			a.logger.Warn("Auth service: failed to prepare dummy digest",
				"error", err.Error())
			return
		}
		a.dummyHash = hash
	})
	return a.dummyHash
}

func (a *Auth) openSession(user model.User) (model.Session, error) {
	token, err := a.tokens.Issue(user.ID)
	if err != nil {
		a.logger.Error("Auth service: failed to issue token",
			"user_id", user.ID,
			"error", err.Error())
		return model.Session{}, fmt.Errorf("failed to issue token: %w", err)
	}

	user.PasswordHash = ""
	return model.Session{User: user, Token: token}, nil
}

// ResolveSession returns the password-free user a session token belongs to.
func (a *Auth) ResolveSession(ctx context.Context, token string) (model.User, error) {
	userID, err := a.tokens.Parse(token)
	if err != nil {
		return model.User{}, err
	}

	user, err := a.userStore.GetByID(ctx, userID, model.WithoutPasswordHash)
	if errors.Is(err, model.ErrNotFound) {
		a.logger.Info("Auth service: session user no longer exists",
			"user_id", userID)
		return model.User{}, model.ErrUserNotFound
	}
	if err != nil {
		a.logger.Error("Auth service: failed to get session user",
			"user_id", userID,
			"error", err.Error())
		return model.User{}, fmt.Errorf("failed to get user by id: %w", err)
	}

	return user, nil
}
