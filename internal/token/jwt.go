package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/dtroode/authkeeper/internal/model"
)

// DefaultTTL is the lifetime of a session token.
const DefaultTTL = 15 * 24 * time.Hour

// ErrEmptySecret is returned by NewJWT when no signing secret is configured.
var ErrEmptySecret = errors.New("jwt secret is not set")

var _ model.TokenManager = (*JWT)(nil)

// Claims represents session token claims.
type Claims struct {
	jwt.RegisteredClaims
	UserID uuid.UUID `json:"userId"`
}

// JWT implements TokenManager backed by symmetric HMAC.
type JWT struct {
	secretKey []byte
	ttl       time.Duration
	now       func() time.Time
}

// Option configures a JWT token manager.
type Option func(*JWT)

// WithClock replaces time.Now for issuing and validating tokens.
func WithClock(now func() time.Time) Option {
	return func(j *JWT) {
		j.now = now
	}
}

// WithTTL overrides DefaultTTL.
func WithTTL(ttl time.Duration) Option {
	return func(j *JWT) {
		j.ttl = ttl
	}
}

// NewJWT creates a new JWT token manager with the provided secret key.
func NewJWT(secretKey string, opts ...Option) (*JWT, error) {
	if secretKey == "" {
		return nil, ErrEmptySecret
	}

	j := &JWT{
		secretKey: []byte(secretKey),
		ttl:       DefaultTTL,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(j)
	}

	return j, nil
}

// TTL returns the lifetime of issued tokens.
func (j *JWT) TTL() time.Duration {
	return j.ttl
}

// Issue creates a signed token for userID that expires after the configured TTL.
func (j *JWT) Issue(userID uuid.UUID) (string, error) {
	now := j.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.ttl)),
		},
		UserID: userID,
	})

	tokenString, err := token.SignedString(j.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}

	return tokenString, nil
}

// Parse validates tokenString and extracts the user ID.
// It returns model.ErrTokenExpired for expired tokens and model.ErrInvalidToken
// for every other validation failure.
func (j *JWT) Parse(tokenString string) (uuid.UUID, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("wrong signing method %v", t.Header["alg"])
		}
		return j.secretKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(j.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return uuid.Nil, fmt.Errorf("%w: %v", model.ErrTokenExpired, err)
		}
		return uuid.Nil, fmt.Errorf("%w: %v", model.ErrInvalidToken, err)
	}
	if !token.Valid || claims.UserID == uuid.Nil {
		return uuid.Nil, model.ErrInvalidToken
	}

	return claims.UserID, nil
}
