// Package redis caches user lookups made by session resolution.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/dtroode/authkeeper/internal/logger"
	"github.com/dtroode/authkeeper/internal/model"
)

const userKeyPrefix = "user:"

var _ model.UserStore = (*UserCache)(nil)

// UserCache is a read-through cache in front of a UserStore.
// Only password-free lookups by ID are cached; everything else goes to the
// wrapped store. A cached user is served only after the wrapped store confirms
// it still exists, so deletions made outside this service take effect at once.
// Redis failures are logged and never fail the request.
type UserCache struct {
	next   model.UserStore
	rdb    *redis.Client
	ttl    time.Duration
	logger *logger.Logger
}

func NewUserCache(next model.UserStore, rdb *redis.Client, ttl time.Duration, logger *logger.Logger) *UserCache {
	return &UserCache{
		next:   next,
		rdb:    rdb,
		ttl:    ttl,
		logger: logger,
	}
}

// NewClient connects to the Redis server at url and checks it responds.
func NewClient(ctx context.Context, url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return rdb, nil
}

func (c *UserCache) GetByEmail(ctx context.Context, email string) (model.User, error) {
	return c.next.GetByEmail(ctx, email)
}

func (c *UserCache) GetByUsername(ctx context.Context, username string) (model.User, error) {
	return c.next.GetByUsername(ctx, username)
}

func (c *UserCache) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	return c.next.Exists(ctx, id)
}

func (c *UserCache) Create(ctx context.Context, user model.User) (model.User, error) {
	return c.next.Create(ctx, user)
}

func (c *UserCache) GetByID(ctx context.Context, id uuid.UUID, projection model.Projection) (model.User, error) {
	if projection != model.WithoutPasswordHash {
		return c.next.GetByID(ctx, id, projection)
	}

	key := userKey(id)

	user, ok, err := c.get(ctx, key)
	if err != nil {
		c.logger.Warn("User cache: failed to read", "key", key, "error", err)
	}
	if ok {
		exists, err := c.next.Exists(ctx, id)
		switch {
		case err != nil:
			c.logger.Warn("User cache: failed to confirm cached user", "key", key, "error", err)
		case !exists:
			c.evict(ctx, key)
			return model.User{}, model.ErrNotFound
		default:
			return user, nil
		}
	}

	user, err = c.next.GetByID(ctx, id, projection)
	if err != nil {
		return model.User{}, err
	}

	if err := c.set(ctx, key, user); err != nil {
		c.logger.Warn("User cache: failed to write", "key", key, "error", err)
	}

	return user, nil
}

func (c *UserCache) get(ctx context.Context, key string) (model.User, bool, error) {
	data, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return model.User{}, false, nil
	}
	if err != nil {
		return model.User{}, false, err
	}

	var entry cachedUser
	if err := json.Unmarshal(data, &entry); err != nil {
		return model.User{}, false, fmt.Errorf("failed to decode cached user: %w", err)
	}

	return entry.toModel(), true, nil
}

func (c *UserCache) evict(ctx context.Context, key string) {
	if err := c.rdb.Del(ctx, key).Err(); err != nil {
		c.logger.Warn("User cache: failed to evict", "key", key, "error", err)
	}
}

func (c *UserCache) set(ctx context.Context, key string, user model.User) error {
	payload, err := json.Marshal(newCachedUser(user))
	if err != nil {
		return fmt.Errorf("failed to encode user: %w", err)
	}
	return c.rdb.Set(ctx, key, payload, c.ttl).Err()
}

// cachedUser mirrors model.User without the password hash so a hash can
// never end up in Redis.
type cachedUser struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func newCachedUser(u model.User) cachedUser {
	return cachedUser{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func (c cachedUser) toModel() model.User {
	return model.User{
		ID:        c.ID,
		Username:  c.Username,
		Email:     c.Email,
		FirstName: c.FirstName,
		LastName:  c.LastName,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func userKey(id uuid.UUID) string {
	return userKeyPrefix + id.String()
}
