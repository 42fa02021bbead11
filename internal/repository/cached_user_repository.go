package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-tracker/internal/domain"
)

const userCacheKeyPrefix = "ticket-tracker:user:"

// cachedUser holds what assignee resolution needs; the credential never leaves the store.
type cachedUser struct {
	ID       string          `json:"id"`
	Username string          `json:"username"`
	Role     domain.UserRole `json:"role"`
}

type cachedUserRepository struct {
	next   UserRepository
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedUserRepository fronts next with a Redis read-through cache.
// Redis failures are logged and fall back to next, so lookups never fail because of the cache.
func NewCachedUserRepository(next UserRepository, client *redis.Client, ttl time.Duration, logger *zap.Logger) UserRepository {
	if client == nil || ttl <= 0 {
		return next
	}
	return &cachedUserRepository{next: next, client: client, ttl: ttl, logger: logger}
}

func (r *cachedUserRepository) Create(ctx context.Context, user *domain.User) error {
	if err := r.next.Create(ctx, user); err != nil {
		return err
	}
	r.store(ctx, user)
	return nil
}

func (r *cachedUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if user, ok := r.load(ctx, id); ok {
		return user, nil
	}
	user, err := r.next.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	r.store(ctx, user)
	return user, nil
}

// GetByUsername is not cached; it only backs the uniqueness check on create.
func (r *cachedUserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.next.GetByUsername(ctx, username)
}

func (r *cachedUserRepository) load(ctx context.Context, id string) (*domain.User, bool) {
	raw, err := r.client.Get(ctx, userCacheKeyPrefix+id).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.logger.Warn("user cache read failed", zap.String("user_id", id), zap.Error(err))
		}
		return nil, false
	}
	var cached cachedUser
	if err := json.Unmarshal(raw, &cached); err != nil {
		r.logger.Warn("user cache entry corrupt", zap.String("user_id", id), zap.Error(err))
		return nil, false
	}
	return &domain.User{
		ID:       cached.ID,
		Username: cached.Username,
		Role:     cached.Role,
	}, true
}

func (r *cachedUserRepository) store(ctx context.Context, user *domain.User) {
	raw, err := encodeCachedUser(user)
	if err != nil {
		return
	}
	if err := r.client.Set(ctx, userCacheKeyPrefix+user.ID, raw, r.ttl).Err(); err != nil {
		r.logger.Warn("user cache write failed", zap.String("user_id", user.ID), zap.Error(err))
	}
}

func encodeCachedUser(user *domain.User) ([]byte, error) {
	return json.Marshal(cachedUser{
		ID:       user.ID,
		Username: user.Username,
		Role:     user.Role,
	})
}
