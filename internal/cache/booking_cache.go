package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/hotel-booking-service/internal/domain"
)

// BookingViewCache is a redis-backed read-through cache for the
// booking-with-room view, keyed by user id. All failures degrade to misses.
type BookingViewCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewBookingViewCache builds the cache. A nil client disables caching.
func NewBookingViewCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *BookingViewCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BookingViewCache{client: client, ttl: ttl, logger: logger}
}

// Get returns the cached view for the user, if present.
func (c *BookingViewCache) Get(ctx context.Context, userID int64) (*domain.BookingView, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	raw, err := c.client.Get(ctx, cacheKey(userID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Debug("booking view cache get failed", zap.Error(err))
		}
		return nil, false
	}
	var view domain.BookingView
	if err := json.Unmarshal(raw, &view); err != nil {
		c.logger.Debug("booking view cache decode failed", zap.Error(err))
		return nil, false
	}
	return &view, true
}

// Set stores the view for the user with the configured TTL.
func (c *BookingViewCache) Set(ctx context.Context, userID int64, view *domain.BookingView) {
	if c == nil || c.client == nil || view == nil || c.ttl <= 0 {
		return
	}
	raw, err := json.Marshal(view)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, cacheKey(userID), raw, c.ttl).Err(); err != nil {
		c.logger.Debug("booking view cache set failed", zap.Error(err))
	}
}

// Invalidate drops the cached view for the user.
func (c *BookingViewCache) Invalidate(ctx context.Context, userID int64) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Del(ctx, cacheKey(userID)).Err(); err != nil {
		c.logger.Debug("booking view cache invalidate failed", zap.Error(err))
	}
}

func cacheKey(userID int64) string {
	return fmt.Sprintf("booking:view:%d", userID)
}
