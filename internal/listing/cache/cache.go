package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"rently/internal/listing/models"
	platformredis "rently/internal/platform/redis"
)

const availableKey = "rently:listings:available"

// Browse caches the available-listings feed in Redis as a JSON blob. Misses
// and Redis failures are treated the same: the caller falls through to the
// store. Every rent confirmation and listing mutation invalidates the key,
// so the TTL only bounds staleness if an invalidation is lost.
type Browse struct {
	client *platformredis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewBrowse(client *platformredis.Client, ttl time.Duration, logger *slog.Logger) *Browse {
	if logger == nil {
		logger = slog.Default()
	}
	return &Browse{client: client, ttl: ttl, logger: logger}
}

func (c *Browse) GetAvailable(ctx context.Context) ([]*models.Listing, bool) {
	payload, err := c.client.Get(ctx, availableKey).Bytes()
	if err != nil {
		return nil, false
	}
	var listings []*models.Listing
	if err := json.Unmarshal(payload, &listings); err != nil {
		c.logger.Warn("discarding undecodable browse cache entry", "error", err)
		c.Invalidate(ctx)
		return nil, false
	}
	return listings, true
}

func (c *Browse) SetAvailable(ctx context.Context, listings []*models.Listing) {
	payload, err := json.Marshal(listings)
	if err != nil {
		c.logger.Warn("failed to encode browse cache entry", "error", err)
		return
	}
	if err := c.client.Set(ctx, availableKey, payload, c.ttl).Err(); err != nil {
		c.logger.Warn("failed to write browse cache entry", "error", err)
	}
}

func (c *Browse) Invalidate(ctx context.Context) {
	if err := c.client.Del(ctx, availableKey).Err(); err != nil {
		c.logger.Warn("failed to invalidate browse cache", "error", err)
	}
}
