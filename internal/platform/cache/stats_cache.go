package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/focus-api/internal/domain"
	"github.com/phrazzld/focus-api/internal/platform/logger"
	"github.com/phrazzld/focus-api/internal/store"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "focus:stats:"

// Options configures the Redis connection.
type Options struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// Connect opens a Redis client and verifies it answers.
func Connect(ctx context.Context, opts Options) (*redis.Client, error) {
	const op = "cache.Connect"
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return client, nil
}

// StatsCache wraps a store.UserStatsStore with a Redis read cache that is
// refreshed on every save.
type StatsCache struct {
	next   store.UserStatsStore
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

var _ store.UserStatsStore = (*StatsCache)(nil)

// NewStatsCache decorates next. A zero ttl keeps entries until overwritten.
func NewStatsCache(next store.UserStatsStore, client *redis.Client, ttl time.Duration, logger *slog.Logger) *StatsCache {
	if next == nil || client == nil {
		panic("stats cache requires a store and a redis client")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &StatsCache{
		next:   next,
		client: client,
		ttl:    ttl,
		logger: logger.With(slog.String("component", "stats_cache")),
	}
}

func cacheKey(userID uuid.UUID) string {
	return keyPrefix + userID.String()
}

// Load implements store.UserStatsStore.Load.
func (c *StatsCache) Load(ctx context.Context, userID uuid.UUID) (*domain.UserStats, error) {
	log := logger.FromContextOrDefault(ctx, c.logger)

	raw, err := c.client.Get(ctx, cacheKey(userID)).Bytes()
	switch {
	case err == nil:
		stats, decodeErr := domain.HydrateSnapshot(raw)
		if decodeErr == nil {
			return &stats, nil
		}
		log.Warn("discarding undecodable cache entry", slog.String("error", decodeErr.Error()))
		c.client.Del(ctx, cacheKey(userID))
	case errors.Is(err, redis.Nil):
	default:
		log.Warn("cache read failed", slog.String("error", err.Error()))
	}

	stats, err := c.next.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	c.put(ctx, userID, stats)
	return stats, nil
}

// Save implements store.UserStatsStore.Save. The entry is evicted when the
// backing store rejects the write so readers never see a snapshot that was
// not persisted.
func (c *StatsCache) Save(ctx context.Context, userID uuid.UUID, stats *domain.UserStats) error {
	if err := c.next.Save(ctx, userID, stats); err != nil {
		if delErr := c.client.Del(ctx, cacheKey(userID)).Err(); delErr != nil {
			logger.FromContextOrDefault(ctx, c.logger).Warn("cache evict failed",
				slog.String("error", delErr.Error()))
		}
		return err
	}
	c.put(ctx, userID, stats)
	return nil
}

func (c *StatsCache) put(ctx context.Context, userID uuid.UUID, stats *domain.UserStats) {
	data, err := json.Marshal(stats)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, cacheKey(userID), data, c.ttl).Err(); err != nil {
		logger.FromContextOrDefault(ctx, c.logger).Warn("cache write failed",
			slog.String("error", err.Error()))
	}
}
