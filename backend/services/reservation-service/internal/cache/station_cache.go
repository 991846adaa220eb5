// Package cache puts a redis read-through layer in front of station reads.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"smartcharge/backend/services/reservation-service/internal/models"
)

const (
	stationListKey = "stations:all"
	defaultTTL     = 5 * time.Minute
)

// StationStore is the store being cached.
type StationStore interface {
	List(ctx context.Context) ([]models.Station, error)
	GetByID(ctx context.Context, id int64) (*models.Station, error)
	Create(ctx context.Context, s *models.Station) error
	Update(ctx context.Context, s *models.Station) error
	Delete(ctx context.Context, id, ownerID int64) error
}

type kv interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// StationCache serves station reads from redis and invalidates on every write. Redis failures
// are logged and fall through to the store.
type StationCache struct {
	next   StationStore
	client kv
	ttl    time.Duration
	logger *zap.Logger
}

// NewStationCache wraps next. A non-positive ttl falls back to five minutes.
func NewStationCache(next StationStore, client *redis.Client, ttl time.Duration, logger *zap.Logger) *StationCache {
	return newStationCache(next, client, ttl, logger)
}

func newStationCache(next StationStore, client kv, ttl time.Duration, logger *zap.Logger) *StationCache {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &StationCache{next: next, client: client, ttl: ttl, logger: logger}
}

func stationKey(id int64) string {
	return fmt.Sprintf("stations:%d", id)
}

// List implements StationStore.
func (c *StationCache) List(ctx context.Context) ([]models.Station, error) {
	var cached []models.Station
	if c.load(ctx, stationListKey, &cached) {
		return cached, nil
	}
	stations, err := c.next.List(ctx)
	if err != nil {
		return nil, err
	}
	c.store(ctx, stationListKey, stations)
	return stations, nil
}

// GetByID implements StationStore.
func (c *StationCache) GetByID(ctx context.Context, id int64) (*models.Station, error) {
	var cached models.Station
	if c.load(ctx, stationKey(id), &cached) {
		return &cached, nil
	}
	station, err := c.next.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	c.store(ctx, stationKey(id), station)
	return station, nil
}

// Create implements StationStore.
func (c *StationCache) Create(ctx context.Context, s *models.Station) error {
	if err := c.next.Create(ctx, s); err != nil {
		return err
	}
	c.invalidate(ctx)
	return nil
}

// Update implements StationStore.
func (c *StationCache) Update(ctx context.Context, s *models.Station) error {
	if err := c.next.Update(ctx, s); err != nil {
		return err
	}
	c.invalidate(ctx, stationKey(s.ID))
	return nil
}

// Delete implements StationStore.
func (c *StationCache) Delete(ctx context.Context, id, ownerID int64) error {
	if err := c.next.Delete(ctx, id, ownerID); err != nil {
		return err
	}
	c.invalidate(ctx, stationKey(id))
	return nil
}

func (c *StationCache) load(ctx context.Context, key string, dest any) bool {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("station cache read failed", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		c.logger.Warn("station cache entry corrupt", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (c *StationCache) store(ctx context.Context, key string, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.Warn("station cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func (c *StationCache) invalidate(ctx context.Context, keys ...string) {
	keys = append(keys, stationListKey)
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.logger.Warn("station cache invalidation failed", zap.Strings("keys", keys), zap.Error(err))
	}
}
