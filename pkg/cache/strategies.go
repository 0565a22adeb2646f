package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"staybook/pkg/logger"
	"staybook/pkg/metrics"
)

const (
	HotelPrefix   = "hotel"
	HotelListKey  = "hotel:list"
	HotelByIDKey  = "hotel:id:%d"
	DefaultExpiry = 5 * time.Minute
)

func HotelCacheKey(hotelID int64) string {
	return fmt.Sprintf(HotelByIDKey, hotelID)
}

type CacheStrategy interface {
	// ReadThrough serves key from the cache, or calls fetch and caches its
	// result. A fetch error is returned as is and nothing is cached.
	ReadThrough(ctx context.Context, key string, dest interface{}, fetch func() (interface{}, error), expiration time.Duration) error

	// WriteThrough calls write and caches value once it succeeds.
	WriteThrough(ctx context.Context, key string, value interface{}, write func(value interface{}) error, expiration time.Duration) error

	Invalidate(ctx context.Context, prefix string) error
}

type CacheManager struct {
	cache  Cache
	logger logger.Logger
}

func NewCacheManager(cache Cache, logger logger.Logger) *CacheManager {
	return &CacheManager{
		cache:  cache,
		logger: logger,
	}
}

func (cm *CacheManager) ReadThrough(ctx context.Context, key string, dest interface{}, fetch func() (interface{}, error), expiration time.Duration) error {
	err := cm.cache.Get(ctx, key, dest)
	if err == nil {
		metrics.RecordCacheHit()
		return nil
	}
	metrics.RecordCacheMiss()

	if !errors.Is(err, ErrCacheMiss) {
		// serve from the source anyway
		cm.logger.WarnContext(ctx, "Cache error in read-through", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
	}

	data, err := fetch()
	if err != nil {
		return err
	}

	if err := cm.cache.Set(ctx, key, data, expiration); err != nil {
		cm.logger.WarnContext(ctx, "Cache set error in read-through", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
	}

	return copyData(data, dest)
}

func (cm *CacheManager) WriteThrough(ctx context.Context, key string, value interface{}, write func(value interface{}) error, expiration time.Duration) error {
	if err := write(value); err != nil {
		return err
	}

	if err := cm.cache.Set(ctx, key, value, expiration); err != nil {
		cm.logger.WarnContext(ctx, "Cache set error in write-through", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
	}
	return nil
}

func (cm *CacheManager) Invalidate(ctx context.Context, prefix string) error {
	return cm.cache.InvalidatePrefix(ctx, prefix)
}

func copyData(src, dest interface{}) error {
	if d, ok := dest.(*interface{}); ok {
		*d = src
		return nil
	}
	data, err := json.Marshal(src)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}
