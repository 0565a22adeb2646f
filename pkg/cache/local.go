package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/karlseguin/ccache/v3"

	"staybook/pkg/logger"
)

// LocalCache is an in-process Cache on ccache. Values are stored encoded so
// that callers get the same copy semantics as with Redis.
type LocalCache struct {
	cache  *ccache.Cache[[]byte]
	logger logger.Logger
}

func NewLocalCache(maxSize int64, logger logger.Logger) *LocalCache {
	if maxSize <= 0 {
		maxSize = 1000
	}
	return &LocalCache{
		cache:  ccache.New(ccache.Configure[[]byte]().MaxSize(maxSize)),
		logger: logger,
	}
}

func (l *LocalCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		l.logger.Error("Cache set marshal failed", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
		return err
	}
	l.cache.Set(key, data, expiration)
	return nil
}

func (l *LocalCache) Get(ctx context.Context, key string, dest interface{}) error {
	item := l.cache.Get(key)
	if item == nil || item.Expired() {
		return ErrCacheMiss
	}
	return json.Unmarshal(item.Value(), dest)
}

func (l *LocalCache) Delete(ctx context.Context, key string) error {
	l.cache.Delete(key)
	return nil
}

func (l *LocalCache) Exists(ctx context.Context, key string) (bool, error) {
	item := l.cache.Get(key)
	return item != nil && !item.Expired(), nil
}

func (l *LocalCache) InvalidatePrefix(ctx context.Context, prefix string) error {
	n := l.cache.DeletePrefix(prefix)
	l.logger.Debug("Cache prefix invalidated", map[string]interface{}{
		"prefix":       prefix,
		"deleted_keys": n,
	})
	return nil
}

func (l *LocalCache) Ping(ctx context.Context) error {
	return nil
}

func (l *LocalCache) Close() {
	l.cache.Stop()
}
