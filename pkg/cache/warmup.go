package cache

import (
	"context"
	"time"

	"staybook/internal/domain"
	"staybook/pkg/logger"
)

// HotelLister is the read side of domain.HotelService.
type HotelLister interface {
	ListHotels(ctx context.Context) ([]*domain.Hotel, error)
}

// WarmUpManager preloads the hotel list and each hotel's detail entry.
type WarmUpManager struct {
	cache      Cache
	hotels     HotelLister
	expiration time.Duration
	logger     logger.Logger
}

func NewWarmUpManager(cache Cache, hotels HotelLister, expiration time.Duration, logger logger.Logger) *WarmUpManager {
	if expiration <= 0 {
		expiration = DefaultExpiry
	}
	return &WarmUpManager{
		cache:      cache,
		hotels:     hotels,
		expiration: expiration,
		logger:     logger,
	}
}

func (w *WarmUpManager) WarmUpHotels(ctx context.Context) error {
	start := time.Now()

	hotels, err := w.hotels.ListHotels(ctx)
	if err != nil {
		w.logger.Error("Hotel warm-up failed", map[string]interface{}{"error": err.Error()})
		return err
	}

	if err := w.cache.Set(ctx, HotelListKey, hotels, w.expiration); err != nil {
		return err
	}
	for _, hotel := range hotels {
		if err := w.cache.Set(ctx, HotelCacheKey(hotel.ID), hotel, w.expiration); err != nil {
			w.logger.Warn("Hotel cache set failed", map[string]interface{}{
				"hotel_id": hotel.ID,
				"error":    err.Error(),
			})
		}
	}

	w.logger.Info("Hotel cache warmed up", map[string]interface{}{
		"hotels":   len(hotels),
		"duration": time.Since(start).String(),
	})
	return nil
}

// ScheduledWarmUp refreshes the hotel entries every interval until ctx ends.
func (w *WarmUpManager) ScheduledWarmUp(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := w.WarmUpHotels(ctx); err != nil {
				w.logger.Error("Scheduled warm-up failed", map[string]interface{}{"error": err.Error()})
			}
		}
	}
}
