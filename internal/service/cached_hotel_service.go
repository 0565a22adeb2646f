package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"staybook/internal/domain"
	"staybook/pkg/cache"
	"staybook/pkg/logger"
)

// CachedHotelService serves hotel reads through a read-through cache. Creating
// a hotel drops the cached list and writes the new hotel through.
//
// listMu keeps a list fill (fetch plus cache set) from interleaving with a
// create in this process, so a list read before the create cannot be stored
// after its invalidation.
type CachedHotelService struct {
	hotels       domain.HotelService
	cacheManager cache.CacheStrategy
	expiration   time.Duration
	logger       logger.Logger
	listMu       sync.RWMutex
}

func NewCachedHotelService(hotels domain.HotelService, cacheManager cache.CacheStrategy, expiration time.Duration, logger logger.Logger) *CachedHotelService {
	if expiration <= 0 {
		expiration = cache.DefaultExpiry
	}
	return &CachedHotelService{
		hotels:       hotels,
		cacheManager: cacheManager,
		expiration:   expiration,
		logger:       logger,
	}
}

func (s *CachedHotelService) ListHotels(ctx context.Context) ([]*domain.Hotel, error) {
	s.listMu.RLock()
	defer s.listMu.RUnlock()

	var hotels []*domain.Hotel
	err := s.cacheManager.ReadThrough(ctx, cache.HotelListKey, &hotels, func() (interface{}, error) {
		return s.hotels.ListHotels(ctx)
	}, s.expiration)
	if err != nil {
		return nil, err
	}
	if hotels == nil {
		hotels = []*domain.Hotel{}
	}
	return hotels, nil
}

func (s *CachedHotelService) GetHotel(ctx context.Context, id int64) (*domain.Hotel, error) {
	var hotel *domain.Hotel
	err := s.cacheManager.ReadThrough(ctx, cache.HotelCacheKey(id), &hotel, func() (interface{}, error) {
		h, err := s.hotels.GetHotel(ctx, id)
		if err != nil {
			return nil, err
		}
		if h == nil {
			// absent hotels are not cached
			return nil, domain.ErrHotelNotFound
		}
		return h, nil
	}, s.expiration)

	if errors.Is(err, domain.ErrHotelNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return hotel, nil
}

func (s *CachedHotelService) CreateHotel(ctx context.Context, owner *domain.User, in domain.NewHotel) (*domain.Hotel, error) {
	s.listMu.Lock()
	defer s.listMu.Unlock()

	hotel, err := s.hotels.CreateHotel(ctx, owner, in)
	if err != nil {
		return nil, err
	}

	dropList := func(interface{}) error {
		return s.cacheManager.Invalidate(ctx, cache.HotelListKey)
	}
	if err := s.cacheManager.WriteThrough(ctx, cache.HotelCacheKey(hotel.ID), hotel, dropList, s.expiration); err != nil {
		s.logger.ErrorContext(ctx, "Hotel cache invalidation failed", map[string]interface{}{
			"hotel_id": hotel.ID,
			"error":    err.Error(),
		})
	}
	return hotel, nil
}

func (s *CachedHotelService) QuoteStay(ctx context.Context, hotelID int64, checkIn, checkOut domain.Date) (*domain.Quote, error) {
	return s.hotels.QuoteStay(ctx, hotelID, checkIn, checkOut)
}
