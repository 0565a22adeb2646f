package service

import (
	"context"
	"fmt"

	"staybook/internal/domain"
	"staybook/internal/pricing"
	"staybook/internal/validation"
	"staybook/pkg/logger"
	"staybook/pkg/metrics"
)

type HotelService struct {
	store     domain.Storage
	validator *validation.Validator
	logger    logger.Logger
}

func NewHotelService(store domain.Storage, validator *validation.Validator, logger logger.Logger) *HotelService {
	return &HotelService{
		store:     store,
		validator: validator,
		logger:    logger,
	}
}

func (s *HotelService) ListHotels(ctx context.Context) ([]*domain.Hotel, error) {
	hotels, err := s.store.GetHotels(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list hotels: %w", err)
	}
	return hotels, nil
}

// GetHotel returns nil, nil for an unknown id.
func (s *HotelService) GetHotel(ctx context.Context, id int64) (*domain.Hotel, error) {
	hotel, err := s.store.GetHotel(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get hotel: %w", err)
	}
	return hotel, nil
}

// CreateHotel registers a hotel owned by owner, whatever ownerId the input
// carries. Only hotel owners may call it.
func (s *HotelService) CreateHotel(ctx context.Context, owner *domain.User, in domain.NewHotel) (*domain.Hotel, error) {
	if owner == nil {
		return nil, domain.ErrUnauthenticated
	}
	if !owner.IsHotelOwner {
		return nil, domain.ErrForbidden
	}

	ownerID := owner.ID
	in.OwnerID = &ownerID

	if err := s.validator.Struct(in); err != nil {
		return nil, err
	}

	hotel, err := s.store.CreateHotel(ctx, in)
	if err != nil {
		s.logger.ErrorContext(ctx, "Hotel creation failed", map[string]interface{}{"owner_id": owner.ID, "error": err.Error()})
		return nil, fmt.Errorf("failed to create hotel: %w", err)
	}

	metrics.RecordHotelCreated()
	s.logger.InfoContext(ctx, "Hotel created", map[string]interface{}{
		"hotel_id": hotel.ID,
		"owner_id": owner.ID,
	})
	return hotel, nil
}

// QuoteStay prices a stay at the hotel's nightly rate. checkOut must fall
// after checkIn.
func (s *HotelService) QuoteStay(ctx context.Context, hotelID int64, checkIn, checkOut domain.Date) (*domain.Quote, error) {
	if !checkOut.After(checkIn.Time) {
		return nil, &validation.Error{Fields: []validation.FieldError{{Field: "checkOut", Rule: "gtfield"}}}
	}

	hotel, err := s.GetHotel(ctx, hotelID)
	if err != nil {
		return nil, err
	}
	if hotel == nil {
		return nil, domain.ErrHotelNotFound
	}

	quote := pricing.QuoteHotel(hotel, checkIn, checkOut)
	return &quote, nil
}
