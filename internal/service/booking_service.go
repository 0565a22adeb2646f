package service

import (
	"context"
	"fmt"
	"math"

	"staybook/internal/domain"
	"staybook/internal/pricing"
	"staybook/internal/validation"
	"staybook/pkg/logger"
	"staybook/pkg/metrics"
	"staybook/pkg/tracing"
)

// priceTolerance absorbs float rounding between client and server totals.
const priceTolerance = 0.005

type BookingService struct {
	store     domain.Storage
	hotels    domain.HotelService
	validator *validation.Validator
	logger    logger.Logger
}

func NewBookingService(store domain.Storage, hotels domain.HotelService, validator *validation.Validator, logger logger.Logger) *BookingService {
	return &BookingService{
		store:     store,
		hotels:    hotels,
		validator: validator,
		logger:    logger,
	}
}

func (s *BookingService) ListBookings(ctx context.Context, user *domain.User) ([]*domain.Booking, error) {
	if user == nil {
		return nil, domain.ErrUnauthenticated
	}

	bookings, err := s.store.GetBookings(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return bookings, nil
}

// CreateBooking books a stay for user. When the booking names a hotel the
// total must equal nights x pricePerNight; an unknown hotel is rejected
// with domain.ErrHotelNotFound.
func (s *BookingService) CreateBooking(ctx context.Context, user *domain.User, in domain.NewBooking) (*domain.Booking, error) {
	ctx, span := tracing.StartSpan(ctx, "BookingService.CreateBooking")
	defer span.End()

	if user == nil {
		return nil, domain.ErrUnauthenticated
	}

	userID := user.ID
	in.UserID = &userID
	in.CreatedAt = nil

	if err := s.validator.Struct(in); err != nil {
		return nil, err
	}

	if in.HotelID != nil {
		quote, err := s.hotels.QuoteStay(ctx, *in.HotelID, *in.CheckIn, *in.CheckOut)
		if err != nil {
			return nil, err
		}
		if math.Abs(quote.TotalPrice-*in.TotalPrice) > priceTolerance {
			s.logger.WarnContext(ctx, "Booking price mismatch", map[string]interface{}{
				"hotel_id": *in.HotelID,
				"expected": quote.TotalPrice,
				"received": *in.TotalPrice,
			})
			return nil, domain.ErrPriceMismatch
		}
	} else if pricing.Nights(*in.CheckIn, *in.CheckOut) <= 0 {
		return nil, &validation.Error{Fields: []validation.FieldError{{Field: "checkOut", Rule: "gtfield"}}}
	}

	booking, err := s.store.CreateBooking(ctx, in)
	if err != nil {
		span.RecordError(err)
		s.logger.ErrorContext(ctx, "Booking creation failed", map[string]interface{}{"user_id": user.ID, "error": err.Error()})
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}

	metrics.RecordBooking(booking.TotalPrice)
	s.logger.InfoContext(ctx, "Booking created", map[string]interface{}{
		"booking_id":  booking.ID,
		"user_id":     user.ID,
		"total_price": booking.TotalPrice,
	})
	return booking, nil
}
