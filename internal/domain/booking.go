package domain

import (
	"context"
	"time"
)

type Booking struct {
	ID         int64     `json:"id"`
	UserID     *int64    `json:"userId"`
	HotelID    *int64    `json:"hotelId"`
	CheckIn    Date      `json:"checkIn"`
	CheckOut   Date      `json:"checkOut"`
	TotalPrice float64   `json:"totalPrice"`
	CreatedAt  time.Time `json:"createdAt"`
}

type NewBooking struct {
	UserID     *int64     `json:"userId"`
	HotelID    *int64     `json:"hotelId"`
	CheckIn    *Date      `json:"checkIn" validate:"required"`
	CheckOut   *Date      `json:"checkOut" validate:"required"`
	TotalPrice *float64   `json:"totalPrice" validate:"required,gte=0"`
	CreatedAt  *time.Time `json:"createdAt"`
}

// Quote is a priced stay: Nights whole days at PricePerNight.
type Quote struct {
	HotelID       int64   `json:"hotelId,omitempty"`
	CheckIn       Date    `json:"checkIn"`
	CheckOut      Date    `json:"checkOut"`
	Nights        int     `json:"nights"`
	PricePerNight float64 `json:"pricePerNight"`
	TotalPrice    float64 `json:"totalPrice"`
}

type BookingService interface {
	ListBookings(ctx context.Context, user *User) ([]*Booking, error)
	CreateBooking(ctx context.Context, user *User, booking NewBooking) (*Booking, error)
}
