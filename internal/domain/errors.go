package domain

import "errors"

var (
	ErrUsernameTaken   = errors.New("username already exists")
	ErrInvalidLogin    = errors.New("invalid username or password")
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("hotel owner capability required")
	ErrHotelNotFound   = errors.New("hotel not found")
	ErrPriceMismatch   = errors.New("totalPrice does not match nights x pricePerNight")
	ErrInvalidDate     = errors.New("invalid date")
)
