package domain

import "context"

// Storage is the only mutation and query surface for entities. Getters
// report an absent entity as (nil, nil); errors are reserved for faults of
// the backing medium.
type Storage interface {
	GetUser(ctx context.Context, id int64) (*User, error)
	GetUserByUsername(ctx context.Context, username string) (*User, error)
	// CreateUser does not check username uniqueness; callers look the
	// username up first.
	CreateUser(ctx context.Context, user NewUser) (*User, error)

	GetHotels(ctx context.Context) ([]*Hotel, error)
	GetHotel(ctx context.Context, id int64) (*Hotel, error)
	CreateHotel(ctx context.Context, hotel NewHotel) (*Hotel, error)

	GetBookings(ctx context.Context, userID int64) ([]*Booking, error)
	CreateBooking(ctx context.Context, booking NewBooking) (*Booking, error)

	SessionStore() SessionStore
}
