package repository

import (
	"context"
	"database/sql"

	"staybook/internal/domain"
	"staybook/pkg/logger"
)

// SQLStorage implements domain.Storage over a relational database. Faults
// from the driver, including constraint violations, are returned wrapped
// and never retried.
type SQLStorage struct {
	users    *UserRepository
	hotels   *HotelRepository
	bookings *BookingRepository
	sessions domain.SessionStore
}

func NewSQLStorage(db *sql.DB, sessions domain.SessionStore, logger logger.Logger) *SQLStorage {
	return &SQLStorage{
		users:    NewUserRepository(db, logger),
		hotels:   NewHotelRepository(db, logger),
		bookings: NewBookingRepository(db, logger),
		sessions: sessions,
	}
}

func (s *SQLStorage) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	return s.users.FindByID(ctx, id)
}

func (s *SQLStorage) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	return s.users.FindByUsername(ctx, username)
}

func (s *SQLStorage) CreateUser(ctx context.Context, user domain.NewUser) (*domain.User, error) {
	return s.users.Create(ctx, user)
}

func (s *SQLStorage) GetHotels(ctx context.Context) ([]*domain.Hotel, error) {
	return s.hotels.FindAll(ctx)
}

func (s *SQLStorage) GetHotel(ctx context.Context, id int64) (*domain.Hotel, error) {
	return s.hotels.FindByID(ctx, id)
}

func (s *SQLStorage) CreateHotel(ctx context.Context, hotel domain.NewHotel) (*domain.Hotel, error) {
	return s.hotels.Create(ctx, hotel)
}

func (s *SQLStorage) GetBookings(ctx context.Context, userID int64) ([]*domain.Booking, error) {
	return s.bookings.FindByUserID(ctx, userID)
}

func (s *SQLStorage) CreateBooking(ctx context.Context, booking domain.NewBooking) (*domain.Booking, error) {
	return s.bookings.Create(ctx, booking)
}

func (s *SQLStorage) SessionStore() domain.SessionStore {
	return s.sessions
}
