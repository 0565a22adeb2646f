package repository

import (
	"context"
	"sync"
	"time"

	"staybook/internal/domain"
	"staybook/pkg/logger"
)

// MemoryStorage keeps every entity in process memory. Identifiers come from
// per-type counters starting at 1 and are never reused. All state sits
// behind one RWMutex, so concurrent creates always get distinct ids.
type MemoryStorage struct {
	mu sync.RWMutex

	users    map[int64]*domain.User
	hotels   map[int64]*domain.Hotel
	bookings map[int64]*domain.Booking

	// insertion order, for listing
	hotelOrder   []int64
	bookingOrder []int64

	currentUserID    int64
	currentHotelID   int64
	currentBookingID int64

	sessions domain.SessionStore
	logger   logger.Logger
	now      func() time.Time
}

func NewMemoryStorage(sessions domain.SessionStore, logger logger.Logger) *MemoryStorage {
	return &MemoryStorage{
		users:            make(map[int64]*domain.User),
		hotels:           make(map[int64]*domain.Hotel),
		bookings:         make(map[int64]*domain.Booking),
		currentUserID:    1,
		currentHotelID:   1,
		currentBookingID: 1,
		sessions:         sessions,
		logger:           logger,
		now:              time.Now,
	}
}

func (s *MemoryStorage) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	return cloneUser(user), nil
}

func (s *MemoryStorage) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, user := range s.users {
		if user.Username == username {
			return cloneUser(user), nil
		}
	}
	return nil, nil
}

func (s *MemoryStorage) CreateUser(ctx context.Context, in domain.NewUser) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user := buildUser(in)
	user.ID = s.currentUserID
	s.currentUserID++
	s.users[user.ID] = user

	return cloneUser(user), nil
}

func (s *MemoryStorage) GetHotels(ctx context.Context) ([]*domain.Hotel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	hotels := make([]*domain.Hotel, 0, len(s.hotelOrder))
	for _, id := range s.hotelOrder {
		hotels = append(hotels, cloneHotel(s.hotels[id]))
	}
	return hotels, nil
}

func (s *MemoryStorage) GetHotel(ctx context.Context, id int64) (*domain.Hotel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	hotel, ok := s.hotels[id]
	if !ok {
		return nil, nil
	}
	return cloneHotel(hotel), nil
}

func (s *MemoryStorage) CreateHotel(ctx context.Context, in domain.NewHotel) (*domain.Hotel, error) {
	hotel, err := buildHotel(in)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	hotel.ID = s.currentHotelID
	s.currentHotelID++
	s.hotels[hotel.ID] = hotel
	s.hotelOrder = append(s.hotelOrder, hotel.ID)

	s.logger.Debug("Hotel stored in memory", map[string]interface{}{"hotel_id": hotel.ID})
	return cloneHotel(hotel), nil
}

func (s *MemoryStorage) GetBookings(ctx context.Context, userID int64) ([]*domain.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bookings := make([]*domain.Booking, 0)
	for _, id := range s.bookingOrder {
		booking := s.bookings[id]
		if booking.UserID != nil && *booking.UserID == userID {
			bookings = append(bookings, cloneBooking(booking))
		}
	}
	return bookings, nil
}

func (s *MemoryStorage) CreateBooking(ctx context.Context, in domain.NewBooking) (*domain.Booking, error) {
	booking, err := buildBooking(in, s.now)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	booking.ID = s.currentBookingID
	s.currentBookingID++
	s.bookings[booking.ID] = booking
	s.bookingOrder = append(s.bookingOrder, booking.ID)

	s.logger.Debug("Booking stored in memory", map[string]interface{}{"booking_id": booking.ID})
	return cloneBooking(booking), nil
}

func (s *MemoryStorage) SessionStore() domain.SessionStore {
	return s.sessions
}
