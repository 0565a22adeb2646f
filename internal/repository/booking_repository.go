package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"staybook/internal/domain"
	"staybook/pkg/logger"
)

type BookingRepository struct {
	db     DBTX
	logger logger.Logger
	now    func() time.Time
}

func NewBookingRepository(db DBTX, logger logger.Logger) *BookingRepository {
	return &BookingRepository{
		db:     db,
		logger: logger,
		now:    time.Now,
	}
}

func (r *BookingRepository) FindByUserID(ctx context.Context, userID int64) ([]*domain.Booking, error) {
	defer observe("select", "booking", time.Now())

	query := `
		SELECT id, user_id, hotel_id, check_in, check_out, total_price, created_at
		FROM bookings
		WHERE user_id = $1
		ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to list bookings", map[string]interface{}{"user_id": userID, "error": err.Error()})
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	defer rows.Close()

	bookings := make([]*domain.Booking, 0)
	for rows.Next() {
		var (
			booking domain.Booking
			uid     sql.NullInt64
			hid     sql.NullInt64
		)

		if err := rows.Scan(
			&booking.ID,
			&uid,
			&hid,
			&booking.CheckIn,
			&booking.CheckOut,
			&booking.TotalPrice,
			&booking.CreatedAt,
		); err != nil {
			r.logger.ErrorContext(ctx, "Failed to scan booking", map[string]interface{}{"error": err.Error()})
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}

		booking.UserID = int64Ptr(uid)
		booking.HotelID = int64Ptr(hid)
		booking.CreatedAt = booking.CreatedAt.UTC()
		bookings = append(bookings, &booking)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bookings: %w", err)
	}

	return bookings, nil
}

func (r *BookingRepository) Create(ctx context.Context, in domain.NewBooking) (*domain.Booking, error) {
	defer observe("insert", "booking", time.Now())

	booking, err := buildBooking(in, r.now)
	if err != nil {
		return nil, err
	}

	query := `
		INSERT INTO bookings (user_id, hotel_id, check_in, check_out, total_price, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	err = r.db.QueryRowContext(ctx, query,
		nullInt64(booking.UserID),
		nullInt64(booking.HotelID),
		booking.CheckIn,
		booking.CheckOut,
		booking.TotalPrice,
		booking.CreatedAt,
	).Scan(&booking.ID)

	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to create booking", map[string]interface{}{"error": err.Error()})
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}

	return booking, nil
}

// buildBooking applies creation defaults. createdAt is truncated to the
// microsecond precision the relational engines keep.
func buildBooking(in domain.NewBooking, now func() time.Time) (*domain.Booking, error) {
	if in.CheckIn == nil || in.CheckOut == nil || in.TotalPrice == nil {
		return nil, fmt.Errorf("checkIn, checkOut and totalPrice are required")
	}

	createdAt := now()
	if in.CreatedAt != nil {
		createdAt = *in.CreatedAt
	}

	return &domain.Booking{
		UserID:     cloneInt64(in.UserID),
		HotelID:    cloneInt64(in.HotelID),
		CheckIn:    *in.CheckIn,
		CheckOut:   *in.CheckOut,
		TotalPrice: *in.TotalPrice,
		CreatedAt:  createdAt.UTC().Truncate(time.Microsecond),
	}, nil
}
