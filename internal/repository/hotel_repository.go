package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"staybook/internal/domain"
	"staybook/pkg/logger"
)

type HotelRepository struct {
	db     DBTX
	logger logger.Logger
}

func NewHotelRepository(db DBTX, logger logger.Logger) *HotelRepository {
	return &HotelRepository{
		db:     db,
		logger: logger,
	}
}

const hotelColumns = `id, name, description, location, main_image, virtual_tour_url,
	amenities, price_per_night, rating, owner_id, category`

func scanHotel(row scanner) (*domain.Hotel, error) {
	var (
		hotel     domain.Hotel
		tourURL   sql.NullString
		amenities string
		ownerID   sql.NullInt64
		category  sql.NullString
	)

	err := row.Scan(
		&hotel.ID,
		&hotel.Name,
		&hotel.Description,
		&hotel.Location,
		&hotel.MainImage,
		&tourURL,
		&amenities,
		&hotel.PricePerNight,
		&hotel.Rating,
		&ownerID,
		&category,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(amenities), &hotel.Amenities); err != nil {
		return nil, fmt.Errorf("corrupt amenities for hotel %d: %w", hotel.ID, err)
	}
	if hotel.Amenities == nil {
		hotel.Amenities = []string{}
	}
	hotel.VirtualTourURL = stringPtr(tourURL)
	hotel.OwnerID = int64Ptr(ownerID)
	hotel.Category = stringPtr(category)

	return &hotel, nil
}

func (r *HotelRepository) FindAll(ctx context.Context) ([]*domain.Hotel, error) {
	defer observe("select", "hotel", time.Now())

	query := `SELECT ` + hotelColumns + ` FROM hotels ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to list hotels", map[string]interface{}{"error": err.Error()})
		return nil, fmt.Errorf("failed to list hotels: %w", err)
	}
	defer rows.Close()

	hotels := make([]*domain.Hotel, 0)
	for rows.Next() {
		hotel, err := scanHotel(rows)
		if err != nil {
			r.logger.ErrorContext(ctx, "Failed to scan hotel", map[string]interface{}{"error": err.Error()})
			return nil, fmt.Errorf("failed to scan hotel: %w", err)
		}
		hotels = append(hotels, hotel)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate hotels: %w", err)
	}

	return hotels, nil
}

func (r *HotelRepository) FindByID(ctx context.Context, id int64) (*domain.Hotel, error) {
	defer observe("select", "hotel", time.Now())

	query := `SELECT ` + hotelColumns + ` FROM hotels WHERE id = $1`

	hotel, err := scanHotel(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		r.logger.ErrorContext(ctx, "Failed to find hotel by id", map[string]interface{}{"id": id, "error": err.Error()})
		return nil, fmt.Errorf("failed to find hotel %d: %w", id, err)
	}

	return hotel, nil
}

func (r *HotelRepository) Create(ctx context.Context, in domain.NewHotel) (*domain.Hotel, error) {
	defer observe("insert", "hotel", time.Now())

	hotel, err := buildHotel(in)
	if err != nil {
		return nil, err
	}

	amenities, err := json.Marshal(hotel.Amenities)
	if err != nil {
		return nil, fmt.Errorf("failed to encode amenities: %w", err)
	}

	query := `
		INSERT INTO hotels (name, description, location, main_image, virtual_tour_url,
			amenities, price_per_night, rating, owner_id, category)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`

	err = r.db.QueryRowContext(ctx, query,
		hotel.Name,
		hotel.Description,
		hotel.Location,
		hotel.MainImage,
		nullString(hotel.VirtualTourURL),
		string(amenities),
		hotel.PricePerNight,
		hotel.Rating,
		nullInt64(hotel.OwnerID),
		nullString(hotel.Category),
	).Scan(&hotel.ID)

	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to create hotel", map[string]interface{}{"name": in.Name, "error": err.Error()})
		return nil, fmt.Errorf("failed to create hotel: %w", err)
	}

	return hotel, nil
}

var errMissingPrice = errors.New("pricePerNight is required")

// buildHotel applies creation defaults: rating 0, no owner, empty amenities.
func buildHotel(in domain.NewHotel) (*domain.Hotel, error) {
	if in.PricePerNight == nil {
		return nil, errMissingPrice
	}

	hotel := &domain.Hotel{
		Name:           in.Name,
		Description:    in.Description,
		Location:       in.Location,
		MainImage:      in.MainImage,
		VirtualTourURL: cloneString(in.VirtualTourURL),
		Amenities:      append([]string{}, in.Amenities...),
		PricePerNight:  *in.PricePerNight,
		OwnerID:        cloneInt64(in.OwnerID),
		Category:       cloneString(in.Category),
	}
	if in.Rating != nil {
		hotel.Rating = *in.Rating
	}

	return hotel, nil
}
