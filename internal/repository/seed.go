package repository

import (
	"context"
	"database/sql"
	"fmt"

	"staybook/internal/database"
	"staybook/internal/domain"
	pkgdb "staybook/pkg/database"
	"staybook/pkg/logger"
)

// HotelSeeder is the part of domain.Storage that seeding needs.
type HotelSeeder interface {
	GetHotels(ctx context.Context) ([]*domain.Hotel, error)
	CreateHotel(ctx context.Context, hotel domain.NewHotel) (*domain.Hotel, error)
}

func SampleHotels() []domain.NewHotel {
	price := func(v float64) *float64 { return &v }

	return []domain.NewHotel{
		{
			Name:          "Serengeti Lodge",
			Description:   "Luxury lodge overlooking the Serengeti plains",
			Location:      "Serengeti, Tanzania",
			MainImage:     "https://images.unsplash.com/photo-1611892440504-42a792e24d32",
			PricePerNight: price(350),
			Rating:        price(4.8),
		},
		{
			Name:          "Cape Coast Resort",
			Description:   "Beachfront resort with historic charm",
			Location:      "Cape Coast, Ghana",
			MainImage:     "https://images.unsplash.com/photo-1582719478250-c89cae4dc85b",
			PricePerNight: price(250),
			Rating:        price(4.5),
		},
	}
}

// SeedSampleHotels adds the sample hotels when the store has none. It
// returns how many were created. The emptiness check and the inserts are
// separate calls, so it must run before the store is shared.
func SeedSampleHotels(ctx context.Context, store HotelSeeder) (int, error) {
	existing, err := store.GetHotels(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to check for existing hotels: %w", err)
	}
	if len(existing) > 0 {
		return 0, nil
	}

	created := 0
	for _, hotel := range SampleHotels() {
		if _, err := store.CreateHotel(ctx, hotel); err != nil {
			return created, fmt.Errorf("failed to seed hotel %q: %w", hotel.Name, err)
		}
		created++
	}

	return created, nil
}

// SeedMigration seeds inside the migration transaction, so the migrations
// table's unique name makes the seed happen once per database.
func SeedMigration(log logger.Logger) database.Migration {
	return database.Migration{
		Name: "seed_sample_hotels",
		Func: func(ctx context.Context, tx *sql.Tx, d pkgdb.Dialect) error {
			n, err := SeedSampleHotels(ctx, NewHotelRepository(tx, log).seeder())
			if err != nil {
				return err
			}
			log.Info("Sample hotels seeded", map[string]interface{}{"count": n})
			return nil
		},
	}
}

type hotelRepoSeeder struct {
	repo *HotelRepository
}

func (r *HotelRepository) seeder() HotelSeeder {
	return hotelRepoSeeder{repo: r}
}

func (s hotelRepoSeeder) GetHotels(ctx context.Context) ([]*domain.Hotel, error) {
	return s.repo.FindAll(ctx)
}

func (s hotelRepoSeeder) CreateHotel(ctx context.Context, hotel domain.NewHotel) (*domain.Hotel, error) {
	return s.repo.Create(ctx, hotel)
}
