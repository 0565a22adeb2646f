package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"staybook/internal/database"
	"staybook/internal/domain"
	"staybook/internal/session"
	pkgdb "staybook/pkg/database"
	"staybook/pkg/logger"
)

func float(v float64) *float64 { return &v }
func id(v int64) *int64 { return &v }
func str(v string) *string { return &v }

func date(t *testing.T, s string) *domain.Date {
	t.Helper()
	d, err := domain.ParseDate(s)
	if err != nil {
		t.Fatal(err)
	}
	return &d
}

func newMemory(t *testing.T) domain.Storage {
	sessions := session.NewMemoryStore(0)
	t.Cleanup(sessions.Close)
	return NewMemoryStorage(sessions, logger.Nop())
}

func openSQLite(t *testing.T) *pkgdb.ConnectionManager {
	t.Helper()
	cm, err := pkgdb.NewConnectionManager(context.Background(), "sqlite://:memory:", pkgdb.PoolConfig{}, logger.Nop())
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { cm.Close() })
	return cm
}

func newSQL(t *testing.T) domain.Storage {
	cm := openSQLite(t)
	if err := database.NewMigrationService(cm.DB(), cm.Dialect(), logger.Nop()).RunMigrations(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return NewSQLStorage(cm.DB(), session.NewSQLStore(cm.DB()), logger.Nop())
}

var backends = []struct {
	name string
	open func(t *testing.T) domain.Storage
}{
	{"memory", newMemory},
	{"sql", newSQL},
}

func TestStorage_Users(t *testing.T) {
	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			ctx := context.Background()
			store := b.open(t)

			if u, err := store.GetUser(ctx, 99); u != nil || err != nil {
				t.Fatalf("GetUser(99) = %v, %v", u, err)
			}

			alice, err := store.CreateUser(ctx, domain.NewUser{Username: "alice", Password: "hash", Name: "Alice"})
			if err != nil {
				t.Fatalf("CreateUser() error: %v", err)
			}
			bob, _ := store.CreateUser(ctx, domain.NewUser{Username: "bob", Password: "hash", Name: "Bob", IsHotelOwner: true})

			if alice.ID == bob.ID {
				t.Fatalf("duplicate ids: %d", alice.ID)
			}
			if alice.IsHotelOwner {
				t.Error("isHotelOwner should default to false")
			}
			if alice.SubscriptionStatus != domain.SubscriptionInactive || alice.TrialEndsAt != nil || len(alice.Preferences) != 0 {
				t.Errorf("account defaults = %q %v %v", alice.SubscriptionStatus, alice.TrialEndsAt, alice.Preferences)
			}

			got, err := store.GetUserByUsername(ctx, "bob")
			if err != nil {
				t.Fatal(err)
			}
			if got == nil || got.ID != bob.ID || !got.IsHotelOwner || got.Password != "hash" {
				t.Errorf("GetUserByUsername(bob) = %+v", got)
			}

			if u, _ := store.GetUserByUsername(ctx, "Bob"); u != nil {
				t.Errorf("username match must be exact, got %+v", u)
			}

			got, _ = store.GetUser(ctx, alice.ID)
			if got == nil || got.Username != "alice" {
				t.Errorf("GetUser(%d) = %+v", alice.ID, got)
			}
			if got.SubscriptionStatus != domain.SubscriptionInactive || got.TrialEndsAt != nil || got.Preferences == nil || len(got.Preferences) != 0 {
				t.Errorf("stored account defaults = %q %v %v", got.SubscriptionStatus, got.TrialEndsAt, got.Preferences)
			}
		})
	}
}

func TestStorage_Hotels(t *testing.T) {
	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			ctx := context.Background()
			store := b.open(t)

			owner, _ := store.CreateUser(ctx, domain.NewUser{Username: "owner", Password: "x", Name: "Owner", IsHotelOwner: true})

			first, err := store.CreateHotel(ctx, domain.NewHotel{
				Name:          "Lakeside",
				Description:   "Quiet",
				Location:      "Kisumu",
				MainImage:     "https://example.com/a.jpg",
				PricePerNight: float(120),
			})
			if err != nil {
				t.Fatalf("CreateHotel() error: %v", err)
			}
			if first.Rating != 0 || first.OwnerID != nil || first.Amenities == nil {
				t.Errorf("defaults not applied: %+v", first)
			}

			second, err := store.CreateHotel(ctx, domain.NewHotel{
				Name:           "Dunes",
				Description:    "Hot",
				Location:       "Swakopmund",
				MainImage:      "https://example.com/b.jpg",
				PricePerNight:  float(80.5),
				Rating:         float(4.2),
				Amenities:      []string{"wifi", "pool"},
				VirtualTourURL: str("https://example.com/tour"),
				OwnerID:        id(owner.ID),
				Category:       str("desert"),
			})
			if err != nil {
				t.Fatalf("CreateHotel() error: %v", err)
			}

			hotels, err := store.GetHotels(ctx)
			if err != nil {
				t.Fatal(err)
			}
			if len(hotels) != 2 || hotels[0].ID != first.ID || hotels[1].ID != second.ID {
				t.Fatalf("GetHotels() order = %+v", hotels)
			}

			got, _ := store.GetHotel(ctx, second.ID)
			if got == nil {
				t.Fatal("GetHotel() returned nil")
			}
			if got.Rating != 4.2 || got.PricePerNight != 80.5 || len(got.Amenities) != 2 || got.Amenities[1] != "pool" {
				t.Errorf("round trip mismatch: %+v", got)
			}
			if got.OwnerID == nil || *got.OwnerID != owner.ID || *got.Category != "desert" || *got.VirtualTourURL != "https://example.com/tour" {
				t.Errorf("optional fields lost: %+v", got)
			}

			if h, err := store.GetHotel(ctx, 12345); h != nil || err != nil {
				t.Errorf("GetHotel(missing) = %v, %v", h, err)
			}
		})
	}
}

func TestStorage_Bookings(t *testing.T) {
	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			ctx := context.Background()
			store := b.open(t)

			u1, _ := store.CreateUser(ctx, domain.NewUser{Username: "u1", Password: "x", Name: "One"})
			u2, _ := store.CreateUser(ctx, domain.NewUser{Username: "u2", Password: "x", Name: "Two"})
			hotel, _ := store.CreateHotel(ctx, domain.NewHotel{Name: "H", Description: "d", Location: "l", MainImage: "m", PricePerNight: float(100)})

			before := time.Now().UTC().Add(-time.Second)
			booking, err := store.CreateBooking(ctx, domain.NewBooking{
				UserID:     id(u1.ID),
				HotelID:    id(hotel.ID),
				CheckIn:    date(t, "2024-01-01"),
				CheckOut:   date(t, "2024-01-04"),
				TotalPrice: float(300),
			})
			if err != nil {
				t.Fatalf("CreateBooking() error: %v", err)
			}
			if booking.CreatedAt.Before(before) {
				t.Errorf("createdAt not defaulted to now: %s", booking.CreatedAt)
			}

			store.CreateBooking(ctx, domain.NewBooking{
				UserID:     id(u2.ID),
				CheckIn:    date(t, "2024-02-01"),
				CheckOut:   date(t, "2024-02-02"),
				TotalPrice: float(100),
			})
			store.CreateBooking(ctx, domain.NewBooking{
				CheckIn:    date(t, "2024-03-01"),
				CheckOut:   date(t, "2024-03-02"),
				TotalPrice: float(100),
			})

			got, err := store.GetBookings(ctx, u1.ID)
			if err != nil {
				t.Fatal(err)
			}
			if len(got) != 1 {
				t.Fatalf("GetBookings(u1) = %d bookings, want 1", len(got))
			}
			if got[0].TotalPrice != 300 || got[0].CheckIn.String() != "2024-01-01" || got[0].CheckOut.String() != "2024-01-04" {
				t.Errorf("booking mismatch: %+v", got[0])
			}
			if got[0].HotelID == nil || *got[0].HotelID != hotel.ID {
				t.Errorf("hotelId lost: %+v", got[0])
			}
			if !got[0].CreatedAt.Equal(booking.CreatedAt) {
				t.Errorf("createdAt = %s, want %s", got[0].CreatedAt, booking.CreatedAt)
			}

			none, err := store.GetBookings(ctx, 999)
			if err != nil || none == nil || len(none) != 0 {
				t.Errorf("GetBookings(999) = %v, %v; want empty slice", none, err)
			}
		})
	}
}

func TestStorage_SessionStoreWired(t *testing.T) {
	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			ctx := context.Background()
			store := b.open(t).SessionStore()
			if store == nil {
				t.Fatal("SessionStore() is nil")
			}

			now := time.Now().UTC().Truncate(time.Second)
			if err := store.Set(ctx, &domain.Session{ID: "s", UserID: 1, CreatedAt: now, ExpiresAt: now.Add(time.Hour)}); err != nil {
				t.Fatal(err)
			}
			if got, _ := store.Get(ctx, "s"); got == nil || got.UserID != 1 {
				t.Errorf("Get() = %+v", got)
			}
		})
	}
}

func TestMemoryStorage_ConcurrentCreatesGetDistinctIDs(t *testing.T) {
	ctx := context.Background()
	store := newMemory(t)

	const n = 200
	ids := make(chan int64, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h, err := store.CreateHotel(ctx, domain.NewHotel{Name: "h", PricePerNight: float(1)})
			if err != nil {
				t.Error(err)
				return
			}
			ids <- h.ID
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[int64]bool)
	for v := range ids {
		if seen[v] {
			t.Fatalf("id %d assigned twice", v)
		}
		seen[v] = true
	}
	if len(seen) != n {
		t.Errorf("got %d ids, want %d", len(seen), n)
	}
}

func TestMemoryStorage_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := newMemory(t)

	h, _ := store.CreateHotel(ctx, domain.NewHotel{Name: "orig", Amenities: []string{"wifi"}, PricePerNight: float(1)})
	h.Name = "mutated"
	h.Amenities[0] = "mutated"

	got, _ := store.GetHotel(ctx, h.ID)
	if got.Name != "orig" || got.Amenities[0] != "wifi" {
		t.Errorf("stored hotel was mutated through a returned pointer: %+v", got)
	}
}

func TestMemoryStorage_IDsStartAtOne(t *testing.T) {
	ctx := context.Background()
	store := newMemory(t)

	u, _ := store.CreateUser(ctx, domain.NewUser{Username: "a"})
	h, _ := store.CreateHotel(ctx, domain.NewHotel{PricePerNight: float(1)})
	b, _ := store.CreateBooking(ctx, domain.NewBooking{CheckIn: date(t, "2024-01-01"), CheckOut: date(t, "2024-01-02"), TotalPrice: float(1)})

	if u.ID != 1 || h.ID != 1 || b.ID != 1 {
		t.Errorf("ids = %d, %d, %d; want 1, 1, 1", u.ID, h.ID, b.ID)
	}
}

func TestSQLStorage_DuplicateUsernameFails(t *testing.T) {
	ctx := context.Background()
	store := newSQL(t)

	if _, err := store.CreateUser(ctx, domain.NewUser{Username: "dup", Password: "x", Name: "A"}); err != nil {
		t.Fatal(err)
	}
	if _, err := store.CreateUser(ctx, domain.NewUser{Username: "dup", Password: "x", Name: "B"}); err == nil {
		t.Error("expected unique constraint violation")
	}
}

func TestCreateHotel_RequiresPrice(t *testing.T) {
	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			if _, err := b.open(t).CreateHotel(context.Background(), domain.NewHotel{Name: "x"}); err == nil {
				t.Error("expected error for missing pricePerNight")
			}
		})
	}
}
