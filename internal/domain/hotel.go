package domain

import "context"

type Hotel struct {
	ID             int64    `json:"id"`
	Name           string   `json:"name"`
	Description    string   `json:"description"`
	Location       string   `json:"location"`
	MainImage      string   `json:"mainImage"`
	VirtualTourURL *string  `json:"virtualTourUrl"`
	Amenities      []string `json:"amenities"`
	PricePerNight  float64  `json:"pricePerNight"`
	Rating         float64  `json:"rating"`
	OwnerID        *int64   `json:"ownerId"`
	Category       *string  `json:"category"`
}

// NewHotel is the insertable subset of a Hotel. The validate tags describe
// the strict form accepted over HTTP; seeding bypasses them.
type NewHotel struct {
	Name           string   `json:"name" validate:"required"`
	Description    string   `json:"description" validate:"required"`
	Location       string   `json:"location" validate:"required"`
	MainImage      string   `json:"mainImage" validate:"required"`
	VirtualTourURL *string  `json:"virtualTourUrl" validate:"omitnil,url"`
	Amenities      []string `json:"amenities" validate:"required,min=1,dive,required"`
	PricePerNight  *float64 `json:"pricePerNight" validate:"required,gte=0"`
	Rating         *float64 `json:"rating" validate:"omitempty,gte=0,lte=5"`
	OwnerID        *int64   `json:"ownerId"`
	Category       *string  `json:"category"`
}

type HotelService interface {
	ListHotels(ctx context.Context) ([]*Hotel, error)
	GetHotel(ctx context.Context, id int64) (*Hotel, error)
	CreateHotel(ctx context.Context, owner *User, hotel NewHotel) (*Hotel, error)
	QuoteStay(ctx context.Context, hotelID int64, checkIn, checkOut Date) (*Quote, error)
}
