package domain

import "time"

// Review is persisted schema only; no operation reads or writes it yet.
type Review struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId"`
	HotelID   int64     `json:"hotelId"`
	Rating    int       `json:"rating"`
	Comment   *string   `json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
}
