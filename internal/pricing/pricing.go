// Package pricing derives booking prices from a stay's dates and a nightly rate.
package pricing

import "staybook/internal/domain"

const secondsPerDay = 24 * 60 * 60

// Nights is the whole-day difference checkOut - checkIn. It is zero or
// negative when checkOut does not come after checkIn; no range check is made.
func Nights(checkIn, checkOut domain.Date) int {
	return int((checkOut.Unix() - checkIn.Unix()) / secondsPerDay)
}

func TotalPrice(checkIn, checkOut domain.Date, pricePerNight float64) float64 {
	return float64(Nights(checkIn, checkOut)) * pricePerNight
}

func NewQuote(checkIn, checkOut domain.Date, pricePerNight float64) domain.Quote {
	nights := Nights(checkIn, checkOut)
	return domain.Quote{
		CheckIn:       checkIn,
		CheckOut:      checkOut,
		Nights:        nights,
		PricePerNight: pricePerNight,
		TotalPrice:    float64(nights) * pricePerNight,
	}
}

// QuoteHotel prices a stay at hotel's current nightly rate.
func QuoteHotel(hotel *domain.Hotel, checkIn, checkOut domain.Date) domain.Quote {
	q := NewQuote(checkIn, checkOut, hotel.PricePerNight)
	q.HotelID = hotel.ID
	return q
}
