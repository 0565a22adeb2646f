package repository

import "staybook/internal/domain"

func cloneInt64(v *int64) *int64 {
	if v == nil {
		return nil
	}
	n := *v
	return &n
}

func cloneString(v *string) *string {
	if v == nil {
		return nil
	}
	s := *v
	return &s
}

func cloneUser(u *domain.User) *domain.User {
	c := *u
	if u.TrialEndsAt != nil {
		t := *u.TrialEndsAt
		c.TrialEndsAt = &t
	}
	c.Preferences = append([]string{}, u.Preferences...)
	return &c
}

func cloneHotel(h *domain.Hotel) *domain.Hotel {
	c := *h
	c.VirtualTourURL = cloneString(h.VirtualTourURL)
	c.OwnerID = cloneInt64(h.OwnerID)
	c.Category = cloneString(h.Category)
	c.Amenities = append([]string{}, h.Amenities...)
	return &c
}

func cloneBooking(b *domain.Booking) *domain.Booking {
	c := *b
	c.UserID = cloneInt64(b.UserID)
	c.HotelID = cloneInt64(b.HotelID)
	return &c
}
