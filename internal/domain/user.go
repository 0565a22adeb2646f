package domain

import "time"

// SubscriptionInactive is the status every new account starts with.
const SubscriptionInactive = "inactive"

type User struct {
	ID                 int64      `json:"id"`
	Username           string     `json:"username"`
	Password           string     `json:"-"`
	Name               string     `json:"name"`
	IsHotelOwner       bool       `json:"isHotelOwner"`
	TrialEndsAt        *time.Time `json:"trialEndsAt"`
	SubscriptionStatus string     `json:"subscriptionStatus"`
	Preferences        []string   `json:"preferences"`
}

// NewUser is the caller-supplied part of a User. Password must already be hashed.
type NewUser struct {
	Username     string `json:"username" validate:"required,min=1,max=64"`
	Password     string `json:"password" validate:"required,min=1"`
	Name         string `json:"name" validate:"required,min=1"`
	IsHotelOwner bool   `json:"isHotelOwner"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}
