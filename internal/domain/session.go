package domain

import (
	"context"
	"time"
)

type Session struct {
	ID        string    `json:"id"`
	UserID    int64     `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// SessionStore persists session records for the auth layer.
type SessionStore interface {
	// Get returns nil, nil for unknown or expired sessions.
	Get(ctx context.Context, id string) (*Session, error)
	Set(ctx context.Context, session *Session) error
	Destroy(ctx context.Context, id string) error
	// Prune removes expired sessions and reports how many went away.
	Prune(ctx context.Context) (int, error)
}
