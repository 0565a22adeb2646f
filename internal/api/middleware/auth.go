package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"staybook/internal/domain"
	"staybook/internal/session"
	"staybook/pkg/logger"
)

type ctxKey struct{}

// UserResolver maps a live session to its user.
type UserResolver interface {
	UserForSession(ctx context.Context, sess *domain.Session) (*domain.User, error)
}

type Auth struct {
	sessions *session.Manager
	users    UserResolver
	logger   logger.Logger
}

func NewAuth(sessions *session.Manager, users UserResolver, logger logger.Logger) *Auth {
	return &Auth{sessions: sessions, users: users, logger: logger}
}

// UserFromContext returns the user attached by RequireAuth, or nil.
func UserFromContext(ctx context.Context) *domain.User {
	user, _ := ctx.Value(ctxKey{}).(*domain.User)
	return user
}

func WithUser(ctx context.Context, user *domain.User) context.Context {
	return context.WithValue(ctx, ctxKey{}, user)
}

// RequireAuth answers 401 unless the request carries a live session whose
// user still exists.
func (a *Auth) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := a.sessions.Load(r)
		if err != nil {
			a.logger.ErrorContext(r.Context(), "Session lookup failed", map[string]interface{}{"error": err.Error()})
			deny(w, http.StatusInternalServerError, "Internal server error")
			return
		}

		user, err := a.users.UserForSession(r.Context(), sess)
		if err != nil {
			a.logger.ErrorContext(r.Context(), "Session user lookup failed", map[string]interface{}{"error": err.Error()})
			deny(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		if user == nil {
			deny(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		next(w, r.WithContext(WithUser(r.Context(), user)))
	}
}

// RequireHotelOwner is RequireAuth plus a 403 for users without the
// hotel owner capability.
func (a *Auth) RequireHotelOwner(next http.HandlerFunc) http.HandlerFunc {
	return a.RequireAuth(func(w http.ResponseWriter, r *http.Request) {
		if !UserFromContext(r.Context()).IsHotelOwner {
			deny(w, http.StatusForbidden, "Only hotel owners can add hotels")
			return
		}
		next(w, r)
	})
}

func deny(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"message": message})
}
