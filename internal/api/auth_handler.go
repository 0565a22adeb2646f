package api

import (
	"context"
	"net/http"

	"staybook/internal/api/middleware"
	"staybook/internal/domain"
	"staybook/internal/session"
	"staybook/pkg/logger"
)

// Authenticator is the account side of auth.Service.
type Authenticator interface {
	Register(ctx context.Context, in domain.NewUser) (*domain.User, error)
	Login(ctx context.Context, req domain.LoginRequest) (*domain.User, error)
}

type AuthHandler struct {
	accounts Authenticator
	sessions *session.Manager
	limiter  *middleware.IPRateLimiter
	logger   logger.Logger
}

func NewAuthHandler(accounts Authenticator, sessions *session.Manager, limiter *middleware.IPRateLimiter, logger logger.Logger) *AuthHandler {
	return &AuthHandler{
		accounts: accounts,
		sessions: sessions,
		limiter:  limiter,
		logger:   logger,
	}
}

// Register creates the account and logs it in.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var in domain.NewUser
	if !decodeJSON(w, r, &in) {
		return
	}

	user, err := h.accounts.Register(r.Context(), in)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	if _, err := h.sessions.Start(r.Context(), w, user.ID); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.accounts.Login(r.Context(), req)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	if _, err := h.sessions.Start(r.Context(), w, user.ID); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Destroy(w, r); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *AuthHandler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, middleware.UserFromContext(r.Context()))
}

func (h *AuthHandler) RegisterRoutes(mux *http.ServeMux, auth *middleware.Auth) {
	limit := func(next http.HandlerFunc) http.HandlerFunc { return next }
	if h.limiter != nil {
		limit = h.limiter.Limit
	}

	mux.HandleFunc("POST /api/register", limit(h.Register))
	mux.HandleFunc("POST /api/login", limit(h.Login))
	mux.HandleFunc("POST /api/logout", h.Logout)
	mux.HandleFunc("GET /api/user", auth.RequireAuth(h.CurrentUser))
}
