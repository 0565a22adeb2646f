package auth

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"staybook/internal/domain"
	"staybook/internal/validation"
	"staybook/pkg/logger"
	"staybook/pkg/metrics"
)

// Service registers and authenticates users against the storage.
type Service struct {
	store     domain.Storage
	validator *validation.Validator
	logger    logger.Logger
	cost      int

	// serialises the username check and insert in Register
	registerMu sync.Mutex
}

func NewService(store domain.Storage, validator *validation.Validator, logger logger.Logger) *Service {
	return &Service{
		store:     store,
		validator: validator,
		logger:    logger,
		cost:      bcrypt.DefaultCost,
	}
}

// Register creates a user with a hashed password. It returns
// domain.ErrUsernameTaken when the username is in use.
func (s *Service) Register(ctx context.Context, in domain.NewUser) (*domain.User, error) {
	if err := s.validator.Struct(in); err != nil {
		return nil, err
	}

	hash, err := HashPassword(in.Password, s.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	in.Password = hash

	s.registerMu.Lock()
	defer s.registerMu.Unlock()

	existing, err := s.store.GetUserByUsername(ctx, in.Username)
	if err != nil {
		s.logger.ErrorContext(ctx, "Username lookup failed", map[string]interface{}{"username": in.Username, "error": err.Error()})
		return nil, fmt.Errorf("failed to register user: %w", err)
	}
	if existing != nil {
		return nil, domain.ErrUsernameTaken
	}

	user, err := s.store.CreateUser(ctx, in)
	if err != nil {
		s.logger.ErrorContext(ctx, "User creation failed", map[string]interface{}{"username": in.Username, "error": err.Error()})
		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	s.logger.InfoContext(ctx, "User registered", map[string]interface{}{
		"user_id":        user.ID,
		"is_hotel_owner": user.IsHotelOwner,
	})
	return user, nil
}

// Login returns the user whose credentials match, or
// domain.ErrInvalidLogin. Unknown usernames and wrong passwords are not
// told apart.
func (s *Service) Login(ctx context.Context, req domain.LoginRequest) (*domain.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}

	user, err := s.store.GetUserByUsername(ctx, req.Username)
	if err != nil {
		metrics.RecordLogin("error")
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil || !CheckPassword(user.Password, req.Password) {
		metrics.RecordLogin("failure")
		s.logger.WarnContext(ctx, "Login rejected", map[string]interface{}{"username": req.Username})
		return nil, domain.ErrInvalidLogin
	}

	metrics.RecordLogin("success")
	return user, nil
}

// UserForSession resolves the session's user; nil when the user is gone.
func (s *Service) UserForSession(ctx context.Context, sess *domain.Session) (*domain.User, error) {
	if sess == nil {
		return nil, nil
	}
	return s.store.GetUser(ctx, sess.UserID)
}
