package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"staybook/internal/domain"
	"staybook/pkg/logger"
	"staybook/pkg/metrics"
)

type UserRepository struct {
	db     DBTX
	logger logger.Logger
}

func NewUserRepository(db DBTX, logger logger.Logger) *UserRepository {
	return &UserRepository{
		db:     db,
		logger: logger,
	}
}

const userColumns = `id, username, password, name, is_hotel_owner,
	trial_ends_at, subscription_status, preferences`

func scanUser(row scanner) (*domain.User, error) {
	var (
		user        domain.User
		trialEndsAt sql.NullTime
		preferences string
	)
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Password,
		&user.Name,
		&user.IsHotelOwner,
		&trialEndsAt,
		&user.SubscriptionStatus,
		&preferences,
	)
	if err != nil {
		return nil, err
	}

	if trialEndsAt.Valid {
		t := trialEndsAt.Time.UTC()
		user.TrialEndsAt = &t
	}
	if err := json.Unmarshal([]byte(preferences), &user.Preferences); err != nil {
		return nil, fmt.Errorf("corrupt preferences for user %d: %w", user.ID, err)
	}
	if user.Preferences == nil {
		user.Preferences = []string{}
	}
	return &user, nil
}

// buildUser applies creation defaults: inactive subscription, no trial, no preferences.
func buildUser(in domain.NewUser) *domain.User {
	return &domain.User{
		Username:           in.Username,
		Password:           in.Password,
		Name:               in.Name,
		IsHotelOwner:       in.IsHotelOwner,
		SubscriptionStatus: domain.SubscriptionInactive,
		Preferences:        []string{},
	}
}

func (r *UserRepository) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	defer observe("select", "user", time.Now())

	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		r.logger.ErrorContext(ctx, "Failed to find user by id", map[string]interface{}{"id": id, "error": err.Error()})
		return nil, fmt.Errorf("failed to find user %d: %w", id, err)
	}

	return user, nil
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	defer observe("select", "user", time.Now())

	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, username))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		r.logger.ErrorContext(ctx, "Failed to find user by username", map[string]interface{}{"username": username, "error": err.Error()})
		return nil, fmt.Errorf("failed to find user %q: %w", username, err)
	}

	return user, nil
}

func (r *UserRepository) Create(ctx context.Context, in domain.NewUser) (*domain.User, error) {
	defer observe("insert", "user", time.Now())

	query := `
		INSERT INTO users (username, password, name, is_hotel_owner, subscription_status, preferences)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	user := buildUser(in)
	preferences, err := json.Marshal(user.Preferences)
	if err != nil {
		return nil, fmt.Errorf("failed to encode preferences: %w", err)
	}

	err = r.db.QueryRowContext(ctx, query,
		user.Username,
		user.Password,
		user.Name,
		user.IsHotelOwner,
		user.SubscriptionStatus,
		string(preferences),
	).Scan(&user.ID)

	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to create user", map[string]interface{}{"username": in.Username, "error": err.Error()})
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

func observe(operation, entity string, start time.Time) {
	metrics.RecordDatabaseOperation(operation, entity, time.Since(start))
}
