package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	pkgdb "staybook/pkg/database"
	"staybook/pkg/logger"
)

type Migration struct {
	Name string
	Func func(ctx context.Context, tx *sql.Tx, d pkgdb.Dialect) error
}

type MigrationService struct {
	db      *sql.DB
	dialect pkgdb.Dialect
	logger  logger.Logger
}

func NewMigrationService(db *sql.DB, dialect pkgdb.Dialect, logger logger.Logger) *MigrationService {
	return &MigrationService{
		db:      db,
		dialect: dialect,
		logger:  logger,
	}
}

// SchemaMigrations creates every table the storage and session layers use.
func SchemaMigrations() []Migration {
	return []Migration{
		{"create_users_table", CreateUsersTable},
		{"create_hotels_table", CreateHotelsTable},
		{"create_bookings_table", CreateBookingsTable},
		{"create_reviews_table", CreateReviewsTable},
		{"create_sessions_table", CreateSessionsTable},
	}
}

func (m *MigrationService) InitMigrationTable(ctx context.Context) error {
	query := ddl(m.dialect, `
    CREATE TABLE IF NOT EXISTS migrations (
        id {{serial}},
        name TEXT NOT NULL UNIQUE,
        applied_at {{timestamp}} NOT NULL
    )
    `)

	if _, err := m.db.ExecContext(ctx, query); err != nil {
		m.logger.Error("Failed to create migrations table", map[string]interface{}{"error": err.Error()})
		return err
	}

	return nil
}

func (m *MigrationService) IsMigrationApplied(ctx context.Context, name string) (bool, error) {
	var count int
	err := m.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM migrations WHERE name = $1", name).Scan(&count)
	if err != nil {
		m.logger.Error("Failed to check migration state", map[string]interface{}{"name": name, "error": err.Error()})
		return false, err
	}

	return count > 0, nil
}

// ApplyMigration runs migration and records it in one transaction. When
// another process records the same name first, the work is rolled back and
// the migration counts as applied.
func (m *MigrationService) ApplyMigration(ctx context.Context, migration Migration) (err error) {
	applied, err := m.IsMigrationApplied(ctx, migration.Name)
	if err != nil {
		return err
	}

	if applied {
		m.logger.Debug("Migration already applied", map[string]interface{}{"name": migration.Name})
		return nil
	}

	m.logger.Info("Applying migration", map[string]interface{}{"name": migration.Name})

	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		m.logger.Error("Failed to begin transaction", map[string]interface{}{"error": err.Error()})
		return err
	}

	committed := false
	defer func() {
		if !committed {
			tx.Rollback()
			if err != nil {
				m.logger.Error("Migration rolled back", map[string]interface{}{"name": migration.Name, "error": err.Error()})
			}
		}
	}()

	if err = migration.Func(ctx, tx, m.dialect); err != nil {
		return err
	}

	res, err := tx.ExecContext(ctx,
		"INSERT INTO migrations (name, applied_at) VALUES ($1, $2) ON CONFLICT (name) DO NOTHING",
		migration.Name, time.Now().UTC())
	if err != nil {
		return err
	}

	if n, rerr := res.RowsAffected(); rerr == nil && n == 0 {
		m.logger.Warn("Migration applied concurrently, discarding", map[string]interface{}{"name": migration.Name})
		return nil
	}

	if err = tx.Commit(); err != nil {
		m.logger.Error("Failed to commit migration", map[string]interface{}{"error": err.Error()})
		return err
	}
	committed = true

	m.logger.Info("Migration applied", map[string]interface{}{"name": migration.Name})
	return nil
}

// RunMigrations applies the schema followed by extra, in order.
func (m *MigrationService) RunMigrations(ctx context.Context, extra ...Migration) error {
	m.logger.Info("Running migrations", map[string]interface{}{"dialect": m.dialect.Name})

	if err := m.InitMigrationTable(ctx); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	for _, migration := range append(SchemaMigrations(), extra...) {
		if err := m.ApplyMigration(ctx, migration); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", migration.Name, err)
		}
	}

	return nil
}

func ddl(d pkgdb.Dialect, query string) string {
	return strings.NewReplacer(
		"{{serial}}", d.SerialPK,
		"{{timestamp}}", d.TimestampType,
	).Replace(query)
}

func CreateUsersTable(ctx context.Context, tx *sql.Tx, d pkgdb.Dialect) error {
	query := ddl(d, `
    CREATE TABLE IF NOT EXISTS users (
        id {{serial}},
        username TEXT NOT NULL UNIQUE,
        password TEXT NOT NULL,
        name TEXT NOT NULL,
        is_hotel_owner BOOLEAN NOT NULL DEFAULT FALSE,
        trial_ends_at {{timestamp}},
        subscription_status TEXT NOT NULL DEFAULT 'inactive',
        preferences TEXT NOT NULL DEFAULT '[]'
    )
    `)

	_, err := tx.ExecContext(ctx, query)
	return err
}

func CreateHotelsTable(ctx context.Context, tx *sql.Tx, d pkgdb.Dialect) error {
	query := ddl(d, `
    CREATE TABLE IF NOT EXISTS hotels (
        id {{serial}},
        name TEXT NOT NULL,
        description TEXT NOT NULL,
        location TEXT NOT NULL,
        main_image TEXT NOT NULL,
        virtual_tour_url TEXT,
        amenities TEXT NOT NULL DEFAULT '[]',
        price_per_night DOUBLE PRECISION NOT NULL,
        rating DOUBLE PRECISION NOT NULL DEFAULT 0,
        owner_id INTEGER REFERENCES users (id),
        category TEXT
    )
    `)

	_, err := tx.ExecContext(ctx, query)
	return err
}

func CreateBookingsTable(ctx context.Context, tx *sql.Tx, d pkgdb.Dialect) error {
	query := ddl(d, `
    CREATE TABLE IF NOT EXISTS bookings (
        id {{serial}},
        user_id INTEGER REFERENCES users (id),
        hotel_id INTEGER REFERENCES hotels (id),
        check_in DATE NOT NULL,
        check_out DATE NOT NULL,
        total_price DOUBLE PRECISION NOT NULL,
        created_at {{timestamp}} NOT NULL
    );

    CREATE INDEX IF NOT EXISTS bookings_user_id_idx ON bookings (user_id);
    `)

	_, err := tx.ExecContext(ctx, query)
	return err
}

func CreateReviewsTable(ctx context.Context, tx *sql.Tx, d pkgdb.Dialect) error {
	query := ddl(d, `
    CREATE TABLE IF NOT EXISTS reviews (
        id {{serial}},
        user_id INTEGER NOT NULL REFERENCES users (id),
        hotel_id INTEGER NOT NULL REFERENCES hotels (id),
        rating INTEGER NOT NULL,
        comment TEXT,
        created_at {{timestamp}} NOT NULL
    )
    `)

	_, err := tx.ExecContext(ctx, query)
	return err
}

func CreateSessionsTable(ctx context.Context, tx *sql.Tx, d pkgdb.Dialect) error {
	query := ddl(d, `
    CREATE TABLE IF NOT EXISTS sessions (
        sid TEXT PRIMARY KEY,
        user_id INTEGER NOT NULL,
        created_at {{timestamp}} NOT NULL,
        expires_at {{timestamp}} NOT NULL
    );

    CREATE INDEX IF NOT EXISTS sessions_expires_at_idx ON sessions (expires_at);
    `)

	_, err := tx.ExecContext(ctx, query)
	return err
}
