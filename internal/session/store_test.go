package session

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"staybook/internal/database"
	"staybook/internal/domain"
	pkgdb "staybook/pkg/database"
	"staybook/pkg/logger"
)

type clock struct {
	t time.Time
}

func (c *clock) now() time.Time { return c.t }

func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newSQLStore(t *testing.T) *SQLStore {
	t.Helper()
	ctx := context.Background()
	cm, err := pkgdb.NewConnectionManager(ctx, "sqlite://:memory:", pkgdb.PoolConfig{}, logger.Nop())
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { cm.Close() })

	if err := database.NewMigrationService(cm.DB(), cm.Dialect(), logger.Nop()).RunMigrations(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return NewSQLStore(cm.DB())
}

func newRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisStore(client, ""), mr
}

// storeContract runs the behaviour every SessionStore shares.
func storeContract(t *testing.T, store domain.SessionStore, c *clock) {
	ctx := context.Background()

	got, err := store.Get(ctx, "missing")
	if err != nil || got != nil {
		t.Fatalf("Get(missing) = %v, %v; want nil, nil", got, err)
	}

	sess := &domain.Session{
		ID:        "abc",
		UserID:    7,
		CreatedAt: c.t.UTC().Truncate(time.Second),
		ExpiresAt: c.t.UTC().Truncate(time.Second).Add(time.Hour),
	}
	if err := store.Set(ctx, sess); err != nil {
		t.Fatalf("Set() error: %v", err)
	}

	got, err = store.Get(ctx, "abc")
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if got == nil || got.UserID != 7 || !got.ExpiresAt.Equal(sess.ExpiresAt) {
		t.Fatalf("Get() = %+v, want %+v", got, sess)
	}

	if err := store.Destroy(ctx, "abc"); err != nil {
		t.Fatalf("Destroy() error: %v", err)
	}
	if got, _ := store.Get(ctx, "abc"); got != nil {
		t.Fatalf("session survived Destroy: %+v", got)
	}
}

func TestMemoryStore(t *testing.T) {
	c := &clock{t: time.Now()}
	store := NewMemoryStore(0)
	store.now = c.now
	defer store.Close()

	storeContract(t, store, c)
}

func TestMemoryStore_ExpiryAndPrune(t *testing.T) {
	ctx := context.Background()
	c := &clock{t: time.Now()}
	store := NewMemoryStore(0)
	store.now = c.now
	defer store.Close()

	store.Set(ctx, &domain.Session{ID: "short", UserID: 1, ExpiresAt: c.t.Add(time.Minute)})
	store.Set(ctx, &domain.Session{ID: "long", UserID: 2, ExpiresAt: c.t.Add(time.Hour)})

	c.advance(2 * time.Minute)

	if got, _ := store.Get(ctx, "short"); got != nil {
		t.Errorf("expired session returned: %+v", got)
	}

	store.Set(ctx, &domain.Session{ID: "stale", UserID: 3, ExpiresAt: c.t.Add(time.Second)})
	c.advance(time.Minute)

	n, err := store.Prune(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("Prune() = %d, want 1", n)
	}
	if got, _ := store.Get(ctx, "long"); got == nil {
		t.Error("live session pruned")
	}
}

func TestSQLStore(t *testing.T) {
	c := &clock{t: time.Now()}
	store := newSQLStore(t)
	store.now = c.now

	storeContract(t, store, c)
}

func TestSQLStore_UpsertAndPrune(t *testing.T) {
	ctx := context.Background()
	c := &clock{t: time.Now().UTC()}
	store := newSQLStore(t)
	store.now = c.now

	sess := &domain.Session{ID: "s1", UserID: 1, CreatedAt: c.t, ExpiresAt: c.t.Add(time.Minute)}
	if err := store.Set(ctx, sess); err != nil {
		t.Fatal(err)
	}
	sess.ExpiresAt = c.t.Add(time.Hour)
	if err := store.Set(ctx, sess); err != nil {
		t.Fatalf("second Set() error: %v", err)
	}
	store.Set(ctx, &domain.Session{ID: "s2", UserID: 2, CreatedAt: c.t, ExpiresAt: c.t.Add(time.Minute)})

	c.advance(10 * time.Minute)

	if got, _ := store.Get(ctx, "s2"); got != nil {
		t.Errorf("expired session returned: %+v", got)
	}

	n, err := store.Prune(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("Prune() = %d, want 1", n)
	}
	if got, _ := store.Get(ctx, "s1"); got == nil {
		t.Error("extended session should survive")
	}
}

type noRowCountDB struct {
	*sql.DB
}

func (noRowCountDB) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return driver.RowsAffected(0), nil
}

type unknownRowCount struct{}

func (unknownRowCount) LastInsertId() (int64, error) { return 0, errors.New("no insert id") }
func (unknownRowCount) RowsAffected() (int64, error) { return 0, errors.New("row count unavailable") }

type unknownRowCountDB struct {
	noRowCountDB
}

func (unknownRowCountDB) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return unknownRowCount{}, nil
}

func TestSQLStore_PruneReportsRowCountError(t *testing.T) {
	store := NewSQLStore(noRowCountDB{})
	if n, err := store.Prune(context.Background()); n != 0 || err != nil {
		t.Fatalf("Prune() = %d, %v; want 0, nil", n, err)
	}

	store = NewSQLStore(unknownRowCountDB{})
	if _, err := store.Prune(context.Background()); err == nil {
		t.Error("Prune() swallowed the RowsAffected error")
	}
}

func TestRedisStore(t *testing.T) {
	c := &clock{t: time.Now()}
	store, _ := newRedisStore(t)
	store.now = c.now

	storeContract(t, store, c)
}

func TestRedisStore_TTL(t *testing.T) {
	ctx := context.Background()
	store, mr := newRedisStore(t)

	store.Set(ctx, &domain.Session{ID: "r1", UserID: 1, ExpiresAt: time.Now().Add(time.Minute)})
	if !mr.Exists("sess:r1") {
		t.Fatal("key not written with prefix")
	}
	if ttl := mr.TTL("sess:r1"); ttl <= 0 || ttl > time.Minute {
		t.Errorf("ttl = %s", ttl)
	}

	mr.FastForward(2 * time.Minute)
	if got, _ := store.Get(ctx, "r1"); got != nil {
		t.Errorf("session outlived its ttl: %+v", got)
	}

	if n, err := store.Prune(ctx); n != 0 || err != nil {
		t.Errorf("Prune() = %d, %v", n, err)
	}
}

func TestRunJanitor_StopsWithContext(t *testing.T) {
	store := NewMemoryStore(0)
	defer store.Close()

	c := &clock{t: time.Now()}
	store.now = c.now
	store.Set(context.Background(), &domain.Session{ID: "old", ExpiresAt: c.t.Add(time.Millisecond)})
	c.advance(time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		RunJanitor(ctx, store, 5*time.Millisecond, logger.Nop())
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for store.Len() > 0 {
		select {
		case <-deadline:
			t.Fatal("janitor never pruned")
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("janitor did not stop")
	}
}
