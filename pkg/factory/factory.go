package factory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"staybook/internal/api"
	"staybook/internal/api/middleware"
	"staybook/internal/auth"
	"staybook/internal/config"
	"staybook/internal/database"
	"staybook/internal/domain"
	"staybook/internal/repository"
	"staybook/internal/service"
	"staybook/internal/session"
	"staybook/internal/validation"
	"staybook/pkg/cache"
	pkgdb "staybook/pkg/database"
	"staybook/pkg/logger"
	"staybook/pkg/redis"
)

type Factory interface {
	GetLogger() logger.Logger
	GetConfig() *config.Config
	GetStorage() domain.Storage
	GetRedisClient() *goredis.Client
	GetCache() cache.Cache
	GetWarmUpManager() *cache.WarmUpManager
	GetSessionManager() *session.Manager
	GetRateLimiter() *middleware.IPRateLimiter

	GetHotelService() domain.HotelService
	GetBookingService() domain.BookingService
	GetAuthService() *auth.Service

	Handler() http.Handler
	Close() error
}

type AppFactory struct {
	config      *config.Config
	logger      logger.Logger
	db          *pkgdb.ConnectionManager
	redisClient *goredis.Client

	storage  domain.Storage
	sessions domain.SessionStore
	manager  *session.Manager

	cache         cache.Cache
	cacheManager  *cache.CacheManager
	warmUpManager *cache.WarmUpManager
	limiter       *middleware.IPRateLimiter

	validator      *validation.Validator
	authService    *auth.Service
	hotelService   domain.HotelService
	bookingService domain.BookingService

	closers []io.Closer
}

var _ Factory = (*AppFactory)(nil)

// NewFactory connects every backend cfg names, runs migrations and seeding,
// and wires the services. Nothing listens yet when it returns.
func NewFactory(ctx context.Context, cfg *config.Config, log logger.Logger) (*AppFactory, error) {
	f := &AppFactory{
		config:    cfg,
		logger:    log,
		validator: validation.New(),
	}

	steps := []func(ctx context.Context) error{
		f.initRedis,
		f.initStorage,
		f.initCache,
		f.initSessions,
	}
	for _, step := range steps {
		if err := step(ctx); err != nil {
			f.Close()
			return nil, err
		}
	}

	f.initServices()

	return f, nil
}

func (f *AppFactory) initRedis(ctx context.Context) error {
	if f.config.Redis.Addr == "" {
		return nil
	}

	client, err := redis.NewClient(ctx, redis.Options{
		Addr:     f.config.Redis.Addr,
		Password: f.config.Redis.Password,
		DB:       f.config.Redis.DB,
	})
	if err != nil {
		return err
	}

	f.redisClient = client
	f.closers = append(f.closers, client)
	f.logger.Info("Redis connected", map[string]interface{}{"addr": f.config.Redis.Addr})
	return nil
}

func (f *AppFactory) initStorage(ctx context.Context) error {
	switch f.config.Storage.Backend {
	case config.BackendMemory:
		var sessions domain.SessionStore
		if f.redisClient != nil {
			sessions = session.NewRedisStore(f.redisClient, "")
		} else {
			mem := session.NewMemoryStore(0)
			f.closers = append(f.closers, closerFunc(mem.Close))
			sessions = mem
		}

		store := repository.NewMemoryStorage(sessions, f.logger)
		n, err := repository.SeedSampleHotels(ctx, store)
		if err != nil {
			return fmt.Errorf("failed to seed memory storage: %w", err)
		}
		f.logger.Info("Memory storage ready", map[string]interface{}{"seeded_hotels": n})

		f.storage = store
		f.sessions = sessions
		return nil

	case config.BackendSQL:
		cm, err := pkgdb.NewConnectionManager(ctx, f.config.Database.URL, pkgdb.PoolConfig{
			MaxOpenConns:    f.config.Database.MaxOpenConns,
			MaxIdleConns:    f.config.Database.MaxIdleConns,
			ConnMaxLifetime: f.config.Database.ConnMaxLifetime,
		}, f.logger)
		if err != nil {
			return err
		}
		f.db = cm
		f.closers = append(f.closers, cm)

		migrations := database.NewMigrationService(cm.DB(), cm.Dialect(), f.logger)
		if err := migrations.RunMigrations(ctx, repository.SeedMigration(f.logger)); err != nil {
			return err
		}

		var sessions domain.SessionStore = session.NewSQLStore(cm.DB())
		if f.redisClient != nil {
			sessions = session.NewRedisStore(f.redisClient, "")
		}

		f.storage = repository.NewSQLStorage(cm.DB(), sessions, f.logger)
		f.sessions = sessions
		return nil

	default:
		return fmt.Errorf("unknown storage backend %q", f.config.Storage.Backend)
	}
}

func (f *AppFactory) initCache(ctx context.Context) error {
	if f.redisClient != nil {
		f.cache = cache.NewRedisCache(f.redisClient, f.logger, "staybook")
	} else {
		local := cache.NewLocalCache(f.config.Cache.MaxSize, f.logger)
		f.closers = append(f.closers, closerFunc(local.Close))
		f.cache = local
	}
	f.cacheManager = cache.NewCacheManager(f.cache, f.logger)
	return nil
}

func (f *AppFactory) initSessions(ctx context.Context) error {
	manager, err := session.NewManager(f.sessions, session.ManagerConfig{
		Secret: f.config.Session.Secret,
		TTL:    f.config.Session.TTL,
		Secure: f.config.Session.SecureCookie,
	})
	if err != nil {
		return err
	}
	f.manager = manager
	return nil
}

func (f *AppFactory) initServices() {
	f.authService = auth.NewService(f.storage, f.validator, f.logger)

	// Create base hotel service first
	baseHotels := service.NewHotelService(f.storage, f.validator, f.logger)
	// Wrap with caching
	f.hotelService = service.NewCachedHotelService(baseHotels, f.cacheManager, f.config.Cache.TTL, f.logger)

	f.bookingService = service.NewBookingService(f.storage, f.hotelService, f.validator, f.logger)

	f.warmUpManager = cache.NewWarmUpManager(f.cache, baseHotels, f.config.Cache.TTL, f.logger)

	f.limiter = middleware.NewIPRateLimiter(f.config.RateLimit.LoginPerMinute, f.config.RateLimit.LoginBurst, 10*time.Minute)
}

func (f *AppFactory) healthChecks() []api.Check {
	checks := make([]api.Check, 0, 3)

	if f.db != nil {
		checks = append(checks, api.Check{Name: "database", Ping: f.db.Ping, Stats: f.db.GetStats})
	} else {
		checks = append(checks, api.Check{Name: "storage", Ping: func(ctx context.Context) error {
			_, err := f.storage.GetHotels(ctx)
			return err
		}})
	}

	if f.redisClient != nil {
		client := f.redisClient
		checks = append(checks, api.Check{
			Name:  "redis",
			Ping:  func(ctx context.Context) error { return client.Ping(ctx).Err() },
			Stats: func() map[string]interface{} { return redis.Stats(client) },
		})
	}

	checks = append(checks, api.Check{Name: "cache", Ping: f.cache.Ping})
	return checks
}

// Handler builds the HTTP routes over the wired services.
func (f *AppFactory) Handler() http.Handler {
	return api.NewRouter(api.RouterConfig{
		Hotels:   api.NewHotelHandler(f.hotelService, f.logger),
		Bookings: api.NewBookingHandler(f.bookingService, f.logger),
		Auth:     api.NewAuthHandler(f.authService, f.manager, f.limiter, f.logger),
		Health:   api.NewHealthHandler(f.logger, f.healthChecks()...),
		Sessions: middleware.NewAuth(f.manager, f.authService, f.logger),
		Logger:   f.logger,
	})
}

// Close releases resources in reverse order of acquisition.
func (f *AppFactory) Close() error {
	var errs []error
	for i := len(f.closers) - 1; i >= 0; i-- {
		if err := f.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	f.closers = nil
	return errors.Join(errs...)
}

type closerFunc func()

func (fn closerFunc) Close() error {
	fn()
	return nil
}

func (f *AppFactory) GetLogger() logger.Logger {
	return f.logger
}

func (f *AppFactory) GetConfig() *config.Config {
	return f.config
}

func (f *AppFactory) GetStorage() domain.Storage {
	return f.storage
}

func (f *AppFactory) GetRedisClient() *goredis.Client {
	return f.redisClient
}

func (f *AppFactory) GetCache() cache.Cache {
	return f.cache
}

func (f *AppFactory) GetWarmUpManager() *cache.WarmUpManager {
	return f.warmUpManager
}

func (f *AppFactory) GetSessionManager() *session.Manager {
	return f.manager
}

func (f *AppFactory) GetRateLimiter() *middleware.IPRateLimiter {
	return f.limiter
}

func (f *AppFactory) GetHotelService() domain.HotelService {
	return f.hotelService
}

func (f *AppFactory) GetBookingService() domain.BookingService {
	return f.bookingService
}

func (f *AppFactory) GetAuthService() *auth.Service {
	return f.authService
}
