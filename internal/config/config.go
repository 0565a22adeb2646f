package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	BackendSQL    = "sql"
	BackendMemory = "memory"
)

type Config struct {
	AppEnv    string `mapstructure:"APP_ENV"`
	LogLevel  string `mapstructure:"LOG_LEVEL"`
	Server    ServerConfig
	Storage   StorageConfig
	Database  DatabaseConfig
	Session   SessionConfig
	Redis     RedisConfig
	Cache     CacheConfig
	RateLimit RateLimitConfig
}

type ServerConfig struct {
	Port    string        `mapstructure:"SERVER_PORT"`
	Timeout time.Duration `mapstructure:"SERVER_TIMEOUT"`
}

type StorageConfig struct {
	Backend string `mapstructure:"STORAGE_BACKEND"`
}

type DatabaseConfig struct {
	URL             string        `mapstructure:"DATABASE_URL"`
	MaxOpenConns    int           `mapstructure:"DB_MAX_OPEN_CONNS"`
	MaxIdleConns    int           `mapstructure:"DB_MAX_IDLE_CONNS"`
	ConnMaxLifetime time.Duration `mapstructure:"DB_CONN_MAX_LIFETIME"`
}

type SessionConfig struct {
	Secret        string        `mapstructure:"SESSION_SECRET"`
	TTL           time.Duration `mapstructure:"SESSION_TTL"`
	SweepInterval time.Duration `mapstructure:"SESSION_SWEEP_INTERVAL"`
	SecureCookie  bool          `mapstructure:"SESSION_SECURE_COOKIE"`
}

// RedisConfig is optional; an empty Addr keeps sessions and cache in the
// storage backend and in process memory.
type RedisConfig struct {
	Addr     string `mapstructure:"REDIS_ADDR"`
	Password string `mapstructure:"REDIS_PASSWORD"`
	DB       int    `mapstructure:"REDIS_DB"`
}

type CacheConfig struct {
	TTL     time.Duration `mapstructure:"CACHE_TTL"`
	MaxSize int64         `mapstructure:"CACHE_MAX_SIZE"`
}

type RateLimitConfig struct {
	LoginPerMinute int `mapstructure:"LOGIN_RATE_PER_MIN"`
	LoginBurst     int `mapstructure:"LOGIN_BURST"`
}

func defaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "production")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("SERVER_PORT", "5000")
	v.SetDefault("SERVER_TIMEOUT", 15*time.Second)
	v.SetDefault("STORAGE_BACKEND", BackendSQL)
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_CONN_MAX_LIFETIME", 30*time.Minute)
	v.SetDefault("SESSION_TTL", 7*24*time.Hour)
	v.SetDefault("SESSION_SWEEP_INTERVAL", 24*time.Hour)
	v.SetDefault("SESSION_SECURE_COOKIE", false)
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CACHE_TTL", 5*time.Minute)
	v.SetDefault("CACHE_MAX_SIZE", 1000)
	v.SetDefault("LOGIN_RATE_PER_MIN", 10)
	v.SetDefault("LOGIN_BURST", 5)
}

// Load reads an optional .env file and then the process environment.
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	v := viper.New()
	defaults(v)
	v.AutomaticEnv()

	var cfg Config

	cfg.AppEnv = v.GetString("APP_ENV")
	cfg.LogLevel = v.GetString("LOG_LEVEL")

	cfg.Server.Port = v.GetString("SERVER_PORT")
	cfg.Server.Timeout = v.GetDuration("SERVER_TIMEOUT")

	cfg.Storage.Backend = strings.ToLower(v.GetString("STORAGE_BACKEND"))

	cfg.Database.URL = v.GetString("DATABASE_URL")
	cfg.Database.MaxOpenConns = v.GetInt("DB_MAX_OPEN_CONNS")
	cfg.Database.MaxIdleConns = v.GetInt("DB_MAX_IDLE_CONNS")
	cfg.Database.ConnMaxLifetime = v.GetDuration("DB_CONN_MAX_LIFETIME")

	cfg.Session.Secret = v.GetString("SESSION_SECRET")
	cfg.Session.TTL = v.GetDuration("SESSION_TTL")
	cfg.Session.SweepInterval = v.GetDuration("SESSION_SWEEP_INTERVAL")
	cfg.Session.SecureCookie = v.GetBool("SESSION_SECURE_COOKIE")

	cfg.Redis.Addr = v.GetString("REDIS_ADDR")
	cfg.Redis.Password = v.GetString("REDIS_PASSWORD")
	cfg.Redis.DB = v.GetInt("REDIS_DB")

	cfg.Cache.TTL = v.GetDuration("CACHE_TTL")
	cfg.Cache.MaxSize = v.GetInt64("CACHE_MAX_SIZE")

	cfg.RateLimit.LoginPerMinute = v.GetInt("LOGIN_RATE_PER_MIN")
	cfg.RateLimit.LoginBurst = v.GetInt("LOGIN_BURST")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case BackendSQL:
		if c.Database.URL == "" {
			return errors.New("DATABASE_URL must be set when STORAGE_BACKEND=sql")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q", c.Storage.Backend)
	}

	if c.Session.Secret == "" {
		if c.IsProduction() {
			return errors.New("SESSION_SECRET must be set in production")
		}
		c.Session.Secret = "staybook-development-secret"
	}

	if c.Session.TTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive, got %s", c.Session.TTL)
	}

	return nil
}

func (c *Config) IsProduction() bool {
	return strings.ToLower(c.AppEnv) == "production"
}
