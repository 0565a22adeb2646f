package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_MemoryBackendDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("STORAGE_BACKEND", "memory")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Server.Port != "5000" {
		t.Errorf("port = %q, want 5000", cfg.Server.Port)
	}
	if cfg.Session.TTL != 7*24*time.Hour {
		t.Errorf("session ttl = %s", cfg.Session.TTL)
	}
	if cfg.Session.Secret == "" {
		t.Error("development secret should be filled in")
	}
	if cfg.Cache.MaxSize != 1000 {
		t.Errorf("cache max size = %d", cfg.Cache.MaxSize)
	}
}

func TestLoad_SQLBackendRequiresDatabaseURL(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "sql")
	t.Setenv("DATABASE_URL", "")

	if _, err := Load(filepath.Join(t.TempDir(), "missing.env")); err == nil {
		t.Fatal("expected error without DATABASE_URL")
	}
}

func TestLoad_ProductionRequiresSecret(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("STORAGE_BACKEND", "memory")
	t.Setenv("SESSION_SECRET", "")

	if _, err := Load(filepath.Join(t.TempDir(), "missing.env")); err == nil {
		t.Fatal("expected error without SESSION_SECRET in production")
	}
}

func TestLoad_EnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	content := "STORAGE_BACKEND=sql\nDATABASE_URL=sqlite://file.db\nSESSION_SECRET=s3cret\nSERVER_PORT=8088\nSESSION_TTL=2h\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	for _, k := range []string{"STORAGE_BACKEND", "DATABASE_URL", "SESSION_SECRET", "SERVER_PORT", "SESSION_TTL"} {
		k := k
		old, had := os.LookupEnv(k)
		os.Unsetenv(k)
		t.Cleanup(func() {
			if had {
				os.Setenv(k, old)
			} else {
				os.Unsetenv(k)
			}
		})
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Database.URL != "sqlite://file.db" || cfg.Server.Port != "8088" {
		t.Errorf("env file not applied: %+v", cfg)
	}
	if cfg.Session.TTL != 2*time.Hour {
		t.Errorf("session ttl = %s, want 2h", cfg.Session.TTL)
	}
}

func TestValidate_UnknownBackend(t *testing.T) {
	cfg := &Config{AppEnv: "development", Storage: StorageConfig{Backend: "mongo"}, Session: SessionConfig{TTL: time.Hour}}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}
