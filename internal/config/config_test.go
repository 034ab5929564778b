package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("", true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.HTTPAddr != ":8080" {
		t.Errorf("unexpected http addr %q", cfg.Server.HTTPAddr)
	}
	if cfg.DB.Driver != "sqlite" || !cfg.DB.AutoMigrate {
		t.Errorf("unexpected db defaults %+v", cfg.DB)
	}
	if cfg.Cache.Namespace != "configuration" {
		t.Errorf("unexpected cache namespace %q", cfg.Cache.Namespace)
	}
	if cfg.Cache.Backend != CacheMemory || cfg.Cache.TTL != 5*time.Minute || cfg.Cache.Capacity != 10000 {
		t.Errorf("unexpected cache defaults %+v", cfg.Cache)
	}
	if cfg.Server.RequestTimeout != 30*time.Second {
		t.Errorf("unexpected request timeout %v", cfg.Server.RequestTimeout)
	}
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := writeConfig(t, `
app:
  env: prod
db:
  driver: postgres
  dsn: postgres://localhost/gameconfig
cache:
  backend: redis
  ttl: 1m
redis:
  addr: redis:6379
`)
	t.Setenv("GCFG_SERVER_HTTP_ADDR", ":9090")

	cfg, err := Load(path, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.App.Env != "prod" || cfg.DB.Driver != "postgres" {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.Cache.Backend != CacheRedis || cfg.Cache.TTL != time.Minute || cfg.Redis.Addr != "redis:6379" {
		t.Errorf("cache values not applied: %+v %+v", cfg.Cache, cfg.Redis)
	}
	if cfg.Server.HTTPAddr != ":9090" {
		t.Errorf("env override not applied: %q", cfg.Server.HTTPAddr)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), false); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		cfg, err := Load("", true)
		if err != nil {
			t.Fatal(err)
		}
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{name: "bad driver", mutate: func(c *Config) { c.DB.Driver = "oracle" }, field: "db.driver"},
		{name: "empty dsn", mutate: func(c *Config) { c.DB.DSN = "" }, field: "db.dsn"},
		{name: "bad backend", mutate: func(c *Config) { c.Cache.Backend = "memcache" }, field: "cache.backend"},
		{name: "redis without addr", mutate: func(c *Config) { c.Cache.Backend = CacheRedis; c.Redis.Addr = "" }, field: "redis.addr"},
		{name: "zero ttl", mutate: func(c *Config) { c.Cache.TTL = 0 }, field: "cache.ttl"},
		{name: "empty addr", mutate: func(c *Config) { c.Server.HTTPAddr = "" }, field: "server.http_addr"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)

			var cfgErr *Error
			if err := cfg.Validate(); !errors.As(err, &cfgErr) {
				t.Fatalf("expected *Error, got %v", err)
			}
			if cfgErr.Field != tt.field {
				t.Errorf("expected field %q, got %q", tt.field, cfgErr.Field)
			}
		})
	}
}
