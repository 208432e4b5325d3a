package config

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/justestif/go-vibe-discovery/internal/pool"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Addr != ":8080" {
		t.Errorf("Server.Addr = %q, want :8080", cfg.Server.Addr)
	}
	if cfg.Server.ShutdownTimeout != 10*time.Second {
		t.Errorf("Server.ShutdownTimeout = %v", cfg.Server.ShutdownTimeout)
	}
	if cfg.Engine.FreshInjectionRatio != pool.DefaultFreshInjectionRatio {
		t.Errorf("Engine.FreshInjectionRatio = %v", cfg.Engine.FreshInjectionRatio)
	}
	if cfg.Engine.MinPoolSize != pool.DefaultMinPoolSize {
		t.Errorf("Engine.MinPoolSize = %d", cfg.Engine.MinPoolSize)
	}
	if cfg.Engine.Strategy != "average_centered" {
		t.Errorf("Engine.Strategy = %q", cfg.Engine.Strategy)
	}
	if cfg.Database.Enabled() {
		t.Error("database should be disabled by default")
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q", cfg.Logging.Level)
	}
	if !slices.Equal(cfg.Server.CORSOrigins, []string{"*"}) {
		t.Errorf("Server.CORSOrigins = %v", cfg.Server.CORSOrigins)
	}
}

func TestLoad_Env(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("VIBE_ENGINE_FRESH_INJECTION_RATIO", "0.5")
	t.Setenv("VIBE_ENGINE_STRATEGY", "random")
	t.Setenv("VIBE_SERVER_ADDR", ":9000")
	t.Setenv("VIBE_SERVER_READ_TIMEOUT", "3s")
	t.Setenv("VIBE_SERVER_CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("VIBE_LOGGING_LEVEL", "debug")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Engine.FreshInjectionRatio != 0.5 {
		t.Errorf("FreshInjectionRatio = %v, want 0.5", cfg.Engine.FreshInjectionRatio)
	}
	if cfg.Engine.Strategy != "random" {
		t.Errorf("Strategy = %q, want random", cfg.Engine.Strategy)
	}
	if cfg.Server.Addr != ":9000" {
		t.Errorf("Addr = %q, want :9000", cfg.Server.Addr)
	}
	if cfg.Server.ReadTimeout != 3*time.Second {
		t.Errorf("ReadTimeout = %v, want 3s", cfg.Server.ReadTimeout)
	}
	want := []string{"https://a.example", "https://b.example"}
	if !slices.Equal(cfg.Server.CORSOrigins, want) {
		t.Errorf("CORSOrigins = %v, want %v", cfg.Server.CORSOrigins, want)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vibe.yaml")
	body := `
catalog:
  path: /srv/tracks.csv
  categories:
    Chill: [ambient, chill]
engine:
  min_pool_size: 20
  avoid_liked: true
  seed: 7
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Catalog.Path != "/srv/tracks.csv" {
		t.Errorf("Catalog.Path = %q", cfg.Catalog.Path)
	}
	if cfg.Engine.MinPoolSize != 20 || !cfg.Engine.AvoidLiked || cfg.Engine.Seed != 7 {
		t.Errorf("Engine = %+v", cfg.Engine)
	}
	tags, ok := cfg.Categories().Tags("Chill")
	if !ok || !slices.Equal(tags, []string{"ambient", "chill"}) {
		t.Errorf("Chill tags = %v, ok = %v", tags, ok)
	}
	// Untouched values keep their defaults.
	if cfg.Engine.FreshInjectionRatio != pool.DefaultFreshInjectionRatio {
		t.Errorf("FreshInjectionRatio = %v", cfg.Engine.FreshInjectionRatio)
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for a missing explicit config file")
	}
}

func TestLoad_ConfigPathEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	path := filepath.Join(t.TempDir(), "other.yaml")
	if err := os.WriteFile(path, []byte("server:\n  addr: \":7070\"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(ConfigPathEnvVar, path)

	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Addr != ":7070" {
		t.Errorf("Addr = %q, want :7070", cfg.Server.Addr)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "ratio above one", mutate: func(c *Config) { c.Engine.FreshInjectionRatio = 1.5 }, wantErr: "FreshInjectionRatio"},
		{name: "zero relaxation", mutate: func(c *Config) { c.Engine.RadiusRelaxation = 0 }, wantErr: "RadiusRelaxation"},
		{name: "unknown strategy", mutate: func(c *Config) { c.Engine.Strategy = "greedy" }, wantErr: "Strategy"},
		{name: "no addr", mutate: func(c *Config) { c.Server.Addr = "" }, wantErr: "Addr"},
		{name: "bad log format", mutate: func(c *Config) { c.Logging.Format = "xml" }, wantErr: "Format"},
		{name: "bad database url", mutate: func(c *Config) { c.Database.URL = "not a url" }, wantErr: "URL"},
		{name: "empty category", mutate: func(c *Config) {
			c.Catalog.Categories = map[string][]string{"Chill": nil}
		}, wantErr: "no tags"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestEngineConfig_PoolConfig(t *testing.T) {
	cfg := defaultConfig()
	cfg.Engine.Strategy = "random"
	cfg.Engine.AvoidLiked = true

	pc, err := cfg.Engine.PoolConfig()
	if err != nil {
		t.Fatal(err)
	}
	if pc.Strategy != pool.StrategyRandom || !pc.AvoidLiked {
		t.Errorf("PoolConfig() = %+v", pc)
	}

	cfg.Engine.Strategy = "greedy"
	if _, err := cfg.Engine.PoolConfig(); err == nil {
		t.Error("expected error for unknown strategy")
	}
}

func TestEnvTransformFunc(t *testing.T) {
	tests := map[string]string{
		"VIBE_ENGINE_MIN_POOL_SIZE": "engine.min_pool_size",
		"VIBE_SERVER_ADDR":          "server.addr",
		"VIBE_DATABASE_URL":         "database.url",
		"VIBE_DEBUG":                "debug",
	}
	for in, want := range tests {
		if got := envTransformFunc(in); got != want {
			t.Errorf("envTransformFunc(%q) = %q, want %q", in, got, want)
		}
	}
}
