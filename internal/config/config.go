// Package config loads the service configuration.
//
// Values are layered, later layers overriding earlier ones:
//
//  1. struct defaults (defaultConfig)
//  2. an optional YAML file (explicit path, CONFIG_PATH, or config.yaml)
//  3. environment variables prefixed with VIBE_, e.g.
//     VIBE_ENGINE_FRESH_INJECTION_RATIO=0.5 -> engine.fresh_injection_ratio
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/justestif/go-vibe-discovery/internal/catalog"
	"github.com/justestif/go-vibe-discovery/internal/logging"
	"github.com/justestif/go-vibe-discovery/internal/pool"
	"github.com/justestif/go-vibe-discovery/internal/validation"
)

// Config is the complete service configuration.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Catalog  CatalogConfig  `koanf:"catalog"`
	Engine   EngineConfig   `koanf:"engine"`
	Database DatabaseConfig `koanf:"database"`
	Logging  logging.Config `koanf:"logging"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr            string        `koanf:"addr" validate:"required"`
	ReadTimeout     time.Duration `koanf:"read_timeout" validate:"gte=0"`
	WriteTimeout    time.Duration `koanf:"write_timeout" validate:"gte=0"`
	IdleTimeout     time.Duration `koanf:"idle_timeout" validate:"gte=0"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gte=0"`

	// RateLimit is the number of requests per minute allowed per client IP.
	// Zero disables rate limiting.
	RateLimit int `koanf:"rate_limit" validate:"gte=0"`

	CORSOrigins []string `koanf:"cors_origins"`

	// SessionIdleTimeout evicts idle sessions from memory; they reload from
	// the store on next use. Zero keeps them forever.
	SessionIdleTimeout time.Duration `koanf:"session_idle_timeout" validate:"gte=0"`
}

// CatalogConfig locates the catalog and its category groups.
type CatalogConfig struct {
	Path string `koanf:"path" validate:"required"`

	// Categories replaces the built-in category groups when set.
	Categories map[string][]string `koanf:"categories"`
}

// EngineConfig holds the discovery engine defaults for new sessions.
type EngineConfig struct {
	FreshInjectionRatio float64 `koanf:"fresh_injection_ratio" validate:"gte=0,lte=1"`
	MinPoolSize         int     `koanf:"min_pool_size" validate:"gte=0"`
	RadiusRelaxation    float64 `koanf:"radius_relaxation" validate:"gt=0,lte=1"`
	RelaxThreshold      float64 `koanf:"relax_threshold" validate:"gte=0,lte=1"`
	Strategy            string  `koanf:"strategy" validate:"oneof=average_centered average-centered random"`
	AvoidLiked          bool    `koanf:"avoid_liked"`
	MoodClusters        int     `koanf:"mood_clusters" validate:"gte=1,lte=12"`

	// Seed fixes every session's random source. Zero seeds randomly.
	Seed uint64 `koanf:"seed"`
}

// DatabaseConfig configures the optional PostgreSQL session store.
type DatabaseConfig struct {
	// URL is a PostgreSQL connection string. Empty keeps sessions in memory.
	URL      string `koanf:"url" validate:"omitempty,url"`
	MaxConns int32  `koanf:"max_conns" validate:"gte=0"`
}

// Enabled reports whether a database is configured.
func (d DatabaseConfig) Enabled() bool {
	return d.URL != ""
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			RateLimit:       300,
			CORSOrigins:     []string{"*"},

			SessionIdleTimeout: time.Hour,
		},
		Catalog: CatalogConfig{
			Path: "data/dataset.csv",
		},
		Engine: EngineConfig{
			FreshInjectionRatio: pool.DefaultFreshInjectionRatio,
			MinPoolSize:         pool.DefaultMinPoolSize,
			RadiusRelaxation:    pool.DefaultRadiusRelaxation,
			RelaxThreshold:      pool.DefaultRelaxThreshold,
			Strategy:            pool.StrategyAverageCentered.String(),
			MoodClusters:        3,
		},
		Database: DatabaseConfig{
			MaxConns: 10,
		},
		Logging: logging.Config{
			Level:  "info",
			Format: "json",
		},
	}
}

// Validate checks struct rules and the cross-field constraints.
func (c *Config) Validate() error {
	if err := validation.Struct(c); err != nil {
		return err
	}
	for name, tags := range c.Catalog.Categories {
		if name == "" {
			return errors.New("catalog.categories: empty category name")
		}
		if len(tags) == 0 {
			return fmt.Errorf("catalog.categories: category %q has no tags", name)
		}
	}
	return nil
}

// Categories returns the configured category groups, or the defaults.
func (c *Config) Categories() catalog.Categories {
	if len(c.Catalog.Categories) == 0 {
		return catalog.DefaultCategories()
	}
	return catalog.Categories(c.Catalog.Categories)
}

// PoolConfig converts the engine section into pool parameters.
func (e EngineConfig) PoolConfig() (pool.Config, error) {
	strategy, err := pool.ParseStrategy(e.Strategy)
	if err != nil {
		return pool.Config{}, fmt.Errorf("engine.strategy: %w", err)
	}
	return pool.Config{
		FreshInjectionRatio: e.FreshInjectionRatio,
		MinPoolSize:         e.MinPoolSize,
		RadiusRelaxation:    e.RadiusRelaxation,
		RelaxThreshold:      e.RelaxThreshold,
		Strategy:            strategy,
		AvoidLiked:          e.AvoidLiked,
	}, nil
}
