// Command vibe-discovery serves the steerable music discovery API.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/justestif/go-vibe-discovery/internal/catalog"
	"github.com/justestif/go-vibe-discovery/internal/config"
	"github.com/justestif/go-vibe-discovery/internal/db"
	"github.com/justestif/go-vibe-discovery/internal/logging"
	"github.com/justestif/go-vibe-discovery/internal/session"
	"github.com/justestif/go-vibe-discovery/internal/web"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load("")
	if err != nil {
		return err
	}
	logging.Init(cfg.Logging)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	start := time.Now()
	c, err := catalog.LoadFile(cfg.Catalog.Path)
	if err != nil {
		return fmt.Errorf("loading catalog: %w", err)
	}
	logging.Info().
		Str("path", cfg.Catalog.Path).
		Int("items", c.Len()).
		Dur("took", time.Since(start)).
		Msg("catalog loaded")

	engine, err := cfg.Engine.PoolConfig()
	if err != nil {
		return err
	}

	// Sessions live in memory unless a database is configured.
	var (
		store       session.Store = session.NewMemoryStore()
		healthCheck func(context.Context) error
	)
	if cfg.Database.Enabled() {
		database, err := db.New(ctx, cfg.Database.URL, cfg.Database.MaxConns)
		if err != nil {
			return fmt.Errorf("connecting to database: %w", err)
		}
		defer database.Close()

		if err := database.Migrate(ctx); err != nil {
			return fmt.Errorf("migrating database: %w", err)
		}
		store = session.NewDBStore(database)
		healthCheck = database.Ping
		logging.Info().Msg("using database session store")
	}

	registry := session.NewRegistry(c, store,
		session.WithEngineConfig(engine),
		session.WithCategories(cfg.Categories()),
		session.WithSeed(cfg.Engine.Seed),
	)
	if idle := cfg.Server.SessionIdleTimeout; idle > 0 {
		go evictIdle(ctx, registry, idle)
	}

	server := web.NewServer(web.ServerConfig{
		Addr:            cfg.Server.Addr,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		IdleTimeout:     cfg.Server.IdleTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		RateLimit:       cfg.Server.RateLimit,
		CORSOrigins:     cfg.Server.CORSOrigins,
		MoodClusters:    cfg.Engine.MoodClusters,
		HealthCheck:     healthCheck,
	}, registry)

	return server.Run(ctx)
}

// evictIdle periodically drops idle sessions from memory until ctx ends.
func evictIdle(ctx context.Context, registry *session.Registry, idle time.Duration) {
	ticker := time.NewTicker(max(idle/4, time.Minute))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := registry.Evict(idle); n > 0 {
				logging.Info().Int("evicted", n).Int("live", registry.Len()).Msg("evicted idle sessions")
			}
		}
	}
}
