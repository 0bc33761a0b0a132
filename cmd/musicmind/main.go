// Command musicmind runs the MusicMind analytics backend.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/vasudev124/musicmind/internal/cache"
	"github.com/vasudev124/musicmind/internal/config"
	"github.com/vasudev124/musicmind/internal/db"
	"github.com/vasudev124/musicmind/internal/web"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Optional; real deployments configure the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logger := newLogger(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	database, err := db.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer database.Close()

	if err := database.Init(ctx); err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}

	// The cache is optional: without CACHE_URL, or if Redis is down at
	// startup, every lookup is a miss and the app recomputes.
	var store cache.Store = cache.Disabled{}
	if cfg.CacheEnabled() {
		redis, err := cache.NewRedis(ctx, cfg.CacheURL, logger)
		if err != nil {
			logger.Warn().Err(err).Msg("cache unavailable, running without it")
		} else {
			defer redis.Close()
			store = redis
		}
	}

	server := web.NewServer(cfg, database, store, logger)
	return server.Run()
}

func newLogger(cfg config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}

	var logger zerolog.Logger
	if cfg.LogPretty {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr})
	} else {
		logger = zerolog.New(os.Stderr)
	}
	return logger.Level(level).With().Timestamp().Logger()
}
