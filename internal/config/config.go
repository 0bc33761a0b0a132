// Package config provides application configuration loaded from environment
// variables with defaults and validation.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// Environment names recognized in MUSICMIND_ENV / NODE_ENV style settings.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Validation errors for required settings.
var (
	ErrMissingCredentials = errors.New("missing SPOTIFY_CLIENT_ID or SPOTIFY_CLIENT_SECRET environment variable")
	ErrMissingCookieKey   = errors.New("missing COOKIE_KEY environment variable")
	ErrMissingDatabaseURL = errors.New("missing DATABASE_URL environment variable")
)

// Config holds all configuration values for the application.
type Config struct {
	// Server
	Addr string // listen address, e.g. ":8888"
	Env  string // development|production

	// Spotify OAuth
	ClientID     string
	ClientSecret string
	RedirectURI  string // must end in /callback

	// Frontend
	FrontendURL string // origin allowed for CORS and post-login redirects

	// Backends
	DatabaseURL  string // PostgreSQL connection string (required)
	CacheURL     string // Redis URL; empty disables caching
	MLServiceURL string // search sidecar base URL; empty disables ML search

	// Session
	CookieKey string // HMAC signing key for the session cookie

	// Logging
	LogLevel  string // debug|info|warn|error
	LogPretty bool   // console writer instead of JSON
}

// Load reads configuration from environment variables, applies defaults,
// normalizes values, and validates the result.
func Load() (Config, error) {
	cfg := Config{
		Addr:         ":" + getenv("PORT", "8888"),
		Env:          strings.ToLower(getenv("MUSICMIND_ENV", EnvDevelopment)),
		ClientID:     strings.TrimSpace(getenv("SPOTIFY_CLIENT_ID", os.Getenv("CLIENT_ID"))),
		ClientSecret: strings.TrimSpace(getenv("SPOTIFY_CLIENT_SECRET", os.Getenv("CLIENT_SECRET"))),
		RedirectURI:  strings.TrimSpace(getenv("SPOTIFY_REDIRECT_URI", os.Getenv("REDIRECT_URI"))),
		FrontendURL:  getenv("FRONTEND_URL", "http://localhost:5173"),
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		CacheURL:     os.Getenv("CACHE_URL"),
		MLServiceURL: os.Getenv("ML_SERVICE_URL"),
		CookieKey:    os.Getenv("COOKIE_KEY"),
		LogLevel:     strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogPretty:    getbool("LOG_PRETTY", false),
	}

	// The Spotify app registration requires the redirect to land on /callback.
	if cfg.RedirectURI != "" && !strings.HasSuffix(cfg.RedirectURI, "/callback") {
		cfg.RedirectURI = strings.TrimRight(cfg.RedirectURI, "/") + "/callback"
	}

	if !strings.HasPrefix(cfg.FrontendURL, "http") {
		cfg.FrontendURL = "https://" + cfg.FrontendURL
	}
	cfg.FrontendURL = strings.TrimRight(cfg.FrontendURL, "/")

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.ClientID == "" || c.ClientSecret == "" {
		return ErrMissingCredentials
	}
	if c.CookieKey == "" {
		return ErrMissingCookieKey
	}
	if c.DatabaseURL == "" {
		return ErrMissingDatabaseURL
	}
	if c.RedirectURI == "" {
		return fmt.Errorf("missing SPOTIFY_REDIRECT_URI environment variable")
	}
	switch c.Env {
	case EnvDevelopment, EnvProduction:
	default:
		return fmt.Errorf("invalid MUSICMIND_ENV %q", c.Env)
	}
	return nil
}

// Production reports whether the app runs with production cookie settings
// (Secure, SameSite=None for the cross-site frontend).
func (c Config) Production() bool {
	return c.Env == EnvProduction
}

// CacheEnabled reports whether a cache backend is configured.
func (c Config) CacheEnabled() bool {
	return c.CacheURL != ""
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getbool(key string, def bool) bool {
	switch strings.ToLower(os.Getenv(key)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return def
	}
}
