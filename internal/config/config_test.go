package config

import (
	"errors"
	"testing"
)

// setRequired sets the minimum environment for Load to succeed.
func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("SPOTIFY_CLIENT_ID", "id")
	t.Setenv("SPOTIFY_CLIENT_SECRET", "secret")
	t.Setenv("SPOTIFY_REDIRECT_URI", "http://localhost:8888/callback")
	t.Setenv("COOKIE_KEY", "signing-key")
	t.Setenv("DATABASE_URL", "postgres://localhost/musicmind")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Addr != ":8888" {
		t.Errorf("Addr = %q, want :8888", cfg.Addr)
	}
	if cfg.Env != EnvDevelopment {
		t.Errorf("Env = %q, want development", cfg.Env)
	}
	if cfg.FrontendURL != "http://localhost:5173" {
		t.Errorf("FrontendURL = %q", cfg.FrontendURL)
	}
	if cfg.Production() {
		t.Error("Production() = true for development env")
	}
	if cfg.CacheEnabled() {
		t.Error("CacheEnabled() = true with no CACHE_URL")
	}
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name    string
		unset   string
		wantErr error
	}{
		{"missing client id", "SPOTIFY_CLIENT_ID", ErrMissingCredentials},
		{"missing client secret", "SPOTIFY_CLIENT_SECRET", ErrMissingCredentials},
		{"missing cookie key", "COOKIE_KEY", ErrMissingCookieKey},
		{"missing database url", "DATABASE_URL", ErrMissingDatabaseURL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequired(t)
			t.Setenv(tt.unset, "")

			_, err := Load()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Load() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadNormalization(t *testing.T) {
	setRequired(t)
	t.Setenv("SPOTIFY_REDIRECT_URI", "https://api.example.com")
	t.Setenv("FRONTEND_URL", "app.example.com/")
	t.Setenv("MUSICMIND_ENV", "production")
	t.Setenv("CACHE_URL", "redis://localhost:6379")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.RedirectURI != "https://api.example.com/callback" {
		t.Errorf("RedirectURI = %q, want callback suffix appended", cfg.RedirectURI)
	}
	if cfg.FrontendURL != "https://app.example.com" {
		t.Errorf("FrontendURL = %q, want https scheme and no trailing slash", cfg.FrontendURL)
	}
	if !cfg.Production() {
		t.Error("Production() = false for production env")
	}
	if !cfg.CacheEnabled() {
		t.Error("CacheEnabled() = false with CACHE_URL set")
	}
}

func TestLoadRejectsUnknownEnv(t *testing.T) {
	setRequired(t)
	t.Setenv("MUSICMIND_ENV", "staging")

	if _, err := Load(); err == nil {
		t.Error("Load() accepted unknown environment name")
	}
}
