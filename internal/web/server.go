package web

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/vasudev124/musicmind/internal/auth"
	"github.com/vasudev124/musicmind/internal/cache"
	"github.com/vasudev124/musicmind/internal/config"
	"github.com/vasudev124/musicmind/internal/db"
	"github.com/vasudev124/musicmind/internal/ml"
	"github.com/vasudev124/musicmind/internal/session"
	"github.com/vasudev124/musicmind/internal/spotify"
)

// Server is the HTTP server for the MusicMind API.
type Server struct {
	router   chi.Router
	server   *http.Server
	handlers *Handlers
	logger   zerolog.Logger
}

// NewServer wires the application together: authenticator, session codec,
// Spotify client factory, cache, persistence, and routes.
func NewServer(cfg config.Config, database *db.DB, store cache.Store, logger zerolog.Logger) *Server {
	authenticator := auth.New(cfg.ClientID, cfg.ClientSecret, cfg.RedirectURI)
	codec := session.NewCodec(cfg.CookieKey, cfg.Production())

	handlers := NewHandlers(HandlerDeps{
		OAuth: authenticator,
		Codec: codec,
		Music: func(ctx context.Context, sess session.Session) MusicAPI {
			return spotify.New(authenticator.HTTPClient(ctx, sess.Token()))
		},
		Users:       database.Users(),
		Snapshots:   database.Analytics(),
		Cache:       store,
		Search:      ml.NewClient(cfg.MLServiceURL),
		FrontendURL: cfg.FrontendURL,
		Logger:      logger,
	})

	router := chi.NewRouter()
	s := &Server{
		router:   router,
		handlers: handlers,
		logger:   logger.With().Str("component", "server").Logger(),
	}

	s.setupMiddleware(cfg)
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         cfg.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupMiddleware configures middleware for the router.
func (s *Server) setupMiddleware(cfg config.Config) {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger(s.logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.FrontendURL},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
}

// setupRoutes configures routes for the application.
func (s *Server) setupRoutes() {
	h := s.handlers

	s.router.Get("/", h.Root)
	s.router.Get("/health", h.Health)

	// OAuth flow
	s.router.Get("/login", h.Login)
	s.router.Get("/callback", h.Callback)
	s.router.Get("/logout", h.Logout)
	s.router.Get("/auth/logout", h.LogoutAlias)

	// Authenticated API
	s.router.Group(func(r chi.Router) {
		r.Use(h.RequireAuth)

		r.Get("/api/user/profile", h.UserProfile)
		r.Get("/api/analytics/dashboard", h.Dashboard)
		r.Get("/api/analytics/insights", h.Insights)
		r.Get("/api/analytics/history", h.MoodHistory)
		r.Get("/api/analytics/top-songs", h.TopSongs)
		r.Post("/api/search", h.Search)
		r.Get("/friends/search", h.FriendSearch)
		r.Post("/api/recommend/generate", h.RecommendGenerate)
	})
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.server.Addr).Msg("starting server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Run starts the server and handles graceful shutdown on interrupt signals.
func (s *Server) Run() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		if err := s.Start(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-stop:
		s.logger.Info().Msg("shutting down server")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.Shutdown(ctx); err != nil {
		return err
	}

	s.logger.Info().Msg("server stopped")
	return nil
}

// requestLogger emits one structured log line per request.
func requestLogger(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			logger.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Dur("duration", time.Since(start)).
				Str("request_id", middleware.GetReqID(r.Context())).
				Msg("request")
		})
	}
}
