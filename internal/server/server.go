// Package server wires the HTTP server: routes, middleware, and the
// dependency graph from database up to handlers. main.go stays minimal;
// everything assembled here can also be assembled by a test.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/jvolkers/stagemarkt-api/internal/auth"
	"github.com/jvolkers/stagemarkt-api/internal/auth/provider"
	"github.com/jvolkers/stagemarkt-api/internal/auth/provider/facebook"
	"github.com/jvolkers/stagemarkt-api/internal/auth/provider/linkedin"
	"github.com/jvolkers/stagemarkt-api/internal/config"
	"github.com/jvolkers/stagemarkt-api/internal/handler"
	"github.com/jvolkers/stagemarkt-api/internal/middleware"
	sqliteRepo "github.com/jvolkers/stagemarkt-api/internal/repository/sqlite"
	"github.com/jvolkers/stagemarkt-api/internal/service"
)

// Server holds the router and the resources it owns. The database
// connection is closed during graceful shutdown.
type Server struct {
	router *chi.Mux
	cfg    config.Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New assembles the full dependency chain:
//
//	sqlite.DB → repositories → services → handlers → routes
//
// The token configuration (issuer, audience, signing key, clock skew) is
// built once here and never mutated afterwards.
func New(cfg config.Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		cfg:    cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// setupRoutes configures middleware, builds the services, and mounts all
// route handlers.
func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	tokens, err := auth.NewTokenService(auth.TokenConfig{
		Issuer:     s.cfg.JWTIssuer,
		Audience:   s.cfg.JWTAudience,
		SigningKey: []byte(s.cfg.JWTSigningKey),
		ClockSkew:  s.cfg.JWTClockSkew,
	})
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}

	passwords := auth.NewPasswordService()

	providers := provider.NewRegistry(
		facebook.New(s.cfg.FacebookClientID, s.cfg.FacebookClientSecret, s.cfg.ProviderTimeout),
		linkedin.New(s.cfg.LinkedInClientID, s.cfg.LinkedInClientSecret, s.cfg.ProviderTimeout),
	)

	resolver := service.NewIdentityResolver(s.db, passwords, s.logger)
	authService := service.NewAuthService(
		s.db, resolver, providers, tokens, passwords, s.cfg.JWTTokenTTL, s.logger)
	userService := service.NewUserService(s.db, s.db, s.db, s.logger)
	vacancyService := service.NewVacancyService(s.db, s.logger)

	authHandler := handler.NewAuthHandler(authService, s.logger)
	userHandler := handler.NewUserHandler(userService, s.logger)
	vacancyHandler := handler.NewVacancyHandler(vacancyService, s.logger)

	requireAuth := auth.RequireAuth(tokens)

	s.router.Route("/users", func(r chi.Router) {
		// Anonymous authentication endpoints
		r.Post("/login", authHandler.HandleLogin)
		r.Post("/register", authHandler.HandleRegister)
		r.Post("/facebook", authHandler.HandleFacebookLogin)
		r.Post("/linkedin", authHandler.HandleLinkedInLogin)
		r.Post("/checktoken", authHandler.HandleCheckToken)

		// Protected account endpoints
		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/me", userHandler.HandleMe)
			r.Put("/me", userHandler.HandleUpdateMe)
			r.Delete("/me", userHandler.HandleDeleteMe)
			r.Get("/me/favorites", userHandler.HandleListFavorites)
			r.Put("/me/favorites/{vacancyId}", userHandler.HandleAddFavorite)
			r.Delete("/me/favorites/{vacancyId}", userHandler.HandleRemoveFavorite)
			r.Get("/me/reviews", userHandler.HandleListReviews)
			r.Post("/me/reviews", userHandler.HandleCreateReview)
		})
	})

	s.router.Route("/vacancies", func(r chi.Router) {
		r.Get("/", vacancyHandler.HandleList)
		r.Get("/{id}", vacancyHandler.HandleGetByID)
		r.With(requireAuth).Post("/", vacancyHandler.HandleCreate)
	})

	return nil
}

// Handler exposes the router for httptest-based tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start runs the HTTP server until SIGINT/SIGTERM, then shuts down
// gracefully: stop accepting connections, drain in-flight requests, close
// the database.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.cfg.Port),
			slog.String("database", s.cfg.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
