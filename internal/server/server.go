// Package server sets up the HTTP server, router, and all route
// definitions.
//
// This is the composition root: main hands over a Config, and everything
// else (document store, asset store, catalog engine, handlers,
// middleware) is created and wired here. Each layer receives only what
// it needs: handlers get the catalog, the catalog gets the store
// interfaces, nobody reaches around a layer.
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

	"github.com/sakif/artfolio/internal/assets"
	"github.com/sakif/artfolio/internal/auth"
	"github.com/sakif/artfolio/internal/catalog"
	"github.com/sakif/artfolio/internal/config"
	"github.com/sakif/artfolio/internal/handler"
	"github.com/sakif/artfolio/internal/middleware"
	"github.com/sakif/artfolio/internal/store/jsonfile"
)

// Server holds the router and its wired dependencies.
type Server struct {
	router *chi.Mux
	config *config.Config
	logger *slog.Logger
}

// New creates a Server with the full dependency chain assembled:
// jsonfile store → disk asset store → catalog engine → handlers.
func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	docs, err := jsonfile.New(cfg.DataFile, logger)
	if err != nil {
		return nil, fmt.Errorf("opening catalog document: %w", err)
	}

	assetStore, err := assets.NewDiskStore(cfg.AssetDir)
	if err != nil {
		return nil, fmt.Errorf("opening asset store: %w", err)
	}

	cat := catalog.New(docs, assetStore, logger)

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
	}

	if err := s.setupRoutes(cat, assetStore); err != nil {
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// setupRoutes configures middleware and all route handlers.
//
// ROUTE STRUCTURE:
//
//	GET    /                              → home gallery (HTML)
//	GET    /favourites                    → liked gallery (HTML)
//	GET    /static/*                      → css
//	GET    /images/{ref}                  → stored artwork images
//	POST   /auth/login                    → admin session (when auth enabled)
//	GET    /api/artworks?q=               → list + title search (JSON)
//	GET    /api/artworks/favourites?q=    → liked + title/description search
//	POST   /api/artworks                  → create (guarded)
//	GET    /api/artworks/{index}          → read-for-edit
//	PUT    /api/artworks/{index}          → update text fields (guarded)
//	DELETE /api/artworks/{index}          → delete (guarded)
//	POST   /api/artworks/{index}/like     → toggle like (guarded)
func (s *Server) setupRoutes(cat *catalog.Catalog, assetStore assets.Store) error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	fileServer := http.FileServer(http.Dir(s.config.StaticDir))
	s.router.Handle("/static/*", http.StripPrefix("/static/", fileServer))

	artworkHandler := handler.NewArtworkHandler(cat, assetStore, s.logger)
	s.router.Get("/images/{ref}", artworkHandler.HandleImage)

	pageHandler, err := handler.NewPageHandler(s.config.TemplateDir, cat, s.logger)
	if err != nil {
		return fmt.Errorf("creating page handler: %w", err)
	}
	s.router.Get("/", pageHandler.HandleHome)
	s.router.Get("/favourites", pageHandler.HandleFavourites)

	// The guard is a no-op pass-through when no admin credential is
	// configured: local single-user mode.
	guard := func(next http.Handler) http.Handler { return next }
	if s.config.AuthEnabled() {
		tokens, err := auth.NewTokenService(s.config.JWTSecret)
		if err != nil {
			return fmt.Errorf("creating token service: %w", err)
		}
		guard = auth.RequireAdmin(tokens)

		loginHandler := handler.NewLoginHandler(auth.NewPasswordService(), tokens, s.config.AdminPasswordHash, s.logger)
		s.router.Post("/auth/login", loginHandler.HandleLogin)
	} else {
		s.logger.Warn("no admin credential configured, mutating routes are unprotected")
	}

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/artworks", artworkHandler.HandleList)
		r.Get("/artworks/favourites", artworkHandler.HandleFavourites)
		r.Get("/artworks/{index}", artworkHandler.HandleGet)

		r.Group(func(r chi.Router) {
			r.Use(guard)
			r.Post("/artworks", artworkHandler.HandleCreate)
			r.Put("/artworks/{index}", artworkHandler.HandleUpdate)
			r.Delete("/artworks/{index}", artworkHandler.HandleDelete)
			r.Post("/artworks/{index}/like", artworkHandler.HandleToggleLike)
		})
	})

	return nil
}

// Start runs the HTTP server until SIGINT/SIGTERM, then shuts down
// gracefully, letting in-flight requests finish. Mutations are
// synchronous, so once the last request drains the document on disk is
// current and there is nothing further to flush.
func (s *Server) Start() error {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
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
			slog.Int("port", s.config.Port),
			slog.String("catalog", s.config.DataFile),
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
