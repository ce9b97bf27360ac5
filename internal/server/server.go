// Package server sets up the HTTP server, router, and all route definitions.
//
// This package is the wiring layer. It decides which URL patterns map to
// which handler functions, which routes sit behind the access gate, and how
// the server starts and stops.
//
// DEPENDENCY INJECTION FLOW:
// cmd/server builds:
//
//	config → sqlstore.Store → services → server.Deps
//
// and New turns the services into handlers and routes. Nothing here opens a
// database or reads the environment, so tests can build a Server around
// in-memory dependencies and drive it through Handler().
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/inventory-api/internal/auth"
	"github.com/sakif/inventory-api/internal/handler"
	"github.com/sakif/inventory-api/internal/middleware"
	"github.com/sakif/inventory-api/internal/repository"
	"github.com/sakif/inventory-api/internal/service"
)

// Config holds server configuration.
type Config struct {
	Port            int
	ShutdownTimeout time.Duration
	Header          auth.HeaderConfig // where the access token is read from
}

// Deps are the collaborators the routes are built from.
type Deps struct {
	Users    *service.UserService
	Auth     *service.AuthService
	Catalog  *service.CatalogService
	Products *service.ProductService
	Tokens   *auth.TokenService
	Store    repository.Pinger
	Metrics  *middleware.Metrics
}

// Server represents the HTTP server and its router.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
}

// New creates a Server with every route mounted.
func New(cfg Config, deps Deps, logger *slog.Logger) *Server {
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 30 * time.Second
	}
	if cfg.Header.Name == "" {
		cfg.Header = auth.DefaultHeader
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
	}
	s.setupRoutes(deps)
	return s
}

// Handler exposes the router, mainly for httptest.
func (s *Server) Handler() http.Handler { return s.router }

// setupRoutes configures all middleware and route handlers.
//
// ROUTE STRUCTURE (🔒 = bearer token required):
//
//	POST   /login                 → issue access token
//	POST   /registry              → create account
//	GET    /users              🔒 → list users
//	GET    /users/{id}         🔒 → get user
//	PUT    /users/{id}         🔒 → update user
//	DELETE /users/{id}         🔒 → delete user
//	GET    /categorias         🔒 → list categories
//	POST   /categorias            → create category
//	GET    /proveedores        🔒 → list suppliers
//	POST   /proveedores           → create supplier
//	GET    /descuentos         🔒 → list discounts
//	POST   /descuentos            → create discount
//	GET    /impuestos          🔒 → list taxes
//	POST   /impuestos             → create tax
//	GET    /productos          🔒 → list products
//	POST   /productos             → create product
//	GET    /productos/{id}        → get product
//	PUT    /productos/{id}        → update product
//	DELETE /productos/{id}        → delete product
//	GET    /healthz, /readyz, /metrics
//
// Creating catalog records and every per-product route are open while the
// matching lists are gated. That asymmetry is the published contract and is
// kept as is.
//
// MIDDLEWARE ORDER:
// RequestID and RealIP first so every later layer sees them, then logging
// and metrics, then Recoverer, so a recovered panic is still logged and
// counted as a 500.
func (s *Server) setupRoutes(deps Deps) {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	if deps.Metrics != nil {
		s.router.Use(deps.Metrics.Middleware)
	}
	s.router.Use(chimiddleware.Recoverer)

	s.router.NotFound(handler.NotFound)
	s.router.MethodNotAllowed(handler.MethodNotAllowed)

	gate := auth.RequireAuth(deps.Tokens, s.config.Header, s.logger)

	authHandler := handler.NewAuthHandler(deps.Auth, deps.Users, s.logger)
	userHandler := handler.NewUserHandler(deps.Users, s.logger)
	catalogHandler := handler.NewCatalogHandler(deps.Catalog, s.logger)
	productHandler := handler.NewProductHandler(deps.Products, s.logger)
	healthHandler := handler.NewHealthHandler(deps.Store, s.logger)

	// === Operational ===
	s.router.Get("/healthz", healthHandler.HandleHealth)
	s.router.Get("/readyz", healthHandler.HandleReady)
	if deps.Metrics != nil {
		s.router.Handle("/metrics", deps.Metrics.Handler())
	}

	// === Identity ===
	s.router.Post("/login", authHandler.HandleLogin)
	s.router.Post("/registry", authHandler.HandleRegister)

	s.router.Route("/users", func(r chi.Router) {
		r.Use(gate)
		r.Get("/", userHandler.HandleList)
		r.Get("/{id}", userHandler.HandleGet)
		r.Put("/{id}", userHandler.HandleUpdate)
		r.Delete("/{id}", userHandler.HandleDelete)
	})

	// === Catalog ===
	s.router.With(gate).Get("/categorias", catalogHandler.HandleListCategories)
	s.router.Post("/categorias", catalogHandler.HandleCreateCategory)

	s.router.With(gate).Get("/proveedores", catalogHandler.HandleListSuppliers)
	s.router.Post("/proveedores", catalogHandler.HandleCreateSupplier)

	s.router.With(gate).Get("/descuentos", catalogHandler.HandleListDiscounts)
	s.router.Post("/descuentos", catalogHandler.HandleCreateDiscount)

	s.router.With(gate).Get("/impuestos", catalogHandler.HandleListTaxes)
	s.router.Post("/impuestos", catalogHandler.HandleCreateTax)

	// === Products ===
	s.router.With(gate).Get("/productos", productHandler.HandleList)
	s.router.Post("/productos", productHandler.HandleCreate)
	s.router.Get("/productos/{id}", productHandler.HandleGet)
	s.router.Put("/productos/{id}", productHandler.HandleUpdate)
	s.router.Delete("/productos/{id}", productHandler.HandleDelete)
}

// Start serves HTTP until ctx is cancelled, SIGINT/SIGTERM arrives, or the
// listener fails.
//
// GRACEFUL SHUTDOWN:
// 1. Stop accepting new connections
// 2. Wait up to ShutdownTimeout for in-flight requests
// 3. Return, so the caller can close the store
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.config.Port),
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

	case <-ctx.Done():
		s.logger.Info("shutdown requested", slog.String("reason", context.Cause(ctx).Error()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	s.logger.Info("server stopped gracefully")
	return nil
}
