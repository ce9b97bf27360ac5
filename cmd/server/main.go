// Package main is the entry point for the inventory API server.
//
// The main package stays small. Its job is to:
// 1. Read configuration (flags, env vars, optional config file)
// 2. Create dependencies (logger, database, services)
// 3. Start the application
//
// All actual logic lives in the internal packages.
//
// USAGE:
//
//	inventory serve   [--port 8080] [--db-driver sqlite] [--db-dsn data/inventory.db] [--config file]
//	inventory migrate [--db-driver postgres --db-dsn postgres://...]
//
// JWT_SECRET_KEY must be set for both. Generate one with:
//
//	JWT_SECRET_KEY=$(openssl rand -hex 32)
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sakif/inventory-api/internal/auth"
	"github.com/sakif/inventory-api/internal/config"
	"github.com/sakif/inventory-api/internal/middleware"
	"github.com/sakif/inventory-api/internal/repository/sqlstore"
	"github.com/sakif/inventory-api/internal/server"
	"github.com/sakif/inventory-api/internal/service"
)

func main() {
	if err := newRootCommand().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "inventory",
		Short:         "Inventory and user management REST API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	config.RegisterFlags(root)

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Apply pending migrations and serve HTTP until interrupted",
			RunE:  runServe,
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Apply pending migrations and exit",
			RunE:  runMigrate,
		},
	)
	return root
}

// bootstrap loads config, builds the logger and opens the store. Both
// commands start the same way.
func bootstrap(cmd *cobra.Command) (config.Config, *slog.Logger, *sqlstore.Store, error) {
	cfg, err := config.Load(cmd)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "invalid configuration: %v\n", err)
		return config.Config{}, nil, nil, err
	}

	logger := newLogger(cmd.OutOrStdout(), cfg.Log)

	if err := ensureDataDir(cfg.DB); err != nil {
		logger.Error("failed to create database directory", slog.String("error", err.Error()))
		return config.Config{}, nil, nil, err
	}

	store, err := sqlstore.Open(cmd.Context(), sqlstore.Options{
		Driver:       sqlstore.Dialect(cfg.DB.Driver),
		DSN:          cfg.DB.DSN,
		MaxOpenConns: cfg.DB.MaxOpenConns,
	}, logger)
	if err != nil {
		logger.Error("failed to open database",
			slog.String("driver", cfg.DB.Driver),
			slog.String("error", err.Error()),
		)
		return config.Config{}, nil, nil, err
	}

	return cfg, logger, store, nil
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	_, logger, store, err := bootstrap(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	logger.Info("database is up to date")
	return nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, logger, store, err := bootstrap(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	passwords, err := auth.NewPasswordService(cfg.BcryptCost)
	if err != nil {
		logger.Error("invalid bcrypt cost", slog.String("error", err.Error()))
		return err
	}

	tokens, err := auth.NewTokenService(cfg.JWT.SecretKey, auth.WithTTL(cfg.JWT.Expires))
	if err != nil {
		logger.Error("invalid token settings", slog.String("error", err.Error()))
		return err
	}

	// === WIRING ===
	// One store serves every repository interface; every service gets it
	// through the narrow interface it needs.
	metrics := middleware.NewMetrics()
	users := service.NewUserService(store, passwords, logger)

	srv := server.New(server.Config{
		Port:            cfg.Port,
		ShutdownTimeout: cfg.ShutdownTimeout,
		Header:          auth.HeaderConfig{Name: cfg.JWT.HeaderName, Scheme: cfg.JWT.HeaderType},
	}, server.Deps{
		Users:    users,
		Auth:     service.NewAuthService(users, tokens, metrics, logger),
		Catalog:  service.NewCatalogService(store),
		Products: service.NewProductService(store, store),
		Tokens:   tokens,
		Store:    store,
		Metrics:  metrics,
	}, logger)

	logger.Info("configuration loaded",
		slog.String("db_driver", cfg.DB.Driver),
		slog.Duration("token_ttl", cfg.JWT.Expires),
		slog.Int("bcrypt_cost", cfg.BcryptCost),
	)

	// Start blocks until SIGINT/SIGTERM or a listener error.
	if err := srv.Start(cmd.Context()); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		return err
	}
	return nil
}

// ensureDataDir creates the parent directory of a SQLite database file, the
// way `mkdir -p` would. In-memory and Postgres databases need nothing.
func ensureDataDir(db config.DBConfig) error {
	if db.Driver != config.DriverSQLite || db.DSN == ":memory:" || strings.HasPrefix(db.DSN, "file:") {
		return nil
	}
	return os.MkdirAll(filepath.Dir(db.DSN), 0o755)
}
