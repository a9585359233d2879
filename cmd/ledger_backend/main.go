package main

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	portssvc "github.com/finbooks/general_ledger/internal/core/ports/services"
	"github.com/finbooks/general_ledger/internal/core/services"
	"github.com/finbooks/general_ledger/internal/repositories/database/pgsql"
	"github.com/finbooks/general_ledger/pkg/config"
	"github.com/finbooks/general_ledger/pkg/database"

	migrate "github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// The ledger engine is consumed as a library; this binary wires the
// PostgreSQL adapters, applies migrations and holds the service container
// ready for an embedding transport.
func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	dbPool, err := database.NewPgxPool(context.Background(), cfg.DatabaseURL)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer database.ClosePgxPool(dbPool)
	logger.Info("Database connection pool established.")

	if cfg.EnableDBCheck {
		if err := dbPool.Ping(context.Background()); err != nil {
			logger.Error("Database health check failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		logger.Info("Database health check passed.")
	}

	if err := runMigrations(cfg, logger); err != nil {
		logger.Error("Failed to apply migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}

	repos := pgsql.NewRepositoryProvider(dbPool)
	engine := services.NewServiceContainer(cfg, repos, nil)

	logger.Info("Ledger engine ready",
		slog.String("reference_prefix", cfg.ReferencePrefix),
		slog.String("port", cfg.Port),
		slog.Bool("production", cfg.IsProduction))

	waitForShutdown(logger, engine)
}

// waitForShutdown parks the engine until SIGINT/SIGTERM. An embedding
// transport replaces this with its serve loop, mounting its handlers on the
// container it receives here.
func waitForShutdown(logger *slog.Logger, engine *portssvc.ServiceContainer) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	logger.Info("Shutting down", slog.String("signal", sig.String()))
}

func runMigrations(cfg *config.Config, logger *slog.Logger) error {
	logger.Info("Running database migrations...")

	// Open a temporary standard sql.DB connection for migrations, using the
	// pgx stdlib driver to stay compatible with the main pool.
	migrationDB, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := migrationDB.Close(); cerr != nil {
			logger.Error("Error closing migration DB connection", slog.String("error", cerr.Error()))
		}
	}()
	if err := migrationDB.Ping(); err != nil {
		return err
	}

	driver, err := postgres.WithInstance(migrationDB, &postgres.Config{})
	if err != nil {
		return err
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+cfg.MigrationsPath, "postgres", driver)
	if err != nil {
		return err
	}

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		return err
	}

	sourceErr, dbErr := m.Close()
	if sourceErr != nil {
		return sourceErr
	}
	if dbErr != nil {
		return dbErr
	}

	if err == migrate.ErrNoChange {
		logger.Info("No new migrations to apply.")
	} else {
		logger.Info("Database migrations applied successfully.")
	}
	return nil
}
