package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	portsrepo "github.com/drmelom/technical-test-BTG-Pactual/internal/core/ports/repositories"
	"github.com/drmelom/technical-test-BTG-Pactual/internal/platform/config"
	"github.com/drmelom/technical-test-BTG-Pactual/internal/repositories/database/mongodb"
	"github.com/drmelom/technical-test-BTG-Pactual/internal/repositories/database/pgsql"
	"github.com/drmelom/technical-test-BTG-Pactual/internal/repositories/memory"
	"github.com/drmelom/technical-test-BTG-Pactual/pkg/database"

	migrate "github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// openStore connects the configured store driver and prepares its schema.
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (portsrepo.RepositoryProvider, error) {
	switch cfg.StoreDriver {
	case config.StoreDriverPostgres:
		if err := runMigrations(cfg.DatabaseURL, cfg.MigrationsPath, logger); err != nil {
			return portsrepo.RepositoryProvider{}, err
		}
		dbPool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, cfg.EnableDBCheck)
		if err != nil {
			return portsrepo.RepositoryProvider{}, fmt.Errorf("failed to initialize database pool: %w", err)
		}
		return pgsql.NewRepositoryProvider(dbPool), nil

	case config.StoreDriverMongo:
		client, err := database.NewMongoClient(ctx, cfg.MongoURI, cfg.StoreTimeout)
		if err != nil {
			return portsrepo.RepositoryProvider{}, err
		}
		store := mongodb.New(client, cfg.MongoDatabase)
		if err := store.Migrate(ctx); err != nil {
			_ = store.Close(context.WithoutCancel(ctx))
			return portsrepo.RepositoryProvider{}, err
		}
		logger.Info("MongoDB indexes ensured", slog.String("database", cfg.MongoDatabase))
		return mongodb.NewRepositoryProvider(store), nil

	case config.StoreDriverMemory:
		logger.Warn("Using in-memory store, data is lost on restart")
		return memory.NewRepositoryProvider(), nil

	default:
		return portsrepo.RepositoryProvider{}, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}

// runMigrations applies all pending "up" migrations over a short-lived database/sql connection.
func runMigrations(databaseURL string, migrationsPath string, logger *slog.Logger) error {
	logger.Info("Running database migrations...")

	// pgx/v5/stdlib registers the "pgx" driver for database/sql
	migrationDB, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database connection for migrations: %w", err)
	}
	defer func() {
		if cerr := migrationDB.Close(); cerr != nil {
			logger.Error("Error closing migration DB connection", slog.String("error", cerr.Error()))
		}
	}()
	if err := migrationDB.Ping(); err != nil {
		return fmt.Errorf("failed to ping database for migrations: %w", err)
	}

	driver, err := postgres.WithInstance(migrationDB, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("could not create postgres driver instance for migrations: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(migrationsPath, "postgres", driver)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	upErr := m.Up()
	if upErr != nil && !errors.Is(upErr, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", upErr)
	}

	// m.Close also closes migrationDB. sql.DB.Close is idempotent.
	sourceErr, dbErr := m.Close()
	if sourceErr != nil {
		return fmt.Errorf("migration source error: %w", sourceErr)
	}
	if dbErr != nil {
		return fmt.Errorf("migration database error: %w", dbErr)
	}

	if errors.Is(upErr, migrate.ErrNoChange) {
		logger.Info("No new migrations to apply.")
	} else {
		logger.Info("Database migrations applied successfully.")
	}
	return nil
}
