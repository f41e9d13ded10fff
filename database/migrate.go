package database

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	log "github.com/sirupsen/logrus"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// MigrateUp applies every pending migration
func MigrateUp(databaseURL string) error {
	return withMigrator(databaseURL, func(m *migrate.Migrate) error {
		return report("applied", m, m.Up())
	})
}

// MigrateDown reverts the last steps migrations
func MigrateDown(databaseURL string, steps int) error {
	if steps <= 0 {
		return fmt.Errorf("steps must be positive, got %d", steps)
	}
	return withMigrator(databaseURL, func(m *migrate.Migrate) error {
		return report("rolled back", m, m.Steps(-steps))
	})
}

// MigrationStatus returns the schema version; ok is false on a database never migrated
func MigrationStatus(databaseURL string) (version uint, dirty, ok bool, err error) {
	err = withMigrator(databaseURL, func(m *migrate.Migrate) error {
		v, d, verr := m.Version()
		if errors.Is(verr, migrate.ErrNilVersion) {
			return nil
		}
		if verr != nil {
			return fmt.Errorf("failed to read migration version: %w", verr)
		}
		version, dirty, ok = v, d, true
		return nil
	})
	return version, dirty, ok, err
}

func report(action string, m *migrate.Migrate, err error) error {
	if errors.Is(err, migrate.ErrNoChange) {
		log.WithField("action", action).Info("Schema already up to date")
		return nil
	}
	if err != nil {
		return fmt.Errorf("migration failed (%s): %w", action, err)
	}
	version, dirty, _ := m.Version()
	log.WithFields(log.Fields{
		"action":  action,
		"version": version,
		"dirty":   dirty,
	}).Info("Schema migrated")
	return nil
}

// withMigrator opens a migrator over the embedded SQL files for the duration of fn
func withMigrator(databaseURL string, fn func(*migrate.Migrate) error) error {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return fmt.Errorf("failed to parse database URL: %w", err)
	}

	driver, err := postgres.WithInstance(stdlib.OpenDB(*cfg.ConnConfig), &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to open migration driver: %w", err)
	}
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to read embedded migrations: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}
	defer func() {
		if srcErr, dbErr := m.Close(); srcErr != nil || dbErr != nil {
			log.WithFields(log.Fields{"source": srcErr, "database": dbErr}).Warn("Migrator did not close cleanly")
		}
	}()

	return fn(m)
}
