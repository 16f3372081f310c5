package repository

import (
	"embed"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// RunMigrations runs database migrations. The SQL files are embedded so
// the binaries do not depend on the working directory.
func RunMigrations(databaseURL string) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("open embedded migrations: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, databaseURL)
	if err != nil {
		return fmt.Errorf("create migration instance: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		// Handle dirty database state by forcing to the previous clean version
		if dirtyErr, ok := err.(migrate.ErrDirty); ok {
			version, dirty, verr := m.Version()
			if verr != nil {
				return fmt.Errorf("get current migration version: %w", verr)
			}

			if dirty {
				forceVersion := int(version) - 1
				if forceVersion < 0 {
					forceVersion = 0
				}

				if ferr := m.Force(forceVersion); ferr != nil {
					return fmt.Errorf("force clean migration version %d: %w", forceVersion, ferr)
				}

				// Retry migrations after cleaning dirty state
				if err := m.Up(); err != nil && err != migrate.ErrNoChange {
					return fmt.Errorf("rerun migrations after dirty state: %w", err)
				}

				return nil
			}

			return fmt.Errorf("dirty migrations at version %d and could not auto-fix", dirtyErr.Version)
		}

		return fmt.Errorf("run migrations: %w", err)
	}

	return nil
}
