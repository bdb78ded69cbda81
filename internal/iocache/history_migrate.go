package iocache

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/huangsam/donorlens/schema"
)

//go:embed migrations
var migrationsFS embed.FS

// migrationDirs maps a backend to its dialect folder under migrations/.
var migrationDirs = map[schema.DatabaseBackend]string{
	schema.SQLiteBackend:     "migrations/sqlite",
	schema.MySQLBackend:      "migrations/mysql",
	schema.PostgreSQLBackend: "migrations/postgres",
}

// newMigrator builds a migrate instance bound to an open connection.
// The returned instance owns db once Close is called.
func newMigrator(db *sql.DB, backend schema.DatabaseBackend) (*migrate.Migrate, error) {
	var driver database.Driver
	var err error
	switch backend {
	case schema.SQLiteBackend:
		driver, err = sqlite.WithInstance(db, &sqlite.Config{})
	case schema.MySQLBackend:
		driver, err = mysql.WithInstance(db, &mysql.Config{})
	case schema.PostgreSQLBackend:
		driver, err = postgres.WithInstance(db, &postgres.Config{})
	default:
		return nil, fmt.Errorf("unsupported backend: %s", backend)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create %s migrate driver: %w", backend, err)
	}

	dir, err := fs.Sub(migrationsFS, migrationDirs[backend])
	if err != nil {
		return nil, fmt.Errorf("failed to access migrations directory: %w", err)
	}
	sourceDriver, err := iofs.New(dir, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to create migration source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "donorlens", driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	return m, nil
}

// migrateUp applies every pending migration.
func migrateUp(db *sql.DB, backend schema.DatabaseBackend) error {
	m, err := newMigrator(db, backend)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to migrate history schema: %w", err)
	}
	return nil
}

// MigrateHistory runs database migrations for the history store.
// - If targetVersion < 0, it migrates to the latest version.
// - If targetVersion == 0, it rolls back all migrations.
// - If targetVersion > 0, it migrates to the specified version.
func MigrateHistory(backend schema.DatabaseBackend, connStr string, targetVersion int) (string, error) {
	if _, ok := migrationDirs[backend]; !ok {
		return "", fmt.Errorf("migrations are not supported for %s backend", backend)
	}

	db, err := openDB(backend, connStr, GetHistoryDBFilePath())
	if err != nil {
		return "", err
	}
	defer func() { _ = db.Close() }()

	m, err := newMigrator(db, backend)
	if err != nil {
		return "", err
	}

	currentVersion, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return "", fmt.Errorf("failed to get current migration version: %w", err)
	}
	if dirty {
		return "", fmt.Errorf("database is in a dirty state at version %d. Please fix manually or force version", currentVersion)
	}

	switch {
	case targetVersion < 0:
		err = m.Up()
	case targetVersion == 0:
		err = m.Down()
	default:
		err = m.Migrate(uint(targetVersion))
	}
	if errors.Is(err, migrate.ErrNoChange) {
		return fmt.Sprintf("No migration needed. Database is already at version %d", currentVersion), nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to migrate: %w", err)
	}

	newVersion, _, verr := m.Version()
	if errors.Is(verr, migrate.ErrNilVersion) {
		newVersion = 0
	}
	return fmt.Sprintf("Successfully migrated from version %d to version %d", currentVersion, newVersion), nil
}
