package cmd

import (
	"fmt"
	"os"

	"github.com/huangsam/donorlens/internal/contract"
	"github.com/huangsam/donorlens/internal/iocache"
	"github.com/huangsam/donorlens/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// backendFromViper reads a backend and its connection string and validates the pair.
// An empty backend means none.
func backendFromViper(backendKey, connKey string) (schema.DatabaseBackend, string, error) {
	backend := schema.DatabaseBackend(viper.GetString(backendKey))
	if backend == "" {
		backend = schema.NoneBackend
	}
	connStr := viper.GetString(connKey)
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return "", "", err
	}
	return backend, connStr, nil
}

// cacheSetup loads minimal configuration needed for cache operations.
// This is used by commands that need cache access without full shared setup.
func cacheSetup() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	backend, connStr, err := backendFromViper("cache-backend", "cache-db-connect")
	if err != nil {
		return err
	}
	if _, ok := schema.ValidCacheBackends[backend]; !ok {
		return fmt.Errorf("invalid cache backend '%s'", backend)
	}

	// Initialize caching with the loaded config (no history tracking for cache commands)
	if err := iocache.InitStores(backend, connStr, "", ""); err != nil {
		return fmt.Errorf("failed to initialize cache: %w", err)
	}

	cfg.CacheBackend = backend
	cfg.CacheDBConnect = connStr
	return nil
}

// cacheSetupWrapper wraps cacheSetup to provide PreRunE for cache commands.
func cacheSetupWrapper(_ *cobra.Command, _ []string) error {
	return cacheSetup()
}

// cacheCmd focused on cache management.
//
// Note: Cache subcommands use minimal initialization (cacheSetup) instead of
// the full sharedSetup used by report commands.
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the parsed gift cache",
	Long: `Manage the cache of parsed gift exports.

Donorlens caches the parsed records of each input file, keyed by a hash of the
file contents, so repeated reports on the same export skip CSV parsing.

Supported backends: SQLite, MySQL, PostgreSQL, Redis, or None (default)

Subcommands:
  status - Show cache statistics and connection info
  clear  - Remove all cached data

Examples:
  # Check cache status
  donorlens cache status --cache-backend sqlite

  # Clear the Redis cache
  DONORLENS_CACHE_BACKEND=redis DONORLENS_CACHE_DB_CONNECT=redis://localhost:6379/0 donorlens cache clear`,
}

// cacheClearCmd clears the cache.
var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all cached gift data",
	Long: `Delete all cached gift data from the configured backend.

For SQLite: Deletes the database file
For MySQL/PostgreSQL: Drops the cache table
For Redis: Deletes every cached key`,
	PreRunE: cacheSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ClearCache(cfg.CacheBackend, sqlitePath(cfg.CacheDBConnect, contract.GetCacheDBFilePath()), cfg.CacheDBConnect); err != nil {
			contract.LogFatal("Failed to clear cache", err)
		}
		fmt.Println("Cache cleared successfully.")
	},
}

// cacheStatusCmd shows cache status.
var cacheStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display cache statistics and connection details",
	Long: `Show the backend, connection status, entry count and entry timestamps
of the parsed gift cache.`,
	PreRunE: cacheSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		store := iocache.Manager.GetIngestStore()
		if store == nil {
			contract.LogFatal("Failed to get cache status", fmt.Errorf("cache store is not configured"))
		}
		status, err := store.GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get cache status", err)
		}
		iocache.PrintCacheStatus(os.Stdout, status)
	},
}

// sqlitePath prefers an explicit SQLite connection string over the default file.
func sqlitePath(connStr, fallback string) string {
	if connStr != "" {
		return connStr
	}
	return fallback
}
