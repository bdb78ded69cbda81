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

// historyBackend loads the config file and resolves the history backend.
func historyBackend() (schema.DatabaseBackend, string, error) {
	if err := loadConfigFile(); err != nil {
		return "", "", err
	}
	backend, connStr, err := backendFromViper("history-backend", "history-db-connect")
	if err != nil {
		return "", "", err
	}
	if _, ok := schema.ValidHistoryBackends[backend]; !ok {
		return "", "", fmt.Errorf("invalid history backend '%s'", backend)
	}
	return backend, connStr, nil
}

// historySetup loads minimal configuration needed for history operations.
func historySetup() error {
	backend, connStr, err := historyBackend()
	if err != nil {
		return err
	}

	// Initialize stores with the loaded config (no ingest cache for history commands)
	if err := iocache.InitStores(schema.NoneBackend, "", backend, connStr); err != nil {
		return fmt.Errorf("failed to initialize history: %w", err)
	}

	cfg.HistoryBackend = backend
	cfg.HistoryDBConnect = connStr
	cfg.OutputFile = viper.GetString("output-file")
	return nil
}

// historySetupWrapper wraps historySetup to provide PreRunE for history commands.
func historySetupWrapper(_ *cobra.Command, _ []string) error {
	return historySetup()
}

// historyMigrateSetup does NOT initialize stores, so migrations can run on a fresh database.
func historyMigrateSetup(_ *cobra.Command, _ []string) error {
	backend, connStr, err := historyBackend()
	if err != nil {
		return err
	}
	if backend == schema.SQLiteBackend && connStr == "" {
		connStr = contract.GetHistoryDBFilePath()
	}
	cfg.HistoryBackend = backend
	cfg.HistoryDBConnect = connStr
	return nil
}

// historyCmd focused on report history management.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Manage recorded report runs and donor snapshots",
	Long: `Manage the history of report runs.

When a history backend is set, every report run stores:
- Run metadata (as-of date, settings, duration, totals)
- One snapshot per donor (tier, lapsed flag, open pledge, priority score)

Supported backends: SQLite, MySQL, PostgreSQL, or None (default, disabled)

Subcommands:
  status  - Show history statistics
  export  - Export runs and snapshots to Parquet
  clear   - Remove all history
  migrate - Run database schema migrations

Examples:
  # Record every report in SQLite
  donorlens report gifts.csv --history-backend sqlite

  # Export for analysis in pandas/DuckDB
  donorlens history export --history-backend sqlite --output-file history`,
}

// historyClearCmd clears the history data.
var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all recorded report history",
	Long: `Delete all stored report runs and donor snapshots.

WARNING: This action cannot be undone. Consider exporting data first.`,
	PreRunE: historySetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ClearHistory(cfg.HistoryBackend, sqlitePath(cfg.HistoryDBConnect, contract.GetHistoryDBFilePath()), cfg.HistoryDBConnect); err != nil {
			contract.LogFatal("Failed to clear history", err)
		}
		fmt.Println("History cleared successfully.")
	},
}

// historyStatusCmd shows history status.
var historyStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display history statistics and connection details",
	Long: `Show the backend, connection status, run counts, run timestamps and
table sizes of the report history.`,
	PreRunE: historySetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		store := iocache.Manager.GetHistoryStore()
		if store == nil {
			contract.LogFatal("Failed to get history status", fmt.Errorf("history store is not configured"))
		}
		status, err := store.GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get history status", err)
		}
		iocache.PrintHistoryStatus(os.Stdout, status)
	},
}

// historyExportCmd exports history to Parquet files.
var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export report history to Parquet for BI tools and analytics",
	Long: `Export all report runs and donor snapshots to Parquet.

Writes <output-file>.report_runs.parquet and <output-file>.donor_snapshots.parquet.

Examples:
  donorlens history export --history-backend sqlite --output-file history`,
	PreRunE: historySetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ExportHistory(os.Stdout, iocache.Manager.GetHistoryStore(), cfg.OutputFile); err != nil {
			contract.LogFatal("Failed to export history", err)
		}
	},
}

// historyMigrateCmd runs schema migrations for the history store.
var historyMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run history database schema migrations",
	Long: `Migrate the history schema up to the latest version, or to --target-version.

Examples:
  # Migrate to the latest version
  donorlens history migrate --history-backend sqlite

  # Roll back every migration
  donorlens history migrate --history-backend sqlite --target-version 0`,
	PreRunE: historyMigrateSetup,
	Run: func(_ *cobra.Command, _ []string) {
		if cfg.HistoryBackend == schema.NoneBackend {
			contract.LogFatal("Failed to migrate history", fmt.Errorf("set --history-backend to sqlite, mysql or postgresql"))
		}
		msg, err := iocache.MigrateHistory(cfg.HistoryBackend, cfg.HistoryDBConnect, viper.GetInt("target-version"))
		if err != nil {
			contract.LogFatal("Failed to migrate history", err)
		}
		fmt.Println(msg)
	},
}
