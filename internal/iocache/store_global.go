package iocache

import (
	"database/sql"
	"fmt"
	"os"
	"sync"

	"github.com/huangsam/donorlens/internal/contract"
	"github.com/huangsam/donorlens/schema"
)

// ingestTable is the name of the table (or Redis key prefix) for ingest caching.
const ingestTable = "donorlens_ingest_cache"

// Global Manager instance for main logic.
var (
	Manager   = &StoreManagerImpl{}
	initOnce  sync.Once
	closeOnce sync.Once
)

// GetCacheDBFilePath returns the path to the SQLite DB file for cache storage.
func GetCacheDBFilePath() string {
	return contract.GetCacheDBFilePath()
}

// GetHistoryDBFilePath returns the path to the SQLite DB file for history storage.
func GetHistoryDBFilePath() string {
	return contract.GetHistoryDBFilePath()
}

// InitStores initializes the global manager with the ingest cache and history stores.
// An empty backend leaves that store unset.
func InitStores(cacheBackend schema.DatabaseBackend, cacheConnStr string, historyBackend schema.DatabaseBackend, historyConnStr string) error {
	var initErr error

	initOnce.Do(func() {
		var err error

		var ingestStore contract.CacheStore
		if cacheBackend != "" {
			ingestStore, err = NewCacheStore(ingestTable, cacheBackend, cacheConnStr)
			if err != nil {
				initErr = fmt.Errorf("failed to initialize ingest caching: %w", err)
				return
			}
		}

		var historyStore contract.HistoryStore
		if historyBackend != "" {
			historyStore, err = NewHistoryStore(historyBackend, historyConnStr)
			if err != nil {
				if ingestStore != nil {
					_ = ingestStore.Close()
				}
				initErr = fmt.Errorf("failed to initialize history store: %w", err)
				return
			}
		}

		Manager.Lock()
		defer Manager.Unlock()
		Manager.ingest = ingestStore
		Manager.history = historyStore
	})

	return initErr
}

// CloseStores should be called on application shutdown.
func CloseStores() { // called in main defer
	closeOnce.Do(func() {
		Manager.Lock()
		defer Manager.Unlock()
		if Manager.ingest != nil {
			_ = Manager.ingest.Close()
		}
		if Manager.history != nil {
			_ = Manager.history.Close()
		}
	})
}

// ClearCache clears the ingest cache for the specified backend.
// For SQLite, it deletes the database file.
// For SQL backends (MySQL/PostgreSQL), it drops the table.
// For Redis, it deletes every cached key.
func ClearCache(backend schema.DatabaseBackend, dbFilePath, connStr string) error {
	switch backend {
	case schema.SQLiteBackend:
		return removeSQLiteFile(dbFilePath)
	case schema.MySQLBackend, schema.PostgreSQLBackend:
		return clearSQLTables(backend, connStr, ingestTable)
	case schema.RedisBackend:
		store, err := NewRedisCacheStore(ingestTable, connStr)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()
		return store.Clear()
	case schema.NoneBackend:
		return nil
	default:
		return fmt.Errorf("unsupported cache backend for clearing: %s", backend)
	}
}

// ClearHistory clears the report history for the specified backend.
// SQL backends also drop the migration bookkeeping table so the next run re-migrates.
func ClearHistory(backend schema.DatabaseBackend, dbFilePath, connStr string) error {
	switch backend {
	case schema.SQLiteBackend:
		return removeSQLiteFile(dbFilePath)
	case schema.MySQLBackend, schema.PostgreSQLBackend:
		return clearSQLTables(backend, connStr, donorSnapshotsTable, reportRunsTable, "schema_migrations")
	case schema.NoneBackend:
		return nil
	default:
		return fmt.Errorf("unsupported history backend for clearing: %s", backend)
	}
}

func removeSQLiteFile(dbFilePath string) error {
	if dbFilePath == "" {
		return fmt.Errorf("dbFilePath cannot be empty for SQLite backend")
	}
	if err := os.Remove(dbFilePath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove SQLite database file %s: %w", dbFilePath, err)
	}
	return nil
}

// clearSQLTables connects to the SQL database and drops the tables if they exist.
func clearSQLTables(backend schema.DatabaseBackend, connStr string, tables ...string) error {
	db, err := openDB(backend, connStr, "")
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()
	return dropTables(db, backend, tables...)
}

func dropTables(db *sql.DB, backend schema.DatabaseBackend, tables ...string) error {
	for _, table := range tables {
		if err := validateTableName(table); err != nil {
			return err
		}
		query := fmt.Sprintf("DROP TABLE IF EXISTS %s", quoteTableName(table, backend))
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("failed to drop table %s: %w", table, err)
		}
	}
	return nil
}
