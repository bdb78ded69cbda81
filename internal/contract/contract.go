// Package contract provides interfaces and shared utilities for the donorlens internal architecture.
package contract

import (
	"time"

	"github.com/huangsam/donorlens/schema"
)

// StoreManager defines the interface for managing persistence stores.
// This allows the persistence layer to be mocked for testing.
type StoreManager interface {
	GetIngestStore() CacheStore
	GetHistoryStore() HistoryStore
}

// CacheStore defines the interface for the ingest cache.
// Values are opaque bytes tagged with a version and a unix timestamp.
type CacheStore interface {
	Get(key string) ([]byte, int, int64, error)
	Set(key string, value []byte, version int, timestamp int64) error
	GetStatus() (schema.CacheStatus, error)
	Close() error
}

// HistoryStore defines the interface for recording report runs and donor snapshots.
type HistoryStore interface {
	// BeginRun creates a new report run and returns its ID and UUID
	BeginRun(startTime time.Time, asOf time.Time, configParams map[string]any) (int64, string, error)

	// EndRun updates the report run with completion data
	EndRun(runID int64, endTime time.Time, totalDonors, totalGifts int, totalAmount float64) error

	// RecordDonorSnapshots stores one row per donor for the run
	RecordDonorSnapshots(runID int64, snapshots []schema.DonorSnapshotRecord) error

	// GetStatus returns status information about the history store
	GetStatus() (schema.HistoryStatus, error)

	// GetAllRuns returns every recorded run, oldest first
	GetAllRuns() ([]schema.ReportRunRecord, error)

	// GetAllDonorSnapshots returns every recorded donor snapshot
	GetAllDonorSnapshots() ([]schema.DonorSnapshotRecord, error)

	// Close closes the underlying connection
	Close() error
}
