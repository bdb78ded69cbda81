package schema

import "time"

// CacheStatus represents the status of the ingest cache store.
type CacheStatus struct {
	Backend         string    `json:"backend"`
	Connected       bool      `json:"connected"`
	TotalEntries    int       `json:"total_entries"`
	LastEntryTime   time.Time `json:"last_entry_time"`
	OldestEntryTime time.Time `json:"oldest_entry_time"`
	TableSizeBytes  int64     `json:"table_size_bytes"`
}

// HistoryStatus represents the status of the report history store.
type HistoryStatus struct {
	Backend             string           `json:"backend"`
	Connected           bool             `json:"connected"`
	TotalRuns           int              `json:"total_runs"`
	LastRunID           int64            `json:"last_run_id"`
	LastRunTime         time.Time        `json:"last_run_time"`
	OldestRunTime       time.Time        `json:"oldest_run_time"`
	TotalDonorSnapshots int              `json:"total_donor_snapshots"`
	TableSizes          map[string]int64 `json:"table_sizes"`
}
