package iocache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/huangsam/donorlens/internal/contract"
	"github.com/huangsam/donorlens/schema"
)

// Table names for report history.
const (
	reportRunsTable     = "donorlens_report_runs"
	donorSnapshotsTable = "donorlens_donor_snapshots"
)

// HistoryStoreImpl implements the HistoryStore interface.
type HistoryStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
}

var _ contract.HistoryStore = &HistoryStoreImpl{} // Compile-time check

// NewHistoryStore opens the backend and migrates its schema to the latest version.
func NewHistoryStore(backend schema.DatabaseBackend, connStr string) (contract.HistoryStore, error) {
	if backend == schema.NoneBackend {
		// Return a no-op store for disabled tracking
		return &HistoryStoreImpl{backend: backend}, nil
	}
	if _, ok := migrationDirs[backend]; !ok {
		return nil, fmt.Errorf("unsupported history backend: %s", backend)
	}

	db, err := openDB(backend, connStr, GetHistoryDBFilePath())
	if err != nil {
		return nil, err
	}
	if err := migrateUp(db, backend); err != nil {
		_ = db.Close()
		return nil, err
	}
	return newHistoryStoreWithDB(db, backend), nil
}

// newHistoryStoreWithDB wraps a connection whose schema is already in place.
func newHistoryStoreWithDB(db *sql.DB, backend schema.DatabaseBackend) *HistoryStoreImpl {
	return &HistoryStoreImpl{db: db, backend: backend}
}

func (hs *HistoryStoreImpl) disabled() bool {
	return hs.backend == schema.NoneBackend || hs.db == nil
}

// BeginRun records the start of a report run and returns its ID and UUID.
func (hs *HistoryStoreImpl) BeginRun(startTime, asOf time.Time, configParams map[string]any) (int64, string, error) {
	if hs.disabled() {
		return 0, "", nil
	}

	configJSON, err := json.Marshal(configParams)
	if err != nil {
		return 0, "", fmt.Errorf("failed to marshal config params: %w", err)
	}

	runUUID := uuid.NewString()
	table := quoteTableName(reportRunsTable, hs.backend)
	args := []any{runUUID, schema.FormatDate(asOf), formatTime(startTime, hs.backend), string(configJSON)}

	var runID int64
	switch hs.backend {
	case schema.PostgreSQLBackend:
		query := fmt.Sprintf(`INSERT INTO %s (run_uuid, as_of, start_time, config_params) VALUES ($1, $2, $3, $4) RETURNING run_id`, table)
		err = hs.db.QueryRow(query, args...).Scan(&runID)
	default: // SQLite and MySQL
		query := fmt.Sprintf(`INSERT INTO %s (run_uuid, as_of, start_time, config_params) VALUES (?, ?, ?, ?)`, table)
		var result sql.Result
		result, err = hs.db.Exec(query, args...)
		if err == nil {
			runID, err = result.LastInsertId()
		}
	}
	if err != nil {
		return 0, "", fmt.Errorf("failed to insert report run: %w", err)
	}
	return runID, runUUID, nil
}

// EndRun stores the completion time, duration and totals of a run.
func (hs *HistoryStoreImpl) EndRun(runID int64, endTime time.Time, totalDonors, totalGifts int, totalAmount float64) error {
	if hs.disabled() {
		return nil
	}

	table := quoteTableName(reportRunsTable, hs.backend)
	query := fmt.Sprintf(`SELECT start_time FROM %s WHERE run_id = %s`, table, placeholder(hs.backend, 1))
	startTime, err := hs.scanTime(hs.db.QueryRow(query, runID))
	if err != nil {
		return fmt.Errorf("failed to get start_time for run %d: %w", runID, err)
	}

	durationMs := endTime.Sub(startTime).Milliseconds()
	update := fmt.Sprintf(`UPDATE %s SET end_time = %s, run_duration_ms = %s, total_donors = %s, total_gifts = %s, total_amount = %s WHERE run_id = %s`,
		table,
		placeholder(hs.backend, 1), placeholder(hs.backend, 2), placeholder(hs.backend, 3),
		placeholder(hs.backend, 4), placeholder(hs.backend, 5), placeholder(hs.backend, 6))
	if _, err := hs.db.Exec(update, formatTime(endTime, hs.backend), durationMs, totalDonors, totalGifts, totalAmount, runID); err != nil {
		return fmt.Errorf("failed to update report run: %w", err)
	}
	return nil
}

// RecordDonorSnapshots stores one row per donor for a run in a single transaction.
func (hs *HistoryStoreImpl) RecordDonorSnapshots(runID int64, snapshots []schema.DonorSnapshotRecord) error {
	if hs.disabled() || len(snapshots) == 0 {
		return nil
	}

	tx, err := hs.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin snapshot transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := fmt.Sprintf(`INSERT INTO %s (run_id, donor_key, display_name, total_amount, gift_count,
		first_gift_date, last_gift_date, open_amount, tier, lapsed, priority_score)
		VALUES (%s)`, quoteTableName(donorSnapshotsTable, hs.backend), placeholders(hs.backend, 11))
	stmt, err := tx.Prepare(query)
	if err != nil {
		return fmt.Errorf("failed to prepare snapshot insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, s := range snapshots {
		if _, err := stmt.Exec(runID, s.DonorKey, s.DisplayName, s.TotalAmount, s.GiftCount,
			schema.FormatDate(s.FirstGiftDate), schema.FormatDate(s.LastGiftDate),
			s.OpenAmount, s.Tier, s.Lapsed, s.PriorityScore); err != nil {
			return fmt.Errorf("failed to insert snapshot for %s: %w", s.DonorKey, err)
		}
	}
	return tx.Commit()
}

// Close closes the underlying connection.
func (hs *HistoryStoreImpl) Close() error {
	if hs.db != nil {
		return hs.db.Close()
	}
	return nil
}

// GetStatus returns status information about the history store.
func (hs *HistoryStoreImpl) GetStatus() (schema.HistoryStatus, error) {
	status := schema.HistoryStatus{
		Backend:    string(hs.backend),
		Connected:  hs.db != nil,
		TableSizes: make(map[string]int64),
	}
	if hs.disabled() {
		return status, nil
	}

	runs := quoteTableName(reportRunsTable, hs.backend)
	if err := hs.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", runs)).Scan(&status.TotalRuns); err != nil {
		return status, fmt.Errorf("failed to get total runs: %w", err)
	}

	if status.TotalRuns > 0 {
		row := hs.db.QueryRow(fmt.Sprintf("SELECT run_id FROM %s ORDER BY run_id DESC LIMIT 1", runs))
		if err := row.Scan(&status.LastRunID); err != nil {
			return status, fmt.Errorf("failed to get last run id: %w", err)
		}
		last, err := hs.scanTime(hs.db.QueryRow(fmt.Sprintf("SELECT start_time FROM %s ORDER BY run_id DESC LIMIT 1", runs)))
		if err != nil {
			return status, fmt.Errorf("failed to get last run time: %w", err)
		}
		status.LastRunTime = last
		oldest, err := hs.scanTime(hs.db.QueryRow(fmt.Sprintf("SELECT start_time FROM %s ORDER BY run_id ASC LIMIT 1", runs)))
		if err != nil {
			return status, fmt.Errorf("failed to get oldest run time: %w", err)
		}
		status.OldestRunTime = oldest
	}

	for _, table := range []string{reportRunsTable, donorSnapshotsTable} {
		var count int64
		query := fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteTableName(table, hs.backend))
		if err := hs.db.QueryRow(query).Scan(&count); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}
	status.TotalDonorSnapshots = int(status.TableSizes[donorSnapshotsTable])
	return status, nil
}

// GetAllRuns retrieves all report runs ordered by ID.
func (hs *HistoryStoreImpl) GetAllRuns() ([]schema.ReportRunRecord, error) {
	if hs.disabled() {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, run_uuid, as_of, start_time, end_time, run_duration_ms,
		total_donors, total_gifts, total_amount, config_params FROM %s ORDER BY run_id`,
		quoteTableName(reportRunsTable, hs.backend))
	rows, err := hs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query report runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.ReportRunRecord
	for rows.Next() {
		var (
			record   schema.ReportRunRecord
			asOf     string
			startRaw any
			endRaw   any
		)
		if err := rows.Scan(&record.RunID, &record.RunUUID, &asOf, &startRaw, &endRaw, &record.RunDurationMs,
			&record.TotalDonors, &record.TotalGifts, &record.TotalAmount, &record.ConfigParams); err != nil {
			return nil, fmt.Errorf("failed to scan report run: %w", err)
		}
		if record.AsOf, err = time.Parse(time.DateOnly, asOf); err != nil {
			return nil, fmt.Errorf("failed to parse as_of: %w", err)
		}
		if record.StartTime, err = toTime(startRaw); err != nil {
			return nil, fmt.Errorf("failed to parse start_time: %w", err)
		}
		if endRaw != nil {
			end, err := toTime(endRaw)
			if err != nil {
				return nil, fmt.Errorf("failed to parse end_time: %w", err)
			}
			record.EndTime = &end
		}
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating report runs: %w", err)
	}
	return results, nil
}

// GetAllDonorSnapshots retrieves every donor snapshot ordered by run and key.
func (hs *HistoryStoreImpl) GetAllDonorSnapshots() ([]schema.DonorSnapshotRecord, error) {
	if hs.disabled() {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, donor_key, display_name, total_amount, gift_count,
		first_gift_date, last_gift_date, open_amount, tier, lapsed, priority_score
		FROM %s ORDER BY run_id, donor_key`, quoteTableName(donorSnapshotsTable, hs.backend))
	rows, err := hs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query donor snapshots: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.DonorSnapshotRecord
	for rows.Next() {
		var (
			record      schema.DonorSnapshotRecord
			first, last string
		)
		if err := rows.Scan(&record.RunID, &record.DonorKey, &record.DisplayName, &record.TotalAmount,
			&record.GiftCount, &first, &last, &record.OpenAmount, &record.Tier, &record.Lapsed,
			&record.PriorityScore); err != nil {
			return nil, fmt.Errorf("failed to scan donor snapshot: %w", err)
		}
		if record.FirstGiftDate, err = time.Parse(time.DateOnly, first); err != nil {
			return nil, fmt.Errorf("failed to parse first_gift_date: %w", err)
		}
		if record.LastGiftDate, err = time.Parse(time.DateOnly, last); err != nil {
			return nil, fmt.Errorf("failed to parse last_gift_date: %w", err)
		}
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating donor snapshots: %w", err)
	}
	return results, nil
}

// scanTime reads a single timestamp column in the backend's storage format.
func (hs *HistoryStoreImpl) scanTime(row *sql.Row) (time.Time, error) {
	var raw any
	if err := row.Scan(&raw); err != nil {
		return time.Time{}, err
	}
	return toTime(raw)
}

// toTime converts a driver value into a time. SQLite hands back RFC3339 text,
// MySQL may return []byte without parseTime, PostgreSQL returns time.Time.
func toTime(raw any) (time.Time, error) {
	switch v := raw.(type) {
	case time.Time:
		return v, nil
	case string:
		return parseStoredTime(v)
	case []byte:
		return parseStoredTime(string(v))
	default:
		return time.Time{}, fmt.Errorf("unexpected time value %T", raw)
	}
}

func parseStoredTime(s string) (time.Time, error) {
	if t, err := parseSQLiteTime(s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05.999999", s)
}
