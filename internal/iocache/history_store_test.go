package iocache

import (
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/huangsam/donorlens/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func civil(s string) time.Time {
	t, _ := time.Parse(time.DateOnly, s)
	return t
}

func sampleSnapshots(runID int64) []schema.DonorSnapshotRecord {
	return []schema.DonorSnapshotRecord{
		{RunID: runID, DonorKey: "d1", DisplayName: "Ada", TotalAmount: 12000, GiftCount: 3,
			FirstGiftDate: civil("2023-01-10"), LastGiftDate: civil("2024-05-01"),
			OpenAmount: 0, Tier: "major", Lapsed: false},
		{RunID: runID, DonorKey: "d2", DisplayName: "Bob", TotalAmount: 40, GiftCount: 1,
			FirstGiftDate: civil("2022-02-02"), LastGiftDate: civil("2022-02-02"),
			OpenAmount: 500, Tier: "small", Lapsed: true, PriorityScore: 0.28},
	}
}

func TestHistoryStore_NoneBackend(t *testing.T) {
	store, err := NewHistoryStore(schema.NoneBackend, "")
	require.NoError(t, err)

	runID, runUUID, err := store.BeginRun(time.Now(), civil("2024-06-30"), map[string]any{"top_n": 5})
	assert.NoError(t, err)
	assert.Equal(t, int64(0), runID)
	assert.Empty(t, runUUID)

	assert.NoError(t, store.EndRun(1, time.Now(), 1, 1, 1))
	assert.NoError(t, store.RecordDonorSnapshots(1, sampleSnapshots(1)))

	runs, err := store.GetAllRuns()
	assert.NoError(t, err)
	assert.Nil(t, runs)
	assert.NoError(t, store.Close())
}

func TestHistoryStore_SQLiteLifecycle(t *testing.T) {
	store, err := NewHistoryStore(schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	start := time.Date(2024, 7, 1, 9, 0, 0, 0, time.UTC)
	runID, runUUID, err := store.BeginRun(start, civil("2024-06-30"), map[string]any{"top_n": 5})
	require.NoError(t, err)
	assert.Greater(t, runID, int64(0))
	assert.Len(t, runUUID, 36)

	require.NoError(t, store.RecordDonorSnapshots(runID, sampleSnapshots(runID)))
	require.NoError(t, store.EndRun(runID, start.Add(250*time.Millisecond), 2, 4, 12040))

	runs, err := store.GetAllRuns()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	run := runs[0]
	assert.Equal(t, runUUID, run.RunUUID)
	assert.Equal(t, civil("2024-06-30"), run.AsOf)
	assert.True(t, start.Equal(run.StartTime))
	require.NotNil(t, run.EndTime)
	require.NotNil(t, run.RunDurationMs)
	assert.Equal(t, int32(250), *run.RunDurationMs)
	assert.Equal(t, int32(2), run.TotalDonors)
	assert.Equal(t, int32(4), run.TotalGifts)
	assert.Equal(t, 12040.0, run.TotalAmount)
	require.NotNil(t, run.ConfigParams)
	assert.JSONEq(t, `{"top_n":5}`, *run.ConfigParams)

	snaps, err := store.GetAllDonorSnapshots()
	require.NoError(t, err)
	assert.Equal(t, sampleSnapshots(runID), snaps)

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.True(t, status.Connected)
	assert.Equal(t, 1, status.TotalRuns)
	assert.Equal(t, runID, status.LastRunID)
	assert.Equal(t, 2, status.TotalDonorSnapshots)
	assert.Equal(t, int64(1), status.TableSizes[reportRunsTable])
}

func TestHistoryStore_MultipleRuns(t *testing.T) {
	store, err := NewHistoryStore(schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	var ids []int64
	for i := range 3 {
		id, _, err := store.BeginRun(time.Now().Add(time.Duration(i)*time.Minute), civil("2024-06-30"), map[string]any{"run": i})
		require.NoError(t, err)
		ids = append(ids, id)
	}
	assert.Less(t, ids[0], ids[1])
	assert.Less(t, ids[1], ids[2])

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, 3, status.TotalRuns)
	assert.Equal(t, ids[2], status.LastRunID)
	assert.True(t, status.OldestRunTime.Before(status.LastRunTime))
}

func TestHistoryStore_EndRunUnknown(t *testing.T) {
	store, err := NewHistoryStore(schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	assert.Error(t, store.EndRun(999, time.Now(), 0, 0, 0))
}

func TestHistoryStore_DuplicateSnapshotRollsBack(t *testing.T) {
	store, err := NewHistoryStore(schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	runID, _, err := store.BeginRun(time.Now(), civil("2024-06-30"), nil)
	require.NoError(t, err)

	dup := append(sampleSnapshots(runID), sampleSnapshots(runID)[0])
	assert.Error(t, store.RecordDonorSnapshots(runID, dup))

	snaps, err := store.GetAllDonorSnapshots()
	require.NoError(t, err)
	assert.Empty(t, snaps)
}

func TestHistoryStore_PostgreSQLQueries(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	store := newHistoryStoreWithDB(db, schema.PostgreSQLBackend)
	defer func() { _ = store.Close() }()

	start := time.Date(2024, 7, 1, 9, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "donorlens_report_runs" (run_uuid, as_of, start_time, config_params) VALUES ($1, $2, $3, $4) RETURNING run_id`)).
		WithArgs(sqlmock.AnyArg(), "2024-06-30", start, `{"top_n":5}`).
		WillReturnRows(sqlmock.NewRows([]string{"run_id"}).AddRow(int64(42)))

	runID, runUUID, err := store.BeginRun(start, civil("2024-06-30"), map[string]any{"top_n": 5})
	require.NoError(t, err)
	assert.Equal(t, int64(42), runID)
	assert.NotEmpty(t, runUUID)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT start_time FROM "donorlens_report_runs" WHERE run_id = $1`)).
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"start_time"}).AddRow(start))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "donorlens_report_runs" SET end_time = $1, run_duration_ms = $2, total_donors = $3, total_gifts = $4, total_amount = $5 WHERE run_id = $6`)).
		WithArgs(start.Add(time.Second), int64(1000), 2, 4, 12040.0, int64(42)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, store.EndRun(42, start.Add(time.Second), 2, 4, 12040))

	mock.ExpectBegin()
	mock.ExpectPrepare(regexp.QuoteMeta(`INSERT INTO "donorlens_donor_snapshots"`))
	for _, s := range sampleSnapshots(42) {
		mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "donorlens_donor_snapshots"`)).
			WithArgs(int64(42), s.DonorKey, s.DisplayName, s.TotalAmount, s.GiftCount,
				schema.FormatDate(s.FirstGiftDate), schema.FormatDate(s.LastGiftDate),
				s.OpenAmount, s.Tier, s.Lapsed, s.PriorityScore).
			WillReturnResult(sqlmock.NewResult(0, 1))
	}
	mock.ExpectCommit()
	require.NoError(t, store.RecordDonorSnapshots(42, sampleSnapshots(42)))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHistoryStore_PostgreSQLInsertFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	store := newHistoryStoreWithDB(db, schema.PostgreSQLBackend)
	defer func() { _ = store.Close() }()

	mock.ExpectQuery(`INSERT INTO "donorlens_report_runs"`).WillReturnError(assert.AnError)
	_, _, err = store.BeginRun(time.Now(), civil("2024-06-30"), nil)
	assert.ErrorIs(t, err, assert.AnError)
	assert.NoError(t, mock.ExpectationsWereMet())
}
