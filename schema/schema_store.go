package schema

import "time"

// IngestCacheVersion is bumped whenever the cached ingest payload changes shape.
const IngestCacheVersion = 1

// ReportRunRecord represents a row from the donorlens_report_runs table.
type ReportRunRecord struct {
	RunID         int64
	RunUUID       string
	AsOf          time.Time
	StartTime     time.Time
	EndTime       *time.Time
	RunDurationMs *int32
	TotalDonors   int32
	TotalGifts    int32
	TotalAmount   float64
	ConfigParams  *string
}

// DonorSnapshotRecord represents a row from the donorlens_donor_snapshots table.
type DonorSnapshotRecord struct {
	RunID         int64
	DonorKey      string
	DisplayName   string
	TotalAmount   float64
	GiftCount     int32
	FirstGiftDate time.Time
	LastGiftDate  time.Time
	OpenAmount    float64
	Tier          string
	Lapsed        bool
	PriorityScore float64
}
