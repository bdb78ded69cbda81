// Package parquet exports donor rows and report history to Parquet files
// using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/huangsam/donorlens/schema"
	"github.com/parquet-go/parquet-go"
)

// ReportRun represents a single report run with metadata.
// This struct maps to the donorlens_report_runs database table.
type ReportRun struct {
	RunID         int64      `parquet:"run_id,snappy"`
	RunUUID       string     `parquet:"run_uuid,snappy"`
	AsOf          time.Time  `parquet:"as_of,snappy"`
	StartTime     time.Time  `parquet:"start_time,snappy"`
	EndTime       *time.Time `parquet:"end_time,optional,snappy"`
	RunDurationMs *int32     `parquet:"run_duration_ms,optional,snappy"`
	TotalDonors   int32      `parquet:"total_donors,snappy"`
	TotalGifts    int32      `parquet:"total_gifts,snappy"`
	TotalAmount   float64    `parquet:"total_amount,snappy"`

	// ConfigParams contains the JSON-encoded settings of the run (nullable)
	ConfigParams *string `parquet:"config_params,optional,snappy"`
}

// DonorSnapshot represents one donor as of a recorded run.
// This struct maps to the donorlens_donor_snapshots database table.
type DonorSnapshot struct {
	RunID         int64     `parquet:"run_id,snappy"`
	DonorKey      string    `parquet:"donor_key,snappy"`
	DisplayName   string    `parquet:"display_name,snappy"`
	TotalAmount   float64   `parquet:"total_amount,snappy"`
	GiftCount     int32     `parquet:"gift_count,snappy"`
	FirstGiftDate time.Time `parquet:"first_gift_date,snappy"`
	LastGiftDate  time.Time `parquet:"last_gift_date,snappy"`
	OpenAmount    float64   `parquet:"open_amount,snappy"`
	Tier          string    `parquet:"tier,snappy"`
	Lapsed        bool      `parquet:"lapsed,snappy"`

	// PriorityScore is 0 for donors outside the stewardship queue
	PriorityScore float64 `parquet:"priority_score,snappy"`
}

// DonorRow is a ranked donor as written by the parquet report output.
type DonorRow struct {
	Rank          int32     `parquet:"rank,snappy"`
	DonorKey      string    `parquet:"donor_key,snappy"`
	DisplayName   string    `parquet:"display_name,snappy"`
	TotalAmount   float64   `parquet:"total_amount,snappy"`
	GiftCount     int32     `parquet:"gift_count,snappy"`
	FirstGiftDate time.Time `parquet:"first_gift_date,snappy"`
	LastGiftDate  time.Time `parquet:"last_gift_date,snappy"`
	PledgeTotal   float64   `parquet:"pledge_total,snappy"`
	Tier          string    `parquet:"tier,snappy"`
}

// StewardshipRow is one entry of the stewardship queue.
type StewardshipRow struct {
	Rank              int32     `parquet:"rank,snappy"`
	DonorKey          string    `parquet:"donor_key,snappy"`
	DisplayName       string    `parquet:"display_name,snappy"`
	PriorityScore     float64   `parquet:"priority_score,snappy"`
	TotalAmount       float64   `parquet:"total_amount,snappy"`
	OpenAmount        float64   `parquet:"open_amount,snappy"`
	LastGiftDate      time.Time `parquet:"last_gift_date,snappy"`
	DaysSinceLastGift int32     `parquet:"days_since_last_gift,snappy"`
	Lapsed            bool      `parquet:"lapsed,snappy"`
}

// TrendRow is one calendar month of the monthly trend.
type TrendRow struct {
	Month string    `parquet:"month,snappy"`
	Start time.Time `parquet:"start,snappy"`
	Total float64   `parquet:"total,snappy"`
	Count int32     `parquet:"count,snappy"`
}

// Write encodes rows to w using the schema inferred from T's struct tags.
func Write[T any](w io.Writer, rows []T) error {
	writer := parquet.NewGenericWriter[T](w)
	if _, err := writer.Write(rows); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// WriteFile creates outputPath and writes rows to it.
func WriteFile[T any](rows []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := Write(file, rows); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}

// WriteReportRunsParquet writes report runs to a Parquet file.
func WriteReportRunsParquet(data []ReportRun, outputPath string) error {
	return WriteFile(data, outputPath)
}

// WriteDonorSnapshotsParquet writes donor snapshots to a Parquet file.
func WriteDonorSnapshotsParquet(data []DonorSnapshot, outputPath string) error {
	return WriteFile(data, outputPath)
}

// ConvertReportRunRecords converts schema.ReportRunRecord to ReportRun for Parquet export.
func ConvertReportRunRecords(records []schema.ReportRunRecord) []ReportRun {
	result := make([]ReportRun, len(records))
	for i, record := range records {
		result[i] = ReportRun{
			RunID:         record.RunID,
			RunUUID:       record.RunUUID,
			AsOf:          record.AsOf,
			StartTime:     record.StartTime,
			EndTime:       record.EndTime,
			RunDurationMs: record.RunDurationMs,
			TotalDonors:   record.TotalDonors,
			TotalGifts:    record.TotalGifts,
			TotalAmount:   record.TotalAmount,
			ConfigParams:  record.ConfigParams,
		}
	}
	return result
}

// ConvertDonorSnapshotRecords converts schema.DonorSnapshotRecord to DonorSnapshot for Parquet export.
func ConvertDonorSnapshotRecords(records []schema.DonorSnapshotRecord) []DonorSnapshot {
	result := make([]DonorSnapshot, len(records))
	for i, record := range records {
		result[i] = DonorSnapshot{
			RunID:         record.RunID,
			DonorKey:      record.DonorKey,
			DisplayName:   record.DisplayName,
			TotalAmount:   record.TotalAmount,
			GiftCount:     record.GiftCount,
			FirstGiftDate: record.FirstGiftDate,
			LastGiftDate:  record.LastGiftDate,
			OpenAmount:    record.OpenAmount,
			Tier:          record.Tier,
			Lapsed:        record.Lapsed,
			PriorityScore: record.PriorityScore,
		}
	}
	return result
}

// ConvertRankedDonors converts ranked donors into Parquet rows.
func ConvertRankedDonors(donors []schema.RankedDonor) []DonorRow {
	result := make([]DonorRow, len(donors))
	for i, d := range donors {
		result[i] = DonorRow{
			Rank:          int32(d.Rank),
			DonorKey:      string(d.Key),
			DisplayName:   d.Label(),
			TotalAmount:   d.TotalAmount,
			GiftCount:     int32(d.GiftCount),
			FirstGiftDate: d.FirstGiftDate,
			LastGiftDate:  d.LastGiftDate,
			PledgeTotal:   d.PledgeTotal,
			Tier:          string(d.Tier),
		}
	}
	return result
}

// ConvertStewardshipEntries converts queue entries into Parquet rows, ranked from 1.
func ConvertStewardshipEntries(entries []schema.StewardshipEntry) []StewardshipRow {
	result := make([]StewardshipRow, len(entries))
	for i, e := range entries {
		result[i] = StewardshipRow{
			Rank:              int32(i + 1),
			DonorKey:          string(e.Key),
			DisplayName:       e.Label(),
			PriorityScore:     e.PriorityScore,
			TotalAmount:       e.TotalAmount,
			OpenAmount:        e.OpenAmount,
			LastGiftDate:      e.LastGiftDate,
			DaysSinceLastGift: int32(e.DaysSinceLastGift),
			Lapsed:            e.Lapsed,
		}
	}
	return result
}

// ConvertTrendEntries converts monthly trend entries into Parquet rows.
func ConvertTrendEntries(entries []schema.MonthlyTrendEntry) []TrendRow {
	result := make([]TrendRow, len(entries))
	for i, e := range entries {
		result[i] = TrendRow{Month: e.Month, Start: e.Start, Total: e.Total, Count: int32(e.Count)}
	}
	return result
}
