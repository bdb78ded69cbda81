// Package core has core logic for report assembly, caching and run tracking.
package core

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/huangsam/donorlens/core/algo"
	"github.com/huangsam/donorlens/internal/contract"
	"github.com/huangsam/donorlens/internal/ingest"
	"github.com/huangsam/donorlens/internal/outwriter"
	"github.com/huangsam/donorlens/schema"
)

// ErrNoInput is returned when a command runs without an input file.
var ErrNoInput = errors.New("an input file is required")

// ExecutorFunc defines the function signature for executing different report views.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error

// ExecuteReport builds the full report and writes it in the configured format.
// It serves as the main entry point for the 'report' command.
func ExecuteReport(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	start := time.Now()
	report, err := runReportCore(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	duration := time.Since(start)
	return outwriter.NewOutWriter().WriteReport(report, cfg, duration)
}

// ExecuteQueue builds the report and writes the stewardship queue and overdue pledges.
func ExecuteQueue(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	start := time.Now()
	report, err := runReportCore(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	duration := time.Since(start)
	return outwriter.NewOutWriter().WriteQueue(report, cfg, duration)
}

// ExecuteTrend builds the report and writes the monthly trend with momentum.
func ExecuteTrend(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	start := time.Now()
	report, err := runReportCore(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	duration := time.Since(start)
	return outwriter.NewOutWriter().WriteTrend(report, cfg, duration)
}

// ExecuteDonors builds the report and writes the donor table with tier totals.
func ExecuteDonors(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	start := time.Now()
	report, err := runReportCore(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	duration := time.Since(start)
	return outwriter.NewOutWriter().WriteDonors(report, cfg, duration)
}

// LoadReport reads a gift file through the ingest cache and builds its report.
// Headers are suppressed; this is the entry point for the MCP tools.
func LoadReport(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) (*schema.DonorReport, error) {
	return runReportCore(withSuppressHeader(ctx), cfg, mgr)
}

// ReportFromCSV parses CSV from r and builds its report without touching any store.
func ReportFromCSV(ctx context.Context, r io.Reader, s schema.Settings) (*schema.DonorReport, error) {
	result, err := ingest.ReadCSV(r)
	if err != nil {
		return nil, err
	}
	return BuildReport(ctx, result.Records, result.Warnings, s)
}

// runReportCore performs the common ingest, build and tracking steps.
func runReportCore(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) (*schema.DonorReport, error) {
	if cfg.InputPath == "" {
		return nil, ErrNoInput
	}
	if !shouldSuppressHeader(ctx) {
		contract.LogReportHeader(cfg)
	}

	// --- 0. Begin Run Tracking (if configured) ---
	var history contract.HistoryStore
	if mgr != nil {
		history = mgr.GetHistoryStore()
	}
	if history != nil {
		runID, _, err := history.BeginRun(time.Now(), cfg.AsOf, cfg.ConfigParams())
		if err != nil {
			contract.LogWarn("Report history initialization failed", err)
		} else if runID > 0 {
			ctx = withRunID(ctx, runID)
		}
	}

	// --- 1. Ingest Phase (with caching) ---
	input, err := cachedIngest(cfg.InputPath, mgr)
	if err != nil {
		return nil, err
	}

	// --- 2. Report Assembly ---
	report, err := BuildReport(ctx, input.Records, input.Warnings, cfg.Settings)
	if err != nil {
		return nil, err
	}

	// --- 3. End Run Tracking ---
	if runID, ok := getRunID(ctx); ok && history != nil {
		recordRun(history, runID, report)
	}

	return report, nil
}

// recordRun stores the donor snapshots and finalizes the run. Failures only warn.
func recordRun(history contract.HistoryStore, runID int64, report *schema.DonorReport) {
	if err := history.RecordDonorSnapshots(runID, donorSnapshots(runID, report)); err != nil {
		contract.LogWarn("Failed to record donor snapshots", err)
	}
	sum := report.Summary
	if err := history.EndRun(runID, time.Now(), sum.DonorCount, sum.GiftCount, sum.TotalAmount); err != nil {
		contract.LogWarn("Failed to finalize report history", err)
	}
}

// donorSnapshots converts every donor of the report into a history row.
func donorSnapshots(runID int64, report *schema.DonorReport) []schema.DonorSnapshotRecord {
	s := report.Settings
	out := make([]schema.DonorSnapshotRecord, 0, len(report.Donors))
	for _, p := range report.Donors {
		entry := algo.ScoreDonor(p, s)
		out = append(out, schema.DonorSnapshotRecord{
			RunID:         runID,
			DonorKey:      string(p.Key),
			DisplayName:   p.Label(),
			TotalAmount:   p.TotalAmount,
			GiftCount:     int32(p.GiftCount),
			FirstGiftDate: p.FirstGiftDate,
			LastGiftDate:  p.LastGiftDate,
			OpenAmount:    entry.OpenAmount,
			Tier:          string(algo.TierFor(p.TotalAmount, s)),
			Lapsed:        entry.Lapsed,
			PriorityScore: entry.PriorityScore,
		})
	}
	return out
}
