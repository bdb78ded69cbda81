package iocache

import (
	"errors"
	"fmt"
	"io"

	"github.com/huangsam/donorlens/internal/contract"
	"github.com/huangsam/donorlens/internal/parquet"
)

// ExportHistory writes every run and donor snapshot in store to
// <outputFile>.report_runs.parquet and <outputFile>.donor_snapshots.parquet.
func ExportHistory(w io.Writer, store contract.HistoryStore, outputFile string) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}
	if store == nil {
		return errors.New("history store is not configured")
	}

	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get history status: %w", err)
	}
	if status.TotalRuns == 0 {
		return errors.New("no report history found to export")
	}

	_, _ = fmt.Fprintf(w, "Exporting data from %s backend...\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Total report runs: %d\n", status.TotalRuns)
	_, _ = fmt.Fprintf(w, "Total donor snapshots: %d\n", status.TotalDonorSnapshots)

	runs, err := store.GetAllRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve report runs: %w", err)
	}
	snapshots, err := store.GetAllDonorSnapshots()
	if err != nil {
		return fmt.Errorf("failed to retrieve donor snapshots: %w", err)
	}

	runsFile := outputFile + ".report_runs.parquet"
	if err := parquet.WriteReportRunsParquet(parquet.ConvertReportRunRecords(runs), runsFile); err != nil {
		return fmt.Errorf("failed to write report runs: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d report runs to: %s\n", len(runs), runsFile)

	snapshotsFile := outputFile + ".donor_snapshots.parquet"
	if err := parquet.WriteDonorSnapshotsParquet(parquet.ConvertDonorSnapshotRecords(snapshots), snapshotsFile); err != nil {
		return fmt.Errorf("failed to write donor snapshots: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d donor snapshots to: %s\n", len(snapshots), snapshotsFile)
	return nil
}
