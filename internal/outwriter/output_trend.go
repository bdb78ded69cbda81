package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/huangsam/donorlens/internal/contract"
	"github.com/huangsam/donorlens/internal/parquet"
	"github.com/huangsam/donorlens/schema"
)

// WriteTrendResults outputs the monthly trend and momentum, dispatching based on the output format configured.
func WriteTrendResults(report *schema.DonorReport, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, intFmt := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSONResultsForTrend(w, report)
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVResultsForTrend(w, report.MonthlyTrend, fmtFloat, intFmt)
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		if cfg.OutputFile == "" {
			return errParquetNeedsFile
		}
		rows := parquet.ConvertTrendEntries(report.MonthlyTrend)
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return parquet.Write(w, rows)
		}, "Wrote Parquet"); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			if err := writeTrendTable(w, "", report.MonthlyTrend, fmtFloat, intFmt); err != nil {
				return err
			}
			if err := writeKeyValueTable(w, "Momentum", momentumRows(report.Momentum, fmtFloat, intFmt)); err != nil {
				return err
			}
			return writeFooter(w, cfg, duration)
		}, "Wrote table")
	}
	return nil
}

// writeTrendTable renders the twelve calendar months, oldest first.
func writeTrendTable(w io.Writer, title string, trend []schema.MonthlyTrendEntry, fmtFloat func(float64) string, intFmt string) error {
	var data [][]string
	for _, e := range trend {
		data = append(data, []string{e.Month, fmt.Sprintf(intFmt, e.Count), fmtFloat(e.Total)})
	}
	return renderTable(w, title, []string{"Month", "Gifts", "Total"}, data)
}

// momentumRows flattens the momentum result into label/value pairs.
func momentumRows(m schema.MomentumResult, fmtFloat func(float64) string, intFmt string) []keyValue {
	gap := ""
	if m.AvgGapDays != nil {
		gap = fmtFloat(*m.AvgGapDays)
	}
	return []keyValue{
		{"recent_days", fmt.Sprintf(intFmt, m.RecentDays)},
		{"recent_start", schema.FormatDate(m.RecentStart)},
		{"prior_start", schema.FormatDate(m.PriorStart)},
		{"recent_total", fmtFloat(m.RecentTotal)},
		{"recent_count", fmt.Sprintf(intFmt, m.RecentCount)},
		{"prior_total", fmtFloat(m.PriorTotal)},
		{"prior_count", fmt.Sprintf(intFmt, m.PriorCount)},
		{"total_delta", fmtFloat(m.TotalDelta)},
		{"count_delta", fmt.Sprintf(intFmt, m.CountDelta)},
		{"total_delta_pct", fmtFloat(m.TotalDeltaPct)},
		{"new_donors", fmt.Sprintf(intFmt, m.NewDonors)},
		{"reactivated_donors", fmt.Sprintf(intFmt, m.ReactivatedDonors)},
		{"avg_gap_days", gap},
	}
}

// writeCSVResultsForTrend writes one row per month.
func writeCSVResultsForTrend(w io.Writer, trend []schema.MonthlyTrendEntry, fmtFloat func(float64) string, intFmt string) error {
	return writeCSVWithHeader(w, []string{"month", "start", "gift_count", "total"}, func(cw *csv.Writer) error {
		for _, e := range trend {
			if err := cw.Write([]string{e.Month, schema.FormatDate(e.Start), fmt.Sprintf(intFmt, e.Count), fmtFloat(e.Total)}); err != nil {
				return err
			}
		}
		return nil
	})
}

// writeJSONResultsForTrend writes the trend and momentum as one JSON object.
func writeJSONResultsForTrend(w io.Writer, report *schema.DonorReport) error {
	return writeJSON(w, struct {
		AsOf         time.Time                  `json:"as_of"`
		MonthlyTrend []schema.MonthlyTrendEntry `json:"monthly_trend"`
		Momentum     schema.MomentumResult      `json:"momentum"`
	}{report.AsOf, report.MonthlyTrend, report.Momentum})
}
