package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/huangsam/donorlens/internal/contract"
	"github.com/huangsam/donorlens/internal/parquet"
	"github.com/huangsam/donorlens/schema"
)

// queueTableReserved is the width of every queue table column except the name.
const queueTableReserved = 65

// WriteQueueResults outputs the stewardship queue and overdue pledges, dispatching based on the output format configured.
func WriteQueueResults(report *schema.DonorReport, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, intFmt := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSONResultsForQueue(w, report, cfg)
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVResultsForQueue(w, report.StewardshipQueue, report.OverduePledges, cfg, fmtFloat, intFmt)
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		if cfg.OutputFile == "" {
			return errParquetNeedsFile
		}
		rows := parquet.ConvertStewardshipEntries(report.StewardshipQueue)
		for i := range rows {
			rows[i].DisplayName = displayName(cfg, rows[i].DisplayName)
		}
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return parquet.Write(w, rows)
		}, "Wrote Parquet"); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			if err := writeQueueTable(w, "", report.StewardshipQueue, cfg, fmtFloat, intFmt); err != nil {
				return err
			}
			if err := writeOverdueTable(w, report.OverduePledges, cfg, fmtFloat, intFmt); err != nil {
				return err
			}
			if _, err := fmt.Fprintf(w, "Showing %d of %d donors in the queue (%d overdue pledges)\n", len(report.StewardshipQueue), report.Summary.DonorCount, len(report.OverduePledges)); err != nil {
				return err
			}
			return writeFooter(w, cfg, duration)
		}, "Wrote table")
	}
	return nil
}

// writeQueueTable renders the scored stewardship queue.
func writeQueueTable(w io.Writer, title string, entries []schema.StewardshipEntry, cfg *contract.Config, fmtFloat func(float64) string, intFmt string) error {
	headers := []string{"Rank", "Donor", "Score", "Total", "Open", "Last Gift", "Days", "Status"}
	var data [][]string
	for i, e := range entries {
		data = append(data, []string{
			strconv.Itoa(i + 1),
			tableName(cfg, e.Label(), queueTableReserved),
			fmtFloat(e.PriorityScore),
			fmtFloat(e.TotalAmount),
			fmtFloat(e.OpenAmount),
			schema.FormatDate(e.LastGiftDate),
			fmt.Sprintf(intFmt, e.DaysSinceLastGift),
			lapsedLabel(cfg, e.Lapsed),
		})
	}
	return renderTable(w, title, headers, data)
}

// writeOverdueTable renders open pledges past their earliest due date.
func writeOverdueTable(w io.Writer, pledges []schema.OverduePledge, cfg *contract.Config, fmtFloat func(float64) string, intFmt string) error {
	var data [][]string
	for _, p := range pledges {
		days := fmt.Sprintf(intFmt, p.DaysOverdue)
		if cfg.UseColors {
			days = contract.OverdueColor.Sprint(days)
		}
		data = append(data, []string{
			tableName(cfg, p.DisplayName, queueTableReserved),
			fmtFloat(p.OpenAmount),
			schema.FormatDate(p.EarliestDue),
			days,
		})
	}
	return renderTable(w, "Overdue Pledges", []string{"Donor", "Open", "Due", "Days Overdue"}, data)
}

// writeCSVResultsForQueue writes queue rows, then overdue rows, distinguished by the list column.
func writeCSVResultsForQueue(w io.Writer, entries []schema.StewardshipEntry, pledges []schema.OverduePledge, cfg *contract.Config, fmtFloat func(float64) string, intFmt string) error {
	header := []string{"list", "rank", "donor_key", "donor", "priority_score", "total_amount", "open_amount", "last_gift_date", "days_since_last_gift", "lapsed", "earliest_due", "days_overdue"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for i, e := range entries {
			rec := []string{
				"queue",
				strconv.Itoa(i + 1),
				string(e.Key),
				displayName(cfg, e.Label()),
				fmtFloat(e.PriorityScore),
				fmtFloat(e.TotalAmount),
				fmtFloat(e.OpenAmount),
				schema.FormatDate(e.LastGiftDate),
				fmt.Sprintf(intFmt, e.DaysSinceLastGift),
				strconv.FormatBool(e.Lapsed),
				"",
				"",
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		for i, p := range pledges {
			rec := []string{
				"overdue",
				strconv.Itoa(i + 1),
				string(p.Key),
				displayName(cfg, p.DisplayName),
				"",
				"",
				fmtFloat(p.OpenAmount),
				"",
				"",
				"",
				schema.FormatDate(p.EarliestDue),
				fmt.Sprintf(intFmt, p.DaysOverdue),
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

// writeJSONResultsForQueue writes the queue and overdue list as one JSON object.
func writeJSONResultsForQueue(w io.Writer, report *schema.DonorReport, cfg *contract.Config) error {
	masked := maskReport(report, cfg)
	return writeJSON(w, struct {
		AsOf             time.Time                 `json:"as_of"`
		StewardshipQueue []schema.StewardshipEntry `json:"stewardship_queue"`
		OverduePledges   []schema.OverduePledge    `json:"overdue_pledges"`
	}{masked.AsOf, masked.StewardshipQueue, masked.OverduePledges})
}
