package outwriter

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/huangsam/donorlens/core/algo"
	"github.com/huangsam/donorlens/internal/contract"
	"github.com/huangsam/donorlens/internal/parquet"
	"github.com/huangsam/donorlens/schema"
)

// errParquetNeedsFile is returned when parquet output would go to a terminal.
var errParquetNeedsFile = errors.New("parquet output requires --output-file")

// donorTableReserved is the width of every donor table column except the name.
const donorTableReserved = 70

// WriteDonorResults outputs the top donors and tier totals, dispatching based on the output format configured.
func WriteDonorResults(report *schema.DonorReport, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, intFmt := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSONResultsForDonors(w, report, cfg)
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVResultsForDonors(w, report.TopDonors, cfg, fmtFloat, intFmt)
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		if err := writeDonorParquet(report, cfg); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			if err := writeDonorTable(w, "", report.TopDonors, report.Settings, cfg, fmtFloat, intFmt); err != nil {
				return err
			}
			if err := writeTierTable(w, report.Tiers, cfg, fmtFloat, intFmt); err != nil {
				return err
			}
			if _, err := fmt.Fprintf(w, "Showing top %d of %d donors (total given: %s)\n", len(report.TopDonors), report.Summary.DonorCount, fmtFloat(report.Summary.TotalAmount)); err != nil {
				return err
			}
			return writeFooter(w, cfg, duration)
		}, "Wrote table")
	}
	return nil
}

// writeDonorTable renders ranked donors with their tier and lapsed status.
func writeDonorTable(w io.Writer, title string, donors []schema.RankedDonor, s schema.Settings, cfg *contract.Config, fmtFloat func(float64) string, intFmt string) error {
	headers := []string{"Rank", "Donor", "Tier", "Total", "Gifts", "First Gift", "Last Gift", "Status"}
	var data [][]string
	for _, d := range donors {
		data = append(data, []string{
			strconv.Itoa(d.Rank),
			tableName(cfg, d.Label(), donorTableReserved),
			tierLabel(cfg, d.Tier),
			fmtFloat(d.TotalAmount),
			fmt.Sprintf(intFmt, d.GiftCount),
			schema.FormatDate(d.FirstGiftDate),
			schema.FormatDate(d.LastGiftDate),
			lapsedLabel(cfg, algo.IsLapsed(d.DonorProfile, s)),
		})
	}
	return renderTable(w, title, headers, data)
}

// writeTierTable renders the per-tier donor counts and totals.
func writeTierTable(w io.Writer, tiers []schema.TierSummary, cfg *contract.Config, fmtFloat func(float64) string, intFmt string) error {
	var data [][]string
	for _, t := range tiers {
		data = append(data, []string{tierLabel(cfg, t.Tier), fmt.Sprintf(intFmt, t.Count), fmtFloat(t.Total)})
	}
	return renderTable(w, "Tiers", []string{"Tier", "Donors", "Total"}, data)
}

// writeCSVResultsForDonors writes one row per ranked donor.
func writeCSVResultsForDonors(w io.Writer, donors []schema.RankedDonor, cfg *contract.Config, fmtFloat func(float64) string, intFmt string) error {
	header := []string{"rank", "donor_key", "donor", "tier", "total_amount", "gift_count", "first_gift_date", "last_gift_date", "pledge_total"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, d := range donors {
			rec := []string{
				strconv.Itoa(d.Rank),
				string(d.Key),
				displayName(cfg, d.Label()),
				contract.GetPlainTierLabel(d.Tier),
				fmtFloat(d.TotalAmount),
				fmt.Sprintf(intFmt, d.GiftCount),
				schema.FormatDate(d.FirstGiftDate),
				schema.FormatDate(d.LastGiftDate),
				fmtFloat(d.PledgeTotal),
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

// writeJSONResultsForDonors writes the top donors and tiers as one JSON object.
func writeJSONResultsForDonors(w io.Writer, report *schema.DonorReport, cfg *contract.Config) error {
	masked := maskReport(report, cfg)
	return writeJSON(w, struct {
		AsOf      time.Time            `json:"as_of"`
		TopDonors []schema.RankedDonor `json:"top_donors"`
		Tiers     []schema.TierSummary `json:"tiers"`
	}{masked.AsOf, masked.TopDonors, masked.Tiers})
}

// writeDonorParquet writes every donor, ranked by total, as Parquet rows.
func writeDonorParquet(report *schema.DonorReport, cfg *contract.Config) error {
	if cfg.OutputFile == "" {
		return errParquetNeedsFile
	}
	profiles := append([]schema.DonorProfile(nil), report.Donors...)
	rows := parquet.ConvertRankedDonors(algo.RankDonors(profiles, len(profiles), report.Settings))
	if cfg.MaskNames {
		for i := range rows {
			rows[i].DisplayName = schema.MaskDonorLabel(rows[i].DisplayName)
		}
	}
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return parquet.Write(w, rows)
	}, "Wrote Parquet")
}
