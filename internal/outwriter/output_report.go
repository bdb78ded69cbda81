package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/huangsam/donorlens/internal/contract"
	"github.com/huangsam/donorlens/schema"
)

// keyValue is one labelled scalar of a report section.
type keyValue struct {
	Key   string
	Value string
}

// csvColumnsKey marks the row naming the columns of a list section.
const csvColumnsKey = "_columns"

// WriteReportResults outputs the full report, dispatching based on the output format configured.
func WriteReportResults(report *schema.DonorReport, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, intFmt := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, maskReport(report, cfg))
		}, "Wrote JSON report"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVResultsForReport(w, report, cfg, fmtFloat, intFmt)
		}, "Wrote CSV report"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		if err := writeDonorParquet(report, cfg); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeReportTables(w, report, cfg, fmtFloat, intFmt, duration)
		}, "Wrote report")
	}
	return nil
}

// writeReportTables renders every section of the report as its own table.
func writeReportTables(w io.Writer, report *schema.DonorReport, cfg *contract.Config, fmtFloat func(float64) string, intFmt string, duration time.Duration) error {
	fmtPct := func(v float64) string { return fmtFloat(v*100) + "%" }

	steps := []func() error{
		func() error { return writeKeyValueTable(w, "Summary", summaryRows(report.Summary, fmtFloat, intFmt)) },
		func() error { return writeCampaignTable(w, report.Campaigns, fmtFloat, fmtPct, intFmt) },
		func() error {
			return writeDonorTable(w, "Top Donors", report.TopDonors, report.Settings, cfg, fmtFloat, intFmt)
		},
		func() error { return writeTierTable(w, report.Tiers, cfg, fmtFloat, intFmt) },
		func() error {
			return writeKeyValueTable(w, "Concentration", concentrationRows(report.Concentration, fmtFloat, intFmt))
		},
		func() error { return writeKeyValueTable(w, "Momentum", momentumRows(report.Momentum, fmtFloat, intFmt)) },
		func() error { return writeKeyValueTable(w, "Retention", retentionRows(report.Retention, fmtFloat, intFmt)) },
		func() error { return writeRecencyTable(w, report.Recency, fmtFloat, fmtPct, intFmt) },
		func() error { return writeTrendTable(w, "Monthly Trend", report.MonthlyTrend, fmtFloat, intFmt) },
		func() error {
			return writeKeyValueTable(w, "Acknowledgement", acknowledgementRows(report.Acknowledgement, fmtFloat, intFmt))
		},
		func() error { return writeUnacknowledgedTable(w, report.Acknowledgement.Unacknowledged, cfg, fmtFloat, intFmt) },
		func() error {
			return writeQueueTable(w, "Stewardship Queue", report.StewardshipQueue, cfg, fmtFloat, intFmt)
		},
		func() error { return writeOverdueTable(w, report.OverduePledges, cfg, fmtFloat, intFmt) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}

	if len(report.Warnings) > 0 {
		if _, err := fmt.Fprintf(w, "\n⚠️  %d warnings\n", len(report.Warnings)); err != nil {
			return err
		}
		for _, warning := range report.Warnings {
			if _, err := fmt.Fprintf(w, "  - %s\n", warning); err != nil {
				return err
			}
		}
	}
	return writeFooter(w, cfg, duration)
}

// writeKeyValueTable renders a two-column section.
func writeKeyValueTable(w io.Writer, title string, rows []keyValue) error {
	data := make([][]string, 0, len(rows))
	for _, r := range rows {
		data = append(data, []string{r.Key, r.Value})
	}
	return renderTable(w, title, []string{"Metric", "Value"}, data)
}

func writeCampaignTable(w io.Writer, campaigns []schema.CampaignSummary, fmtFloat, fmtPct func(float64) string, intFmt string) error {
	var data [][]string
	for _, c := range campaigns {
		data = append(data, []string{c.Campaign, fmt.Sprintf(intFmt, c.Count), fmtFloat(c.Total), fmtPct(c.Share)})
	}
	return renderTable(w, "Campaigns", []string{"Campaign", "Gifts", "Total", "Share"}, data)
}

func writeRecencyTable(w io.Writer, buckets []schema.RecencyBucket, fmtFloat, fmtPct func(float64) string, intFmt string) error {
	var data [][]string
	for _, b := range buckets {
		data = append(data, []string{b.Label, fmt.Sprintf(intFmt, b.DonorCount), fmtFloat(b.TotalAmount), fmtPct(b.DonorShare), fmtPct(b.AmountShare)})
	}
	return renderTable(w, "Recency", []string{"Days Since Gift", "Donors", "Total", "Donor Share", "Amount Share"}, data)
}

func writeUnacknowledgedTable(w io.Writer, groups []schema.UnacknowledgedDonor, cfg *contract.Config, fmtFloat func(float64) string, intFmt string) error {
	var data [][]string
	for _, u := range groups {
		data = append(data, []string{
			tableName(cfg, u.DisplayName, queueTableReserved),
			fmt.Sprintf(intFmt, u.Count),
			fmtFloat(u.Total),
			schema.FormatDate(u.LatestGift),
		})
	}
	return renderTable(w, "Unacknowledged Gifts", []string{"Donor", "Gifts", "Total", "Latest Gift"}, data)
}

func summaryRows(s schema.Summary, fmtFloat func(float64) string, intFmt string) []keyValue {
	return []keyValue{
		{"total_amount", fmtFloat(s.TotalAmount)},
		{"gift_count", fmt.Sprintf(intFmt, s.GiftCount)},
		{"donor_count", fmt.Sprintf(intFmt, s.DonorCount)},
		{"average_gift", fmtFloat(s.AverageGift)},
		{"median_gift", fmtFloat(s.MedianGift)},
		{"largest_gift", fmtFloat(s.LargestGift)},
		{"smallest_gift", fmtFloat(s.SmallestGift)},
		{"lapsed_donors", fmt.Sprintf(intFmt, s.LapsedDonors)},
		{"open_pledge_total", fmtFloat(s.OpenPledgeTotal)},
		{"donors_with_open_pledges", fmt.Sprintf(intFmt, s.DonorsWithOpenPledges)},
	}
}

func concentrationRows(c schema.ConcentrationResult, fmtFloat func(float64) string, intFmt string) []keyValue {
	return []keyValue{
		{"donor_count", fmt.Sprintf(intFmt, c.DonorCount)},
		{"top5_total", fmtFloat(c.Top5Total)},
		{"top5_share", fmtFloat(c.Top5Share)},
		{"top10_total", fmtFloat(c.Top10Total)},
		{"top10_share", fmtFloat(c.Top10Share)},
	}
}

func retentionRows(r schema.RetentionResult, fmtFloat func(float64) string, intFmt string) []keyValue {
	return []keyValue{
		{"prior_start", schema.FormatDate(r.PriorStart)},
		{"recent_start", schema.FormatDate(r.RecentStart)},
		{"prior_donors", fmt.Sprintf(intFmt, r.PriorDonors)},
		{"recent_donors", fmt.Sprintf(intFmt, r.RecentDonors)},
		{"retained", fmt.Sprintf(intFmt, r.Retained)},
		{"reactivated", fmt.Sprintf(intFmt, r.Reactivated)},
		{"churned", fmt.Sprintf(intFmt, r.Churned)},
		{"retention_rate", fmtFloat(r.RetentionRate)},
		{"prior_value", fmtFloat(r.PriorValue)},
		{"recent_value", fmtFloat(r.RecentValue)},
		{"retained_prior_value", fmtFloat(r.RetainedPriorValue)},
		{"retained_recent_value", fmtFloat(r.RetainedRecentValue)},
		{"value_retention_rate", fmtFloat(r.ValueRetentionRate)},
	}
}

func acknowledgementRows(a schema.AcknowledgementResult, fmtFloat func(float64) string, intFmt string) []keyValue {
	optional := func(v *float64) string {
		if v == nil {
			return ""
		}
		return fmtFloat(*v)
	}
	return []keyValue{
		{"ack_days", fmt.Sprintf(intFmt, a.AckDays)},
		{"cutoff", schema.FormatDate(a.Cutoff)},
		{"acknowledged_rate", fmtFloat(a.AcknowledgedRate)},
		{"measured_count", fmt.Sprintf(intFmt, a.MeasuredCount)},
		{"mean_latency_days", optional(a.MeanLatencyDays)},
		{"median_latency_days", optional(a.MedianLatencyDays)},
		{"on_time_rate", fmtFloat(a.OnTimeRate)},
		{"unacknowledged_count", fmt.Sprintf(intFmt, a.UnacknowledgedCount)},
		{"unacknowledged_total", fmtFloat(a.UnacknowledgedTotal)},
	}
}

// writeCSVResultsForReport writes every section as a block of section,key,value rows.
// List sections start with a row whose key names their columns.
func writeCSVResultsForReport(w io.Writer, report *schema.DonorReport, cfg *contract.Config, fmtFloat func(float64) string, intFmt string) error {
	return writeCSVWithHeader(w, []string{"section", "key", "value"}, func(cw *csv.Writer) error {
		writeKV := func(section string, rows []keyValue) error {
			for _, r := range rows {
				if err := cw.Write([]string{section, r.Key, r.Value}); err != nil {
					return err
				}
			}
			return nil
		}
		writeList := func(section string, columns []string, rows [][]string) error {
			if err := cw.Write(append([]string{section, csvColumnsKey}, columns...)); err != nil {
				return err
			}
			for _, r := range rows {
				if err := cw.Write(append([]string{section}, r...)); err != nil {
					return err
				}
			}
			return nil
		}

		masked := maskReport(report, cfg)
		if err := writeKV("summary", append([]keyValue{{"as_of", schema.FormatDate(report.AsOf)}}, summaryRows(report.Summary, fmtFloat, intFmt)...)); err != nil {
			return err
		}

		var campaigns [][]string
		for _, c := range report.Campaigns {
			campaigns = append(campaigns, []string{c.Campaign, fmt.Sprintf(intFmt, c.Count), fmtFloat(c.Total), fmtFloat(c.Share)})
		}
		if err := writeList("campaigns", []string{"gift_count", "total", "share"}, campaigns); err != nil {
			return err
		}

		var donors [][]string
		for _, d := range masked.TopDonors {
			donors = append(donors, []string{string(d.Key), strconv.Itoa(d.Rank), d.Label(), contract.GetPlainTierLabel(d.Tier), fmtFloat(d.TotalAmount), fmt.Sprintf(intFmt, d.GiftCount)})
		}
		if err := writeList("top_donors", []string{"rank", "donor", "tier", "total_amount", "gift_count"}, donors); err != nil {
			return err
		}

		var tiers [][]string
		for _, t := range report.Tiers {
			tiers = append(tiers, []string{string(t.Tier), fmt.Sprintf(intFmt, t.Count), fmtFloat(t.Total)})
		}
		if err := writeList("tiers", []string{"donor_count", "total"}, tiers); err != nil {
			return err
		}

		if err := writeKV("concentration", concentrationRows(report.Concentration, fmtFloat, intFmt)); err != nil {
			return err
		}
		if err := writeKV("momentum", momentumRows(report.Momentum, fmtFloat, intFmt)); err != nil {
			return err
		}
		if err := writeKV("retention", retentionRows(report.Retention, fmtFloat, intFmt)); err != nil {
			return err
		}

		var recency [][]string
		for _, b := range report.Recency {
			recency = append(recency, []string{b.Label, fmt.Sprintf(intFmt, b.DonorCount), fmtFloat(b.TotalAmount), fmtFloat(b.DonorShare), fmtFloat(b.AmountShare)})
		}
		if err := writeList("recency", []string{"donor_count", "total_amount", "donor_share", "amount_share"}, recency); err != nil {
			return err
		}

		var trend [][]string
		for _, e := range report.MonthlyTrend {
			trend = append(trend, []string{e.Month, fmt.Sprintf(intFmt, e.Count), fmtFloat(e.Total)})
		}
		if err := writeList("monthly_trend", []string{"gift_count", "total"}, trend); err != nil {
			return err
		}

		if err := writeKV("acknowledgement", acknowledgementRows(report.Acknowledgement, fmtFloat, intFmt)); err != nil {
			return err
		}
		var unack [][]string
		for _, u := range masked.Acknowledgement.Unacknowledged {
			unack = append(unack, []string{string(u.Key), u.DisplayName, fmt.Sprintf(intFmt, u.Count), fmtFloat(u.Total), schema.FormatDate(u.LatestGift)})
		}
		if err := writeList("unacknowledged", []string{"donor", "gift_count", "total", "latest_gift"}, unack); err != nil {
			return err
		}

		var queue [][]string
		for _, e := range masked.StewardshipQueue {
			queue = append(queue, []string{string(e.Key), e.Label(), fmtFloat(e.PriorityScore), fmtFloat(e.OpenAmount), strconv.FormatBool(e.Lapsed)})
		}
		if err := writeList("stewardship_queue", []string{"donor", "priority_score", "open_amount", "lapsed"}, queue); err != nil {
			return err
		}

		var overdue [][]string
		for _, p := range masked.OverduePledges {
			overdue = append(overdue, []string{string(p.Key), p.DisplayName, fmtFloat(p.OpenAmount), schema.FormatDate(p.EarliestDue), fmt.Sprintf(intFmt, p.DaysOverdue)})
		}
		if err := writeList("overdue_pledges", []string{"donor", "open_amount", "earliest_due", "days_overdue"}, overdue); err != nil {
			return err
		}

		for i, warning := range report.Warnings {
			if err := cw.Write([]string{"warnings", strconv.Itoa(i + 1), warning}); err != nil {
				return err
			}
		}
		return nil
	})
}
