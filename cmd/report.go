package cmd

import (
	"github.com/huangsam/donorlens/core"
	"github.com/huangsam/donorlens/internal/contract"
	"github.com/spf13/cobra"
)

// reportCmd prints the full donor report.
var reportCmd = &cobra.Command{
	Use:   "report <gifts.csv>",
	Short: "Show the full donor metrics report.",
	Long: `Read a gift export and compute every donor metric in one pass.

The report covers:
- Totals, averages and campaign breakdowns
- Top donors and giving concentration
- Momentum between the recent window and the one before it
- Year over year retention and recency buckets
- Twelve months of giving trend
- Acknowledgement timeliness and overdue thank-yous
- Donor tiers, the stewardship queue and overdue pledges

Examples:
  # Report as of today
  donorlens report gifts.csv

  # Report as of the fiscal year end
  donorlens report gifts.csv --as-of 2024-06-30

  # Export the report to JSON
  donorlens report gifts.csv --output json --output-file report.json`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteReport(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot build donor report", err)
		}
	},
}

// queueCmd prints who to contact next.
var queueCmd = &cobra.Command{
	Use:   "queue <gifts.csv>",
	Short: "Show the stewardship queue and overdue pledges.",
	Long: `Rank donors by who most needs attention next.

Priority weighs lifetime giving, doubles it for lapsed donors and adds any
open pledge balance. Overdue pledges are listed separately with days past due.

Examples:
  # Top 20 donors to call
  donorlens queue gifts.csv --queue-size 20

  # Share the call list as CSV with names masked
  donorlens queue gifts.csv --output csv --mask-names`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteQueue(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot build stewardship queue", err)
		}
	},
}

// trendCmd prints the monthly trend and momentum.
var trendCmd = &cobra.Command{
	Use:   "trend <gifts.csv>",
	Short: "Show twelve months of giving and recent momentum.",
	Long: `Show gift totals for the twelve calendar months ending at the as-of date,
along with how the recent window compares to the window before it.

Examples:
  # Trend with a 30 day momentum window
  donorlens trend gifts.csv --recent-days 30`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteTrend(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot build giving trend", err)
		}
	},
}

// donorsCmd prints top donors and tiers.
var donorsCmd = &cobra.Command{
	Use:   "donors <gifts.csv>",
	Short: "Show top donors and the tier breakdown.",
	Long: `Rank donors by lifetime giving and summarize the major, mid and small tiers.

Examples:
  # Top 25 donors with a custom major threshold
  donorlens donors gifts.csv --top-n 25 --major-threshold 5000

  # Every donor profile to Parquet
  donorlens donors gifts.csv --output parquet --output-file donors.parquet`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteDonors(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot build donor table", err)
		}
	},
}
