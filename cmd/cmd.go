// Package cmd defines the command-line interface for donorlens.
package cmd

import (
	"github.com/huangsam/donorlens/internal/contract"
	"github.com/huangsam/donorlens/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(queueCmd)
	rootCmd.AddCommand(trendCmd)
	rootCmd.AddCommand(donorsCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(historyCmd)

	// Add the cache subcommands to the parent cache command
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheStatusCmd)

	// Add the history subcommands to the parent history command
	historyCmd.AddCommand(historyClearCmd)
	historyCmd.AddCommand(historyStatusCmd)
	historyCmd.AddCommand(historyExportCmd)
	historyCmd.AddCommand(historyMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("as-of", "", "Report date in YYYY-MM-DD, RFC3339 or 'N units ago' (default today)")
	rootCmd.PersistentFlags().Int("lapsed-days", schema.DefaultLapsedDays, "Days without a gift before a donor counts as lapsed")
	rootCmd.PersistentFlags().Int("recent-days", schema.DefaultRecentDays, "Length of the momentum comparison window in days")
	rootCmd.PersistentFlags().Float64("major-threshold", schema.DefaultMajorThreshold, "Lifetime total that makes a donor major")
	rootCmd.PersistentFlags().Float64("mid-threshold", schema.DefaultMidThreshold, "Lifetime total that makes a donor mid-level")
	rootCmd.PersistentFlags().Int("ack-days", schema.DefaultAckDays, "Days a gift may wait for a thank-you before it is overdue")
	rootCmd.PersistentFlags().IntP("top-n", "n", schema.DefaultTopN, "Number of top donors to show")
	rootCmd.PersistentFlags().IntP("queue-size", "q", schema.DefaultQueueSize, "Number of stewardship queue entries")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for amounts")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().Bool("mask-names", false, "Abbreviate donor names and emails in output")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("cache-backend", string(schema.NoneBackend), "Ingest cache backend: sqlite or mysql or postgresql or redis or none")
	rootCmd.PersistentFlags().String("cache-db-connect", "", "Cache connection string (prefer DONORLENS_CACHE_DB_CONNECT)")
	rootCmd.PersistentFlags().String("history-backend", string(schema.NoneBackend), "Report history backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("history-db-connect", "", "History connection string (prefer DONORLENS_HISTORY_DB_CONNECT)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of serveCmd to Viper
	serveCmd.Flags().String("addr", contract.DefaultAddr, "Address for the HTTP server to listen on")
	if err := viper.BindPFlags(serveCmd.Flags()); err != nil {
		contract.LogFatal("Error binding serve flags", err)
	}

	// Bind all flags of historyMigrateCmd to Viper
	historyMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(historyMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding history migrate flags", err)
	}
}
