package cmd

import (
	"github.com/huangsam/donorlens/internal/contract"
	"github.com/huangsam/donorlens/internal/httpapi"
	"github.com/spf13/cobra"
)

// serveCmd starts the HTTP API.
var serveCmd = &cobra.Command{
	Use:   "serve [gifts.csv]",
	Short: "Serve donor reports over HTTP.",
	Long: `Start an HTTP server that computes donor reports from uploaded CSV files.

Routes:
  GET  /healthz     liveness check
  POST /v1/report   full report for the CSV request body
  POST /v1/queue    stewardship queue and overdue pledges for the CSV body
  GET  /v1/report   full report for the file given on the command line
  GET  /v1/queue    queue for the file given on the command line

Query parameters as_of, lapsed_days, recent_days, ack_days, queue_size and
top_n override the configured settings per request.

Examples:
  donorlens serve --addr :9090
  curl --data-binary @gifts.csv 'localhost:9090/v1/report?as_of=2024-06-30'`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		logger := contract.NewLogger(cfg.Verbose)
		return httpapi.Serve(rootCtx, cfg.Addr, httpapi.NewRouter(cfg, cacheManager, logger), logger)
	},
}
