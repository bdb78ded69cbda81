// Package outwriter has output and writer logic.
package outwriter

import (
	"time"

	"github.com/huangsam/donorlens/internal/contract"
	"github.com/huangsam/donorlens/schema"
)

// OutWriter provides a unified interface for all output operations.
// It encapsulates the various output formats and provides a clean API for the core logic.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteReport prints the full report using the configured output format.
func (ow *OutWriter) WriteReport(report *schema.DonorReport, cfg *contract.Config, duration time.Duration) error {
	return WriteReportResults(report, cfg, duration)
}

// WriteQueue prints the stewardship queue and overdue pledges using the configured output format.
func (ow *OutWriter) WriteQueue(report *schema.DonorReport, cfg *contract.Config, duration time.Duration) error {
	return WriteQueueResults(report, cfg, duration)
}

// WriteTrend prints the monthly trend and momentum using the configured output format.
func (ow *OutWriter) WriteTrend(report *schema.DonorReport, cfg *contract.Config, duration time.Duration) error {
	return WriteTrendResults(report, cfg, duration)
}

// WriteDonors prints the donor table using the configured output format.
func (ow *OutWriter) WriteDonors(report *schema.DonorReport, cfg *contract.Config, duration time.Duration) error {
	return WriteDonorResults(report, cfg, duration)
}
