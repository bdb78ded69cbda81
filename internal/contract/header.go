package contract

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/huangsam/donorlens/schema"
)

// LogReportHeader prints the input and as-of lines shown before a report.
func LogReportHeader(cfg *Config) {
	WriteReportHeader(os.Stderr, cfg)
}

// WriteReportHeader writes the report header to w.
func WriteReportHeader(w io.Writer, cfg *Config) {
	name := filepath.Base(cfg.InputPath)
	if name == "" || name == "." {
		name = "stdin"
	}
	_, _ = fmt.Fprintf(w, "🔎 Input: %s (As of: %s)\n", name, schema.FormatDate(cfg.AsOf))
	_, _ = fmt.Fprintf(w, "📅 Windows: lapsed %dd, recent %dd, ack %dd\n", cfg.LapsedDays, cfg.RecentDays, cfg.AckDays)
}
