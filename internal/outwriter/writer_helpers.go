package outwriter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/huangsam/donorlens/internal/contract"
	"github.com/huangsam/donorlens/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// writeWithFile handles the common pattern of opening a file, writing to it, and cleaning up.
// It accepts a writer function that takes an io.Writer and returns an error.
func writeWithFile(outputFile string, writer func(io.Writer) error, successMsg string) error {
	file, err := contract.SelectOutputFile(outputFile)
	if err != nil {
		return err
	}
	// Only close if it's not stdout
	if file != os.Stdout {
		defer func() { _ = file.Close() }()
	}

	if err := writer(file); err != nil {
		return err
	}

	if file != os.Stdout {
		_, _ = fmt.Fprintf(os.Stderr, "💾 %s to %s\n", successMsg, outputFile)
	}
	return nil
}

// writeJSON is a generic JSON encoder that handles indentation consistently.
func writeJSON(w io.Writer, data any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// writeCSVWithHeader handles the common pattern of creating a CSV writer,
// writing a header, and writing data rows.
func writeCSVWithHeader(w io.Writer, header []string, writeRows func(*csv.Writer) error) error {
	csvWriter := csv.NewWriter(w)
	defer csvWriter.Flush()

	if err := csvWriter.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	if err := writeRows(csvWriter); err != nil {
		return err
	}

	csvWriter.Flush()
	return csvWriter.Error()
}

// createFormatters creates the common formatter closures used across multiple output types.
func createFormatters(precision int) (fmtFloat func(float64) string, intFmt string) {
	numFmt := "%.*f"
	intFmt = "%d"
	fmtFloat = func(v float64) string {
		return fmt.Sprintf(numFmt, precision, v)
	}
	return fmtFloat, intFmt
}

// renderTable writes one titled table with right-aligned rows.
func renderTable(w io.Writer, title string, headers []string, data [][]string) error {
	if title != "" {
		if _, err := fmt.Fprintf(w, "\n%s\n", title); err != nil {
			return err
		}
	}
	table := tablewriter.NewWriter(w)
	table.Header(headers)
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

// tierLabel returns the colored or plain tier label depending on the config.
func tierLabel(cfg *contract.Config, tier schema.Tier) string {
	if cfg.UseColors {
		return contract.GetColorTierLabel(tier)
	}
	return contract.GetPlainTierLabel(tier)
}

// lapsedLabel returns the colored or plain lapsed label depending on the config.
func lapsedLabel(cfg *contract.Config, lapsed bool) string {
	if cfg.UseColors {
		return contract.GetColorLapsedLabel(lapsed)
	}
	return contract.GetPlainLapsedLabel(lapsed)
}

// displayName applies name masking when configured.
func displayName(cfg *contract.Config, label string) string {
	if cfg.MaskNames {
		return schema.MaskDonorLabel(label)
	}
	return label
}

// tableName masks and truncates a donor label for a table cell.
func tableName(cfg *contract.Config, label string, reserved int) string {
	return contract.TruncateName(displayName(cfg, label), GetMaxTableNameWidth(cfg, reserved))
}

// writeFooter prints the run summary line below a table.
func writeFooter(w io.Writer, cfg *contract.Config, duration time.Duration) error {
	_, err := fmt.Fprintf(w, "Report completed in %v. Cache backend: %s. History backend: %s\n", duration, cfg.CacheBackend, cfg.HistoryBackend)
	return err
}
