package outwriter

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/donorlens/internal/parquet"
	"github.com/huangsam/donorlens/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	goparquet "github.com/parquet-go/parquet-go"
)

func TestWriteCSVResultsForDonors(t *testing.T) {
	report := sampleReport()
	cfg := testConfig(schema.CSVOut, "")
	fmtFloat, intFmt := createFormatters(0)

	var buf bytes.Buffer
	require.NoError(t, writeCSVResultsForDonors(&buf, report.TopDonors, cfg, fmtFloat, intFmt))

	rows := readCSV(t, buf.Bytes())
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"1", "D2", "Bob Baker", "Major", "15000", "1", "2023-03-10", "2023-03-10", "0"}, rows[1])
	assert.Equal(t, []string{"2", "D1", "Alice Ames", "Mid", "1500", "2", "2024-01-15", "2024-05-20", "2000"}, rows[2])
}

func TestWriteDonorTable(t *testing.T) {
	report := sampleReport()
	cfg := testConfig(schema.TextOut, "")
	fmtFloat, intFmt := createFormatters(2)

	var buf bytes.Buffer
	require.NoError(t, writeDonorTable(&buf, "Top Donors", report.TopDonors, report.Settings, cfg, fmtFloat, intFmt))
	require.NoError(t, writeTierTable(&buf, report.Tiers, cfg, fmtFloat, intFmt))

	out := buf.String()
	assert.Contains(t, out, "Top Donors")
	assert.Contains(t, out, "Bob Baker")
	assert.Contains(t, out, "Major")
	assert.Contains(t, out, "Small")
}

func TestWriteDonorParquet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "donors.parquet")
	cfg := testConfig(schema.ParquetOut, path)
	cfg.MaskNames = true
	require.NoError(t, writeDonorParquet(sampleReport(), cfg))

	rows, err := goparquet.ReadFile[parquet.DonorRow](path)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "D2", rows[0].DonorKey)
	assert.Equal(t, "Bob B", rows[0].DisplayName)
	assert.Equal(t, int32(3), rows[2].Rank)
}

func TestWriteDonorsAllFormatsToFile(t *testing.T) {
	for _, mode := range []schema.OutputMode{schema.TextOut, schema.CSVOut, schema.JSONOut, schema.ParquetOut} {
		t.Run(string(mode), func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "donors."+string(mode))
			require.NoError(t, NewOutWriter().WriteDonors(sampleReport(), testConfig(mode, path), time.Second))
			info, err := os.Stat(path)
			require.NoError(t, err)
			assert.Positive(t, info.Size())
		})
	}
}
