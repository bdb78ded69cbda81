package httpapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/donorlens/internal/contract"
	"github.com/huangsam/donorlens/internal/httpapi"
	"github.com/huangsam/donorlens/schema"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var asOf = time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)

func testConfig(input string) *contract.Config {
	return &contract.Config{
		Settings:  schema.DefaultSettings(asOf),
		InputPath: input,
		Precision: 2,
		Output:    schema.JSONOut,
	}
}

func gifts(t *testing.T) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", "gifts.csv"))
	require.NoError(t, err)
	return data
}

func do(t *testing.T, h http.Handler, method, target string, body io.Reader) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body["error"]
}

func TestHealthz(t *testing.T) {
	h := httpapi.NewRouter(testConfig(""), nil, zerolog.Nop())
	rec := do(t, h, http.MethodGet, "/healthz", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestPostReport(t *testing.T) {
	h := httpapi.NewRouter(testConfig(""), nil, zerolog.Nop())
	rec := do(t, h, http.MethodPost, "/v1/report", bytes.NewReader(gifts(t)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var report schema.DonorReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, asOf, report.AsOf)
	assert.Equal(t, 4, report.Summary.DonorCount)
	assert.Equal(t, 5, report.Summary.GiftCount)
	assert.InDelta(t, 16575.0, report.Summary.TotalAmount, 1e-9)
	assert.Len(t, report.Warnings, 2)
}

func TestPostReportQueryOverrides(t *testing.T) {
	h := httpapi.NewRouter(testConfig(""), nil, zerolog.Nop())
	rec := do(t, h, http.MethodPost, "/v1/report?as_of=2024-01-31&top_n=1&queue_size=1", bytes.NewReader(gifts(t)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var report schema.DonorReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC), report.AsOf)
	assert.Equal(t, 1, report.Settings.TopN)
	assert.LessOrEqual(t, len(report.TopDonors), 1)
	assert.LessOrEqual(t, len(report.StewardshipQueue), 1)
}

func TestPostQueue(t *testing.T) {
	h := httpapi.NewRouter(testConfig(""), nil, zerolog.Nop())
	rec := do(t, h, http.MethodPost, "/v1/queue?queue_size=2", bytes.NewReader(gifts(t)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body struct {
		StewardshipQueue []schema.StewardshipEntry `json:"stewardship_queue"`
		OverduePledges   []schema.OverduePledge    `json:"overdue_pledges"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.StewardshipQueue, 2)
	assert.Equal(t, schema.DonorKey("D2"), body.StewardshipQueue[0].Key)
	require.Len(t, body.OverduePledges, 1)
	assert.Equal(t, schema.DonorKey("D1"), body.OverduePledges[0].Key)
}

func TestBadInput(t *testing.T) {
	h := httpapi.NewRouter(testConfig(""), nil, zerolog.Nop())

	tests := []struct {
		name   string
		target string
		body   string
		substr string
	}{
		{"bad as_of", "/v1/report?as_of=whenever", "Donor ID,Gift Date,Amount\n", "whenever"},
		{"non integer", "/v1/report?lapsed_days=ten", "Donor ID,Gift Date,Amount\n", "lapsed_days"},
		{"non positive", "/v1/queue?queue_size=0", "Donor ID,Gift Date,Amount\n", "queue size"},
		{"missing columns", "/v1/report", "Name,Email\nA,a@example.org\n", ""},
		{"empty body", "/v1/report", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, tt.target, bytes.NewBufferString(tt.body))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			msg := decodeError(t, rec)
			assert.NotEmpty(t, msg)
			if tt.substr != "" {
				assert.Contains(t, msg, tt.substr)
			}
		})
	}
}

func TestGetReportWithoutInputFile(t *testing.T) {
	h := httpapi.NewRouter(testConfig(""), nil, zerolog.Nop())
	rec := do(t, h, http.MethodGet, "/v1/report", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, decodeError(t, rec), "no input file")
}

func TestGetReportFromInputFile(t *testing.T) {
	h := httpapi.NewRouter(testConfig(filepath.Join("testdata", "gifts.csv")), nil, zerolog.Nop())

	rec := do(t, h, http.MethodGet, "/v1/report", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var report schema.DonorReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, 4, report.Summary.DonorCount)

	rec = do(t, h, http.MethodGet, "/v1/queue?queue_size=1", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"stewardship_queue"`)
}

func TestGetReportMissingFile(t *testing.T) {
	h := httpapi.NewRouter(testConfig(filepath.Join(t.TempDir(), "nope.csv")), nil, zerolog.Nop())
	rec := do(t, h, http.MethodGet, "/v1/report", nil)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotEmpty(t, decodeError(t, rec))
}

func TestUnknownRoute(t *testing.T) {
	h := httpapi.NewRouter(testConfig(""), nil, zerolog.Nop())
	rec := do(t, h, http.MethodGet, "/v2/anything", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRequestLoggerWritesStatus(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	h := httpapi.NewRouter(testConfig(""), nil, logger)

	do(t, h, http.MethodGet, "/healthz", nil)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "GET", line["method"])
	assert.Equal(t, "/healthz", line["path"])
	assert.EqualValues(t, 200, line["status"])
	assert.NotEmpty(t, line["request_id"])
}

func TestServeShutsDownOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- httpapi.Serve(ctx, "127.0.0.1:0", http.NotFoundHandler(), zerolog.Nop())
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
