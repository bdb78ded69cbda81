// Package ingest turns donor gift exports into validated gift records.
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/huangsam/donorlens/schema"
)

// Errors returned for unusable input.
var (
	ErrMissingGiftDate   = errors.New("missing required gift date column")
	ErrMissingGiftAmount = errors.New("missing required gift amount column")
	ErrEmptyInput        = errors.New("input has no header row")
)

// Result is the output of a single ingestion pass.
type Result struct {
	Records  []schema.GiftRecord `json:"records"`
	Warnings []string            `json:"warnings"`
	RowsRead int                 `json:"rows_read"`
}

// ReadFile opens path and parses it as CSV.
func ReadFile(path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return ReadCSV(f)
}

// ReadCSV parses a gift export. Rows with an unusable gift date or amount are
// skipped with a warning; unparsable optional cells are dropped with a warning.
func ReadCSV(r io.Reader) (*Result, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyInput
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	cols := mapHeader(header)
	if _, ok := cols[fieldGiftDate]; !ok {
		return nil, ErrMissingGiftDate
	}
	if _, ok := cols[fieldGiftAmount]; !ok {
		return nil, ErrMissingGiftAmount
	}

	res := &Result{Records: []schema.GiftRecord{}, Warnings: []string{}}
	for n := 1; ; n++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			res.RowsRead++
			res.Warnings = append(res.Warnings, fmt.Sprintf("Row %d: %v", n, unwrapCSV(err)))
			continue
		}
		if isBlank(row) {
			continue
		}
		res.RowsRead++

		rec, warnings, ok := parseRow(cols, row, n)
		res.Warnings = append(res.Warnings, warnings...)
		if ok {
			res.Records = append(res.Records, rec)
		}
	}
	return res, nil
}

func unwrapCSV(err error) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return pe.Err
	}
	return err
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// parseRow converts one CSV row. The bool is false when the row must be skipped.
func parseRow(cols map[field]int, row []string, n int) (schema.GiftRecord, []string, bool) {
	var warnings []string
	warn := func(format string, args ...any) {
		warnings = append(warnings, fmt.Sprintf("Row %d: ", n)+fmt.Sprintf(format, args...))
	}
	cell := func(f field) string {
		i, ok := cols[f]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	rec := schema.GiftRecord{
		DonorID:    cell(fieldDonorID),
		DonorName:  cell(fieldDonorName),
		DonorEmail: cell(fieldEmail),
		Campaign:   cell(fieldCampaign),
		Row:        n,
	}
	if rec.Campaign == "" {
		rec.Campaign = schema.DefaultCampaign
	}

	rawDate := cell(fieldGiftDate)
	if rawDate == "" {
		warn("missing gift date")
		return rec, warnings, false
	}
	giftDate, err := ParseDate(rawDate)
	if err != nil {
		warn("invalid gift date %q", rawDate)
		return rec, warnings, false
	}
	rec.GiftDate = giftDate

	rawAmount := cell(fieldGiftAmount)
	if rawAmount == "" {
		warn("missing gift amount")
		return rec, warnings, false
	}
	giftAmount, err := ParseCurrency(rawAmount)
	if err != nil {
		warn("invalid gift amount %q", rawAmount)
		return rec, warnings, false
	}
	if giftAmount <= 0 {
		warn("gift amount must be positive, got %q", rawAmount)
		return rec, warnings, false
	}
	rec.GiftAmount = giftAmount

	if raw := cell(fieldPledgeAmount); raw != "" {
		pledge, err := ParseCurrency(raw)
		switch {
		case err != nil:
			warn("ignoring invalid pledge amount %q", raw)
		case pledge < 0:
			warn("ignoring negative pledge amount %q", raw)
		default:
			rec.PledgeAmount = &pledge
		}
	}
	if raw := cell(fieldPledgeDueDate); raw != "" {
		if due, err := ParseDate(raw); err != nil {
			warn("ignoring invalid pledge due date %q", raw)
		} else {
			rec.PledgeDueDate = &due
		}
	}
	if raw := cell(fieldAckDate); raw != "" {
		if ack, err := ParseDate(raw); err != nil {
			warn("ignoring invalid ack date %q", raw)
		} else {
			rec.AckDate = &ack
		}
	}

	rawAck := cell(fieldAcknowledged)
	acknowledged, err := ParseBool(rawAck)
	if err != nil {
		warn("ignoring invalid acknowledged value %q", rawAck)
		rawAck = ""
	}
	rec.Acknowledged = acknowledged
	if rawAck == "" && rec.AckDate != nil {
		rec.Acknowledged = true
	}

	return rec, warnings, true
}
