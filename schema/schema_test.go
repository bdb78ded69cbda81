package schema

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(s string) time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestSettingsValidate(t *testing.T) {
	valid := DefaultSettings(date("2024-06-30"))
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*Settings)
	}{
		{"missing as-of", func(s *Settings) { s.AsOf = time.Time{} }},
		{"mid equals major", func(s *Settings) { s.MidThreshold = s.MajorThreshold }},
		{"mid above major", func(s *Settings) { s.MidThreshold = 20000 }},
		{"negative mid", func(s *Settings) { s.MidThreshold = -1 }},
		{"zero lapsed days", func(s *Settings) { s.LapsedDays = 0 }},
		{"negative recent days", func(s *Settings) { s.RecentDays = -5 }},
		{"zero ack days", func(s *Settings) { s.AckDays = 0 }},
		{"zero top n", func(s *Settings) { s.TopN = 0 }},
		{"zero queue size", func(s *Settings) { s.QueueSize = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := valid
			tt.mutate(&s)
			err := s.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidSettings)
		})
	}
}

func TestDefaultSettingsNormalizesAsOf(t *testing.T) {
	s := DefaultSettings(time.Date(2024, 6, 30, 17, 45, 0, 0, time.FixedZone("PDT", -7*3600)))
	assert.Equal(t, date("2024-06-30"), s.AsOf)
	assert.Equal(t, 365, s.LapsedDays)
	assert.Equal(t, 90, s.RecentDays)
	assert.Equal(t, 10000.0, s.MajorThreshold)
	assert.Equal(t, 1000.0, s.MidThreshold)
	assert.Equal(t, 7, s.AckDays)
	assert.Equal(t, 5, s.TopN)
	assert.Equal(t, 10, s.QueueSize)
}

func TestDateHelpers(t *testing.T) {
	assert.Equal(t, 31, DaysBetween(date("2024-01-01"), date("2024-02-01")))
	assert.Equal(t, -1, DaysBetween(date("2024-01-02"), date("2024-01-01")))
	assert.Equal(t, 366, DaysBetween(date("2024-01-01"), date("2025-01-01")), "leap year")
	assert.Equal(t, date("2024-02-29"), AddDays(date("2024-03-01"), -1))
	assert.Equal(t, date("2024-03-01"), MonthStart(date("2024-03-31")))
	assert.Equal(t, "2024-03-31", FormatDate(date("2024-03-31")))
	assert.Equal(t, "", FormatDate(time.Time{}))
}

func TestNewOpenPledgeView(t *testing.T) {
	p := DonorProfile{Key: "d1", TotalAmount: 300, PledgeTotal: 500, GiftDates: []time.Time{date("2024-01-01")}}
	view := NewOpenPledgeView(p)
	assert.Equal(t, 200.0, view.OpenAmount)

	view.GiftDates[0] = date("1999-01-01")
	assert.Equal(t, date("2024-01-01"), p.GiftDates[0], "view must not alias the profile")

	overpaid := NewOpenPledgeView(DonorProfile{TotalAmount: 800, PledgeTotal: 500})
	assert.Equal(t, 0.0, overpaid.OpenAmount)
}

func TestDonorProfileLabel(t *testing.T) {
	assert.Equal(t, "Jane", DonorProfile{Key: "k", DisplayName: "Jane", DisplayEmail: "j@x.org"}.Label())
	assert.Equal(t, "j@x.org", DonorProfile{Key: "k", DisplayEmail: "j@x.org", DisplayID: "7"}.Label())
	assert.Equal(t, "7", DonorProfile{Key: "k", DisplayID: "7"}.Label())
	assert.Equal(t, "unknown-3", DonorProfile{Key: "unknown-3"}.Label())
}
