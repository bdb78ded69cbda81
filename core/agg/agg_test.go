package agg

import (
	"testing"
	"time"

	"github.com/huangsam/donorlens/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return t
}

func dayPtr(s string) *time.Time {
	t := day(s)
	return &t
}

func amount(v float64) *float64 { return &v }

func TestResolveDonorKey(t *testing.T) {
	tests := []struct {
		name    string
		rec     schema.GiftRecord
		want    schema.DonorKey
		warning string
	}{
		{"id wins", schema.GiftRecord{DonorID: " D-1 ", DonorEmail: "a@x.org", DonorName: "Ann"}, "D-1", ""},
		{"email lower-cased", schema.GiftRecord{DonorEmail: " Ann@X.org ", DonorName: "Ann"}, "ann@x.org", ""},
		{"name fallback", schema.GiftRecord{DonorName: "  Ann Lee "}, "Ann Lee", ""},
		{"blank fields ignored", schema.GiftRecord{DonorID: "  ", DonorEmail: "\t", DonorName: "Bo"}, "Bo", ""},
		{
			"synthetic key",
			schema.GiftRecord{Row: 7},
			"unknown-7",
			"Row 7: no donor id, email, or name; using unknown-7",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, warning := ResolveDonorKey(tt.rec)
			assert.Equal(t, tt.want, key)
			assert.Equal(t, tt.warning, warning)
		})
	}
}

func TestRollupBuilderProfiles(t *testing.T) {
	b := NewRollupBuilder()
	b.Add(schema.GiftRecord{DonorID: "1", GiftDate: day("2024-03-01"), GiftAmount: 100, Campaign: "Spring", Row: 1})
	b.Add(schema.GiftRecord{DonorEmail: "bo@x.org", DonorName: "Bo", GiftDate: day("2024-01-15"), GiftAmount: 50, Row: 2})
	b.Add(schema.GiftRecord{
		DonorID: "1", DonorName: "Ann", DonorEmail: "ann@x.org",
		GiftDate: day("2024-01-10"), GiftAmount: 25,
		PledgeAmount: amount(500), PledgeDueDate: dayPtr("2024-06-01"), Row: 3,
	})
	b.Add(schema.GiftRecord{DonorID: "1", DonorName: "Ignored", GiftDate: day("2024-03-01"), GiftAmount: 10, Campaign: "Spring", Row: 4})
	snap := b.Freeze()

	require.Equal(t, 2, snap.DonorCount())
	profiles := snap.Profiles()
	assert.Equal(t, schema.DonorKey("1"), profiles[0].Key, "first-seen order")
	assert.Equal(t, schema.DonorKey("bo@x.org"), profiles[1].Key)

	ann := profiles[0]
	assert.Equal(t, "Ann", ann.DisplayName, "first non-empty name wins")
	assert.Equal(t, "ann@x.org", ann.DisplayEmail)
	assert.Equal(t, "1", ann.DisplayID)
	assert.Equal(t, 135.0, ann.TotalAmount)
	assert.Equal(t, 3, ann.GiftCount)
	assert.Equal(t, day("2024-01-10"), ann.FirstGiftDate)
	assert.Equal(t, day("2024-03-01"), ann.LastGiftDate)
	assert.Equal(t, 500.0, ann.PledgeTotal)
	assert.Equal(t, []time.Time{day("2024-06-01")}, ann.PledgeDueDates)
	assert.Equal(t, []time.Time{day("2024-01-10"), day("2024-03-01")}, ann.GiftDates, "same-day gifts collapse")

	stats := snap.Stats()
	assert.Equal(t, 185.0, stats.TotalAmount)
	assert.Equal(t, 4, stats.GiftCount)
	assert.Equal(t, []float64{10, 25, 50, 100}, stats.SortedAmounts)
	assert.Equal(t, schema.CampaignTotal{Total: 110, Count: 2}, stats.Campaigns["Spring"])
	assert.Equal(t, schema.CampaignTotal{Total: 75, Count: 2}, stats.Campaigns[schema.DefaultCampaign])
	assert.Empty(t, snap.Warnings())
}

func TestRollupBuilderNormalizesDates(t *testing.T) {
	loc := time.FixedZone("EST", -5*3600)
	snap := BuildSnapshot([]schema.GiftRecord{
		{DonorID: "1", GiftDate: time.Date(2024, 5, 3, 22, 30, 0, 0, loc), GiftAmount: 1},
	})
	p, ok := snap.Profile("1")
	require.True(t, ok)
	assert.Equal(t, day("2024-05-03"), p.LastGiftDate)
	assert.Equal(t, day("2024-05-03"), snap.Gifts()[0].Gift.GiftDate)
}

func TestRollupBuilderSyntheticKeys(t *testing.T) {
	snap := BuildSnapshot([]schema.GiftRecord{
		{GiftDate: day("2024-01-01"), GiftAmount: 5, Row: 2},
		{GiftDate: day("2024-01-01"), GiftAmount: 5, Row: 9},
	})
	assert.Equal(t, 2, snap.DonorCount(), "anonymous rows never merge")
	assert.Equal(t, []string{
		"Row 2: no donor id, email, or name; using unknown-2",
		"Row 9: no donor id, email, or name; using unknown-9",
	}, snap.Warnings())
}

func TestRollupBuilderIdentitySplit(t *testing.T) {
	snap := BuildSnapshot([]schema.GiftRecord{
		{DonorID: "42", DonorName: "Ann", GiftDate: day("2024-01-01"), GiftAmount: 5, Row: 1},
		{DonorName: "Ann", GiftDate: day("2024-02-01"), GiftAmount: 5, Row: 2},
	})
	assert.Equal(t, 2, snap.DonorCount())
	_, byID := snap.Profile("42")
	_, byName := snap.Profile("Ann")
	assert.True(t, byID)
	assert.True(t, byName)
}

func TestFreezeRejectsAdd(t *testing.T) {
	b := NewRollupBuilder()
	b.Freeze()
	assert.Panics(t, func() {
		b.Add(schema.GiftRecord{DonorID: "1", GiftDate: day("2024-01-01"), GiftAmount: 1})
	})
}

func TestSnapshotAccessorsReturnCopies(t *testing.T) {
	snap := BuildSnapshot([]schema.GiftRecord{
		{DonorID: "1", GiftDate: day("2024-01-01"), GiftAmount: 10, Row: 1},
	})

	profiles := snap.Profiles()
	profiles[0].TotalAmount = 999
	profiles[0].GiftDates[0] = day("1990-01-01")

	stats := snap.Stats()
	stats.SortedAmounts[0] = 999
	stats.Campaigns["injected"] = schema.CampaignTotal{}

	fresh, _ := snap.Profile("1")
	assert.Equal(t, 10.0, fresh.TotalAmount)
	assert.Equal(t, day("2024-01-01"), fresh.GiftDates[0])
	assert.Equal(t, []float64{10}, snap.Stats().SortedAmounts)
	assert.NotContains(t, snap.Stats().Campaigns, "injected")
}

func TestBuildSnapshotEmpty(t *testing.T) {
	snap := BuildSnapshot(nil)
	assert.Equal(t, 0, snap.DonorCount())
	assert.Empty(t, snap.Profiles())
	assert.Equal(t, 0.0, snap.Stats().TotalAmount)
	assert.Empty(t, snap.Gifts())
}
