package algo

import (
	"fmt"
	"testing"
	"time"

	"github.com/huangsam/donorlens/core/agg"
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

func gift(id, date string, amt float64) schema.GiftRecord {
	return schema.GiftRecord{DonorID: id, GiftDate: day(date), GiftAmount: amt}
}

func settingsAt(asOf string) schema.Settings {
	return schema.DefaultSettings(day(asOf))
}

// mixedRecords is a small book covering every window used by the calculators.
func mixedRecords() []schema.GiftRecord {
	return []schema.GiftRecord{
		gift("A", "2022-08-01", 500),
		gift("A", "2024-06-01", 12000),
		gift("B", "2023-01-15", 300),
		gift("B", "2023-02-15", 200),
		gift("C", "2024-05-20", 50),
		gift("D", "2021-03-01", 1500),
		gift("E", "2023-11-30", 2500),
		gift("E", "2024-04-10", 100),
		{DonorName: "F", GiftDate: day("2024-06-29"), GiftAmount: 75, Row: 9},
	}
}

func TestConcentration(t *testing.T) {
	var records []schema.GiftRecord
	for i := 1; i <= 12; i++ {
		records = append(records, gift(fmt.Sprintf("d%02d", i), "2024-01-01", float64(i*10)))
	}
	res := Concentration(agg.BuildSnapshot(records))

	// totals 10..120, grand 780; top5 = 120+110+100+90+80, top10 adds 70+60+50+40+30
	assert.Equal(t, 12, res.DonorCount)
	assert.Equal(t, 500.0, res.Top5Total)
	assert.Equal(t, 750.0, res.Top10Total)
	assert.InDelta(t, 500.0/780.0, res.Top5Share, 1e-9)
	assert.InDelta(t, 750.0/780.0, res.Top10Share, 1e-9)
	assert.LessOrEqual(t, res.Top5Share, res.Top10Share)
	assert.LessOrEqual(t, res.Top10Share, 1.0)
}

func TestConcentrationFewDonors(t *testing.T) {
	res := Concentration(agg.BuildSnapshot([]schema.GiftRecord{
		gift("a", "2024-01-01", 30),
		gift("b", "2024-01-01", 70),
	}))
	assert.Equal(t, 100.0, res.Top5Total)
	assert.Equal(t, 100.0, res.Top10Total)
	assert.Equal(t, 1.0, res.Top5Share)
}

func TestMomentum(t *testing.T) {
	s := settingsAt("2024-06-30")
	s.RecentDays = 90 // recent from 2024-04-01, prior from 2024-01-02
	snap := agg.BuildSnapshot(append(mixedRecords(), gift("G", "2024-07-15", 999)))
	res := Momentum(snap, s)

	assert.Equal(t, day("2024-04-01"), res.RecentStart)
	assert.Equal(t, day("2024-01-02"), res.PriorStart)
	// recent: A 12000, C 50, E 100, F 75; G is after as-of
	assert.Equal(t, 12225.0, res.RecentTotal)
	assert.Equal(t, 4, res.RecentCount)
	assert.Equal(t, 0.0, res.PriorTotal)
	assert.Equal(t, 0, res.PriorCount)
	assert.Equal(t, 12225.0, res.TotalDelta)
	assert.Equal(t, 4, res.CountDelta)
	assert.Equal(t, 0.0, res.TotalDeltaPct, "no prior total")
	// C, F and G all started on or after the recent cutoff
	assert.Equal(t, 3, res.NewDonors)
	// A's last gap is 670 days, E's is 132 days
	assert.Equal(t, 1, res.ReactivatedDonors)

	require.NotNil(t, res.AvgGapDays)
	// gaps: A 670, B 31, E 132
	assert.InDelta(t, (670.0+31.0+132.0)/3, *res.AvgGapDays, 1e-9)
}

func TestMomentumDeltaPct(t *testing.T) {
	s := settingsAt("2024-06-30")
	s.RecentDays = 30
	snap := agg.BuildSnapshot([]schema.GiftRecord{
		gift("a", "2024-05-15", 100), // prior: [2024-05-01, 2024-05-31)
		gift("a", "2024-06-10", 150), // recent: [2024-05-31, 2024-06-30]
		gift("b", "2024-05-31", 50),  // recent lower bound is inclusive
		gift("c", "2024-04-30", 999), // older than the prior window
	})
	res := Momentum(snap, s)
	assert.Equal(t, 200.0, res.RecentTotal)
	assert.Equal(t, 100.0, res.PriorTotal)
	assert.Equal(t, 100.0, res.TotalDeltaPct)
}

func TestMomentumNoGaps(t *testing.T) {
	res := Momentum(agg.BuildSnapshot([]schema.GiftRecord{gift("a", "2024-01-01", 1)}), settingsAt("2024-06-30"))
	assert.Nil(t, res.AvgGapDays)
}

func TestRetention(t *testing.T) {
	s := settingsAt("2024-06-30")
	// recent [2023-07-01, 2024-06-30], prior [2022-07-01, 2023-06-30]
	res := Retention(agg.BuildSnapshot(mixedRecords()), s)

	assert.Equal(t, day("2023-07-01"), res.RecentStart)
	assert.Equal(t, day("2022-07-01"), res.PriorStart)
	assert.Equal(t, 2, res.PriorDonors) // A, B
	assert.Equal(t, 4, res.RecentDonors) // A, C, E, F
	assert.Equal(t, 1, res.Retained)     // A
	assert.Equal(t, 3, res.Reactivated)  // C, E, F
	assert.Equal(t, 1, res.Churned)      // B
	assert.Equal(t, 0.5, res.RetentionRate)
	assert.Equal(t, 1000.0, res.PriorValue)
	assert.Equal(t, 14725.0, res.RecentValue)
	assert.Equal(t, 500.0, res.RetainedPriorValue)
	assert.Equal(t, 12000.0, res.RetainedRecentValue)
	assert.Equal(t, 12.0, res.ValueRetentionRate)

	assert.Equal(t, res.PriorDonors, res.Retained+res.Churned)
	assert.Equal(t, res.RecentDonors, res.Retained+res.Reactivated)
}

func TestRetentionWindowEdges(t *testing.T) {
	s := settingsAt("2024-06-30")
	res := Retention(agg.BuildSnapshot([]schema.GiftRecord{
		gift("edge-recent", "2023-07-01", 10),
		gift("edge-prior-end", "2023-06-30", 10),
		gift("edge-prior-start", "2022-07-01", 10),
		gift("too-old", "2022-06-30", 10),
	}), s)
	assert.Equal(t, 1, res.RecentDonors)
	assert.Equal(t, 2, res.PriorDonors)
	assert.Equal(t, 2, res.Churned)
}

func TestRecency(t *testing.T) {
	s := settingsAt("2024-06-30")
	snap := agg.BuildSnapshot(append(mixedRecords(), gift("G", "2024-07-15", 25)))
	buckets := Recency(snap, s)

	require.Len(t, buckets, 5)
	labels := make([]string, len(buckets))
	for i, b := range buckets {
		labels[i] = b.Label
	}
	assert.Equal(t, []string{"0-30", "31-90", "91-180", "181-365", "366+"}, labels)
	assert.Nil(t, buckets[4].MaxDays)

	// A 29d, C 41d, E 81d, F 1d, G future, B 501d, D 1217d
	assert.Equal(t, 3, buckets[0].DonorCount)
	assert.Equal(t, 2, buckets[1].DonorCount)
	assert.Equal(t, 0, buckets[2].DonorCount)
	assert.Equal(t, 0, buckets[3].DonorCount)
	assert.Equal(t, 2, buckets[4].DonorCount)

	var donors int
	var total, donorShare float64
	for _, b := range buckets {
		donors += b.DonorCount
		total += b.TotalAmount
		donorShare += b.DonorShare
	}
	assert.Equal(t, snap.DonorCount(), donors)
	assert.InDelta(t, snap.Stats().TotalAmount, total, 1e-9)
	assert.InDelta(t, 1.0, donorShare, 1e-9)
}

func TestMonthlyTrend(t *testing.T) {
	s := settingsAt("2024-06-30")
	trend := MonthlyTrend(agg.BuildSnapshot(append(mixedRecords(), gift("G", "2024-06-30", 5), gift("G", "2023-07-01", 7))), s)

	require.Len(t, trend, 12)
	assert.Equal(t, "2023-07", trend[0].Month)
	assert.Equal(t, "2024-06", trend[11].Month)
	for i := 1; i < len(trend); i++ {
		assert.Equal(t, trend[i-1].Start.AddDate(0, 1, 0), trend[i].Start, "contiguous months")
	}
	assert.Equal(t, 7.0, trend[0].Total)
	assert.Equal(t, 2500.0, trend[4].Total) // 2023-11
	assert.Equal(t, 100.0, trend[9].Total)  // 2024-04
	assert.Equal(t, 50.0, trend[10].Total)  // 2024-05
	assert.Equal(t, 12080.0, trend[11].Total)
	assert.Equal(t, 3, trend[11].Count)
}

func TestMonthlyTrendCountsGiftLaterInAsOfMonth(t *testing.T) {
	s := settingsAt("2024-06-15")
	trend := MonthlyTrend(agg.BuildSnapshot([]schema.GiftRecord{
		gift("A", "2024-06-20", 100),
		gift("A", "2024-07-01", 40), // next month, outside the window
	}), s)

	require.Len(t, trend, 12)
	assert.Equal(t, "2024-06", trend[11].Month)
	assert.Equal(t, 100.0, trend[11].Total)
	assert.Equal(t, 1, trend[11].Count)
	var total float64
	for _, e := range trend {
		total += e.Total
	}
	assert.Equal(t, 100.0, total)
}

func TestTiers(t *testing.T) {
	tiers := Tiers(agg.BuildSnapshot(mixedRecords()), settingsAt("2024-06-30"))
	require.Len(t, tiers, 3)
	assert.Equal(t, schema.TierSummary{Tier: schema.MajorTier, Count: 1, Total: 12500}, tiers[0])
	assert.Equal(t, schema.TierSummary{Tier: schema.MidTier, Count: 2, Total: 4100}, tiers[1])
	assert.Equal(t, schema.TierSummary{Tier: schema.SmallTier, Count: 3, Total: 625}, tiers[2])
}

func TestTierForBoundaries(t *testing.T) {
	s := settingsAt("2024-06-30")
	assert.Equal(t, schema.MajorTier, TierFor(10000, s))
	assert.Equal(t, schema.MidTier, TierFor(9999.99, s))
	assert.Equal(t, schema.MidTier, TierFor(1000, s))
	assert.Equal(t, schema.SmallTier, TierFor(999.99, s))
}

func TestStewardshipQueue(t *testing.T) {
	s := settingsAt("2024-06-30")
	s.QueueSize = 3
	snap := agg.BuildSnapshot([]schema.GiftRecord{
		{DonorID: "p", GiftDate: day("2024-05-01"), GiftAmount: 100, PledgeAmount: amount(1000)}, // 900*2+100
		gift("lapsed", "2022-01-01", 800), // 800 + 800 bonus
		gift("x", "2024-06-01", 1600),     // tie with lapsed, key order
		gift("small", "2024-06-01", 10),
	})
	queue := StewardshipQueue(snap, s)

	require.Len(t, queue, 3)
	assert.Equal(t, schema.DonorKey("p"), queue[0].Key)
	assert.Equal(t, 1900.0, queue[0].PriorityScore)
	assert.Equal(t, 900.0, queue[0].OpenAmount)
	assert.Equal(t, schema.DonorKey("lapsed"), queue[1].Key)
	assert.True(t, queue[1].Lapsed)
	assert.Equal(t, 1600.0, queue[1].PriorityScore)
	assert.Equal(t, schema.DonorKey("x"), queue[2].Key)
	assert.False(t, queue[2].Lapsed)
	assert.Equal(t, 29, queue[2].DaysSinceLastGift)
}

func TestOverduePledges(t *testing.T) {
	s := settingsAt("2024-06-30")
	snap := agg.BuildSnapshot([]schema.GiftRecord{
		{DonorID: "due", GiftDate: day("2024-01-01"), GiftAmount: 300, PledgeAmount: amount(500), PledgeDueDate: dayPtr("2024-06-20")},
		{DonorID: "due", GiftDate: day("2024-02-01"), GiftAmount: 0.01, PledgeDueDate: dayPtr("2024-09-01")},
		{DonorID: "future", GiftDate: day("2024-01-01"), GiftAmount: 100, PledgeAmount: amount(500), PledgeDueDate: dayPtr("2024-06-30")},
		{DonorID: "paid", GiftDate: day("2024-01-01"), GiftAmount: 500, PledgeAmount: amount(500), PledgeDueDate: dayPtr("2024-01-01")},
		{DonorID: "nodate", GiftDate: day("2024-01-01"), GiftAmount: 100, PledgeAmount: amount(500)},
	})
	overdue := OverduePledges(snap, s)

	require.Len(t, overdue, 1)
	assert.Equal(t, schema.DonorKey("due"), overdue[0].Key)
	assert.InDelta(t, 199.99, overdue[0].OpenAmount, 1e-9)
	assert.Equal(t, day("2024-06-20"), overdue[0].EarliestDue)
	assert.Equal(t, 10, overdue[0].DaysOverdue)
}

func TestOverduePledgeScenario(t *testing.T) {
	s := settingsAt("2024-06-30")
	snap := agg.BuildSnapshot([]schema.GiftRecord{
		{DonorID: "d", GiftDate: day("2024-03-01"), GiftAmount: 300, PledgeAmount: amount(500), PledgeDueDate: dayPtr("2024-06-20")},
	})
	overdue := OverduePledges(snap, s)
	require.Len(t, overdue, 1)
	assert.Equal(t, 200.0, overdue[0].OpenAmount)
}

func TestSummarize(t *testing.T) {
	s := settingsAt("2024-06-30")
	records := append(mixedRecords(), schema.GiftRecord{DonorID: "C", GiftDate: day("2024-05-21"), GiftAmount: 25, PledgeAmount: amount(275)})
	sum := Summarize(agg.BuildSnapshot(records), s)

	assert.Equal(t, 17250.0, sum.TotalAmount)
	assert.Equal(t, 10, sum.GiftCount)
	assert.Equal(t, 6, sum.DonorCount)
	assert.Equal(t, 1725.0, sum.AverageGift)
	assert.Equal(t, 250.0, sum.MedianGift) // (200+300)/2
	assert.Equal(t, 12000.0, sum.LargestGift)
	assert.Equal(t, 25.0, sum.SmallestGift)
	assert.Equal(t, 2, sum.LapsedDonors) // B, D
	assert.Equal(t, 200.0, sum.OpenPledgeTotal)
	assert.Equal(t, 1, sum.DonorsWithOpenPledges)
}

func TestTopDonorsAndCampaigns(t *testing.T) {
	s := settingsAt("2024-06-30")
	s.TopN = 2
	records := []schema.GiftRecord{
		{DonorID: "a", GiftDate: day("2024-01-01"), GiftAmount: 50, Campaign: "Gala"},
		{DonorID: "b", GiftDate: day("2024-01-01"), GiftAmount: 50, Campaign: "Annual"},
		{DonorID: "c", GiftDate: day("2024-01-01"), GiftAmount: 20000, Campaign: "Annual"},
	}
	snap := agg.BuildSnapshot(records)

	top := TopDonors(snap, s)
	require.Len(t, top, 2)
	assert.Equal(t, 1, top[0].Rank)
	assert.Equal(t, schema.DonorKey("c"), top[0].Key)
	assert.Equal(t, schema.MajorTier, top[0].Tier)
	assert.Equal(t, schema.DonorKey("a"), top[1].Key, "ties keep first-seen order")

	campaigns := Campaigns(snap)
	require.Len(t, campaigns, 2)
	assert.Equal(t, "Annual", campaigns[0].Campaign)
	assert.Equal(t, 20050.0, campaigns[0].Total)
	assert.Equal(t, 2, campaigns[0].Count)
	assert.InDelta(t, 20050.0/20100.0, campaigns[0].Share, 1e-9)
}
