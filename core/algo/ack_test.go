package algo

import (
	"testing"

	"github.com/huangsam/donorlens/core/agg"
	"github.com/huangsam/donorlens/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcknowledgementTwoUnacknowledgedGifts(t *testing.T) {
	// 1 donor, 2 gifts a week apart, as-of 30 days after the second gift
	s := settingsAt("2024-03-09")
	snap := agg.BuildSnapshot([]schema.GiftRecord{
		{DonorID: "d1", DonorName: "Dana", GiftDate: day("2024-02-01"), GiftAmount: 100},
		{DonorID: "d1", DonorName: "Dana", GiftDate: day("2024-02-08"), GiftAmount: 100},
	})
	res := Acknowledgement(snap, s)

	assert.Equal(t, 2, res.UnacknowledgedCount)
	assert.Equal(t, 200.0, res.UnacknowledgedTotal)
	assert.Equal(t, 0.0, res.OnTimeRate)
	assert.Equal(t, 0.0, res.AcknowledgedRate)
	assert.Nil(t, res.MeanLatencyDays)
	assert.Nil(t, res.MedianLatencyDays)

	require.Len(t, res.Unacknowledged, 1)
	grp := res.Unacknowledged[0]
	assert.Equal(t, schema.DonorKey("d1"), grp.Key)
	assert.Equal(t, "Dana", grp.DisplayName)
	assert.Equal(t, 2, grp.Count)
	assert.Equal(t, day("2024-02-08"), grp.LatestGift)
}

func TestAcknowledgementLatency(t *testing.T) {
	s := settingsAt("2024-06-30")
	snap := agg.BuildSnapshot([]schema.GiftRecord{
		{DonorID: "a", GiftDate: day("2024-06-01"), GiftAmount: 10, Acknowledged: true, AckDate: dayPtr("2024-06-03")},  // 2 days
		{DonorID: "a", GiftDate: day("2024-06-01"), GiftAmount: 10, Acknowledged: true, AckDate: dayPtr("2024-06-21")},  // 20 days
		{DonorID: "b", GiftDate: day("2024-06-01"), GiftAmount: 10, Acknowledged: true, AckDate: dayPtr("2024-06-08")},  // 7 days, on time
		{DonorID: "b", GiftDate: day("2024-06-10"), GiftAmount: 10, Acknowledged: true, AckDate: dayPtr("2024-06-01")},  // negative, unmeasured
		{DonorID: "c", GiftDate: day("2024-06-28"), GiftAmount: 99},                                                     // inside grace window
		{DonorID: "d", GiftDate: day("2024-05-01"), GiftAmount: 40},                                                     // overdue ack
		{DonorID: "e", GiftDate: day("2024-05-02"), GiftAmount: 40},                                                     // overdue ack, ties with d
		{DonorID: "f", GiftDate: day("2024-04-01"), GiftAmount: 60},                                                     // overdue ack
		{DonorID: "g", GiftDate: day("2024-06-01"), GiftAmount: 10, Acknowledged: true},                                 // no date
		{DonorID: "h", GiftDate: day("2024-06-23"), GiftAmount: 5},                                                      // exactly at cutoff
	})
	res := Acknowledgement(snap, s)

	assert.Equal(t, day("2024-06-23"), res.Cutoff)
	assert.InDelta(t, 5.0/10.0, res.AcknowledgedRate, 1e-9)
	assert.Equal(t, 3, res.MeasuredCount)
	require.NotNil(t, res.MeanLatencyDays)
	require.NotNil(t, res.MedianLatencyDays)
	assert.InDelta(t, (2.0+20.0+7.0)/3, *res.MeanLatencyDays, 1e-9)
	assert.Equal(t, 7.0, *res.MedianLatencyDays)
	assert.InDelta(t, 2.0/10.0, res.OnTimeRate, 1e-9)

	assert.Equal(t, 4, res.UnacknowledgedCount)
	assert.Equal(t, 145.0, res.UnacknowledgedTotal)
	keys := make([]schema.DonorKey, len(res.Unacknowledged))
	for i, u := range res.Unacknowledged {
		keys[i] = u.Key
	}
	assert.Equal(t, []schema.DonorKey{"f", "d", "e", "h"}, keys)
}

func TestZeroDonors(t *testing.T) {
	snap := agg.BuildSnapshot(nil)
	s := settingsAt("2024-06-30")

	conc := Concentration(snap)
	assert.Equal(t, 0.0, conc.Top5Share)
	assert.Equal(t, 0.0, conc.Top10Share)

	mom := Momentum(snap, s)
	assert.Equal(t, 0.0, mom.TotalDeltaPct)
	assert.Nil(t, mom.AvgGapDays)

	ret := Retention(snap, s)
	assert.Equal(t, 0.0, ret.RetentionRate)
	assert.Equal(t, 0.0, ret.ValueRetentionRate)

	for _, b := range Recency(snap, s) {
		assert.Equal(t, 0.0, b.DonorShare)
		assert.Equal(t, 0.0, b.AmountShare)
	}

	trend := MonthlyTrend(snap, s)
	require.Len(t, trend, 12)
	for _, e := range trend {
		assert.Equal(t, 0.0, e.Total)
		assert.Equal(t, 0, e.Count)
	}

	ack := Acknowledgement(snap, s)
	assert.Equal(t, 0.0, ack.AcknowledgedRate)
	assert.Equal(t, 0.0, ack.OnTimeRate)
	assert.Empty(t, ack.Unacknowledged)

	sum := Summarize(snap, s)
	assert.Equal(t, 0.0, sum.AverageGift)
	assert.Equal(t, 0.0, sum.MedianGift)

	assert.Empty(t, StewardshipQueue(snap, s))
	assert.Empty(t, OverduePledges(snap, s))
	assert.Len(t, Tiers(snap, s), 3)
}
