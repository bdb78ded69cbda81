package algo

import (
	"github.com/huangsam/donorlens/core/agg"
	"github.com/huangsam/donorlens/schema"
)

// Momentum compares the trailing recent window with the equal-length window before it.
//
// Recent is [as_of - recent_days, as_of]; prior is [as_of - 2*recent_days, as_of - recent_days).
// Gifts dated after as_of fall in neither window.
func Momentum(snap *agg.Snapshot, s schema.Settings) schema.MomentumResult {
	recentCutoff := schema.AddDays(s.AsOf, -s.RecentDays)
	priorCutoff := schema.AddDays(s.AsOf, -2*s.RecentDays)

	res := schema.MomentumResult{
		RecentDays:  s.RecentDays,
		RecentStart: recentCutoff,
		PriorStart:  priorCutoff,
	}

	for _, kg := range snap.Gifts() {
		d := kg.Gift.GiftDate
		switch {
		case d.After(s.AsOf):
		case !d.Before(recentCutoff):
			res.RecentTotal += kg.Gift.GiftAmount
			res.RecentCount++
		case !d.Before(priorCutoff):
			res.PriorTotal += kg.Gift.GiftAmount
			res.PriorCount++
		}
	}
	res.TotalDelta = res.RecentTotal - res.PriorTotal
	res.CountDelta = res.RecentCount - res.PriorCount
	res.TotalDeltaPct = ratio(res.TotalDelta, res.PriorTotal) * 100

	var gaps []float64
	for _, p := range snap.Profiles() {
		if !p.FirstGiftDate.Before(recentCutoff) {
			res.NewDonors++
		}
		n := len(p.GiftDates)
		if n < 2 {
			continue
		}
		for i := 1; i < n; i++ {
			gaps = append(gaps, float64(schema.DaysBetween(p.GiftDates[i-1], p.GiftDates[i])))
		}
		lastGap := schema.DaysBetween(p.GiftDates[n-2], p.GiftDates[n-1])
		if !p.LastGiftDate.Before(recentCutoff) && lastGap > s.LapsedDays {
			res.ReactivatedDonors++
		}
	}
	if len(gaps) > 0 {
		avg := mean(gaps)
		res.AvgGapDays = &avg
	}
	return res
}
