package algo

import (
	"github.com/huangsam/donorlens/core/agg"
	"github.com/huangsam/donorlens/schema"
)

type cohortTotals struct {
	prior  float64
	recent float64
}

// Retention classifies donors across two consecutive 365-day windows ending at as_of.
// Both windows are inclusive on each end and do not overlap.
func Retention(snap *agg.Snapshot, s schema.Settings) schema.RetentionResult {
	recentStart := schema.AddDays(s.AsOf, -schema.RetentionWindowDays)
	priorStart := schema.AddDays(recentStart, -schema.RetentionWindowDays)
	priorEnd := schema.AddDays(recentStart, -1)

	perDonor := make(map[schema.DonorKey]*cohortTotals)
	var order []schema.DonorKey
	for _, kg := range snap.Gifts() {
		d := kg.Gift.GiftDate
		inRecent := !d.Before(recentStart) && !d.After(s.AsOf)
		inPrior := !d.Before(priorStart) && !d.After(priorEnd)
		if !inRecent && !inPrior {
			continue
		}
		ct, ok := perDonor[kg.Key]
		if !ok {
			ct = &cohortTotals{}
			perDonor[kg.Key] = ct
			order = append(order, kg.Key)
		}
		if inRecent {
			ct.recent += kg.Gift.GiftAmount
		} else {
			ct.prior += kg.Gift.GiftAmount
		}
	}

	res := schema.RetentionResult{RecentStart: recentStart, PriorStart: priorStart}
	for _, key := range order {
		ct := perDonor[key]
		isPrior, isRecent := ct.prior > 0, ct.recent > 0
		res.PriorValue += ct.prior
		res.RecentValue += ct.recent
		if isPrior {
			res.PriorDonors++
		}
		if isRecent {
			res.RecentDonors++
		}
		switch {
		case isPrior && isRecent:
			res.Retained++
			res.RetainedPriorValue += ct.prior
			res.RetainedRecentValue += ct.recent
		case isRecent:
			res.Reactivated++
		case isPrior:
			res.Churned++
		}
	}
	res.RetentionRate = ratio(float64(res.Retained), float64(res.PriorDonors))
	res.ValueRetentionRate = ratio(res.RetainedRecentValue, res.PriorValue)
	return res
}
