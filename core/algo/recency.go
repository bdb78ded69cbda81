package algo

import (
	"github.com/huangsam/donorlens/core/agg"
	"github.com/huangsam/donorlens/schema"
)

// Recency buckets donors by days since their last gift.
// A last gift after as_of counts as zero days.
func Recency(snap *agg.Snapshot, s schema.Settings) []schema.RecencyBucket {
	buckets := make([]schema.RecencyBucket, len(schema.RecencyBands))
	for i, band := range schema.RecencyBands {
		buckets[i] = schema.RecencyBucket{Label: band.Label, MinDays: band.MinDays, MaxDays: band.MaxDays}
	}

	profiles := snap.Profiles()
	var grand float64
	for _, p := range profiles {
		days := max(schema.DaysBetween(p.LastGiftDate, s.AsOf), 0)
		i := bandIndex(days)
		buckets[i].DonorCount++
		buckets[i].TotalAmount += p.TotalAmount
		grand += p.TotalAmount
	}

	for i := range buckets {
		buckets[i].DonorShare = ratio(float64(buckets[i].DonorCount), float64(len(profiles)))
		buckets[i].AmountShare = ratio(buckets[i].TotalAmount, grand)
	}
	return buckets
}

func bandIndex(days int) int {
	for i, band := range schema.RecencyBands {
		if band.MaxDays == nil || days <= *band.MaxDays {
			return i
		}
	}
	return len(schema.RecencyBands) - 1
}
