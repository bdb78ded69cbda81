package algo

import (
	"github.com/huangsam/donorlens/core/agg"
	"github.com/huangsam/donorlens/schema"
)

// TierFor classifies a lifetime total against the configured thresholds.
func TierFor(total float64, s schema.Settings) schema.Tier {
	switch {
	case total >= s.MajorThreshold:
		return schema.MajorTier
	case total >= s.MidThreshold:
		return schema.MidTier
	default:
		return schema.SmallTier
	}
}

// Tiers returns the count and total of each tier, always major, mid, small.
func Tiers(snap *agg.Snapshot, s schema.Settings) []schema.TierSummary {
	out := make([]schema.TierSummary, len(schema.AllTiers))
	pos := make(map[schema.Tier]int, len(schema.AllTiers))
	for i, tier := range schema.AllTiers {
		out[i] = schema.TierSummary{Tier: tier}
		pos[tier] = i
	}
	for _, p := range snap.Profiles() {
		i := pos[TierFor(p.TotalAmount, s)]
		out[i].Count++
		out[i].Total += p.TotalAmount
	}
	return out
}

// IsLapsed reports whether the donor's last gift predates as_of - lapsed_days.
func IsLapsed(p schema.DonorProfile, s schema.Settings) bool {
	return p.LastGiftDate.Before(schema.AddDays(s.AsOf, -s.LapsedDays))
}
