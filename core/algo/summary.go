package algo

import (
	"github.com/huangsam/donorlens/core/agg"
	"github.com/huangsam/donorlens/schema"
)

// Summarize computes the headline numbers of a report.
func Summarize(snap *agg.Snapshot, s schema.Settings) schema.Summary {
	stats := snap.Stats()
	profiles := snap.Profiles()

	sum := schema.Summary{
		TotalAmount: stats.TotalAmount,
		GiftCount:   stats.GiftCount,
		DonorCount:  len(profiles),
		AverageGift: ratio(stats.TotalAmount, float64(stats.GiftCount)),
		MedianGift:  median(stats.SortedAmounts),
	}
	if n := len(stats.SortedAmounts); n > 0 {
		sum.SmallestGift = stats.SortedAmounts[0]
		sum.LargestGift = stats.SortedAmounts[n-1]
	}
	for _, p := range profiles {
		if IsLapsed(p, s) {
			sum.LapsedDonors++
		}
		if open := schema.NewOpenPledgeView(p).OpenAmount; open > 0 {
			sum.OpenPledgeTotal += open
			sum.DonorsWithOpenPledges++
		}
	}
	return sum
}

// TopDonors returns the top_n donors by lifetime total.
func TopDonors(snap *agg.Snapshot, s schema.Settings) []schema.RankedDonor {
	return RankDonors(snap.Profiles(), s.TopN, s)
}

// Campaigns returns every campaign ordered by total.
func Campaigns(snap *agg.Snapshot) []schema.CampaignSummary {
	stats := snap.Stats()
	return RankCampaigns(stats.Campaigns, stats.TotalAmount)
}
