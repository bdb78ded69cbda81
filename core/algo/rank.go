package algo

import (
	"sort"

	"github.com/huangsam/donorlens/schema"
)

// RankStewardship sorts entries by priority score descending, ties by donor key,
// and returns the top 'limit' entries.
func RankStewardship(entries []schema.StewardshipEntry, limit int) []schema.StewardshipEntry {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].PriorityScore != entries[j].PriorityScore {
			return entries[i].PriorityScore > entries[j].PriorityScore
		}
		return entries[i].Key < entries[j].Key
	})
	if len(entries) > limit {
		return entries[:limit]
	}
	return entries
}

// RankOverdue sorts overdue pledges by open amount descending, ties by donor key.
func RankOverdue(pledges []schema.OverduePledge) []schema.OverduePledge {
	sort.Slice(pledges, func(i, j int) bool {
		if pledges[i].OpenAmount != pledges[j].OpenAmount {
			return pledges[i].OpenAmount > pledges[j].OpenAmount
		}
		return pledges[i].Key < pledges[j].Key
	})
	return pledges
}

// RankDonors sorts donors by lifetime total descending and returns the top 'limit'.
// Equal totals keep their input order.
func RankDonors(profiles []schema.DonorProfile, limit int, s schema.Settings) []schema.RankedDonor {
	sort.SliceStable(profiles, func(i, j int) bool {
		return profiles[i].TotalAmount > profiles[j].TotalAmount
	})
	if len(profiles) > limit {
		profiles = profiles[:limit]
	}
	ranked := make([]schema.RankedDonor, len(profiles))
	for i, p := range profiles {
		ranked[i] = schema.RankedDonor{Rank: i + 1, Tier: TierFor(p.TotalAmount, s), DonorProfile: p}
	}
	return ranked
}

// RankCampaigns orders campaigns by total descending, ties by name.
func RankCampaigns(campaigns map[string]schema.CampaignTotal, grand float64) []schema.CampaignSummary {
	out := make([]schema.CampaignSummary, 0, len(campaigns))
	for name, c := range campaigns {
		out = append(out, schema.CampaignSummary{Campaign: name, Total: c.Total, Count: c.Count, Share: ratio(c.Total, grand)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Total != out[j].Total {
			return out[i].Total > out[j].Total
		}
		return out[i].Campaign < out[j].Campaign
	})
	return out
}
