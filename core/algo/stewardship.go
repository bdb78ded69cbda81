package algo

import (
	"github.com/huangsam/donorlens/core/agg"
	"github.com/huangsam/donorlens/schema"
)

// ScoreDonor builds the stewardship entry for one donor:
// open*2 + total, plus total again when the donor is lapsed.
func ScoreDonor(p schema.DonorProfile, s schema.Settings) schema.StewardshipEntry {
	view := schema.NewOpenPledgeView(p)
	lapsed := IsLapsed(p, s)
	score := view.OpenAmount*2 + p.TotalAmount
	if lapsed {
		score += p.TotalAmount
	}
	return schema.StewardshipEntry{
		OpenPledgeView:    view,
		PriorityScore:     score,
		Lapsed:            lapsed,
		DaysSinceLastGift: schema.DaysBetween(p.LastGiftDate, s.AsOf),
	}
}

// StewardshipQueue scores every donor and returns the top queue_size entries.
func StewardshipQueue(snap *agg.Snapshot, s schema.Settings) []schema.StewardshipEntry {
	profiles := snap.Profiles()
	entries := make([]schema.StewardshipEntry, 0, len(profiles))
	for _, p := range profiles {
		entries = append(entries, ScoreDonor(p, s))
	}
	return RankStewardship(entries, s.QueueSize)
}

// OverduePledges lists donors with money still open whose earliest due date is before as_of.
func OverduePledges(snap *agg.Snapshot, s schema.Settings) []schema.OverduePledge {
	out := []schema.OverduePledge{}
	for _, p := range snap.Profiles() {
		view := schema.NewOpenPledgeView(p)
		if view.OpenAmount <= 0 || len(p.PledgeDueDates) == 0 {
			continue
		}
		earliest := p.PledgeDueDates[0]
		if !earliest.Before(s.AsOf) {
			continue
		}
		out = append(out, schema.OverduePledge{
			Key:         p.Key,
			DisplayName: p.Label(),
			OpenAmount:  view.OpenAmount,
			EarliestDue: earliest,
			DaysOverdue: schema.DaysBetween(earliest, s.AsOf),
		})
	}
	return RankOverdue(out)
}
