// Package agg folds gift records into per-donor rollups and global totals.
package agg

import (
	"sort"
	"strings"
	"time"

	"github.com/huangsam/donorlens/schema"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// donorState is the mutable accumulator behind one DonorProfile.
type donorState struct {
	profile   schema.DonorProfile
	giftDates map[time.Time]struct{}
	dueDates  map[time.Time]struct{}
}

// RollupBuilder accumulates gifts in one forward pass. It is not safe for
// concurrent use and must be frozen before any calculator reads it.
type RollupBuilder struct {
	donors    *orderedmap.OrderedMap[schema.DonorKey, *donorState]
	gifts     []schema.KeyedGift
	amounts   []float64
	total     float64
	campaigns map[string]schema.CampaignTotal
	warnings  []string
	frozen    bool
}

// NewRollupBuilder returns an empty builder.
func NewRollupBuilder() *RollupBuilder {
	return &RollupBuilder{
		donors:    orderedmap.New[schema.DonorKey, *donorState](),
		campaigns: make(map[string]schema.CampaignTotal),
	}
}

// getOrInsert returns the accumulator for key, creating it on first sight.
func (b *RollupBuilder) getOrInsert(key schema.DonorKey) *donorState {
	if st, ok := b.donors.Get(key); ok {
		return st
	}
	st := &donorState{
		profile:   schema.DonorProfile{Key: key},
		giftDates: make(map[time.Time]struct{}),
		dueDates:  make(map[time.Time]struct{}),
	}
	b.donors.Set(key, st)
	return st
}

// Add folds a single gift into the rollup.
func (b *RollupBuilder) Add(rec schema.GiftRecord) {
	if b.frozen {
		panic("agg: Add called on a frozen RollupBuilder")
	}

	rec = normalize(rec)
	key, warning := ResolveDonorKey(rec)
	if warning != "" {
		b.warnings = append(b.warnings, warning)
	}

	st := b.getOrInsert(key)
	p := &st.profile
	fillDisplay(&p.DisplayName, rec.DonorName)
	fillDisplay(&p.DisplayEmail, rec.DonorEmail)
	fillDisplay(&p.DisplayID, rec.DonorID)

	p.TotalAmount += rec.GiftAmount
	p.GiftCount++
	if p.FirstGiftDate.IsZero() || rec.GiftDate.Before(p.FirstGiftDate) {
		p.FirstGiftDate = rec.GiftDate
	}
	if rec.GiftDate.After(p.LastGiftDate) {
		p.LastGiftDate = rec.GiftDate
	}
	st.giftDates[rec.GiftDate] = struct{}{}

	if rec.PledgeAmount != nil {
		p.PledgeTotal += *rec.PledgeAmount
	}
	if rec.PledgeDueDate != nil {
		st.dueDates[*rec.PledgeDueDate] = struct{}{}
	}

	b.total += rec.GiftAmount
	b.amounts = append(b.amounts, rec.GiftAmount)
	c := b.campaigns[rec.Campaign]
	c.Total += rec.GiftAmount
	c.Count++
	b.campaigns[rec.Campaign] = c

	b.gifts = append(b.gifts, schema.KeyedGift{Key: key, Gift: rec})
}

// Freeze ends the build and returns the read-only snapshot.
// The builder rejects further gifts afterwards.
func (b *RollupBuilder) Freeze() *Snapshot {
	b.frozen = true

	snap := &Snapshot{
		profiles: make([]schema.DonorProfile, 0, b.donors.Len()),
		index:    make(map[schema.DonorKey]int, b.donors.Len()),
		gifts:    append([]schema.KeyedGift(nil), b.gifts...),
		warnings: append([]string(nil), b.warnings...),
	}
	for pair := b.donors.Oldest(); pair != nil; pair = pair.Next() {
		p := pair.Value.profile.Clone()
		p.GiftDates = sortedDates(pair.Value.giftDates)
		p.PledgeDueDates = sortedDates(pair.Value.dueDates)
		snap.index[pair.Key] = len(snap.profiles)
		snap.profiles = append(snap.profiles, p)
	}

	sorted := append([]float64(nil), b.amounts...)
	sort.Float64s(sorted)
	campaigns := make(map[string]schema.CampaignTotal, len(b.campaigns))
	for name, c := range b.campaigns {
		campaigns[name] = c
	}
	snap.stats = schema.GiftStats{
		TotalAmount:   b.total,
		GiftCount:     len(b.amounts),
		SortedAmounts: sorted,
		Campaigns:     campaigns,
	}
	return snap
}

// BuildSnapshot runs a whole build over records.
func BuildSnapshot(records []schema.GiftRecord) *Snapshot {
	b := NewRollupBuilder()
	for _, rec := range records {
		b.Add(rec)
	}
	return b.Freeze()
}

// normalize truncates dates to civil days and fills the default campaign.
func normalize(rec schema.GiftRecord) schema.GiftRecord {
	rec.GiftDate = schema.CivilDate(rec.GiftDate)
	if rec.PledgeDueDate != nil {
		d := schema.CivilDate(*rec.PledgeDueDate)
		rec.PledgeDueDate = &d
	}
	if rec.AckDate != nil {
		d := schema.CivilDate(*rec.AckDate)
		rec.AckDate = &d
	}
	rec.Campaign = strings.TrimSpace(rec.Campaign)
	if rec.Campaign == "" {
		rec.Campaign = schema.DefaultCampaign
	}
	return rec
}

// fillDisplay sets dst from the first non-blank value it sees.
func fillDisplay(dst *string, value string) {
	if *dst != "" {
		return
	}
	*dst = strings.TrimSpace(value)
}

func sortedDates(set map[time.Time]struct{}) []time.Time {
	out := make([]time.Time, 0, len(set))
	for d := range set {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}
