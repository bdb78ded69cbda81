package agg

import "github.com/huangsam/donorlens/schema"

// Snapshot is the frozen result of a build. Every accessor returns a copy,
// so calculators may run concurrently over one snapshot.
type Snapshot struct {
	profiles []schema.DonorProfile // first-seen order
	index    map[schema.DonorKey]int
	gifts    []schema.KeyedGift
	stats    schema.GiftStats
	warnings []string
}

// DonorCount returns the number of distinct donor keys.
func (s *Snapshot) DonorCount() int { return len(s.profiles) }

// Profiles returns every donor profile in first-seen order.
func (s *Snapshot) Profiles() []schema.DonorProfile {
	out := make([]schema.DonorProfile, len(s.profiles))
	for i, p := range s.profiles {
		out[i] = p.Clone()
	}
	return out
}

// Profile looks up a single donor.
func (s *Snapshot) Profile(key schema.DonorKey) (schema.DonorProfile, bool) {
	i, ok := s.index[key]
	if !ok {
		return schema.DonorProfile{}, false
	}
	return s.profiles[i].Clone(), true
}

// Gifts returns every gift with its resolved key, in input order.
func (s *Snapshot) Gifts() []schema.KeyedGift {
	return append([]schema.KeyedGift(nil), s.gifts...)
}

// Stats returns the global gift totals.
func (s *Snapshot) Stats() schema.GiftStats {
	out := s.stats
	out.SortedAmounts = append([]float64(nil), s.stats.SortedAmounts...)
	out.Campaigns = make(map[string]schema.CampaignTotal, len(s.stats.Campaigns))
	for k, v := range s.stats.Campaigns {
		out.Campaigns[k] = v
	}
	return out
}

// Warnings returns resolver warnings in row order.
func (s *Snapshot) Warnings() []string {
	return append([]string(nil), s.warnings...)
}
