package algo

import (
	"sort"

	"github.com/huangsam/donorlens/core/agg"
	"github.com/huangsam/donorlens/schema"
)

// Acknowledgement measures thank-you latency and lists gifts still waiting
// for an acknowledgement after the grace window.
//
// Latency is ack_date - gift_date in days and is only measured when it is
// non-negative. On-time rate is computed over all gifts.
func Acknowledgement(snap *agg.Snapshot, s schema.Settings) schema.AcknowledgementResult {
	cutoff := schema.AddDays(s.AsOf, -s.AckDays)
	labels := donorLabels(snap)

	var (
		acknowledged int
		onTime       int
		latencies    []float64
		groups       = make(map[schema.DonorKey]*schema.UnacknowledgedDonor)
	)
	gifts := snap.Gifts()
	res := schema.AcknowledgementResult{AckDays: s.AckDays, Cutoff: cutoff}

	for _, kg := range gifts {
		g := kg.Gift
		if g.Acknowledged {
			acknowledged++
		} else if !g.GiftDate.After(cutoff) {
			grp, ok := groups[kg.Key]
			if !ok {
				grp = &schema.UnacknowledgedDonor{Key: kg.Key, DisplayName: labels[kg.Key]}
				groups[kg.Key] = grp
			}
			grp.Total += g.GiftAmount
			grp.Count++
			if g.GiftDate.After(grp.LatestGift) {
				grp.LatestGift = g.GiftDate
			}
			res.UnacknowledgedCount++
			res.UnacknowledgedTotal += g.GiftAmount
		}

		if g.AckDate == nil {
			continue
		}
		latency := schema.DaysBetween(g.GiftDate, *g.AckDate)
		if latency < 0 {
			continue
		}
		latencies = append(latencies, float64(latency))
		if latency <= s.AckDays {
			onTime++
		}
	}

	res.AcknowledgedRate = ratio(float64(acknowledged), float64(len(gifts)))
	res.OnTimeRate = ratio(float64(onTime), float64(len(gifts)))
	res.MeasuredCount = len(latencies)
	if len(latencies) > 0 {
		m := mean(latencies)
		med := median(sortedCopy(latencies))
		res.MeanLatencyDays = &m
		res.MedianLatencyDays = &med
	}

	res.Unacknowledged = make([]schema.UnacknowledgedDonor, 0, len(groups))
	for _, grp := range groups {
		res.Unacknowledged = append(res.Unacknowledged, *grp)
	}
	sort.Slice(res.Unacknowledged, func(i, j int) bool {
		a, b := res.Unacknowledged[i], res.Unacknowledged[j]
		if a.Total != b.Total {
			return a.Total > b.Total
		}
		return a.Key < b.Key
	})
	return res
}

func donorLabels(snap *agg.Snapshot) map[schema.DonorKey]string {
	profiles := snap.Profiles()
	labels := make(map[schema.DonorKey]string, len(profiles))
	for _, p := range profiles {
		labels[p.Key] = p.Label()
	}
	return labels
}
