package algo

import (
	"sort"

	"github.com/huangsam/donorlens/core/agg"
	"github.com/huangsam/donorlens/schema"
)

// Concentration measures how much of total giving the top 5 and top 10 donors hold.
// Equal totals keep first-seen order.
func Concentration(snap *agg.Snapshot) schema.ConcentrationResult {
	profiles := snap.Profiles()
	totals := make([]float64, len(profiles))
	for i, p := range profiles {
		totals[i] = p.TotalAmount
	}
	sort.SliceStable(totals, func(i, j int) bool { return totals[i] > totals[j] })

	grand := snap.Stats().TotalAmount
	top5 := prefixSum(totals, schema.ConcentrationTop5)
	top10 := prefixSum(totals, schema.ConcentrationTop10)
	return schema.ConcentrationResult{
		DonorCount: len(profiles),
		Top5Total:  top5,
		Top10Total: top10,
		Top5Share:  ratio(top5, grand),
		Top10Share: ratio(top10, grand),
	}
}

func prefixSum(values []float64, n int) float64 {
	if n > len(values) {
		n = len(values)
	}
	var sum float64
	for _, v := range values[:n] {
		sum += v
	}
	return sum
}
