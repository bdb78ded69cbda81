package algo

import (
	"time"

	"github.com/huangsam/donorlens/core/agg"
	"github.com/huangsam/donorlens/schema"
)

// MonthlyTrend rolls gifts into the 12 calendar months ending with the month of as_of,
// oldest first. Empty months are reported with zero values. A gift later in the
// as_of month still counts toward that month.
func MonthlyTrend(snap *agg.Snapshot, s schema.Settings) []schema.MonthlyTrendEntry {
	first := schema.MonthStart(s.AsOf).AddDate(0, -(schema.TrendMonths - 1), 0)
	entries := make([]schema.MonthlyTrendEntry, schema.TrendMonths)
	for i := range entries {
		start := first.AddDate(0, i, 0)
		entries[i] = schema.MonthlyTrendEntry{Month: start.Format("2006-01"), Start: start}
	}

	for _, kg := range snap.Gifts() {
		i := monthIndex(first, kg.Gift.GiftDate)
		if i < 0 || i >= schema.TrendMonths {
			continue
		}
		entries[i].Total += kg.Gift.GiftAmount
		entries[i].Count++
	}
	return entries
}

// monthIndex counts calendar months from first to d.
func monthIndex(first, d time.Time) int {
	return (d.Year()-first.Year())*12 + int(d.Month()) - int(first.Month())
}
