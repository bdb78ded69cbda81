package core

import (
	"context"
	"fmt"

	"github.com/huangsam/donorlens/core/agg"
	"github.com/huangsam/donorlens/core/algo"
	"github.com/huangsam/donorlens/schema"
	"golang.org/x/sync/errgroup"
)

// BuildReport folds the records into a snapshot and runs every calculator over it.
// Upstream warnings come first in the result, untouched, followed by resolver warnings.
// A non-midnight as-of is truncated to its civil date.
func BuildReport(ctx context.Context, records []schema.GiftRecord, warnings []string, s schema.Settings) (*schema.DonorReport, error) {
	s.AsOf = schema.CivilDate(s.AsOf)
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// The build is sequential and must finish before any calculator reads the snapshot
	snap := agg.BuildSnapshot(records)

	report := &schema.DonorReport{
		AsOf:     s.AsOf,
		Settings: s,
		Donors:   snap.Profiles(),
	}

	g, gctx := errgroup.WithContext(ctx)
	run := func(fn func()) {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			fn()
			return nil
		})
	}

	// Each calculator writes only its own slot
	run(func() { report.Summary = algo.Summarize(snap, s) })
	run(func() { report.Campaigns = algo.Campaigns(snap) })
	run(func() { report.TopDonors = algo.TopDonors(snap, s) })
	run(func() { report.Concentration = algo.Concentration(snap) })
	run(func() { report.Momentum = algo.Momentum(snap, s) })
	run(func() { report.Retention = algo.Retention(snap, s) })
	run(func() { report.Recency = algo.Recency(snap, s) })
	run(func() { report.MonthlyTrend = algo.MonthlyTrend(snap, s) })
	run(func() { report.Acknowledgement = algo.Acknowledgement(snap, s) })
	run(func() { report.Tiers = algo.Tiers(snap, s) })
	run(func() { report.StewardshipQueue = algo.StewardshipQueue(snap, s) })
	run(func() { report.OverduePledges = algo.OverduePledges(snap, s) })

	if err := g.Wait(); err != nil {
		return nil, err
	}

	report.Warnings = mergeWarnings(warnings, snap.Warnings())
	return report, nil
}

// mergeWarnings concatenates warnings, never returning nil.
func mergeWarnings(upstream, resolver []string) []string {
	out := make([]string, 0, len(upstream)+len(resolver))
	out = append(out, upstream...)
	return append(out, resolver...)
}
