package ratetable

import (
	"context"
	"fmt"

	"kickpredict/domain/campaign"

	"github.com/montanaflynn/stats"
	"golang.org/x/sync/errgroup"
)

// Build computes both tables from cleaned historical records. Records with an
// empty key are skipped for that table; keys with no records are absent.
func Build(ctx context.Context, records []campaign.Record) (Set, error) {
	var set Set
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		t, err := buildTable(ctx, NameByCategory, records, func(r campaign.Record) string { return r.MainCategory })
		set.ByCategory = t
		return err
	})
	g.Go(func() error {
		t, err := buildTable(ctx, NameByCountry, records, func(r campaign.Record) string { return r.Country })
		set.ByCountry = t
		return err
	})

	if err := g.Wait(); err != nil {
		return Set{}, err
	}
	return set, nil
}

func buildTable(ctx context.Context, name string, records []campaign.Record, key func(campaign.Record) string) (*Table, error) {
	groups := make(map[string][]float64)
	for _, r := range records {
		k := key(r)
		if k == "" || r.USDGoalReal <= 0 {
			continue
		}
		groups[k] = append(groups[k], r.USDGoalReal)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	means := make(map[string]float64, len(groups))
	for k, goals := range groups {
		m, err := stats.Mean(goals)
		if err != nil {
			return nil, fmt.Errorf("%s: mean for %q: %w", name, k, err)
		}
		means[k] = m
	}
	return New(name, means), nil
}
