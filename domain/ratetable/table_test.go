package ratetable

import (
	"context"
	"testing"

	"kickpredict/domain/campaign"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTable_RateFallsBackToDefault(t *testing.T) {
	table := New(NameByCategory, map[string]float64{"Games": 5000})

	rate, defaulted := table.Rate("Games")
	assert.Equal(t, 5000.0, rate)
	assert.False(t, defaulted)

	rate, defaulted = table.Rate("Underwater Basket Weaving")
	assert.Equal(t, DefaultRate, rate)
	assert.True(t, defaulted)

	var missing *Table
	rate, defaulted = missing.Rate("Games")
	assert.Equal(t, DefaultRate, rate)
	assert.True(t, defaulted)
}

func TestTable_IsImmutable(t *testing.T) {
	source := map[string]float64{"US": 10}
	table := New(NameByCountry, source)

	source["US"] = 99
	entries := table.Entries()
	entries["US"] = 42

	v, ok := table.Lookup("US")
	require.True(t, ok)
	assert.Equal(t, 10.0, v)
}

func TestSet_Validate(t *testing.T) {
	good := Set{
		ByCategory: New(NameByCategory, map[string]float64{"Art": 10}),
		ByCountry:  New(NameByCountry, map[string]float64{"US": 20}),
	}
	assert.NoError(t, good.Validate())

	assert.Error(t, Set{ByCategory: good.ByCategory}.Validate())

	swapped := Set{ByCategory: good.ByCountry, ByCountry: good.ByCategory}
	assert.Error(t, swapped.Validate())

	zero := Set{ByCategory: New(NameByCategory, map[string]float64{"Art": 0}), ByCountry: good.ByCountry}
	assert.Error(t, zero.Validate())
}

func TestBuild_MeansPerGroup(t *testing.T) {
	records := []campaign.Record{
		{MainCategory: "Games", Country: "US", USDGoalReal: 4000},
		{MainCategory: "Games", Country: "GB", USDGoalReal: 6000},
		{MainCategory: "Art", Country: "US", USDGoalReal: 1000},
		{MainCategory: "", Country: "US", USDGoalReal: 4000},
	}

	set, err := Build(context.Background(), records)
	require.NoError(t, err)
	require.NoError(t, set.Validate())

	games, ok := set.ByCategory.Lookup("Games")
	require.True(t, ok)
	assert.InDelta(t, 5000.0, games, 1e-9)

	art, _ := set.ByCategory.Lookup("Art")
	assert.InDelta(t, 1000.0, art, 1e-9)
	assert.Equal(t, 2, set.ByCategory.Len(), "empty category is skipped")

	us, _ := set.ByCountry.Lookup("US")
	assert.InDelta(t, 3000.0, us, 1e-9)
	gb, _ := set.ByCountry.Lookup("GB")
	assert.InDelta(t, 6000.0, gb, 1e-9)

	_, ok = set.ByCategory.Lookup("Dance")
	assert.False(t, ok, "categories without records are absent")
}

func TestBuild_Deterministic(t *testing.T) {
	records := []campaign.Record{
		{MainCategory: "Games", Country: "US", USDGoalReal: 1234.56},
		{MainCategory: "Games", Country: "US", USDGoalReal: 0.1},
		{MainCategory: "Music", Country: "CA", USDGoalReal: 777},
	}

	a, err := Build(context.Background(), records)
	require.NoError(t, err)
	b, err := Build(context.Background(), records)
	require.NoError(t, err)

	assert.Equal(t, a.Fingerprint(), b.Fingerprint())
	assert.Equal(t, a.ByCategory.Entries(), b.ByCategory.Entries())
}

func TestBuild_Empty(t *testing.T) {
	set, err := Build(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, set.ByCategory.Len())
	assert.Equal(t, 0, set.ByCountry.Len())
}
