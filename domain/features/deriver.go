package features

import (
	"strings"

	"kickpredict/domain/campaign"
	"kickpredict/domain/core"
	"kickpredict/domain/ratetable"
)

// Derive turns one campaign record into its feature row. The steps run in a
// fixed order: date parsing, duration check, then the quantities that divide
// by the duration. Derive never mutates the tables and is deterministic.
func Derive(rec campaign.Record, tables ratetable.Set) (Row, error) {
	deadline, ok := core.ParseDay(rec.Deadline)
	if !ok {
		return Row{}, &core.DateParseError{Field: campaign.ColumnDeadline, Value: rec.Deadline}
	}
	launched, ok := core.ParseDay(rec.Launched)
	if !ok {
		return Row{}, &core.DateParseError{Field: campaign.ColumnLaunched, Value: rec.Launched}
	}

	delta := core.DaysBetween(launched, deadline)
	if delta <= 0 {
		return Row{}, &core.InvalidDateRangeError{Launched: rec.Launched, Deadline: rec.Deadline, Days: delta}
	}

	goal := rec.USDGoalReal
	categoryMean, categoryDefaulted := tables.ByCategory.Rate(rec.MainCategory)
	countryMean, countryDefaulted := tables.ByCountry.Rate(rec.Country)

	return Row{
		USDGoalReal:             goal,
		DeltaTime:               delta,
		Practicability:          goal / float64(delta),
		TitleWordCount:          len(strings.Fields(rec.Name)),
		RatioGoalByMainCategory: goal / categoryMean,
		RatioGoalByCountry:      goal / countryMean,
		MainCategory:            rec.MainCategory,
		Country:                 rec.Country,
		CategoryRateDefaulted:   categoryDefaulted,
		CountryRateDefaulted:    countryDefaulted,
	}, nil
}

// DeriveAll derives every record, stopping at the first failure. Training
// input is expected to be cleaned already, so any error here is a bug upstream.
func DeriveAll(records []campaign.Record, tables ratetable.Set) ([]Row, error) {
	rows := make([]Row, len(records))
	for i, rec := range records {
		row, err := Derive(rec, tables)
		if err != nil {
			return nil, err
		}
		rows[i] = row
	}
	return rows, nil
}
