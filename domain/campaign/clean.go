package campaign

import (
	"math"
	"strings"

	"kickpredict/domain/core"
)

// DropReason explains why a historical record was excluded
type DropReason string

const (
	DropMissingField DropReason = "missing_field"
	DropUnknownState DropReason = "unknown_state"
	DropBadGoal      DropReason = "non_positive_goal"
	DropBadDate      DropReason = "unparseable_date"
	DropBadDateRange DropReason = "non_positive_duration"
)

// CleanReport summarizes a Prepare pass. RateBasis counts the rows the rate
// tables are built from; Kept counts the labelled rows used for training.
type CleanReport struct {
	Total     int                `json:"total"`
	RateBasis int                `json:"rate_basis"`
	Kept      int                `json:"kept"`
	Dropped   map[DropReason]int `json:"dropped"`
}

// DroppedTotal returns the number of records excluded from training
func (r CleanReport) DroppedTotal() int {
	return r.Total - r.Kept
}

// Prepared is a historical dataset split by use
type Prepared struct {
	// RateBasis holds every complete record whatever its state: canceled,
	// live and suspended campaigns still count towards the mean goals.
	RateBasis []Record
	// Training holds the subset with a final outcome and a positive duration.
	Training []Record
}

// Prepare drops (never repairs) unusable records in two stages. Records
// missing a required field, with a non-positive goal or an unparseable date
// are dropped from everything. Of the rest, only records with a final
// outcome and a deadline after launch are kept for training. Kept records
// have their text fields trimmed and their country normalized the same way
// inference inputs are.
func Prepare(records []Record) (Prepared, CleanReport) {
	report := CleanReport{Total: len(records), Dropped: make(map[DropReason]int)}
	out := Prepared{
		RateBasis: make([]Record, 0, len(records)),
		Training:  make([]Record, 0, len(records)),
	}

	for _, rec := range records {
		rec.Name = strings.TrimSpace(rec.Name)
		rec.MainCategory = strings.TrimSpace(rec.MainCategory)
		rec.Country = NormalizeCountry(rec.Country)

		days, reason, ok := checkComplete(rec)
		if !ok {
			report.Dropped[reason]++
			continue
		}
		out.RateBasis = append(out.RateBasis, rec)

		outcome, ok := ParseOutcome(string(rec.State))
		if !ok {
			report.Dropped[DropUnknownState]++
			continue
		}
		if days <= 0 {
			report.Dropped[DropBadDateRange]++
			continue
		}
		rec.State = outcome
		out.Training = append(out.Training, rec)
	}

	report.RateBasis = len(out.RateBasis)
	report.Kept = len(out.Training)
	return out, report
}

// Clean returns only the training records of Prepare
func Clean(records []Record) ([]Record, CleanReport) {
	prepared, report := Prepare(records)
	return prepared.Training, report
}

// checkComplete returns the campaign duration in days of a record that has
// every field the rate tables and features need
func checkComplete(rec Record) (int, DropReason, bool) {
	if rec.MainCategory == "" || rec.Country == "" ||
		strings.TrimSpace(rec.Deadline) == "" || strings.TrimSpace(rec.Launched) == "" {
		return 0, DropMissingField, false
	}
	if rec.USDGoalReal <= 0 || math.IsNaN(rec.USDGoalReal) || math.IsInf(rec.USDGoalReal, 0) {
		return 0, DropBadGoal, false
	}
	launched, ok := core.ParseDay(rec.Launched)
	if !ok {
		return 0, DropBadDate, false
	}
	deadline, ok := core.ParseDay(rec.Deadline)
	if !ok {
		return 0, DropBadDate, false
	}
	return core.DaysBetween(launched, deadline), "", true
}
