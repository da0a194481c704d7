package campaign

import "strings"

// Outcome is the supervised target of a historical campaign
type Outcome string

const (
	OutcomeSuccessful Outcome = "successful"
	OutcomeFailed     Outcome = "failed"
)

// ParseOutcome accepts only the two terminal states used for training.
// Kickstarter's other states (canceled, live, suspended, undefined) are rejected.
func ParseOutcome(s string) (Outcome, bool) {
	switch Outcome(strings.ToLower(strings.TrimSpace(s))) {
	case OutcomeSuccessful:
		return OutcomeSuccessful, true
	case OutcomeFailed:
		return OutcomeFailed, true
	default:
		return "", false
	}
}

// Target returns 1 for a successful campaign and 0 otherwise
func (o Outcome) Target() float64 {
	if o == OutcomeSuccessful {
		return 1
	}
	return 0
}

// Record is one historical campaign row. Dates stay raw strings: parsing them is
// part of feature derivation so training and inference share one code path.
type Record struct {
	ID             string  `json:"ID"`
	Name           string  `json:"name"`
	MainCategory   string  `json:"main_category"`
	Currency       string  `json:"currency"`
	Deadline       string  `json:"deadline"`
	Launched       string  `json:"launched"`
	State          Outcome `json:"state,omitempty"`
	Country        string  `json:"country"`
	USDPledgedReal float64 `json:"usd_pledged_real"`
	USDGoalReal    float64 `json:"usd_goal_real"`
}

// Column names of the historical dataset
const (
	ColumnID             = "ID"
	ColumnName           = "name"
	ColumnMainCategory   = "main_category"
	ColumnCurrency       = "currency"
	ColumnDeadline       = "deadline"
	ColumnLaunched       = "launched"
	ColumnState          = "state"
	ColumnCountry        = "country"
	ColumnUSDPledgedReal = "usd_pledged_real"
	ColumnUSDGoalReal    = "usd_goal_real"
)

// TrainingColumns lists every column the training entry point requires
var TrainingColumns = []string{
	ColumnID, ColumnName, ColumnMainCategory, ColumnCurrency, ColumnDeadline,
	ColumnLaunched, ColumnState, ColumnCountry, ColumnUSDPledgedReal, ColumnUSDGoalReal,
}
