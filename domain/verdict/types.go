package verdict

import (
	"fmt"
	"math"
)

// Label is the predicted campaign outcome
type Label string

const (
	LabelSuccess Label = "success"
	LabelFailure Label = "failure"
)

// DecisionThreshold is the fixed success-probability cut-off
const DecisionThreshold = 0.5

// Verdict is the answer returned by the inference entry point
type Verdict struct {
	Label              Label    `json:"label"`
	ProbabilityPercent float64  `json:"probability_percent"`
	Message            string   `json:"message"`
	ShortCircuit       bool     `json:"short_circuit"`
	Fallbacks          []string `json:"fallbacks,omitempty"`
	ModelVersion       string   `json:"model_version,omitempty"`
}

// GoalMet is the deterministic verdict for a campaign whose pledges already
// cover its goal
func GoalMet() Verdict {
	return Verdict{
		Label:              LabelSuccess,
		ProbabilityPercent: 100,
		Message:            "Goal already reached: the campaign is successful.",
		ShortCircuit:       true,
	}
}

// Decide applies the threshold to a success probability. Confidence is the
// probability of the chosen label.
func Decide(pSuccess float64) Verdict {
	label := LabelFailure
	confidence := 1 - pSuccess
	if pSuccess >= DecisionThreshold {
		label = LabelSuccess
		confidence = pSuccess
	}
	percent := RoundPercent(confidence)
	return Verdict{
		Label:              label,
		ProbabilityPercent: percent,
		Message:            fmt.Sprintf("The campaign is predicted to be a %s (%.2f%% confidence).", label, percent),
	}
}

// RoundPercent converts a probability to a percentage rounded to 2 decimals
func RoundPercent(p float64) float64 {
	return math.Round(p*100*100) / 100
}

// Confidence formats the percentage as shown to users, e.g. "70.00%"
func (v Verdict) Confidence() string {
	return fmt.Sprintf("%.2f%%", v.ProbabilityPercent)
}
