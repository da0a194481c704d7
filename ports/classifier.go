package ports

import (
	"kickpredict/domain/features"
	"kickpredict/domain/verdict"
)

// Classifier is the trained model as a read-only capability. Implementations
// must be safe for concurrent use once loaded.
type Classifier interface {
	// Predict returns the most likely label for a feature row
	Predict(row features.Row) (verdict.Label, error)

	// PredictProbability returns [p_fail, p_success]
	PredictProbability(row features.Row) ([2]float64, error)

	// SchemaVersion is the feature schema the classifier was trained on
	SchemaVersion() string
}
