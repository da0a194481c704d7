package run

import (
	"kickpredict/domain/campaign"
	"kickpredict/domain/core"
)

// Metrics are holdout evaluation results of a trained classifier
type Metrics struct {
	TrainSize   int     `json:"train_size"`
	HoldoutSize int     `json:"holdout_size"`
	Accuracy    float64 `json:"accuracy"`
	AUC         float64 `json:"auc"`
	SuccessRate float64 `json:"success_rate"`
}

// Manifest describes one training run. It is stored inside the model artifact
// so inference can check the rate tables it loaded are the ones the model saw.
type Manifest struct {
	RunID       core.RunID           `json:"run_id"`
	Source      string               `json:"source"`
	Clean       campaign.CleanReport `json:"clean"`
	Metrics     Metrics              `json:"metrics"`
	Fingerprint RunFingerprint       `json:"fingerprint"`
	CreatedAt   core.Timestamp       `json:"created_at"`
}

// NewManifest creates a manifest for a completed run
func NewManifest(runID core.RunID, source string, clean campaign.CleanReport, metrics Metrics, fingerprint RunFingerprint) *Manifest {
	return &Manifest{
		RunID:       runID,
		Source:      source,
		Clean:       clean,
		Metrics:     metrics,
		Fingerprint: fingerprint,
		CreatedAt:   core.Now(),
	}
}

// Validate checks if the manifest is complete
func (m *Manifest) Validate() error {
	if core.ID(m.RunID).IsEmpty() {
		return &core.InvalidFieldError{Field: "run_id", Reason: "cannot be empty"}
	}
	if m.Fingerprint.TablesHash.IsEmpty() {
		return &core.InvalidFieldError{Field: "tables_hash", Reason: "cannot be empty"}
	}
	if m.Fingerprint.SchemaVersion == "" {
		return &core.InvalidFieldError{Field: "schema_version", Reason: "cannot be empty"}
	}
	if m.Fingerprint.CodeVersion == "" {
		return &core.InvalidFieldError{Field: "code_version", Reason: "cannot be empty"}
	}
	return nil
}
