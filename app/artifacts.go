package app

import (
	"context"
	"fmt"

	"kickpredict/adapters/model"
	"kickpredict/domain/core"
	"kickpredict/domain/ratetable"
	"kickpredict/domain/run"
	"kickpredict/ports"
)

// Artifacts is everything inference needs from a completed training run
type Artifacts struct {
	Tables     ratetable.Set
	Classifier *model.Logistic
	Manifest   *run.Manifest
}

// LoadArtifacts reads the rate tables and model from store and checks they
// belong to the same training run. Every failure is a ModelUnavailableError.
func LoadArtifacts(ctx context.Context, store ports.ArtifactStore) (*Artifacts, error) {
	tables, err := store.LoadRateTables(ctx)
	if err != nil {
		return nil, core.NewModelUnavailableError("rate tables", err)
	}

	payload, err := store.LoadModel(ctx)
	if err != nil {
		return nil, core.NewModelUnavailableError("model", err)
	}
	artifact, err := model.DecodeArtifact(payload)
	if err != nil {
		return nil, core.NewModelUnavailableError("model", err)
	}

	if want, got := artifact.Manifest.Fingerprint.TablesHash, tables.Fingerprint(); !want.Equals(got) {
		return nil, core.NewModelUnavailableError("rate tables",
			fmt.Errorf("%w: model was trained with tables %s, store has %s", core.ErrHashMismatch, want.Short(), got.Short()))
	}

	return &Artifacts{
		Tables:     tables,
		Classifier: artifact.Classifier(),
		Manifest:   artifact.Manifest,
	}, nil
}

// NewPredictor builds a PredictorService from loaded artifacts
func (a *Artifacts) NewPredictor(opts ...PredictorOption) (*PredictorService, error) {
	opts = append([]PredictorOption{WithModelVersion(a.Manifest.RunID.ModelVersion())}, opts...)
	return NewPredictorService(a.Classifier, a.Tables, opts...)
}
