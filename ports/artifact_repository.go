package ports

import (
	"context"

	"kickpredict/domain/ratetable"
)

// RateTableRepository persists the two named rate tables. Save replaces both
// tables entirely; there is no incremental update.
type RateTableRepository interface {
	SaveRateTables(ctx context.Context, tables ratetable.Set) error
	LoadRateTables(ctx context.Context) (ratetable.Set, error)
}

// ModelRepository persists the serialized classifier artifact
type ModelRepository interface {
	SaveModel(ctx context.Context, payload []byte) error
	LoadModel(ctx context.Context) ([]byte, error)
}

// ReportRepository persists the human-readable training report
type ReportRepository interface {
	SaveReport(ctx context.Context, markdown []byte) error
	LoadReport(ctx context.Context) ([]byte, error)
}

// RunArtifacts are the outputs of one training run. Inference only accepts a
// model together with the rate tables it was trained on, so they are always
// published as a unit.
type RunArtifacts struct {
	RunID  string
	Tables ratetable.Set
	Model  []byte
	Report []byte
}

// ArtifactStore bundles every durable output of a training run
type ArtifactStore interface {
	RateTableRepository
	ModelRepository
	ReportRepository

	// SaveRun publishes all artifacts of a run at once. When it fails the
	// previously published run stays readable and unchanged.
	SaveRun(ctx context.Context, run RunArtifacts) error
}
