package model

import (
	_ "embed"
	"fmt"
	"slices"
	"strings"

	"kickpredict/domain/core"
	"kickpredict/domain/features"
	"kickpredict/domain/run"

	"github.com/goccy/go-json"
	"github.com/xeipuuv/gojsonschema"
)

// Format tags the artifact payload
const Format = "logistic-regression"

//go:embed artifact_schema.json
var artifactSchema string

var schemaLoader = gojsonschema.NewStringLoader(artifactSchema)

// Artifact is the persisted form of a trained classifier together with the
// manifest of the run that produced it
type Artifact struct {
	Format             string        `json:"format"`
	Version            string        `json:"version"`
	SchemaVersion      string        `json:"schema_version"`
	NumericColumns     []string      `json:"numeric_columns"`
	CategoricalColumns []string      `json:"categorical_columns"`
	Encoder            *Encoder      `json:"encoder"`
	Weights            []float64     `json:"weights"`
	Bias               float64       `json:"bias"`
	TrainConfig        TrainConfig   `json:"train_config"`
	Manifest           *run.Manifest `json:"manifest"`
}

// SchemaError lists the places where a payload violates the artifact schema
type SchemaError struct {
	Errors []string
}

func (e *SchemaError) Error() string {
	return "artifact schema validation failed: " + strings.Join(e.Errors, "; ")
}

// NewArtifact packages a classifier for persistence
func NewArtifact(m *Logistic, cfg TrainConfig, manifest *run.Manifest) *Artifact {
	return &Artifact{
		Format:             Format,
		Version:            string(manifest.RunID),
		SchemaVersion:      m.schemaVersion,
		NumericColumns:     slices.Clone(features.NumericColumns),
		CategoricalColumns: slices.Clone(features.CategoricalColumns),
		Encoder:            m.encoder,
		Weights:            m.Weights(),
		Bias:               m.bias,
		TrainConfig:        cfg,
		Manifest:           manifest,
	}
}

// Encode serializes the artifact
func (a *Artifact) Encode() ([]byte, error) {
	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode model artifact: %w", err)
	}
	return data, nil
}

// DecodeArtifact validates a payload against the artifact schema and then
// against the feature columns compiled into this binary
func DecodeArtifact(payload []byte) (*Artifact, error) {
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to read model artifact: %w", err)
	}
	if !result.Valid() {
		var msgs []string
		for _, desc := range result.Errors() {
			msgs = append(msgs, fmt.Sprintf("%s: %s", desc.Field(), desc.Description()))
		}
		return nil, &SchemaError{Errors: msgs}
	}

	var a Artifact
	if err := json.Unmarshal(payload, &a); err != nil {
		return nil, fmt.Errorf("failed to decode model artifact: %w", err)
	}

	if a.SchemaVersion != features.SchemaVersion {
		return nil, fmt.Errorf("%w: artifact has %q, binary expects %q",
			core.ErrSchemaMismatch, a.SchemaVersion, features.SchemaVersion)
	}
	if !slices.Equal(a.NumericColumns, features.NumericColumns) ||
		!slices.Equal(a.CategoricalColumns, features.CategoricalColumns) {
		return nil, fmt.Errorf("%w: artifact columns differ from feature row", core.ErrSchemaMismatch)
	}
	if err := a.Encoder.validate(); err != nil {
		return nil, err
	}
	if len(a.Weights) != a.Encoder.Width() {
		return nil, fmt.Errorf("artifact has %d weights for %d encoded columns", len(a.Weights), a.Encoder.Width())
	}
	return &a, nil
}

// Classifier rebuilds the trained model
func (a *Artifact) Classifier() *Logistic {
	enc := *a.Encoder
	enc.buildIndex()
	return &Logistic{
		encoder:       &enc,
		weights:       slices.Clone(a.Weights),
		bias:          a.Bias,
		schemaVersion: a.SchemaVersion,
	}
}
