package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"kickpredict/domain/campaign"
	"kickpredict/domain/core"
	"kickpredict/domain/features"
	"kickpredict/domain/ratetable"
	"kickpredict/domain/verdict"
	"kickpredict/internal"
	"kickpredict/internal/metrics"
	"kickpredict/ports"
)

// PredictorService answers "will this campaign succeed?" for one input.
// It holds the loaded classifier and rate tables and is safe for concurrent use.
type PredictorService struct {
	classifier   ports.Classifier
	tables       ratetable.Set
	modelVersion core.ModelVersion
	logger       *internal.Logger
}

// PredictorOption customizes a PredictorService
type PredictorOption func(*PredictorService)

// WithModelVersion tags every verdict with the model that produced it
func WithModelVersion(version core.ModelVersion) PredictorOption {
	return func(s *PredictorService) { s.modelVersion = version }
}

// WithLogger replaces the default logger
func WithLogger(logger *internal.Logger) PredictorOption {
	return func(s *PredictorService) { s.logger = logger }
}

// NewPredictorService wires a classifier and its rate tables. A classifier
// trained on another feature schema is refused.
func NewPredictorService(classifier ports.Classifier, tables ratetable.Set, opts ...PredictorOption) (*PredictorService, error) {
	if classifier == nil {
		return nil, core.NewModelUnavailableError("model", errors.New("no classifier loaded"))
	}
	if got := classifier.SchemaVersion(); got != features.SchemaVersion {
		return nil, core.NewModelUnavailableError("model",
			fmt.Errorf("%w: classifier expects %q, deriver produces %q", core.ErrSchemaMismatch, got, features.SchemaVersion))
	}
	if err := tables.Validate(); err != nil {
		return nil, core.NewModelUnavailableError("rate tables", err)
	}

	s := &PredictorService{
		classifier: classifier,
		tables:     tables,
		logger:     internal.DefaultLogger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Predict returns the verdict for one campaign. Only the two amounts are
// inspected before the goal-met shortcut; every other field is checked after.
func (s *PredictorService) Predict(ctx context.Context, in campaign.Input) (verdict.Verdict, error) {
	start := time.Now()
	v, err := s.predict(in)
	if err != nil {
		metrics.RecordPredictionError(ErrorKind(err))
		s.logger.Debug("prediction rejected: %v", err)
		return verdict.Verdict{}, err
	}
	v.ModelVersion = s.modelVersion.String()
	metrics.RecordPrediction(string(v.Label), v.ShortCircuit, v.Fallbacks, time.Since(start))
	return v, nil
}

func (s *PredictorService) predict(in campaign.Input) (verdict.Verdict, error) {
	if err := in.ValidateAmounts(); err != nil {
		return verdict.Verdict{}, err
	}
	if in.GoalMet() {
		return verdict.GoalMet(), nil
	}

	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return verdict.Verdict{}, err
	}

	row, err := features.Derive(in.Record(), s.tables)
	if err != nil {
		return verdict.Verdict{}, err
	}

	proba, err := s.classifier.PredictProbability(row)
	if err != nil {
		return verdict.Verdict{}, fmt.Errorf("classifier failed: %w", err)
	}

	v := verdict.Decide(proba[1])
	v.Fallbacks = row.Fallbacks()
	if len(v.Fallbacks) > 0 {
		s.logger.Warn("rate table fallback for category=%q country=%q: %v", row.MainCategory, row.Country, v.Fallbacks)
	}
	return v, nil
}

// Tables exposes the loaded rate tables for read-only display
func (s *PredictorService) Tables() ratetable.Set {
	return s.tables
}

// ModelVersion is the version of the loaded model
func (s *PredictorService) ModelVersion() core.ModelVersion {
	return s.modelVersion
}

// ErrorKind labels an error for metrics and API responses
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, core.ErrMissingField):
		return "missing_field"
	case errors.Is(err, core.ErrInvalidField):
		return "invalid_field"
	case errors.Is(err, core.ErrDateParse):
		return "date_parse"
	case errors.Is(err, core.ErrInvalidDateRange):
		return "invalid_date_range"
	case errors.Is(err, core.ErrModelUnavailable):
		return "model_unavailable"
	default:
		return "internal"
	}
}
