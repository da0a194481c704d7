package app

import (
	"context"
	"errors"
	"math"
	"testing"

	"kickpredict/domain/campaign"
	"kickpredict/domain/core"
	"kickpredict/domain/features"
	"kickpredict/domain/ratetable"
	"kickpredict/domain/verdict"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockClassifier implements ports.Classifier for testing
type MockClassifier struct {
	mock.Mock
	schema string
}

func (m *MockClassifier) Predict(row features.Row) (verdict.Label, error) {
	args := m.Called(row)
	return args.Get(0).(verdict.Label), args.Error(1)
}

func (m *MockClassifier) PredictProbability(row features.Row) ([2]float64, error) {
	args := m.Called(row)
	return args.Get(0).([2]float64), args.Error(1)
}

func (m *MockClassifier) SchemaVersion() string {
	if m.schema == "" {
		return features.SchemaVersion
	}
	return m.schema
}

func gamesTables() ratetable.Set {
	return ratetable.Set{
		ByCategory: ratetable.New(ratetable.NameByCategory, map[string]float64{"Games": 5000}),
		ByCountry:  ratetable.New(ratetable.NameByCountry, map[string]float64{"US": 4000}),
	}
}

func amount(v float64) *float64 { return &v }

func gamesInput() campaign.Input {
	return campaign.Input{
		Name:           "A B C",
		MainCategory:   "Games",
		Currency:       "USD",
		Country:        "US",
		Launched:       "01/01/2020",
		Deadline:       "21/01/2020",
		USDPledgedReal: amount(0),
		USDGoalReal:    amount(2000),
	}
}

func newTestPredictor(t *testing.T, clf *MockClassifier) *PredictorService {
	t.Helper()
	svc, err := NewPredictorService(clf, gamesTables(), WithModelVersion("test-model"))
	require.NoError(t, err)
	return svc
}

func TestPredict_ClassifierVerdict(t *testing.T) {
	clf := &MockClassifier{}
	clf.On("PredictProbability", mock.MatchedBy(func(row features.Row) bool {
		return row.TitleWordCount == 3 &&
			row.DeltaTime == 20 &&
			row.Practicability == 100 &&
			row.RatioGoalByMainCategory == 0.4 &&
			row.RatioGoalByCountry == 0.5 &&
			row.MainCategory == "Games" &&
			row.Country == "US"
	})).Return([2]float64{0.3, 0.7}, nil).Once()

	v, err := newTestPredictor(t, clf).Predict(context.Background(), gamesInput())
	require.NoError(t, err)

	assert.Equal(t, verdict.LabelSuccess, v.Label)
	assert.Equal(t, "70.00%", v.Confidence())
	assert.False(t, v.ShortCircuit)
	assert.Empty(t, v.Fallbacks)
	assert.Equal(t, "test-model", v.ModelVersion)
	clf.AssertExpectations(t)
}

func TestPredict_FailureConfidence(t *testing.T) {
	clf := &MockClassifier{}
	clf.On("PredictProbability", mock.Anything).Return([2]float64{0.8, 0.2}, nil)

	v, err := newTestPredictor(t, clf).Predict(context.Background(), gamesInput())
	require.NoError(t, err)
	assert.Equal(t, verdict.LabelFailure, v.Label)
	assert.Equal(t, 80.0, v.ProbabilityPercent)
}

func TestPredict_GoalMetShortCircuits(t *testing.T) {
	clf := &MockClassifier{}
	in := campaign.Input{
		USDPledgedReal: amount(1200),
		USDGoalReal:    amount(1000),
		Deadline:       "not a date",
	}

	v, err := newTestPredictor(t, clf).Predict(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, verdict.LabelSuccess, v.Label)
	assert.Equal(t, 100.0, v.ProbabilityPercent)
	assert.True(t, v.ShortCircuit)
	clf.AssertNotCalled(t, "PredictProbability", mock.Anything)
}

func TestPredict_GoalExactlyMet(t *testing.T) {
	clf := &MockClassifier{}
	in := gamesInput()
	in.USDPledgedReal = amount(2000)

	v, err := newTestPredictor(t, clf).Predict(context.Background(), in)
	require.NoError(t, err)
	assert.True(t, v.ShortCircuit)
}

func TestPredict_FallbackFlags(t *testing.T) {
	clf := &MockClassifier{}
	clf.On("PredictProbability", mock.MatchedBy(func(row features.Row) bool {
		return row.RatioGoalByMainCategory == 2000 && row.RatioGoalByCountry == 0.5
	})).Return([2]float64{0.4, 0.6}, nil)

	in := gamesInput()
	in.MainCategory = "Dance"

	v, err := newTestPredictor(t, clf).Predict(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, []string{features.ColRatioGoalByMainCategory}, v.Fallbacks)
}

func TestPredict_CountryNameNormalized(t *testing.T) {
	clf := &MockClassifier{}
	clf.On("PredictProbability", mock.MatchedBy(func(row features.Row) bool {
		return row.Country == "US" && !row.CountryRateDefaulted
	})).Return([2]float64{0.4, 0.6}, nil)

	in := gamesInput()
	in.Country = "United States"

	_, err := newTestPredictor(t, clf).Predict(context.Background(), in)
	require.NoError(t, err)
	clf.AssertExpectations(t)
}

func TestPredict_InputErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*campaign.Input)
		target error
		field  string
	}{
		{"missing goal", func(in *campaign.Input) { in.USDGoalReal = nil }, core.ErrMissingField, "usd_goal_real"},
		{"missing pledged", func(in *campaign.Input) { in.USDPledgedReal = nil }, core.ErrMissingField, "usd_pledged_real"},
		{"zero goal", func(in *campaign.Input) { in.USDGoalReal = amount(0) }, core.ErrInvalidField, "usd_goal_real"},
		{"missing deadline", func(in *campaign.Input) { in.Deadline = "" }, core.ErrMissingField, "deadline"},
		{"missing category", func(in *campaign.Input) { in.MainCategory = "  " }, core.ErrMissingField, "main_category"},
		{"missing country", func(in *campaign.Input) { in.Country = "" }, core.ErrMissingField, "country"},
		{"bad deadline", func(in *campaign.Input) { in.Deadline = "2020/31/01" }, core.ErrDateParse, ""},
		{"reversed dates", func(in *campaign.Input) { in.Deadline = "01/01/2020" }, core.ErrInvalidDateRange, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clf := &MockClassifier{}
			in := gamesInput()
			tt.mutate(&in)

			_, err := newTestPredictor(t, clf).Predict(context.Background(), in)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.target)
			assert.True(t, core.IsInputError(err))

			var missing *core.MissingFieldError
			if tt.field != "" && errors.As(err, &missing) {
				assert.Equal(t, tt.field, missing.Field)
			}
			clf.AssertNotCalled(t, "PredictProbability", mock.Anything)
		})
	}
}

func TestPredict_NonFiniteAmounts(t *testing.T) {
	tests := []struct {
		name    string
		pledged float64
		goal    float64
		field   string
	}{
		{"infinite goal", 0, math.Inf(1), "usd_goal_real"},
		{"infinite pledged would meet any goal", math.Inf(1), 2000, "usd_pledged_real"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clf := &MockClassifier{}
			svc := newTestPredictor(t, clf)

			in := gamesInput()
			in.USDPledgedReal = amount(tt.pledged)
			in.USDGoalReal = amount(tt.goal)
			_, err := svc.Predict(context.Background(), in)

			var invalid *core.InvalidFieldError
			require.True(t, errors.As(err, &invalid), "got %v", err)
			assert.Equal(t, tt.field, invalid.Field)
			assert.Equal(t, "invalid_field", ErrorKind(err))
			clf.AssertNotCalled(t, "PredictProbability", mock.Anything)
		})
	}
}

func TestPredict_ClassifierError(t *testing.T) {
	clf := &MockClassifier{}
	clf.On("PredictProbability", mock.Anything).Return([2]float64{}, errors.New("boom"))

	_, err := newTestPredictor(t, clf).Predict(context.Background(), gamesInput())
	require.Error(t, err)
	assert.Equal(t, "internal", ErrorKind(err))
}

func TestNewPredictorService_Refuses(t *testing.T) {
	_, err := NewPredictorService(&MockClassifier{schema: "v0"}, gamesTables())
	assert.ErrorIs(t, err, core.ErrModelUnavailable)
	assert.ErrorIs(t, err, core.ErrSchemaMismatch)

	_, err = NewPredictorService(nil, gamesTables())
	assert.ErrorIs(t, err, core.ErrModelUnavailable)

	_, err = NewPredictorService(&MockClassifier{}, ratetable.Set{})
	assert.ErrorIs(t, err, core.ErrModelUnavailable)
}

func TestErrorKind(t *testing.T) {
	assert.Equal(t, "missing_field", ErrorKind(core.NewMissingFieldError("x")))
	assert.Equal(t, "date_parse", ErrorKind(&core.DateParseError{Field: "deadline"}))
	assert.Equal(t, "invalid_date_range", ErrorKind(&core.InvalidDateRangeError{}))
	assert.Equal(t, "model_unavailable", ErrorKind(core.NewModelUnavailableError("model", nil)))
}
