package model

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"kickpredict/domain/campaign"
	"kickpredict/domain/core"
	"kickpredict/domain/features"
	"kickpredict/domain/run"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// separableRows builds campaigns where small goals succeed and large goals fail
func separableRows(n int) ([]features.Row, []float64) {
	rows := make([]features.Row, 0, n)
	targets := make([]float64, 0, n)
	categories := []string{"Games", "Music", "Art", ""}
	for i := 0; i < n; i++ {
		success := i%2 == 0
		goal := 500.0 + float64(i%7)*50
		if !success {
			goal = 80000 + float64(i%5)*1000
		}
		rows = append(rows, features.Row{
			USDGoalReal:             goal,
			DeltaTime:               30,
			Practicability:          goal / 30,
			TitleWordCount:          3 + i%4,
			RatioGoalByMainCategory: goal / 10000,
			RatioGoalByCountry:      goal / 12000,
			MainCategory:            categories[i%len(categories)],
			Country:                 "US",
		})
		if success {
			targets = append(targets, 1)
		} else {
			targets = append(targets, 0)
		}
	}
	return rows, targets
}

func testManifest() *run.Manifest {
	fp := run.NewRunFingerprint(core.NewHash([]byte("dataset")), core.NewHash([]byte("tables")), features.SchemaVersion, 42, "test")
	return run.NewManifest(core.NewRunID(), "memory", campaign.CleanReport{}, run.Metrics{Accuracy: 1}, fp)
}

func TestTrain_LearnsSeparableData(t *testing.T) {
	rows, targets := separableRows(200)

	m, metrics, err := TrainAndEvaluate(context.Background(), rows, targets, DefaultTrainConfig())
	require.NoError(t, err)

	assert.Equal(t, 160, metrics.TrainSize)
	assert.Equal(t, 40, metrics.HoldoutSize)
	assert.GreaterOrEqual(t, metrics.Accuracy, 0.9)
	assert.GreaterOrEqual(t, metrics.AUC, 0.9)
	assert.InDelta(t, 0.5, metrics.SuccessRate, 1e-9)

	small, err := m.PredictProbability(features.Row{USDGoalReal: 600, DeltaTime: 30, Practicability: 20, TitleWordCount: 4,
		RatioGoalByMainCategory: 0.06, RatioGoalByCountry: 0.05, MainCategory: "Games", Country: "US"})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, small[0]+small[1], 1e-12)
	assert.Greater(t, small[1], 0.5)

	label, err := m.Predict(features.Row{USDGoalReal: 90000, DeltaTime: 30, Practicability: 3000, TitleWordCount: 4,
		RatioGoalByMainCategory: 9, RatioGoalByCountry: 7.5, MainCategory: "Music", Country: "US"})
	require.NoError(t, err)
	assert.Equal(t, "failure", string(label))
}

func TestTrain_Deterministic(t *testing.T) {
	rows, targets := separableRows(60)
	cfg := DefaultTrainConfig()

	a, err := Train(context.Background(), rows, targets, cfg)
	require.NoError(t, err)
	b, err := Train(context.Background(), rows, targets, cfg)
	require.NoError(t, err)

	assert.Equal(t, a.Weights(), b.Weights())
	assert.Equal(t, a.bias, b.bias)
}

func TestTrain_RejectsBadInput(t *testing.T) {
	_, err := Train(context.Background(), nil, nil, DefaultTrainConfig())
	assert.Error(t, err)

	rows, _ := separableRows(4)
	_, err = Train(context.Background(), rows, []float64{1}, DefaultTrainConfig())
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rows, targets := separableRows(4)
	_, err = Train(ctx, rows, targets, DefaultTrainConfig())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEncoder_ImputesAndIgnoresUnknown(t *testing.T) {
	rows := []features.Row{
		{MainCategory: "Games", Country: "US"},
		{MainCategory: "Games", Country: "GB"},
		{MainCategory: "Art", Country: "US"},
	}
	enc, err := FitEncoder(rows)
	require.NoError(t, err)

	assert.Equal(t, []string{"Art", "Games"}, enc.Levels[features.ColMainCategory])
	assert.Equal(t, "Games", enc.MostFrequent[features.ColMainCategory])
	assert.Equal(t, "US", enc.MostFrequent[features.ColCountry])
	assert.Equal(t, 6+2+2, enc.Width())

	buf := make([]float64, enc.Width())
	enc.Encode(features.Row{MainCategory: "", Country: "ZZ"}, buf)
	// Games imputed, unknown country all zero
	assert.Equal(t, []float64{0, 1, 0, 0}, buf[6:])
	// constant numeric columns get unit scale
	for _, s := range enc.Stds {
		assert.Equal(t, 1.0, s)
	}
}

func TestSplit(t *testing.T) {
	train, test := Split(10, 0.2, 42)
	assert.Len(t, train, 8)
	assert.Len(t, test, 2)

	train2, test2 := Split(10, 0.2, 42)
	assert.Equal(t, train, train2)
	assert.Equal(t, test, test2)

	seen := map[int]bool{}
	for _, i := range append(train, test...) {
		seen[i] = true
	}
	assert.Len(t, seen, 10)

	train, test = Split(1, 0.99, 1)
	assert.Len(t, train, 1)
	assert.Empty(t, test)
}

func TestRocAUC(t *testing.T) {
	assert.InDelta(t, 1.0, rocAUC([]float64{0.1, 0.2, 0.8, 0.9}, []float64{0, 0, 1, 1}), 1e-9)
	assert.InDelta(t, 0.0, rocAUC([]float64{0.9, 0.8, 0.2, 0.1}, []float64{0, 0, 1, 1}), 1e-9)
	assert.Equal(t, 0.0, rocAUC([]float64{0.1, 0.9}, []float64{1, 1}))
}

func TestArtifact_RoundTrip(t *testing.T) {
	rows, targets := separableRows(40)
	m, err := Train(context.Background(), rows, targets, DefaultTrainConfig())
	require.NoError(t, err)

	manifest := testManifest()
	payload, err := NewArtifact(m, DefaultTrainConfig(), manifest).Encode()
	require.NoError(t, err)

	a, err := DecodeArtifact(payload)
	require.NoError(t, err)
	assert.Equal(t, Format, a.Format)
	assert.Equal(t, string(manifest.RunID), a.Version)
	assert.Equal(t, manifest.Fingerprint.TablesHash, a.Manifest.Fingerprint.TablesHash)

	restored := a.Classifier()
	assert.Equal(t, features.SchemaVersion, restored.SchemaVersion())
	for _, row := range rows {
		want, err := m.PredictProbability(row)
		require.NoError(t, err)
		got, err := restored.PredictProbability(row)
		require.NoError(t, err)
		assert.InDelta(t, want[1], got[1], 1e-12)
	}
}

func TestDecodeArtifact_Rejects(t *testing.T) {
	rows, targets := separableRows(20)
	m, err := Train(context.Background(), rows, targets, DefaultTrainConfig())
	require.NoError(t, err)
	payload, err := NewArtifact(m, DefaultTrainConfig(), testManifest()).Encode()
	require.NoError(t, err)

	mutate := func(fn func(doc map[string]any)) []byte {
		var doc map[string]any
		require.NoError(t, json.Unmarshal(payload, &doc))
		fn(doc)
		out, err := json.Marshal(doc)
		require.NoError(t, err)
		return out
	}

	t.Run("not json", func(t *testing.T) {
		_, err := DecodeArtifact([]byte("{"))
		assert.Error(t, err)
	})

	t.Run("missing weights", func(t *testing.T) {
		_, err := DecodeArtifact(mutate(func(doc map[string]any) { delete(doc, "weights") }))
		var schemaErr *SchemaError
		require.True(t, errors.As(err, &schemaErr), fmt.Sprint(err))
		assert.NotEmpty(t, schemaErr.Errors)
	})

	t.Run("schema version", func(t *testing.T) {
		_, err := DecodeArtifact(mutate(func(doc map[string]any) { doc["schema_version"] = "v0" }))
		assert.ErrorIs(t, err, core.ErrSchemaMismatch)
	})

	t.Run("columns", func(t *testing.T) {
		_, err := DecodeArtifact(mutate(func(doc map[string]any) { doc["numeric_columns"] = []string{"usd_goal_real"} }))
		assert.ErrorIs(t, err, core.ErrSchemaMismatch)
	})

	t.Run("weight count", func(t *testing.T) {
		_, err := DecodeArtifact(mutate(func(doc map[string]any) { doc["weights"] = []float64{1} }))
		assert.Error(t, err)
	})
}
