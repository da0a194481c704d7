// Package model holds the campaign-success classifier: a logistic regression
// over the derived feature row, its training loop and its JSON artifact.
package model

import (
	"context"
	"fmt"
	"math"

	"kickpredict/domain/features"
	"kickpredict/domain/verdict"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// TrainConfig controls gradient descent
type TrainConfig struct {
	LearningRate float64 `json:"learning_rate" validate:"gt=0"`
	Epochs       int     `json:"epochs" validate:"gt=0"`
	L2           float64 `json:"l2" validate:"gte=0"`
	Holdout      float64 `json:"holdout" validate:"gte=0,lt=1"`
	Seed         int64   `json:"seed"`
}

// DefaultTrainConfig returns the settings used by the training service
func DefaultTrainConfig() TrainConfig {
	return TrainConfig{
		LearningRate: 0.1,
		Epochs:       300,
		L2:           1e-4,
		Holdout:      0.2,
		Seed:         42,
	}
}

// Logistic is a trained binary classifier. It is immutable after Train or
// Decode and safe for concurrent use.
type Logistic struct {
	encoder       *Encoder
	weights       []float64
	bias          float64
	schemaVersion string
}

// Train fits a classifier on rows with targets in {0,1}. Weights start at
// zero so identical inputs give identical models.
func Train(ctx context.Context, rows []features.Row, targets []float64, cfg TrainConfig) (*Logistic, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("no training rows")
	}
	if len(rows) != len(targets) {
		return nil, fmt.Errorf("rows and targets differ in length: %d vs %d", len(rows), len(targets))
	}

	enc, err := FitEncoder(rows)
	if err != nil {
		return nil, err
	}

	n, d := len(rows), enc.Width()
	x := mat.NewDense(n, d, nil)
	buf := make([]float64, d)
	for i, row := range rows {
		enc.Encode(row, buf)
		x.SetRow(i, buf)
	}
	y := mat.NewVecDense(n, append([]float64(nil), targets...))

	w := mat.NewVecDense(d, nil)
	z := mat.NewVecDense(n, nil)
	resid := mat.NewVecDense(n, nil)
	grad := mat.NewVecDense(d, nil)
	bias := 0.0
	invN := 1 / float64(n)

	for epoch := 0; epoch < cfg.Epochs; epoch++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		z.MulVec(x, w)
		for i := 0; i < n; i++ {
			resid.SetVec(i, sigmoid(z.AtVec(i)+bias)-y.AtVec(i))
		}

		grad.MulVec(x.T(), resid)
		grad.ScaleVec(invN, grad)
		grad.AddScaledVec(grad, cfg.L2, w)

		w.AddScaledVec(w, -cfg.LearningRate, grad)
		bias -= cfg.LearningRate * floats.Sum(resid.RawVector().Data) * invN
	}

	return &Logistic{
		encoder:       enc,
		weights:       append([]float64(nil), w.RawVector().Data...),
		bias:          bias,
		schemaVersion: features.SchemaVersion,
	}, nil
}

// PredictProbability returns [p_fail, p_success]
func (m *Logistic) PredictProbability(row features.Row) ([2]float64, error) {
	x := make([]float64, len(m.weights))
	m.encoder.Encode(row, x)
	p := sigmoid(floats.Dot(x, m.weights) + m.bias)
	if math.IsNaN(p) {
		return [2]float64{}, fmt.Errorf("classifier produced NaN probability")
	}
	return [2]float64{1 - p, p}, nil
}

// Predict returns the label whose probability clears the decision threshold
func (m *Logistic) Predict(row features.Row) (verdict.Label, error) {
	proba, err := m.PredictProbability(row)
	if err != nil {
		return "", err
	}
	return verdict.Decide(proba[1]).Label, nil
}

// SchemaVersion is the feature schema the weights were fitted on
func (m *Logistic) SchemaVersion() string {
	return m.schemaVersion
}

// Weights returns a copy of the fitted coefficients, encoded-column order
func (m *Logistic) Weights() []float64 {
	return append([]float64(nil), m.weights...)
}

func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}
