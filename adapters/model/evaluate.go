package model

import (
	"context"
	"math/rand"
	"sort"

	"kickpredict/domain/features"
	"kickpredict/domain/run"

	"gonum.org/v1/gonum/integrate"
	"gonum.org/v1/gonum/stat"
)

// Split partitions row indices into train and holdout sets with a seeded
// shuffle. A holdout that would leave training empty is reduced to zero.
func Split(n int, holdout float64, seed int64) (train, test []int) {
	perm := rand.New(rand.NewSource(seed)).Perm(n)
	k := int(float64(n) * holdout)
	if k >= n {
		k = 0
	}
	test = append([]int(nil), perm[:k]...)
	train = append([]int(nil), perm[k:]...)
	sort.Ints(test)
	sort.Ints(train)
	return train, test
}

// Evaluate scores a classifier on labelled rows
func Evaluate(m *Logistic, rows []features.Row, targets []float64) (accuracy, auc float64, err error) {
	if len(rows) == 0 {
		return 0, 0, nil
	}

	scores := make([]float64, len(rows))
	correct := 0
	for i, row := range rows {
		proba, err := m.PredictProbability(row)
		if err != nil {
			return 0, 0, err
		}
		scores[i] = proba[1]
		predicted := 0.0
		if proba[1] >= 0.5 {
			predicted = 1
		}
		if predicted == targets[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(rows)), rocAUC(scores, targets), nil
}

// rocAUC is 0 when only one class is present, where the curve is undefined
func rocAUC(scores, targets []float64) float64 {
	idx := make([]int, len(scores))
	positives := 0
	for i := range idx {
		idx[i] = i
		if targets[i] == 1 {
			positives++
		}
	}
	if positives == 0 || positives == len(targets) {
		return 0
	}
	sort.SliceStable(idx, func(a, b int) bool { return scores[idx[a]] < scores[idx[b]] })

	y := make([]float64, len(idx))
	classes := make([]bool, len(idx))
	for i, j := range idx {
		y[i] = scores[j]
		classes[i] = targets[j] == 1
	}
	tpr, fpr, _ := stat.ROC(nil, y, classes, nil)
	return integrate.Trapezoidal(fpr, tpr)
}

// TrainAndEvaluate splits, trains on the train part and scores the holdout.
// With no holdout the training rows are scored instead.
func TrainAndEvaluate(ctx context.Context, rows []features.Row, targets []float64, cfg TrainConfig) (*Logistic, run.Metrics, error) {
	trainIdx, testIdx := Split(len(rows), cfg.Holdout, cfg.Seed)
	trainRows, trainY := pick(rows, targets, trainIdx)
	testRows, testY := pick(rows, targets, testIdx)

	m, err := Train(ctx, trainRows, trainY, cfg)
	if err != nil {
		return nil, run.Metrics{}, err
	}

	evalRows, evalY := testRows, testY
	if len(evalRows) == 0 {
		evalRows, evalY = trainRows, trainY
	}
	acc, auc, err := Evaluate(m, evalRows, evalY)
	if err != nil {
		return nil, run.Metrics{}, err
	}

	return m, run.Metrics{
		TrainSize:   len(trainRows),
		HoldoutSize: len(testRows),
		Accuracy:    acc,
		AUC:         auc,
		SuccessRate: stat.Mean(targets, nil),
	}, nil
}

func pick(rows []features.Row, targets []float64, idx []int) ([]features.Row, []float64) {
	outRows := make([]features.Row, len(idx))
	outY := make([]float64, len(idx))
	for i, j := range idx {
		outRows[i] = rows[j]
		outY[i] = targets[j]
	}
	return outRows, outY
}
