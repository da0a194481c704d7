package model

import (
	"fmt"
	"math"
	"sort"

	"kickpredict/domain/features"

	"gonum.org/v1/gonum/stat"
)

// Encoder turns a feature row into the dense vector the weights apply to.
// Numeric columns are log1p-compressed (all are non-negative and heavily
// skewed) then standardized. Categorical columns are one-hot encoded: empty
// values are imputed with the most frequent training level, unknown levels
// encode as all zeros.
type Encoder struct {
	Means        []float64           `json:"means"`
	Stds         []float64           `json:"stds"`
	Levels       map[string][]string `json:"levels"`
	MostFrequent map[string]string   `json:"most_frequent"`

	index map[string]map[string]int
}

// FitEncoder learns scaling and category levels from training rows
func FitEncoder(rows []features.Row) (*Encoder, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("cannot fit encoder on zero rows")
	}

	numCols := len(features.NumericColumns)
	columns := make([][]float64, numCols)
	for j := range columns {
		columns[j] = make([]float64, len(rows))
	}
	counts := make([]map[string]int, len(features.CategoricalColumns))
	for j := range counts {
		counts[j] = make(map[string]int)
	}

	for i, row := range rows {
		for j, v := range row.Numeric() {
			columns[j][i] = compress(v)
		}
		for j, v := range row.Categorical() {
			if v != "" {
				counts[j][v]++
			}
		}
	}

	enc := &Encoder{
		Means:        make([]float64, numCols),
		Stds:         make([]float64, numCols),
		Levels:       make(map[string][]string, len(features.CategoricalColumns)),
		MostFrequent: make(map[string]string, len(features.CategoricalColumns)),
	}
	for j, col := range columns {
		mean, std := stat.MeanStdDev(col, nil)
		if std == 0 || math.IsNaN(std) {
			std = 1
		}
		enc.Means[j] = mean
		enc.Stds[j] = std
	}
	for j, name := range features.CategoricalColumns {
		levels := make([]string, 0, len(counts[j]))
		for level := range counts[j] {
			levels = append(levels, level)
		}
		sort.Strings(levels)
		enc.Levels[name] = levels
		enc.MostFrequent[name] = mostFrequent(levels, counts[j])
	}

	enc.buildIndex()
	return enc, nil
}

// mostFrequent breaks ties by sorted order so the result is deterministic
func mostFrequent(sortedLevels []string, counts map[string]int) string {
	best, bestCount := "", 0
	for _, level := range sortedLevels {
		if counts[level] > bestCount {
			best, bestCount = level, counts[level]
		}
	}
	return best
}

func compress(v float64) float64 {
	if v < 0 {
		return -math.Log1p(-v)
	}
	return math.Log1p(v)
}

func (e *Encoder) buildIndex() {
	e.index = make(map[string]map[string]int, len(e.Levels))
	for name, levels := range e.Levels {
		idx := make(map[string]int, len(levels))
		for i, level := range levels {
			idx[level] = i
		}
		e.index[name] = idx
	}
}

// Width is the length of an encoded vector
func (e *Encoder) Width() int {
	w := len(e.Means)
	for _, name := range features.CategoricalColumns {
		w += len(e.Levels[name])
	}
	return w
}

// Encode writes the encoded row into dst, which must have length Width
func (e *Encoder) Encode(row features.Row, dst []float64) {
	for i := range dst {
		dst[i] = 0
	}
	for j, v := range row.Numeric() {
		dst[j] = (compress(v) - e.Means[j]) / e.Stds[j]
	}
	offset := len(e.Means)
	for j, value := range row.Categorical() {
		name := features.CategoricalColumns[j]
		if value == "" {
			value = e.MostFrequent[name]
		}
		if pos, ok := e.index[name][value]; ok {
			dst[offset+pos] = 1
		}
		offset += len(e.Levels[name])
	}
}

func (e *Encoder) validate() error {
	if len(e.Means) != len(features.NumericColumns) || len(e.Stds) != len(features.NumericColumns) {
		return fmt.Errorf("encoder has %d numeric columns, want %d", len(e.Means), len(features.NumericColumns))
	}
	for j, s := range e.Stds {
		if s <= 0 || math.IsNaN(s) || math.IsInf(s, 0) {
			return fmt.Errorf("encoder column %s has invalid scale %v", features.NumericColumns[j], s)
		}
	}
	for _, name := range features.CategoricalColumns {
		if _, ok := e.Levels[name]; !ok {
			return fmt.Errorf("encoder is missing levels for %s", name)
		}
	}
	return nil
}
