// Package metrics exposes Prometheus instrumentation for inference and training
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Inference
	PredictionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kickpredict_predictions_total",
			Help: "Total number of predictions by returned label",
		},
		[]string{"label"},
	)

	ShortCircuitsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "kickpredict_short_circuits_total",
			Help: "Predictions answered without the classifier because pledges already met the goal",
		},
	)

	RateFallbacksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kickpredict_rate_fallbacks_total",
			Help: "Feature rows where a rate table lookup fell back to the default rate",
		},
		[]string{"feature"},
	)

	PredictionErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kickpredict_prediction_errors_total",
			Help: "Failed predictions by error kind",
		},
		[]string{"kind"},
	)

	PredictionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "kickpredict_prediction_duration_seconds",
			Help:    "Duration of a prediction including feature derivation",
			Buckets: prometheus.ExponentialBuckets(0.00005, 4, 8),
		},
	)

	// Training
	TrainingRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kickpredict_training_runs_total",
			Help: "Training runs by outcome",
		},
		[]string{"status"}, // "success", "error"
	)

	TrainingRowsDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kickpredict_training_rows_dropped_total",
			Help: "Historical rows excluded by cleaning, by reason",
		},
		[]string{"reason"},
	)

	ModelHoldoutAUC = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "kickpredict_model_holdout_auc",
			Help: "Holdout ROC AUC of the most recently trained or loaded model",
		},
	)
)

// RecordPrediction records a successful prediction
func RecordPrediction(label string, shortCircuit bool, fallbacks []string, duration time.Duration) {
	PredictionsTotal.WithLabelValues(label).Inc()
	if shortCircuit {
		ShortCircuitsTotal.Inc()
	}
	for _, f := range fallbacks {
		RateFallbacksTotal.WithLabelValues(f).Inc()
	}
	PredictionDuration.Observe(duration.Seconds())
}

// RecordPredictionError records a failed prediction
func RecordPredictionError(kind string) {
	PredictionErrorsTotal.WithLabelValues(kind).Inc()
}

// RecordTrainingRun records the outcome of a training run
func RecordTrainingRun(err error, dropped map[string]int, auc float64) {
	if err != nil {
		TrainingRunsTotal.WithLabelValues("error").Inc()
		return
	}
	TrainingRunsTotal.WithLabelValues("success").Inc()
	for reason, n := range dropped {
		TrainingRowsDropped.WithLabelValues(reason).Add(float64(n))
	}
	ModelHoldoutAUC.Set(auc)
}
