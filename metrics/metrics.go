// Package metrics registers the Prometheus instruments shared across the
// service. Degraded responses get their own counter so silent-degradation
// contracts stay visible to operators.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TrainingsRun = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ecopulse_trainings_total",
		Help: "Total number of full model training runs.",
	})
	ModelsTrained = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ecopulse_models_trained_total",
		Help: "Total number of per-target models fitted and persisted.",
	})
	PredictionsSynthesized = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ecopulse_predictions_synthesized_total",
		Help: "Total number of predicted records synthesized for callers.",
	})
	DegradedResponses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ecopulse_degraded_responses_total",
		Help: "Responses served with fewer or zero predicted rows than requested.",
	}, []string{"component"})
	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ecopulse_request_duration_seconds",
		Help:    "Duration of core operations.",
		Buckets: []float64{0.05, 0.1, 0.5, 1.0, 2.5, 5.0, 10.0},
	}, []string{"op"})
)
