package models

import "time"

// TrendModel is a fitted linear model for one target metric, persisted as a
// JSON artifact keyed by its canonical target key. A retrain overwrites the
// previous artifact for the same key.
type TrendModel struct {
	Target      string    `json:"target"`
	Key         string    `json:"key"`
	Features    []string  `json:"features"`
	Intercept   float64   `json:"intercept"`
	Weights     []float64 `json:"weights"`
	R2          float64   `json:"r2"`
	MAE         float64   `json:"mae"`
	MSE         float64   `json:"mse"`
	TrainedRows int       `json:"trained_rows"`
	TrainedAt   time.Time `json:"trained_at"`
	RunID       string    `json:"run_id"`
}

// Predict evaluates the model on a feature vector ordered as Features.
func (m *TrendModel) Predict(features []float64) float64 {
	out := m.Intercept
	for i, w := range m.Weights {
		if i < len(features) {
			out += w * features[i]
		}
	}
	return out
}

// TrainReport is the structured outcome of a full training run. Per-target
// failures are isolated into Models; Status is "error" only when the run as a
// whole could not start (no data, missing required columns).
type TrainReport struct {
	Status           string            `json:"status"`
	Message          string            `json:"message"`
	Models           map[string]string `json:"models,omitempty"`
	AvailableColumns []string          `json:"available_columns,omitempty"`
	DataRows         int               `json:"data_rows,omitempty"`
	RunID            string            `json:"run_id,omitempty"`
}
