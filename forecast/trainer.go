package forecast

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/sajari/regression"
	"github.com/sirupsen/logrus"

	"github.com/volfir1/EcoPulseBackend/dataset"
	"github.com/volfir1/EcoPulseBackend/metrics"
	"github.com/volfir1/EcoPulseBackend/models"
	"github.com/volfir1/EcoPulseBackend/schema"
)

// splitSeed fixes the train/holdout shuffle so repeated runs over identical
// data report identical holdout metrics.
const splitSeed = 42

// Trainer fits one ordinary-least-squares model per target metric against
// the fixed feature set and persists each through the registry.
type Trainer struct {
	registry *Registry
	log      *logrus.Logger
}

func NewTrainer(registry *Registry, log *logrus.Logger) *Trainer {
	return &Trainer{registry: registry, log: log}
}

// TrainAll trains a model for every target. A missing required column for
// any target fails the whole run with the missing and available columns
// listed and zero models trained; a fit failure for one target is isolated
// into the report and does not stop the others. The context deadline is
// honored between targets.
func (t *Trainer) TrainAll(ctx context.Context, table *dataset.Table) *models.TrainReport {
	metrics.TrainingsRun.Inc()

	if table == nil || table.Len() == 0 {
		return &models.TrainReport{
			Status:  "error",
			Message: "No data available for training models",
		}
	}

	var missing []string
	for _, col := range append(append([]string{}, schema.TrendFeatures...), schema.TrendTargets...) {
		if !table.HasColumn(col) {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		err := &SchemaMismatchError{Missing: missing, Available: table.Columns()}
		t.log.WithField("missing", missing).Error("training aborted: schema mismatch")
		return &models.TrainReport{
			Status:           "error",
			Message:          err.Error(),
			AvailableColumns: table.Columns(),
		}
	}

	runID := uuid.NewString()
	report := &models.TrainReport{
		Status:   "success",
		Message:  "Models trained and saved successfully",
		Models:   make(map[string]string, len(schema.TrendTargets)),
		DataRows: table.Len(),
		RunID:    runID,
	}

	for _, target := range schema.TrendTargets {
		if err := ctx.Err(); err != nil {
			report.Models[target] = fmt.Sprintf("error: %v", err)
			t.log.WithField("target", target).Warnf("training cut short: %v", err)
			continue
		}

		model, err := t.trainOne(table, target, runID)
		if err != nil {
			report.Models[target] = fmt.Sprintf("error: %v", err)
			t.log.WithField("target", target).Errorf("training failed: %v", err)
			continue
		}
		if err := t.registry.Save(model); err != nil {
			report.Models[target] = fmt.Sprintf("error: %v", err)
			t.log.WithField("target", target).Errorf("persisting model failed: %v", err)
			continue
		}

		report.Models[target] = "success"
		metrics.ModelsTrained.Inc()
		t.log.WithFields(logrus.Fields{
			"target": target,
			"mae":    model.MAE,
			"mse":    model.MSE,
			"r2":     model.R2,
		}).Info("model trained")
	}

	return report
}

func (t *Trainer) trainOne(table *dataset.Table, target, runID string) (*models.TrendModel, error) {
	features, labels := trainingRows(table, target)
	if len(labels) < 2 {
		return nil, fmt.Errorf("not enough rows with %s to fit a model (%d)", target, len(labels))
	}

	trainIdx, testIdx := split(len(labels))

	var r regression.Regression
	r.SetObserved(target)
	for i, name := range schema.TrendFeatures {
		r.SetVar(i, name)
	}
	for _, i := range trainIdx {
		r.Train(regression.DataPoint(labels[i], features[i]))
	}
	if err := r.Run(); err != nil {
		return nil, fmt.Errorf("fitting %s: %w", target, err)
	}

	coeffs := r.GetCoeffs()
	if len(coeffs) == 0 {
		return nil, fmt.Errorf("fitting %s produced no coefficients", target)
	}
	model := &models.TrendModel{
		Target:      target,
		Key:         schema.ModelKey(target),
		Features:    append([]string{}, schema.TrendFeatures...),
		Intercept:   coeffs[0],
		Weights:     coeffs[1:],
		R2:          r.R2,
		TrainedRows: len(trainIdx),
		TrainedAt:   time.Now().UTC(),
		RunID:       runID,
	}

	// Holdout error, recorded for observability only.
	var absSum, sqSum float64
	for _, i := range testIdx {
		diff := labels[i] - model.Predict(features[i])
		absSum += math.Abs(diff)
		sqSum += diff * diff
	}
	if len(testIdx) > 0 {
		model.MAE = absSum / float64(len(testIdx))
		model.MSE = sqSum / float64(len(testIdx))
	}

	return model, nil
}

// trainingRows collects rows where all features and the target are numeric.
func trainingRows(table *dataset.Table, target string) (features [][]float64, labels []float64) {
	for _, row := range table.Rows() {
		label, ok := row.Float(target)
		if !ok {
			continue
		}
		vec := make([]float64, 0, len(schema.TrendFeatures))
		complete := true
		for _, name := range schema.TrendFeatures {
			if name == schema.ColYear {
				y, ok := row.Year()
				if !ok {
					complete = false
					break
				}
				vec = append(vec, float64(y))
				continue
			}
			v, ok := row.Float(name)
			if !ok {
				complete = false
				break
			}
			vec = append(vec, v)
		}
		if !complete {
			continue
		}
		features = append(features, vec)
		labels = append(labels, label)
	}
	return features, labels
}

// split shuffles row indices with a fixed seed and carves off 20% as the
// holdout, at least one row when there is anything to hold out.
func split(n int) (train, test []int) {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	rng := rand.New(rand.NewSource(splitSeed))
	rng.Shuffle(n, func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })

	nTest := int(math.Ceil(float64(n) * 0.2))
	if nTest >= n {
		nTest = n - 1
	}
	return idx[nTest:], idx[:nTest]
}
