package forecast

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/volfir1/EcoPulseBackend/dataset"
	"github.com/volfir1/EcoPulseBackend/models"
	"github.com/volfir1/EcoPulseBackend/schema"
)

// trainingTable builds a dataset where every target is a clean linear
// function of the features. The features themselves are deliberately not
// collinear so the normal equations stay well conditioned.
func trainingTable(n int) *dataset.Table {
	rows := make([]models.MetricRecord, 0, n)
	for i := 0; i < n; i++ {
		year := 2000 + i
		pop := 5.0 + 0.1*float64(i) + 0.02*float64(i*i)
		nonRen := 1000.0 + 25.0*float64(i) + 40.0*math.Sin(float64(i))
		rec := models.MetricRecord{
			"Year":                       year,
			"Population (in millions)":   pop,
			"Non-Renewable Energy (GWh)": nonRen,
		}
		for j, target := range schema.TrendTargets {
			rec[target] = 10.0*float64(j+1) + 3.0*float64(i)
		}
		rows = append(rows, rec)
	}
	return dataset.New(rows)
}

func TestTrainAllMissingColumns(t *testing.T) {
	table := dataset.New([]models.MetricRecord{
		{"Year": 2020, "Population (in millions)": 7.7},
	})

	trainer := NewTrainer(NewRegistry(t.TempDir()), quietLogger())
	report := trainer.TrainAll(context.Background(), table)

	assert.Equal(t, "error", report.Status)
	assert.Contains(t, report.Message, "Non-Renewable Energy (GWh)")
	assert.Contains(t, report.Message, "Solar (GWh)")
	assert.NotEmpty(t, report.AvailableColumns)
	assert.Empty(t, report.Models, "no models may be trained on schema mismatch")
}

func TestTrainAllEmptyTable(t *testing.T) {
	trainer := NewTrainer(NewRegistry(t.TempDir()), quietLogger())
	report := trainer.TrainAll(context.Background(), dataset.New(nil))
	assert.Equal(t, "error", report.Status)
}

func TestTrainAllFitsAndPersistsEveryTarget(t *testing.T) {
	registry := NewRegistry(t.TempDir())
	trainer := NewTrainer(registry, quietLogger())

	report := trainer.TrainAll(context.Background(), trainingTable(20))

	require.Equal(t, "success", report.Status)
	assert.Equal(t, 20, report.DataRows)
	assert.NotEmpty(t, report.RunID)

	for _, target := range schema.TrendTargets {
		assert.Equal(t, "success", report.Models[target], target)

		model, err := registry.Load(target)
		require.NoError(t, err, target)
		assert.Equal(t, schema.ModelKey(target), model.Key)
		assert.Equal(t, schema.TrendFeatures, model.Features)
		assert.Len(t, model.Weights, len(schema.TrendFeatures))
		assert.Equal(t, report.RunID, model.RunID)
	}
}

func TestTrainAllDeterministicSplit(t *testing.T) {
	table := trainingTable(20)

	first := NewTrainer(NewRegistry(t.TempDir()), quietLogger()).TrainAll(context.Background(), table)
	second := NewTrainer(NewRegistry(t.TempDir()), quietLogger()).TrainAll(context.Background(), table)

	require.Equal(t, "success", first.Status)
	require.Equal(t, "success", second.Status)

	// Same data, same seed: identical holdout metrics.
	r1 := NewRegistry(t.TempDir())
	trainerA := NewTrainer(r1, quietLogger())
	trainerA.TrainAll(context.Background(), table)
	mA, err := r1.Load("Solar")
	require.NoError(t, err)

	r2 := NewRegistry(t.TempDir())
	trainerB := NewTrainer(r2, quietLogger())
	trainerB.TrainAll(context.Background(), table)
	mB, err := r2.Load("Solar")
	require.NoError(t, err)

	assert.Equal(t, mA.MAE, mB.MAE)
	assert.Equal(t, mA.MSE, mB.MSE)
}

func TestTrainAllHonorsDeadline(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	trainer := NewTrainer(NewRegistry(t.TempDir()), quietLogger())
	report := trainer.TrainAll(ctx, trainingTable(20))

	// The run still reports per-target status rather than panicking or
	// training against a dead context.
	require.Equal(t, "success", report.Status)
	for _, target := range schema.TrendTargets {
		assert.Contains(t, report.Models[target], "error")
	}
}

func TestSplitProportions(t *testing.T) {
	train, test := split(20)
	assert.Len(t, test, 4)
	assert.Len(t, train, 16)

	train, test = split(2)
	assert.Len(t, test, 1)
	assert.Len(t, train, 1)
}

func TestRegistryLoadMissingModel(t *testing.T) {
	registry := NewRegistry(t.TempDir())
	_, err := registry.Load("Solar")
	assert.ErrorIs(t, err, ErrModelNotTrained)
}
