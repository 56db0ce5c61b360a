package forecast

import (
	"io"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/volfir1/EcoPulseBackend/dataset"
	"github.com/volfir1/EcoPulseBackend/models"
	"github.com/volfir1/EcoPulseBackend/schema"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestGrowthRate(t *testing.T) {
	rate, ok := growthRate([]float64{100, 110, 121})
	require.True(t, ok)
	assert.InDelta(t, 0.1, rate, 1e-9)

	_, ok = growthRate([]float64{100})
	assert.False(t, ok)

	_, ok = growthRate(nil)
	assert.False(t, ok)
}

func TestProjectZeroYearsForwardReturnsLastValue(t *testing.T) {
	table := dataset.New([]models.MetricRecord{
		{"Year": 2019, "Population (in millions)": 7.0},
		{"Year": 2020, "Population (in millions)": 7.7},
	})

	rows, _ := Project(table, []string{schema.ColPopulation}, 2020, 2020, quietLogger())
	require.Len(t, rows, 1)
	assert.InDelta(t, 7.7, rows[0].Feature(schema.ColPopulation), 1e-9)
}

func TestProjectGeometricGrowth(t *testing.T) {
	table := dataset.New([]models.MetricRecord{
		{"Year": 2019, "Population (in millions)": 100.0},
		{"Year": 2020, "Population (in millions)": 110.0},
	})

	rows, warnings := Project(table, []string{schema.ColPopulation}, 2021, 2022, quietLogger())
	require.Len(t, rows, 2)
	assert.Empty(t, warnings)
	assert.InDelta(t, 121.0, rows[0].Feature(schema.ColPopulation), 1e-9)
	assert.InDelta(t, 133.1, rows[1].Feature(schema.ColPopulation), 1e-9)
}

func TestProjectSinglePointFlatLines(t *testing.T) {
	table := dataset.New([]models.MetricRecord{
		{"Year": 2020, "Population (in millions)": 7.7},
	})

	rows, warnings := Project(table, []string{schema.ColPopulation}, 2021, 2023, quietLogger())
	require.Len(t, rows, 3)
	for _, row := range rows {
		assert.InDelta(t, 7.7, row.Feature(schema.ColPopulation), 1e-9)
	}
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "growth rate undefined")
}

func TestProjectGDPFallback(t *testing.T) {
	table := dataset.New([]models.MetricRecord{
		{"Year": 2020, "Population (in millions)": 7.7},
	})

	rows, warnings := Project(table, []string{schema.ColGDP}, 2022, 2022, quietLogger())
	require.Len(t, rows, 1)
	// 1000 * 1.03^2 from the latest observed year.
	assert.InDelta(t, 1000*1.03*1.03, rows[0].Feature(schema.ColGDP), 1e-9)

	found := false
	for _, w := range warnings {
		if strings.Contains(w, "GDP") {
			found = true
		}
	}
	assert.True(t, found, "GDP fallback must be surfaced as a warning")
}

func TestProjectNeutralDefaultForUnknownFeature(t *testing.T) {
	table := dataset.New([]models.MetricRecord{
		{"Year": 2020, "Population (in millions)": 7.7},
	})

	rows, warnings := Project(table, []string{"Mystery Feature"}, 2021, 2021, quietLogger())
	require.Len(t, rows, 1)
	assert.Equal(t, 1.0, rows[0].Feature("Mystery Feature"))
	require.NotEmpty(t, warnings)
	assert.Contains(t, warnings[0], "neutral default")
}

func TestFeatureRowVector(t *testing.T) {
	row := FeatureRow{Year: 2025, Values: map[string]float64{"Population (in millions)": 8.0}}
	vec := row.Vector([]string{schema.ColYear, schema.ColPopulation})
	assert.Equal(t, []float64{2025, 8.0}, vec)
}
