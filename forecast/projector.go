package forecast

import (
	"math"

	"github.com/sirupsen/logrus"

	"github.com/volfir1/EcoPulseBackend/dataset"
	"github.com/volfir1/EcoPulseBackend/schema"
)

// Defaults applied when a feature cannot be projected from history.
const (
	defaultGDPBase   = 1000.0
	defaultGDPGrowth = 0.03
	neutralFeature   = 1.0
)

// FeatureRow is one projected future year's feature vector.
type FeatureRow struct {
	Year   int
	Values map[string]float64
}

// Feature returns the value for a feature name; Year resolves to the row's
// own year.
func (r FeatureRow) Feature(name string) float64 {
	if name == schema.ColYear {
		return float64(r.Year)
	}
	return r.Values[name]
}

// Vector returns the feature values ordered as names.
func (r FeatureRow) Vector(names []string) []float64 {
	out := make([]float64, len(names))
	for i, name := range names {
		out[i] = r.Feature(name)
	}
	return out
}

// growthRate is the mean period-over-period fractional change of a series.
// Undefined (ok=false) with fewer than two usable observations.
func growthRate(values []float64) (float64, bool) {
	var sum float64
	var n int
	for i := 1; i < len(values); i++ {
		prev := values[i-1]
		if prev == 0 {
			continue
		}
		sum += (values[i] - prev) / prev
		n++
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

// Project extrapolates the named feature columns from the table's history to
// every year in [fromYear, toYear]. Each feature grows geometrically from
// its last observed value; a series too short to define a growth rate
// flat-lines instead (explicit zero-growth policy). GDP falls back to a
// fixed 3% growth from an assumed base when absent; any other unproducible
// feature is set to a neutral 1.0. Every fallback is surfaced as a warning.
func Project(table *dataset.Table, features []string, fromYear, toYear int, log *logrus.Logger) ([]FeatureRow, []string) {
	var warnings []string
	warn := func(msg string, fields logrus.Fields) {
		warnings = append(warnings, msg)
		log.WithFields(fields).Warn(msg)
	}

	latestYear, haveYears := table.LatestYear()

	type projection struct {
		last float64
		rate float64
	}
	projections := map[string]projection{}

	for _, feature := range features {
		if feature == schema.ColYear {
			continue
		}
		_, values := table.ColumnSeries(feature)

		if len(values) == 0 {
			if feature == schema.ColGDP {
				projections[feature] = projection{last: defaultGDPBase, rate: defaultGDPGrowth}
				warn("GDP history absent, using default growth rate", logrus.Fields{
					"feature": feature, "base": defaultGDPBase, "rate": defaultGDPGrowth,
				})
			} else {
				projections[feature] = projection{last: neutralFeature, rate: 0}
				warn("feature not projectable, using neutral default", logrus.Fields{
					"feature": feature,
				})
			}
			continue
		}

		rate, ok := growthRate(values)
		if !ok {
			warn("growth rate undefined, flat-lining last observed value", logrus.Fields{
				"feature": feature, "observations": len(values),
			})
			rate = 0
		}
		projections[feature] = projection{last: values[len(values)-1], rate: rate}
	}

	var rows []FeatureRow
	for year := fromYear; year <= toYear; year++ {
		row := FeatureRow{Year: year, Values: map[string]float64{}}
		for feature, p := range projections {
			steps := 0.0
			if haveYears {
				steps = float64(year - latestYear)
			}
			row.Values[feature] = p.last * math.Pow(1+p.rate, steps)
		}
		rows = append(rows, row)
	}
	return rows, warnings
}
