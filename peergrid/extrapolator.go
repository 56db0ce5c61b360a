// Package peergrid forecasts per-subgrid energy metrics with independent
// single-feature linear trends, one fit per (subgrid, metric) pair.
package peergrid

import (
	"gonum.org/v1/gonum/stat"

	"github.com/volfir1/EcoPulseBackend/dataset"
)

// Source tells a caller where a Point's value came from. SourceNone marks
// "no data" explicitly so a zero value is never mistaken for a measurement.
type Source int

const (
	SourceActual Source = iota
	SourceSeries
	SourceModel
	SourceNone
)

func (s Source) String() string {
	switch s {
	case SourceActual:
		return "actual"
	case SourceSeries:
		return "series"
	case SourceModel:
		return "model"
	}
	return "none"
}

// Point is a single (year, value) answer from the extrapolator.
type Point struct {
	Year   int
	Value  float64
	Source Source
}

// PredictAt resolves a column's value for a target year. Rules, each a
// short-circuit over the next:
//
//  1. an actual (non-predicted) row for the year wins, even when a fitted
//     trend would disagree;
//  2. with no usable rows for the column at all, the answer is SourceNone;
//  3. a year already present in the series (actual or previously
//     synthesized) is returned as-is, no fit;
//  4. a year beyond the latest observation is extrapolated from a fresh
//     linear fit of Year against the column;
//  5. a gap year inside the observed range is interpolated with the same
//     linear fit;
//  6. a year before the earliest observation is SourceNone.
func PredictAt(table *dataset.Table, column string, targetYear int) Point {
	if row, ok := table.ActualRowForYear(targetYear); ok {
		if v, ok := row.Float(column); ok {
			return Point{Year: targetYear, Value: v, Source: SourceActual}
		}
	}

	years, values := table.ColumnSeries(column)
	if len(years) == 0 {
		return Point{Year: targetYear, Source: SourceNone}
	}

	for i, y := range years {
		if int(y) == targetYear {
			return Point{Year: targetYear, Value: values[i], Source: SourceSeries}
		}
	}

	minYear, maxYear := years[0], years[0]
	for _, y := range years {
		if y < minYear {
			minYear = y
		}
		if y > maxYear {
			maxYear = y
		}
	}

	if float64(targetYear) < minYear {
		return Point{Year: targetYear, Source: SourceNone}
	}

	// Extrapolation past the latest observation and gap-year interpolation
	// share one linear fit. Interpolating linearly ignores any curvature in
	// the true series; accepted tradeoff.
	alpha, beta := stat.LinearRegression(years, values, nil, false)
	return Point{
		Year:   targetYear,
		Value:  alpha + beta*float64(targetYear),
		Source: SourceModel,
	}
}
