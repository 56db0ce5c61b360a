// Package recommend quotes solar investments: installable capacity and
// payback period for a budget and year, from curves fitted once over the
// historical cost and tariff series.
package recommend

import (
	"errors"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/volfir1/EcoPulseBackend/dataset"
	"github.com/volfir1/EcoPulseBackend/models"
	"github.com/volfir1/EcoPulseBackend/schema"
)

// Assumed average daily solar production per installed kW.
const dailyProductionKWhPerKW = 4.0

// ErrInvalidInput marks a bad budget or year; fatal to that call only.
var ErrInvalidInput = errors.New("invalid input")

// Calculator holds the fitted cost and tariff curves plus the historical
// table used for the actual-data short-circuit. Curves are fit once at
// construction, never per request.
type Calculator struct {
	table  *dataset.Table
	cost   CostCurve
	tariff TariffCurve
	log    *logrus.Logger
}

// NewCalculator fits both curves over the table's full history. Stored cost
// is PHP per W and is converted to PHP per kW for fitting.
func NewCalculator(table *dataset.Table, log *logrus.Logger) (*Calculator, error) {
	costYears, costs := table.ColumnSeries(schema.ColSolarCost)
	for i := range costs {
		costs[i] *= 1000
	}
	cost, err := FitCostCurve(costYears, costs)
	if err != nil {
		return nil, fmt.Errorf("fitting solar cost curve: %w", err)
	}

	rateYears, rates := table.ColumnSeries(schema.ColMeralcoRate)
	tariff, err := FitTariffCurve(rateYears, rates)
	if err != nil {
		return nil, fmt.Errorf("fitting tariff curve: %w", err)
	}

	log.WithFields(logrus.Fields{
		"cost_points":   len(costs),
		"tariff_points": len(rates),
	}).Info("ROI curves fitted")

	return &Calculator{table: table, cost: cost, tariff: tariff, log: log}, nil
}

// Quote computes the solar investment outcome for a budget and year. A year
// with recorded actual cost and tariff short-circuits past the curves.
// ROIYears is +Inf when yearly savings are not positive; callers must check
// PaybackKnown before formatting it.
func (c *Calculator) Quote(budget float64, year int) (*models.ROIResult, error) {
	if math.IsNaN(budget) || math.IsInf(budget, 0) || budget <= 0 {
		return nil, fmt.Errorf("%w: budget must be a positive amount", ErrInvalidInput)
	}

	if row, ok := c.table.ActualRowForYear(year); ok {
		costPerW, okCost := row.Float(schema.ColSolarCost)
		rate, okRate := row.Float(schema.ColMeralcoRate)
		if okCost && okRate {
			c.log.WithField("year", year).Info("using actual cost and tariff for quote")
			result := compute(budget, year, costPerW*1000, rate)
			result.IsActualData = true
			return result, nil
		}
	}

	return compute(budget, year, c.cost.At(float64(year)), c.tariff.At(float64(year))), nil
}

func compute(budget float64, year int, costPerKW, rate float64) *models.ROIResult {
	capacity := 0.0
	if costPerKW > 0 {
		capacity = budget / costPerKW
	}
	yearlyProduction := capacity * dailyProductionKWhPerKW * 365
	yearlySavings := yearlyProduction * rate

	roiYears := math.Inf(1)
	if yearlySavings > 0 {
		roiYears = budget / yearlySavings
	}

	return &models.ROIResult{
		Year:                   year,
		PredictedSolarCost:     costPerKW,
		PredictedMeralcoRate:   rate,
		CapacityKW:             capacity,
		YearlyEnergyProduction: yearlyProduction,
		YearlySavings:          yearlySavings,
		ROIYears:               roiYears,
	}
}
