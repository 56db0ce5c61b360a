package models

import (
	"encoding/json"
	"math"
)

// ROIResult is the outcome of a solar investment quote. ROIYears is +Inf when
// yearly savings are zero or negative; it marshals as JSON null in that case
// so API clients never see a bare "Inf" token.
type ROIResult struct {
	Year                   int     `json:"year"`
	PredictedSolarCost     float64 `json:"predicted_solar_cost"`
	PredictedMeralcoRate   float64 `json:"predicted_meralco_rate"`
	CapacityKW             float64 `json:"capacity_kw"`
	YearlyEnergyProduction float64 `json:"yearly_energy_production"`
	YearlySavings          float64 `json:"yearly_savings"`
	ROIYears               float64 `json:"-"`
	IsActualData           bool    `json:"is_actual_data"`
}

// PaybackKnown reports whether the payback period is a finite number of
// years. Callers must check this before treating ROIYears as a value.
func (r *ROIResult) PaybackKnown() bool {
	return !math.IsInf(r.ROIYears, 0) && !math.IsNaN(r.ROIYears)
}

func (r *ROIResult) MarshalJSON() ([]byte, error) {
	type alias ROIResult
	var roi *float64
	if r.PaybackKnown() {
		roi = &r.ROIYears
	}
	return json.Marshal(struct {
		*alias
		ROIYears *float64 `json:"roi_years"`
	}{(*alias)(r), roi})
}
