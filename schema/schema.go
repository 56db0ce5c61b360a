// Package schema declares the metric vocabulary of the dataset once, so that
// column lookup, model keying and subgrid projection never rely on ad-hoc
// per-request string manipulation.
package schema

import "strings"

// Well-known column names.
const (
	ColYear                = "Year"
	ColPredicted           = "isPredicted"
	ColPredictedProduction = "Predicted Production"
	ColCoordinates         = "coordinates"
	ColLatitude            = "Latitude"
	ColLongitude           = "Longitude"
	ColPopulation          = "Population (in millions)"
	ColNonRenewable        = "Non-Renewable Energy (GWh)"
	ColGDP                 = "Gross Domestic Product"
	ColSolarCost           = "Solar Cost (PHP/W)"
	ColMeralcoRate         = "MERALCO Rate (PHP/kWh)"
	ColRegionGeneration    = "Visayas Total Power Generation (GWh)"
	ColRegionConsumption   = "Visayas Total Power Consumption (GWh)"
	ColGeneration          = "Total Power Generation (GWh)"
	ColEstimatedUse        = "Estimated Consumption (GWh)"
)

const unitSuffix = " (GWh)"

// NumericColumns are coerced from string to float on load.
var NumericColumns = []string{
	"Total Renewable Energy (GWh)",
	"Geothermal (GWh)",
	"Hydro (GWh)",
	"Biomass (GWh)",
	"Solar (GWh)",
	"Wind (GWh)",
	ColNonRenewable,
	ColGeneration,
	ColPopulation,
	ColGDP,
	ColSolarCost,
	ColMeralcoRate,
}

var numericColumnSet = func() map[string]struct{} {
	set := make(map[string]struct{}, len(NumericColumns))
	for _, col := range NumericColumns {
		set[col] = struct{}{}
	}
	return set
}()

// IsNumericColumn reports whether a column is declared numeric. Unparseable
// values in declared-numeric columns are treated as missing instead of being
// kept as text.
func IsNumericColumn(name string) bool {
	_, ok := numericColumnSet[name]
	return ok
}

// TrendFeatures is the fixed feature set of every trend model.
var TrendFeatures = []string{ColYear, ColPopulation, ColNonRenewable}

// TrendTargets are the metrics a full training run fits models for.
var TrendTargets = []string{
	"Geothermal (GWh)",
	"Hydro (GWh)",
	"Biomass (GWh)",
	"Solar (GWh)",
	"Wind (GWh)",
}

// Subgrids are the subregions of the grid, each with its own column group.
var Subgrids = []string{"Bohol", "Cebu", "Negros", "Panay", "Leyte-Samar"}

// SubgridMetrics are the per-subgrid metrics, stored as "{subgrid} {metric}"
// columns in the full table.
var SubgridMetrics = []string{
	"Total Power Generation (GWh)",
	"Total Non-Renewable Energy (GWh)",
	"Total Renewable Energy (GWh)",
	"Geothermal (GWh)",
	"Hydro (GWh)",
	"Biomass (GWh)",
	"Solar (GWh)",
	"Wind (GWh)",
	ColRegionConsumption,
}

// WithUnit appends the GWh unit suffix when the name does not already carry
// it, so "Solar" and "Solar (GWh)" name the same column.
func WithUnit(name string) string {
	if strings.HasSuffix(strings.ToLower(name), strings.ToLower(unitSuffix)) {
		return name
	}
	return name + unitSuffix
}

// ModelKey returns the single canonical registry key for a target metric.
// There is exactly one normalization; lookups never fall back to a second
// spelling.
func ModelKey(target string) string {
	return strings.ReplaceAll(strings.ToLower(WithUnit(target)), " ", "_")
}

// ResolveColumn finds the stored column matching a requested target name,
// tolerating case differences and a missing unit suffix.
func ResolveColumn(columns []string, target string) (string, bool) {
	want := strings.ToLower(WithUnit(target))
	bare := strings.ToLower(target)
	for _, col := range columns {
		lc := strings.ToLower(col)
		if lc == want || lc == bare {
			return col, true
		}
	}
	return "", false
}

// SubgridColumn is the full-table column name for a subgrid metric.
func SubgridColumn(subgrid, metric string) string {
	return subgrid + " " + metric
}
