package peergrid

import (
	"github.com/sirupsen/logrus"

	"github.com/volfir1/EcoPulseBackend/dataset"
	"github.com/volfir1/EcoPulseBackend/models"
	"github.com/volfir1/EcoPulseBackend/schema"
)

// Forecaster answers place-series queries over one immutable snapshot of the
// peer-to-peer table. Rebuild a new Forecaster after inserts; readers of the
// old one keep a consistent view.
type Forecaster struct {
	full   *dataset.Table
	places map[string]*dataset.Table
	log    *logrus.Logger
}

func New(full *dataset.Table, log *logrus.Logger) *Forecaster {
	return &Forecaster{
		full:   full,
		places: dataset.SubgridTables(full),
		log:    log,
	}
}

// PlaceSeries returns every subgrid's metrics for a year. A year with
// recorded actual data short-circuits to those values; otherwise each metric
// is predicted per subgrid, and an estimated consumption is derived from the
// subgrid's share of region-wide generation. When region-wide generation is
// not positive the estimate is not computable and the field is omitted.
func (f *Forecaster) PlaceSeries(year int) models.PlaceSeriesResponse {
	response := models.PlaceSeriesResponse{
		Year:    year,
		Data:    []models.PlaceMetrics{},
		Success: true,
		Message: "Data retrieved successfully",
	}

	if actual, ok := f.full.ActualRowForYear(year); ok {
		f.log.WithField("year", year).Info("returning actual data for year")
		for _, place := range schema.Subgrids {
			pm := models.PlaceMetrics{Place: place, Metrics: map[string]float64{}}
			for _, metric := range schema.SubgridMetrics {
				if v, ok := actual.Float(schema.SubgridColumn(place, metric)); ok {
					pm.Metrics[metric] = v
				}
			}
			response.Data = append(response.Data, pm)
		}
		return response
	}

	f.log.WithField("year", year).Info("generating predictions for year")

	regionGen := 0.0
	if p := PredictAt(f.full, schema.ColRegionGeneration, year); p.Source != SourceNone {
		regionGen = p.Value
	}
	regionUse := 0.0
	if p := PredictAt(f.full, schema.ColRegionConsumption, year); p.Source != SourceNone {
		regionUse = p.Value
	}

	for _, place := range schema.Subgrids {
		placeTable, ok := f.places[place]
		if !ok {
			continue
		}
		pm := models.PlaceMetrics{Place: place, Metrics: map[string]float64{}, IsPredicted: true}

		for _, metric := range schema.SubgridMetrics {
			if !placeTable.HasColumn(metric) {
				continue
			}
			p := PredictAt(placeTable, metric, year)
			if p.Source == SourceNone {
				f.log.WithFields(logrus.Fields{
					"place": place, "metric": metric, "year": year,
				}).Warn("no data to predict metric")
				continue
			}
			pm.Metrics[metric] = p.Value
		}

		if gen, ok := pm.Metrics[schema.ColGeneration]; ok && regionGen > 0 {
			pm.Metrics[schema.ColEstimatedUse] = gen / regionGen * regionUse
		}

		response.Data = append(response.Data, pm)
	}

	return response
}
