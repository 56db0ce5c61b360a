package forecast

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/volfir1/EcoPulseBackend/dataset"
	"github.com/volfir1/EcoPulseBackend/metrics"
	"github.com/volfir1/EcoPulseBackend/models"
	"github.com/volfir1/EcoPulseBackend/schema"
)

// Source produces a fresh table snapshot per query.
type Source interface {
	Load(ctx context.Context) (*dataset.Table, error)
}

// Reconciler merges recorded ground truth with model-synthesized records for
// a requested year range.
type Reconciler struct {
	source   Source
	registry *Registry
	log      *logrus.Logger
}

func NewReconciler(source Source, registry *Registry, log *logrus.Logger) *Reconciler {
	return &Reconciler{source: source, registry: registry, log: log}
}

// GetSeries returns records for [startYear, endYear], sorted ascending by
// Year (stable). Years at or before the latest observed year come from the
// store, tagged isPredicted=false with Predicted Production mirroring the
// actual value; later years are synthesized from the growth projection and
// the persisted trend model, tagged isPredicted=true.
//
// This method never fails the caller: a missing model degrades to the
// existing records alone, and any other internal failure yields an empty
// slice. Both paths log a warning and bump the degraded-response counter.
func (r *Reconciler) GetSeries(ctx context.Context, target string, startYear, endYear int) []models.MetricRecord {
	table, err := r.source.Load(ctx)
	if err != nil {
		return r.degrade(target, startYear, endYear, nil, "snapshot load failed", err)
	}
	return r.seriesFrom(table, target, startYear, endYear)
}

// GetSeriesWithDefaults is GetSeries with zero years resolved from the same
// snapshot the series is built from: a zero startYear becomes the earliest
// observed year (the current year when the table is empty) and a zero
// endYear becomes startYear+horizon. The store is loaded exactly once.
func (r *Reconciler) GetSeriesWithDefaults(ctx context.Context, target string, startYear, endYear, horizon int) []models.MetricRecord {
	table, err := r.source.Load(ctx)
	if err != nil {
		return r.degrade(target, startYear, endYear, nil, "snapshot load failed", err)
	}

	if startYear == 0 {
		if earliest, ok := table.EarliestYear(); ok {
			startYear = earliest
		} else {
			startYear = time.Now().Year()
		}
	}
	if endYear == 0 {
		endYear = startYear + horizon
	}
	if startYear > endYear {
		return r.degrade(target, startYear, endYear, nil, "resolved range inverted", errors.New("startYear exceeds endYear"))
	}
	return r.seriesFrom(table, target, startYear, endYear)
}

func (r *Reconciler) degrade(target string, startYear, endYear int, result []models.MetricRecord, reason string, err error) []models.MetricRecord {
	r.log.WithFields(logrus.Fields{
		"target": target,
		"start":  startYear,
		"end":    endYear,
		"reason": reason,
	}).Warnf("prediction series degraded: %v", err)
	metrics.DegradedResponses.WithLabelValues("reconciler").Inc()
	if result == nil {
		result = []models.MetricRecord{}
	}
	return result
}

func (r *Reconciler) seriesFrom(table *dataset.Table, target string, startYear, endYear int) []models.MetricRecord {
	targetColumn, haveColumn := schema.ResolveColumn(table.Columns(), target)

	existing := make([]models.MetricRecord, 0)
	for _, row := range table.RowsInRange(startYear, endYear) {
		rec := row.Clone()
		rec[schema.ColPredicted] = false
		if haveColumn {
			if v, ok := rec.Float(targetColumn); ok {
				rec[schema.ColPredictedProduction] = v
			} else {
				rec[schema.ColPredictedProduction] = 0.0
			}
		} else {
			rec[schema.ColPredictedProduction] = 0.0
		}
		existing = append(existing, rec)
	}
	if !haveColumn {
		r.log.WithField("target", target).Warn("target column not found, using zero for recorded production")
	}

	latestYear, ok := table.LatestYear()
	predictStart := startYear
	if ok && latestYear+1 > predictStart {
		predictStart = latestYear + 1
	}
	if predictStart > endYear {
		return sortByYear(existing)
	}

	model, err := r.registry.Load(target)
	if err != nil {
		if errors.Is(err, ErrModelNotTrained) {
			return sortByYear(r.degrade(target, startYear, endYear, existing, "model not trained", err))
		}
		return sortByYear(r.degrade(target, startYear, endYear, existing, "model load failed", err))
	}

	rows, _ := Project(table, model.Features, predictStart, endYear, r.log)
	for _, row := range rows {
		rec := models.MetricRecord{
			schema.ColYear:                row.Year,
			schema.ColPredicted:           true,
			schema.ColPredictedProduction: model.Predict(row.Vector(model.Features)),
		}
		for name, value := range row.Values {
			rec[name] = value
		}
		existing = append(existing, rec)
	}
	metrics.PredictionsSynthesized.Add(float64(len(rows)))

	return sortByYear(existing)
}

func sortByYear(records []models.MetricRecord) []models.MetricRecord {
	sort.SliceStable(records, func(i, j int) bool {
		yi, _ := records[i].Year()
		yj, _ := records[j].Year()
		return yi < yj
	})
	return records
}
