package dataset

import (
	"github.com/volfir1/EcoPulseBackend/models"
	"github.com/volfir1/EcoPulseBackend/schema"
)

// SubgridTables projects the full table into one table per subgrid: columns
// "{subgrid} {metric}" renamed to the bare metric, plus Year and isPredicted.
// Subgrids with no matching columns are skipped.
func SubgridTables(full *Table) map[string]*Table {
	out := make(map[string]*Table, len(schema.Subgrids))

	for _, subgrid := range schema.Subgrids {
		var metrics []string
		for _, metric := range schema.SubgridMetrics {
			if full.HasColumn(schema.SubgridColumn(subgrid, metric)) {
				metrics = append(metrics, metric)
			}
		}
		if len(metrics) == 0 {
			continue
		}

		rows := make([]models.MetricRecord, 0, full.Len())
		for _, row := range full.Rows() {
			projected := models.MetricRecord{}
			if y, ok := row.Year(); ok {
				projected[schema.ColYear] = y
			}
			if v, ok := row[schema.ColPredicted]; ok {
				projected[schema.ColPredicted] = v
			}
			for _, metric := range metrics {
				if v, ok := row[schema.SubgridColumn(subgrid, metric)]; ok {
					projected[metric] = v
				}
			}
			rows = append(rows, projected)
		}
		out[subgrid] = New(rows)
	}
	return out
}
