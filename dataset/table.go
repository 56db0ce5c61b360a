// Package dataset turns raw store documents into an in-memory table:
// numeric-looking strings coerced to floats, missing cells forward-filled
// along row order, coordinates derived from Latitude/Longitude. Tables are
// immutable snapshots; a reload builds a fresh one.
package dataset

import (
	"sort"
	"strconv"
	"strings"

	"github.com/volfir1/EcoPulseBackend/models"
	"github.com/volfir1/EcoPulseBackend/schema"
)

type Table struct {
	rows    []models.MetricRecord
	columns []string
}

// New builds a table from raw records, applying coercion, forward-fill and
// coordinate derivation. Row order is preserved.
func New(records []models.MetricRecord) *Table {
	t := &Table{rows: make([]models.MetricRecord, 0, len(records))}
	seen := map[string]bool{}

	for _, rec := range records {
		row := rec.Clone()
		coerceRow(row)
		t.rows = append(t.rows, row)
		for col := range row {
			if !seen[col] {
				seen[col] = true
				t.columns = append(t.columns, col)
			}
		}
	}
	sort.Strings(t.columns)

	t.forwardFill()
	t.deriveCoordinates()
	return t
}

func coerceRow(row models.MetricRecord) {
	for col, v := range row {
		switch col {
		case schema.ColYear:
			if y, ok := coerceNumber(v); ok {
				row[col] = int(y)
			}
		case schema.ColPredicted:
			row[col] = ParseFlag(v)
		default:
			if s, ok := v.(string); ok {
				if f, ok := coerceNumber(s); ok {
					row[col] = f
				} else if schema.IsNumericColumn(col) {
					// Unparseable text in a declared-numeric column becomes
					// a missing cell, which the forward-fill then patches.
					delete(row, col)
				}
			}
		}
	}
}

// coerceNumber parses a numeric value, stripping thousands separators from
// strings ("1,234.5" -> 1234.5).
func coerceNumber(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(n), ",", ""), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// ParseFlag interprets the isPredicted flag across the representations the
// spreadsheet mirror produces: booleans, or strings like "true", "T", "1",
// "yes", "y".
func ParseFlag(v interface{}) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		switch strings.ToLower(strings.TrimSpace(b)) {
		case "true", "t", "1", "yes", "y":
			return true
		}
	}
	return false
}

// forwardFill copies the previous row's value into missing cells, column by
// column. Cells missing before the first observation stay missing.
func (t *Table) forwardFill() {
	for _, col := range t.columns {
		var last interface{}
		for _, row := range t.rows {
			if v, ok := row[col]; ok && v != nil {
				last = v
			} else if last != nil {
				row[col] = last
			}
		}
	}
}

func (t *Table) deriveCoordinates() {
	for _, row := range t.rows {
		lat, okLat := row.Float(schema.ColLatitude)
		lng, okLng := row.Float(schema.ColLongitude)
		if okLat && okLng {
			row[schema.ColCoordinates] = models.Coordinates{Lat: lat, Lng: lng}
		}
	}
}

func (t *Table) Len() int { return len(t.rows) }

// Rows returns the underlying rows. Callers must not mutate them.
func (t *Table) Rows() []models.MetricRecord { return t.rows }

func (t *Table) Columns() []string { return t.columns }

func (t *Table) HasColumn(name string) bool {
	for _, col := range t.columns {
		if col == name {
			return true
		}
	}
	return false
}

// LatestYear returns the maximum Year across rows.
func (t *Table) LatestYear() (int, bool) {
	found := false
	max := 0
	for _, row := range t.rows {
		if y, ok := row.Year(); ok {
			if !found || y > max {
				max = y
			}
			found = true
		}
	}
	return max, found
}

// EarliestYear returns the minimum Year across rows.
func (t *Table) EarliestYear() (int, bool) {
	found := false
	min := 0
	for _, row := range t.rows {
		if y, ok := row.Year(); ok {
			if !found || y < min {
				min = y
			}
			found = true
		}
	}
	return min, found
}

// RowsInRange returns rows with startYear <= Year <= endYear, in input order.
func (t *Table) RowsInRange(startYear, endYear int) []models.MetricRecord {
	var out []models.MetricRecord
	for _, row := range t.rows {
		if y, ok := row.Year(); ok && y >= startYear && y <= endYear {
			out = append(out, row)
		}
	}
	return out
}

// ActualRowForYear returns the first non-predicted row for a year.
func (t *Table) ActualRowForYear(year int) (models.MetricRecord, bool) {
	for _, row := range t.rows {
		if y, ok := row.Year(); ok && y == year && !row.IsPredicted() {
			return row, true
		}
	}
	return nil, false
}

// ColumnSeries returns the (year, value) pairs of one column, skipping rows
// where the column is missing or non-numeric. Pairs keep row order.
func (t *Table) ColumnSeries(column string) (years []float64, values []float64) {
	for _, row := range t.rows {
		y, okY := row.Year()
		v, okV := row.Float(column)
		if okY && okV {
			years = append(years, float64(y))
			values = append(values, v)
		}
	}
	return years, values
}
