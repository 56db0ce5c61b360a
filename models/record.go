package models

// MetricRecord is one document from the store: a mapping from metric name
// (e.g. "Solar (GWh)", "Population (in millions)") to a value, plus Year and
// the isPredicted flag. Values arriving over the wire may still be strings
// with thousands separators; the dataset package coerces them.
type MetricRecord map[string]interface{}

// Coordinates is the derived lat/lng pair zipped from the Latitude and
// Longitude columns.
type Coordinates struct {
	Lat float64 `json:"lat" bson:"lat"`
	Lng float64 `json:"lng" bson:"lng"`
}

// Year returns the record's year, if present and numeric.
func (r MetricRecord) Year() (int, bool) {
	v, ok := r["Year"]
	if !ok {
		return 0, false
	}
	switch y := v.(type) {
	case int:
		return y, true
	case int32:
		return int(y), true
	case int64:
		return int(y), true
	case float64:
		return int(y), true
	}
	return 0, false
}

// IsPredicted reports whether the record is model-generated. Absence of the
// flag means actual data.
func (r MetricRecord) IsPredicted() bool {
	v, ok := r["isPredicted"]
	if !ok {
		return false
	}
	b, ok := v.(bool)
	return ok && b
}

// Float returns the numeric value of a column, if present and already
// coerced to a number.
func (r MetricRecord) Float(column string) (float64, bool) {
	v, ok := r[column]
	if !ok {
		return 0, false
	}
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
	}
	return 0, false
}

// Clone returns a shallow copy so callers can tag or annotate a record
// without mutating the shared snapshot.
func (r MetricRecord) Clone() MetricRecord {
	out := make(MetricRecord, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}
