package models

// PlaceMetrics holds one subgrid's metric values for a requested year.
// Metrics only contains the "Estimated Consumption (GWh)" key when it was
// computable; a region-wide generation of zero leaves it out entirely.
type PlaceMetrics struct {
	Place       string             `json:"place"`
	Metrics     map[string]float64 `json:"metrics"`
	IsPredicted bool               `json:"isPredicted"`
}

// PlaceSeriesResponse is the peer-to-peer endpoint payload.
type PlaceSeriesResponse struct {
	Year    int            `json:"year"`
	Data    []PlaceMetrics `json:"data"`
	Success bool           `json:"success"`
	Message string         `json:"message"`
}
