// Package export mirrors store collections to spreadsheet files. Every
// non-flag cell is written as text (numbers included); the isPredicted flag
// is written as a boolean. Thousands separators are stripped so re-imported
// values coerce cleanly.
package export

import (
	"fmt"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/volfir1/EcoPulseBackend/models"
	"github.com/volfir1/EcoPulseBackend/schema"
)

const sheetName = "Sheet1"

// Mirror file names, one per collection.
const (
	PeerToPeerFile     = "peertopeer.xlsx"
	RecommendationFile = "recommendation.xlsx"
)

// WriteSnapshot writes records to an xlsx file, overwriting it.
func WriteSnapshot(path string, records []models.MetricRecord) error {
	columns := collectColumns(records)

	f := excelize.NewFile()
	defer f.Close()

	for i, col := range columns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellStr(sheetName, cell, col); err != nil {
			return err
		}
	}

	for r, rec := range records {
		for c, col := range columns {
			v, ok := rec[col]
			if !ok || v == nil {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return err
			}
			if col == schema.ColPredicted {
				if err := f.SetCellBool(sheetName, cell, rec.IsPredicted()); err != nil {
					return err
				}
				continue
			}
			text := strings.ReplaceAll(fmt.Sprintf("%v", v), ",", "")
			if err := f.SetCellStr(sheetName, cell, text); err != nil {
				return err
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving snapshot %s: %w", path, err)
	}
	return nil
}

// ReadSnapshot loads records back from an xlsx file. Values come back as
// strings (plus the boolean flag); the dataset package coerces them.
func ReadSnapshot(path string) ([]models.MetricRecord, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening snapshot %s: %w", path, err)
	}
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	header := rows[0]
	records := make([]models.MetricRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rec := models.MetricRecord{}
		for i, col := range header {
			if i >= len(row) || row[i] == "" {
				continue
			}
			if col == schema.ColPredicted {
				rec[col] = parseBoolCell(row[i])
				continue
			}
			rec[col] = row[i]
		}
		if len(rec) > 0 {
			records = append(records, rec)
		}
	}
	return records, nil
}

func parseBoolCell(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "t", "1", "yes", "y":
		return true
	}
	return false
}

// collectColumns produces a stable header: Year first, isPredicted last,
// everything else alphabetical in between.
func collectColumns(records []models.MetricRecord) []string {
	seen := map[string]bool{}
	var middle []string
	hasYear, hasFlag := false, false
	for _, rec := range records {
		for col := range rec {
			if seen[col] {
				continue
			}
			seen[col] = true
			switch col {
			case schema.ColYear:
				hasYear = true
			case schema.ColPredicted:
				hasFlag = true
			case schema.ColCoordinates:
				// Derived field, not part of the mirror.
			default:
				middle = append(middle, col)
			}
		}
	}
	sort.Strings(middle)

	var columns []string
	if hasYear {
		columns = append(columns, schema.ColYear)
	}
	columns = append(columns, middle...)
	if hasFlag {
		columns = append(columns, schema.ColPredicted)
	}
	return columns
}
