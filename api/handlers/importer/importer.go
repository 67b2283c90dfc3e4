// Package importer implements the CSV bulk import for the equipment registry.
// Parsing and row validation are pure so they can be tested without a store;
// the handler stages all valid rows and commits them in one transaction.
package importer

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/inventario-app/inventario-api/models"
)

// ErrInvalidHeader aborts the whole import before any row is read
var ErrInvalidHeader = errors.New("header must contain type, name and barcode columns")

var requiredColumns = []string{"type", "name", "barcode"}

var recognizedColumns = map[string]bool{
	"type":         true,
	"name":         true,
	"model":        true,
	"serialnumber": true,
	"description":  true,
	"barcode":      true,
	"sectorname":   true,
}

// splitLine splits a CSV line on commas and strips surrounding double quotes
// from each cell. Embedded commas inside quoted cells are not supported, which
// matches the files the handheld scanners produce.
func splitLine(line string) []string {
	cells := strings.Split(line, ",")
	out := make([]string, len(cells))
	for i, cell := range cells {
		cell = strings.TrimSpace(cell)
		cell = strings.TrimPrefix(cell, `"`)
		cell = strings.TrimSuffix(cell, `"`)
		out[i] = strings.TrimSpace(cell)
	}
	return out
}

// ParseHeader maps recognized column names to their positions,
// case-insensitive. Unrecognized columns are ignored.
func ParseHeader(line string) (map[string]int, error) {
	columns := make(map[string]int)
	for i, cell := range splitLine(line) {
		name := strings.ToLower(cell)
		if recognizedColumns[name] {
			columns[name] = i
		}
	}
	for _, required := range requiredColumns {
		if _, ok := columns[required]; !ok {
			return nil, ErrInvalidHeader
		}
	}
	return columns, nil
}

func cellAt(cells []string, columns map[string]int, name string) string {
	i, ok := columns[name]
	if !ok || i >= len(cells) {
		return ""
	}
	return cells[i]
}

// Parse validates every data row and stages the valid ones. existingBarcodes
// holds the barcodes already in the store; sectors is the current sector set
// for the case-insensitive sectorName match. Row numbers in the result are
// 1-indexed over the file, header included.
func Parse(data string, sectors []models.Sector, existingBarcodes map[string]bool) ([]models.Equipment, models.ImportResult, error) {
	lines := strings.Split(strings.ReplaceAll(data, "\r\n", "\n"), "\n")
	if len(lines) == 0 || strings.TrimSpace(lines[0]) == "" {
		return nil, models.ImportResult{}, ErrInvalidHeader
	}

	columns, err := ParseHeader(lines[0])
	if err != nil {
		return nil, models.ImportResult{}, err
	}

	sectorsByName := make(map[string]models.Sector, len(sectors))
	for _, s := range sectors {
		sectorsByName[strings.ToLower(s.Details.Name)] = s
	}

	seen := make(map[string]bool, len(existingBarcodes))
	for barcode := range existingBarcodes {
		seen[barcode] = true
	}

	var staged []models.Equipment
	result := models.ImportResult{Rows: []models.ImportRowMessage{}}
	now := primitive.NewDateTimeFromTime(time.Now())

	for i := 1; i < len(lines); i++ {
		rowNum := i + 1
		if strings.TrimSpace(lines[i]) == "" {
			continue
		}
		cells := splitLine(lines[i])

		details := models.EquipmentDetails{
			Type:         cellAt(cells, columns, "type"),
			Name:         cellAt(cells, columns, "name"),
			Model:        cellAt(cells, columns, "model"),
			SerialNumber: cellAt(cells, columns, "serialnumber"),
			Description:  cellAt(cells, columns, "description"),
			Barcode:      cellAt(cells, columns, "barcode"),
			CreatedAt:    now,
		}

		if msg, ok := validateRow(details); !ok {
			result.Rows = append(result.Rows, models.ImportRowMessage{
				Row:     rowNum,
				Level:   models.ImportLevelError,
				Message: msg,
			})
			continue
		}
		if seen[details.Barcode] {
			result.Duplicates++
			result.Rows = append(result.Rows, models.ImportRowMessage{
				Row:     rowNum,
				Level:   models.ImportLevelError,
				Message: fmt.Sprintf("duplicate barcode %s", details.Barcode),
			})
			continue
		}

		if sectorName := cellAt(cells, columns, "sectorname"); sectorName != "" {
			if sector, ok := sectorsByName[strings.ToLower(sectorName)]; ok {
				details.SectorID = sector.ID.Hex()
				details.SectorName = sector.Details.Name
			} else {
				result.Rows = append(result.Rows, models.ImportRowMessage{
					Row:     rowNum,
					Level:   models.ImportLevelWarning,
					Message: fmt.Sprintf("unknown sector %s, imported without a sector", sectorName),
				})
			}
		}

		seen[details.Barcode] = true
		staged = append(staged, models.Equipment{
			ID:      primitive.NewObjectID(),
			Details: details,
		})
		result.Imported++
	}

	return staged, result, nil
}

func validateRow(details models.EquipmentDetails) (string, bool) {
	if details.Type == "" {
		return "type is required", false
	}
	if len(details.Name) < 3 {
		return "name must be at least 3 characters", false
	}
	if len(details.Barcode) < 5 {
		return "barcode must be at least 5 characters", false
	}
	return "", true
}
