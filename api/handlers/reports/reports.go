// Package reports computes conference progress aggregations over the
// equipment set. All aggregation is pure over an equipment slice; the
// handlers only load the slice and serialize the result.
package reports

import (
	"sort"
	"time"

	"github.com/inventario-app/inventario-api/models"
)

// Fallback labels for equipments without a sector or type
const (
	UnassignedSector = "unassigned"
	UnspecifiedType  = "unspecified"
)

// IsCheckedToday reports whether the equipment's last check falls on the
// current calendar day in the given location. Day boundaries, not a rolling
// 24h window.
func IsCheckedToday(equipment models.Equipment, now time.Time, loc *time.Location) bool {
	if equipment.Details.LastCheckedTimestamp == nil {
		return false
	}
	checked := equipment.Details.LastCheckedTimestamp.Time().In(loc)
	now = now.In(loc)
	return checked.Year() == now.Year() && checked.YearDay() == now.YearDay()
}

// Summarize computes the dashboard totals in a single pass. Total always
// equals TotalChecked + TotalUnchecked.
func Summarize(equipments []models.Equipment, now time.Time, loc *time.Location) models.Summary {
	summary := models.Summary{Total: len(equipments)}
	for _, eq := range equipments {
		if eq.Details.LastCheckedTimestamp == nil {
			summary.TotalUnchecked++
			continue
		}
		summary.TotalChecked++
		if IsCheckedToday(eq, now, loc) {
			summary.CheckedToday++
		}
	}
	return summary
}

// BySector buckets equipments per sector name and orders the buckets by
// descending total. Ties keep first-seen order. Equipments without a sector
// land in the unassigned bucket.
func BySector(equipments []models.Equipment) []models.SectorBreakdown {
	index := make(map[string]int)
	var breakdown []models.SectorBreakdown

	for _, eq := range equipments {
		name := eq.Details.SectorName
		if name == "" {
			name = UnassignedSector
		}
		i, ok := index[name]
		if !ok {
			i = len(breakdown)
			index[name] = i
			breakdown = append(breakdown, models.SectorBreakdown{SectorName: name})
		}
		if eq.Details.LastCheckedTimestamp != nil {
			breakdown[i].Checked++
		} else {
			breakdown[i].Unchecked++
		}
	}

	sort.SliceStable(breakdown, func(i, j int) bool {
		ti := breakdown[i].Checked + breakdown[i].Unchecked
		tj := breakdown[j].Checked + breakdown[j].Unchecked
		return ti > tj
	})
	return breakdown
}

// GroupByType counts equipments per type, ordered alphabetically. Equipments
// without a type land in the unspecified bucket.
func GroupByType(equipments []models.Equipment) []models.TypeCount {
	counts := make(map[string]int)
	for _, eq := range equipments {
		name := eq.Details.Type
		if name == "" {
			name = UnspecifiedType
		}
		counts[name]++
	}

	out := make([]models.TypeCount, 0, len(counts))
	for name, count := range counts {
		out = append(out, models.TypeCount{Type: name, Count: count})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Type < out[j].Type })
	return out
}

// Unchecked returns the equipments never checked in this conference,
// preserving store order
func Unchecked(equipments []models.Equipment) []models.Equipment {
	out := []models.Equipment{}
	for _, eq := range equipments {
		if eq.Details.LastCheckedTimestamp == nil {
			out = append(out, eq)
		}
	}
	return out
}
