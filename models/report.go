package models

// Summary aggregates conference progress over the current equipment set.
// CheckedToday counts items whose last check falls on the current calendar
// day (local timezone); TotalUnchecked counts items never checked.
type Summary struct {
	Total          int `json:"total"`
	CheckedToday   int `json:"checkedToday"`
	TotalChecked   int `json:"totalChecked"`
	TotalUnchecked int `json:"totalUnchecked"`
	TotalSectors   int `json:"totalSectors,omitempty"`
}

// SectorBreakdown holds per-sector checked/unchecked counts for the
// dashboard chart. Entries are ordered by descending total.
type SectorBreakdown struct {
	SectorName string `json:"sectorName"`
	Checked    int    `json:"checked"`
	Unchecked  int    `json:"unchecked"`
}

// TypeCount holds the per-type equipment count, ordered alphabetically
type TypeCount struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}
