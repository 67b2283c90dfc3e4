package models

// ImportRowMessage is a per-row error or warning produced by the CSV bulk
// import. Row numbers are 1-indexed over the file, so the first data row is 2.
type ImportRowMessage struct {
	Row     int    `json:"row"`
	Level   string `json:"level"`
	Message string `json:"message"`
}

// Import row message levels
const (
	ImportLevelError   = "error"
	ImportLevelWarning = "warning"
)

// ImportResult is the outcome of a CSV bulk import: how many rows were
// committed, how many were rejected as duplicates, and the ordered list of
// per-row messages
type ImportResult struct {
	Imported   int                `json:"imported"`
	Duplicates int                `json:"duplicates"`
	Rows       []ImportRowMessage `json:"rows"`
}
