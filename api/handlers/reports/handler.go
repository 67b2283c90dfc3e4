package reports

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/xuri/excelize/v2"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	"github.com/inventario-app/inventario-api/api"
	"github.com/inventario-app/inventario-api/config"
	"github.com/inventario-app/inventario-api/databases"
	"github.com/inventario-app/inventario-api/models"
)

// Report exported for testing purposes
type Report struct {
	EDB databases.EquipmentDatabase
	SDB databases.SectorDatabase
}

// SummaryHandler returns the dashboard totals
func (h Report) SummaryHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	equipments, err := h.EDB.Find(ctx, bson.D{})
	if err != nil {
		config.ErrorStatus("failed to load equipments", http.StatusInternalServerError, w, err)
		return
	}
	sectorCount, err := h.SDB.Count(ctx, bson.D{})
	if err != nil {
		config.ErrorStatus("failed to count sectors", http.StatusInternalServerError, w, err)
		return
	}

	summary := Summarize(equipments, time.Now(), time.Local)
	summary.TotalSectors = int(sectorCount)

	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(summary)
}

// BySectorHandler returns per-sector checked/unchecked counts
func (h Report) BySectorHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	equipments, err := h.EDB.Find(ctx, bson.D{})
	if err != nil {
		config.ErrorStatus("failed to load equipments", http.StatusInternalServerError, w, err)
		return
	}

	breakdown := BySector(equipments)
	if breakdown == nil {
		breakdown = []models.SectorBreakdown{}
	}
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(breakdown)
}

// ByTypeHandler returns per-type equipment counts
func (h Report) ByTypeHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	equipments, err := h.EDB.Find(ctx, bson.D{})
	if err != nil {
		config.ErrorStatus("failed to load equipments", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(GroupByType(equipments))
}

// UncheckedHandler returns every equipment never checked in this conference
func (h Report) UncheckedHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	equipments, err := h.EDB.Find(ctx, bson.D{})
	if err != nil {
		config.ErrorStatus("failed to load equipments", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(Unchecked(equipments))
}

var exportHeader = []string{"type", "name", "model", "serialNumber", "description", "barcode", "sectorName", "lastCheckedTimestamp"}

// ExportHandler streams the equipment registry as csv (default) or xlsx,
// optionally narrowed to one sector or to never-checked equipments
func (h Report) ExportHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	filter := bson.M{}
	if sectorID := r.URL.Query().Get("sector_id"); sectorID != "" {
		filter["equipment.sectorId"] = sectorID
	}
	if r.URL.Query().Get("only_unchecked") == "true" {
		filter["equipment.lastCheckedTimestamp"] = bson.M{"$exists": false}
	}

	equipments, err := h.EDB.Find(ctx, filter)
	if err != nil {
		config.ErrorStatus("failed to load equipments", http.StatusInternalServerError, w, err)
		return
	}

	switch r.URL.Query().Get("format") {
	case "xlsx":
		h.exportXLSX(w, equipments)
	case "", "csv":
		h.exportCSV(w, equipments)
	default:
		config.ErrorCode("format must be csv or xlsx", models.CodeValidationFailed, http.StatusBadRequest, w)
	}
}

func exportRow(eq models.Equipment) []string {
	checked := ""
	if eq.Details.LastCheckedTimestamp != nil {
		checked = eq.Details.LastCheckedTimestamp.Time().UTC().Format(time.RFC3339)
	}
	return []string{
		eq.Details.Type,
		eq.Details.Name,
		eq.Details.Model,
		eq.Details.SerialNumber,
		eq.Details.Description,
		eq.Details.Barcode,
		eq.Details.SectorName,
		checked,
	}
}

func (h Report) exportCSV(w http.ResponseWriter, equipments []models.Equipment) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="equipments.csv"`)
	w.WriteHeader(http.StatusOK)

	cw := csv.NewWriter(w)
	_ = cw.Write(exportHeader)
	for _, eq := range equipments {
		_ = cw.Write(exportRow(eq))
	}
	cw.Flush()
}

func (h Report) exportXLSX(w http.ResponseWriter, equipments []models.Equipment) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	for col, name := range exportHeader {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		_ = f.SetCellValue(sheet, cell, name)
	}
	for row, eq := range equipments {
		for col, value := range exportRow(eq) {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			_ = f.SetCellValue(sheet, cell, value)
		}
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "equipments.xlsx"))
	w.WriteHeader(http.StatusOK)
	if err := f.Write(w); err != nil {
		// headers are already out, nothing left to do but log
		zap.S().With(err).Error("failed to write xlsx export")
	}
}
