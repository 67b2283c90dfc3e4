package reports_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/inventario-app/inventario-api/api/handlers/reports"
	"github.com/inventario-app/inventario-api/databases/mocks"
	"github.com/inventario-app/inventario-api/models"
)

func storedEquipments() []models.Equipment {
	ts := primitive.NewDateTimeFromTime(time.Now())
	return []models.Equipment{
		{ID: primitive.NewObjectID(), Details: models.EquipmentDetails{Type: "Notebook", Name: "Dell Latitude", Barcode: "12345", SectorName: "TI", LastCheckedTimestamp: &ts}},
		{ID: primitive.NewObjectID(), Details: models.EquipmentDetails{Type: "Monitor", Name: "LG Monitor", Barcode: "67890"}},
	}
}

func TestReport_SummaryHandler(t *testing.T) {
	req, err := http.NewRequest("GET", "/api/v1/reports/summary", nil)
	if err != nil {
		t.Fatal(err)
	}

	equipmentDatabase := &mocks.EquipmentDatabase{}
	equipmentDatabase.On("Find", mock.Anything, mock.Anything).Return(storedEquipments(), nil)
	sectorDatabase := &mocks.SectorDatabase{}
	sectorDatabase.On("Count", mock.Anything, mock.Anything).Return(int64(2), nil)

	h := reports.Report{EDB: equipmentDatabase, SDB: sectorDatabase}

	rr := httptest.NewRecorder()
	http.HandlerFunc(h.SummaryHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var summary models.Summary
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &summary))
	assert.Equal(t, 2, summary.Total)
	assert.Equal(t, 1, summary.TotalChecked)
	assert.Equal(t, 1, summary.TotalUnchecked)
	assert.Equal(t, 1, summary.CheckedToday)
	assert.Equal(t, 2, summary.TotalSectors)
}

func TestReport_BySectorHandler(t *testing.T) {
	req, err := http.NewRequest("GET", "/api/v1/reports/by-sector", nil)
	if err != nil {
		t.Fatal(err)
	}

	equipmentDatabase := &mocks.EquipmentDatabase{}
	equipmentDatabase.On("Find", mock.Anything, mock.Anything).Return(storedEquipments(), nil)

	h := reports.Report{EDB: equipmentDatabase}

	rr := httptest.NewRecorder()
	http.HandlerFunc(h.BySectorHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var breakdown []models.SectorBreakdown
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &breakdown))
	assert.Len(t, breakdown, 2)
	assert.Contains(t, rr.Body.String(), reports.UnassignedSector)
}

func TestReport_ExportHandlerCSV(t *testing.T) {
	req, err := http.NewRequest("GET", "/api/v1/equipments/export?format=csv", nil)
	if err != nil {
		t.Fatal(err)
	}

	equipmentDatabase := &mocks.EquipmentDatabase{}
	equipmentDatabase.On("Find", mock.Anything, mock.Anything).Return(storedEquipments(), nil)

	h := reports.Report{EDB: equipmentDatabase}

	rr := httptest.NewRecorder()
	http.HandlerFunc(h.ExportHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "text/csv", rr.Header().Get("Content-Type"))

	lines := strings.Split(strings.TrimSpace(rr.Body.String()), "\n")
	if assert.Len(t, lines, 3) {
		assert.Equal(t, "type,name,model,serialNumber,description,barcode,sectorName,lastCheckedTimestamp", lines[0])
		assert.Contains(t, lines[1], "Dell Latitude")
		assert.Contains(t, lines[2], "LG Monitor")
	}
}

func TestReport_ExportHandlerXLSX(t *testing.T) {
	req, err := http.NewRequest("GET", "/api/v1/equipments/export?format=xlsx", nil)
	if err != nil {
		t.Fatal(err)
	}

	equipmentDatabase := &mocks.EquipmentDatabase{}
	equipmentDatabase.On("Find", mock.Anything, mock.Anything).Return(storedEquipments(), nil)

	h := reports.Report{EDB: equipmentDatabase}

	rr := httptest.NewRecorder()
	http.HandlerFunc(h.ExportHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", rr.Header().Get("Content-Type"))
	assert.NotZero(t, rr.Body.Len())
}

func TestReport_ExportHandlerBadFormat(t *testing.T) {
	req, err := http.NewRequest("GET", "/api/v1/equipments/export?format=pdf", nil)
	if err != nil {
		t.Fatal(err)
	}

	equipmentDatabase := &mocks.EquipmentDatabase{}
	equipmentDatabase.On("Find", mock.Anything, mock.Anything).Return([]models.Equipment{}, nil)

	h := reports.Report{EDB: equipmentDatabase}

	rr := httptest.NewRecorder()
	http.HandlerFunc(h.ExportHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), models.CodeValidationFailed)
}
