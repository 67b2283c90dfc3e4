package importer_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shaj13/go-guardian/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/inventario-app/inventario-api/api"
	"github.com/inventario-app/inventario-api/api/handlers/importer"
	"github.com/inventario-app/inventario-api/databases/mocks"
	"github.com/inventario-app/inventario-api/models"
	"github.com/inventario-app/inventario-api/snapshot"
)

func adminRequest(r *http.Request) *http.Request {
	return api.WithUser(r, auth.NewDefaultUser("admin@inventario.app", "5fc51f58c72ff10004dca382", []string{models.RoleAdmin}, nil))
}

func emptySnapshot(t *testing.T) *snapshot.Cache {
	t.Helper()
	equipmentDatabase := &mocks.EquipmentDatabase{}
	equipmentDatabase.On("Find", mock.Anything, mock.Anything).Return([]models.Equipment{}, nil)

	cache := snapshot.New(equipmentDatabase, time.Hour)
	if err := cache.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(cache.Stop)
	return cache
}

func TestImporter_ImportHandlerPermissionDenied(t *testing.T) {
	req, err := http.NewRequest("POST", "/api/v1/equipments/import", strings.NewReader("type,name,barcode\n"))
	if err != nil {
		t.Fatal(err)
	}
	req = api.WithUser(req, auth.NewDefaultUser("viewer@inventario.app", "5fc51f58c72ff10004dca383", []string{models.RoleViewer}, nil))

	h := importer.Importer{EDB: &mocks.EquipmentDatabase{}, SDB: &mocks.SectorDatabase{}}

	rr := httptest.NewRecorder()
	http.HandlerFunc(h.ImportHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Contains(t, rr.Body.String(), models.CodePermissionDenied)
}

func TestImporter_ImportHandlerInvalidHeader(t *testing.T) {
	req, err := http.NewRequest("POST", "/api/v1/equipments/import", strings.NewReader("foo,bar\nNotebook,Dell"))
	if err != nil {
		t.Fatal(err)
	}
	req = adminRequest(req)

	equipmentDatabase := &mocks.EquipmentDatabase{}
	equipmentDatabase.On("Find", mock.Anything, mock.Anything).Return([]models.Equipment{}, nil)
	sectorDatabase := &mocks.SectorDatabase{}
	sectorDatabase.On("Find", mock.Anything, mock.Anything).Return([]models.Sector{}, nil)

	h := importer.Importer{EDB: equipmentDatabase, SDB: sectorDatabase}

	rr := httptest.NewRecorder()
	http.HandlerFunc(h.ImportHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), models.CodeInvalidHeader)
	equipmentDatabase.AssertNotCalled(t, "InsertManyAtomic", mock.Anything, mock.Anything)
}

func TestImporter_ImportHandlerCommitsValidRows(t *testing.T) {
	body := "type,name,barcode\nNotebook,Dell Latitude,12345\nMonitor,LG Monitor,12345"
	req, err := http.NewRequest("POST", "/api/v1/equipments/import", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	req = adminRequest(req)

	equipmentDatabase := &mocks.EquipmentDatabase{}
	equipmentDatabase.On("Find", mock.Anything, mock.Anything).Return([]models.Equipment{}, nil)
	equipmentDatabase.On("InsertManyAtomic", mock.Anything, mock.Anything).Return(nil)
	sectorDatabase := &mocks.SectorDatabase{}
	sectorDatabase.On("Find", mock.Anything, mock.Anything).Return([]models.Sector{}, nil)

	h := importer.Importer{EDB: equipmentDatabase, SDB: sectorDatabase, Snapshot: emptySnapshot(t)}

	rr := httptest.NewRecorder()
	http.HandlerFunc(h.ImportHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var result models.ImportResult
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &result))
	assert.Equal(t, 1, result.Imported)
	assert.Equal(t, 1, result.Duplicates)
	if assert.Len(t, result.Rows, 1) {
		assert.Equal(t, 3, result.Rows[0].Row)
	}
	equipmentDatabase.AssertCalled(t, "InsertManyAtomic", mock.Anything, mock.Anything)
}

func TestImporter_ImportHandlerSkipsStoreWriteWhenNothingStaged(t *testing.T) {
	body := "type,name,barcode\nNotebook,ab,12345"
	req, err := http.NewRequest("POST", "/api/v1/equipments/import", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	req = adminRequest(req)

	stored := models.Equipment{ID: primitive.NewObjectID(), Details: models.EquipmentDetails{Barcode: "99999"}}
	equipmentDatabase := &mocks.EquipmentDatabase{}
	equipmentDatabase.On("Find", mock.Anything, mock.Anything).Return([]models.Equipment{stored}, nil)
	sectorDatabase := &mocks.SectorDatabase{}
	sectorDatabase.On("Find", mock.Anything, mock.Anything).Return([]models.Sector{}, nil)

	h := importer.Importer{EDB: equipmentDatabase, SDB: sectorDatabase}

	rr := httptest.NewRecorder()
	http.HandlerFunc(h.ImportHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var result models.ImportResult
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &result))
	assert.Equal(t, 0, result.Imported)
	equipmentDatabase.AssertNotCalled(t, "InsertManyAtomic", mock.Anything, mock.Anything)
}
