package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/inventario-app/inventario-api/api/handlers"
	"github.com/inventario-app/inventario-api/databases/mocks"
	"github.com/inventario-app/inventario-api/models"
	"github.com/inventario-app/inventario-api/snapshot"
)

func newTestSnapshot(t *testing.T, equipments []models.Equipment) *snapshot.Cache {
	t.Helper()
	equipmentDatabase := &mocks.EquipmentDatabase{}
	equipmentDatabase.On("Find", mock.Anything, mock.Anything).Return(equipments, nil)

	cache := snapshot.New(equipmentDatabase, time.Hour)
	if err := cache.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(cache.Stop)
	return cache
}

func TestConference_CheckBarcodeHandlerPermissionDenied(t *testing.T) {
	req, err := http.NewRequest("POST", "/api/v1/conference/check", strings.NewReader(`{"barcode":"12345"}`))
	if err != nil {
		t.Fatal(err)
	}
	req = viewerRequest(req)

	c := handlers.Conference{DB: &mocks.ConferenceDatabase{}}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(c.CheckBarcodeHandler)

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Contains(t, rr.Body.String(), models.CodePermissionDenied)
}

func TestConference_CheckBarcodeHandlerEmptyBarcode(t *testing.T) {
	req, err := http.NewRequest("POST", "/api/v1/conference/check", strings.NewReader(`{"barcode":"   "}`))
	if err != nil {
		t.Fatal(err)
	}
	req = adminRequest(req)

	c := handlers.Conference{DB: &mocks.ConferenceDatabase{}, Snapshot: newTestSnapshot(t, nil)}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(c.CheckBarcodeHandler)

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), models.CodeValidationFailed)
}

func TestConference_CheckBarcodeHandlerNotFound(t *testing.T) {
	req, err := http.NewRequest("POST", "/api/v1/conference/check", strings.NewReader(`{"barcode":"99999"}`))
	if err != nil {
		t.Fatal(err)
	}
	req = adminRequest(req)

	c := handlers.Conference{DB: &mocks.ConferenceDatabase{}, Snapshot: newTestSnapshot(t, nil)}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(c.CheckBarcodeHandler)

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var out handlers.CheckOutcomeResponse
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	assert.Equal(t, "not_found", out.Outcome)
	assert.Nil(t, out.Equipment)
}

func TestConference_CheckBarcodeHandlerChecked(t *testing.T) {
	equipment := models.Equipment{
		ID: primitive.NewObjectID(),
		Details: models.EquipmentDetails{
			Type:    "Notebook",
			Name:    "Dell Latitude",
			Barcode: "12345",
		},
	}

	req, err := http.NewRequest("POST", "/api/v1/conference/check", strings.NewReader(`{"barcode":" 12345 "}`))
	if err != nil {
		t.Fatal(err)
	}
	req = adminRequest(req)

	conferenceDatabase := &mocks.ConferenceDatabase{}
	conferenceDatabase.On("RecordCheck", mock.Anything, equipment.ID, mock.Anything).Return(nil)

	c := handlers.Conference{DB: conferenceDatabase, Snapshot: newTestSnapshot(t, []models.Equipment{equipment})}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(c.CheckBarcodeHandler)

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var out handlers.CheckOutcomeResponse
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	assert.Equal(t, "checked", out.Outcome)
	if assert.NotNil(t, out.Equipment) {
		assert.Equal(t, "12345", out.Equipment.Details.Barcode)
		assert.NotNil(t, out.Equipment.Details.LastCheckedTimestamp)
	}
	conferenceDatabase.AssertCalled(t, "RecordCheck", mock.Anything, equipment.ID, mock.Anything)
}

func TestConference_CheckBarcodeHandlerSecondScanAppendsAnotherRecord(t *testing.T) {
	equipment := models.Equipment{
		ID: primitive.NewObjectID(),
		Details: models.EquipmentDetails{
			Type:    "Notebook",
			Name:    "Dell Latitude",
			Barcode: "12345",
		},
	}

	var recorded []models.ConferenceDetails
	conferenceDatabase := &mocks.ConferenceDatabase{}
	conferenceDatabase.On("RecordCheck", mock.Anything, equipment.ID, mock.Anything).Run(func(args mock.Arguments) {
		recorded = append(recorded, args.Get(2).(models.ConferenceDetails))
	}).Return(nil)

	c := handlers.Conference{DB: conferenceDatabase, Snapshot: newTestSnapshot(t, []models.Equipment{equipment})}
	handler := http.HandlerFunc(c.CheckBarcodeHandler)

	scan := func() handlers.CheckOutcomeResponse {
		req, err := http.NewRequest("POST", "/api/v1/conference/check", strings.NewReader(`{"barcode":"12345"}`))
		if err != nil {
			t.Fatal(err)
		}
		req = adminRequest(req)

		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusOK, rr.Code)

		var out handlers.CheckOutcomeResponse
		assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
		return out
	}

	first := scan()
	second := scan()

	// every scan appends an audit record, even for an equipment already
	// checked today
	conferenceDatabase.AssertNumberOfCalls(t, "RecordCheck", 2)
	if assert.Len(t, recorded, 2) {
		assert.False(t, recorded[1].CheckedAt.Time().Before(recorded[0].CheckedAt.Time()))
	}

	assert.Equal(t, "checked", first.Outcome)
	assert.Equal(t, "checked", second.Outcome)
	if assert.NotNil(t, second.Equipment) && assert.NotNil(t, second.Equipment.Details.LastCheckedTimestamp) {
		assert.Equal(t, recorded[1].CheckedAt, *second.Equipment.Details.LastCheckedTimestamp)
	}
}

func TestConference_CheckBarcodeHandlerRecordFailed(t *testing.T) {
	equipment := models.Equipment{
		ID: primitive.NewObjectID(),
		Details: models.EquipmentDetails{
			Type:    "Notebook",
			Name:    "Dell Latitude",
			Barcode: "12345",
		},
	}

	req, err := http.NewRequest("POST", "/api/v1/conference/check", strings.NewReader(`{"barcode":"12345"}`))
	if err != nil {
		t.Fatal(err)
	}
	req = adminRequest(req)

	conferenceDatabase := &mocks.ConferenceDatabase{}
	conferenceDatabase.On("RecordCheck", mock.Anything, equipment.ID, mock.Anything).Return(assert.AnError)

	c := handlers.Conference{DB: conferenceDatabase, Snapshot: newTestSnapshot(t, []models.Equipment{equipment})}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(c.CheckBarcodeHandler)

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Contains(t, rr.Body.String(), "failed to record the check")
}
