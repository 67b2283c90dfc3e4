package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/inventario-app/inventario-api/api"
	"github.com/inventario-app/inventario-api/config"
	"github.com/inventario-app/inventario-api/databases"
	"github.com/inventario-app/inventario-api/models"
	"github.com/inventario-app/inventario-api/snapshot"
)

// Conference exported for testing purposes
type Conference struct {
	DB       databases.ConferenceDatabase
	Snapshot *snapshot.Cache
}

// CheckOutcomeResponse is the result of one barcode scan
type CheckOutcomeResponse struct {
	Outcome   string            `json:"outcome"`
	Equipment *models.Equipment `json:"equipment,omitempty"`
	Barcode   string            `json:"barcode"`
}

// CheckBarcodeHandler matches a scanned barcode against the current equipment
// snapshot and records the check. A failed audit write reports failed, not
// checked; the equipment timestamp only moves inside the same transaction as
// the audit record. Admin only.
func (c Conference) CheckBarcodeHandler(w http.ResponseWriter, r *http.Request) {
	user, err := api.RequireAdmin(r)
	if err != nil {
		config.ErrorCode("you do not have permission to run a conference", models.CodePermissionDenied, http.StatusForbidden, w)
		return
	}

	var body struct {
		Barcode string `json:"barcode"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	body.Barcode = strings.TrimSpace(body.Barcode)
	if body.Barcode == "" {
		config.ErrorCode("barcode must not be empty", models.CodeValidationFailed, http.StatusBadRequest, w)
		return
	}

	equipment, ok := c.Snapshot.MatchBarcode(body.Barcode)
	if !ok {
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(CheckOutcomeResponse{Outcome: "not_found", Barcode: body.Barcode})
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	checkedAt := primitive.NewDateTimeFromTime(time.Now())
	details := models.ConferenceDetails{
		EquipmentID:    equipment.ID.Hex(),
		Barcode:        equipment.Details.Barcode,
		EquipmentName:  equipment.Details.Name,
		EquipmentType:  equipment.Details.Type,
		SectorID:       equipment.Details.SectorID,
		SectorName:     equipment.Details.SectorName,
		CheckedByID:    user.ID(),
		CheckedByEmail: user.UserName(),
		CheckedAt:      checkedAt,
	}
	if err := c.DB.RecordCheck(ctx, equipment.ID, details); err != nil {
		zap.S().With(err).Error("failed to record the check")
		config.ErrorCode("failed to record the check", models.CodeStoreUnavailable, http.StatusInternalServerError, w)
		return
	}
	c.Snapshot.Invalidate()

	equipment.Details.LastCheckedTimestamp = &checkedAt
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(CheckOutcomeResponse{
		Outcome:   "checked",
		Equipment: &equipment,
		Barcode:   body.Barcode,
	})
}

// ConferenceHandler returns the audit trail, newest first, paginated
func (c Conference) ConferenceHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	limit64 := getLimit(r)
	page64 := getPage(r)

	filter := bson.M{}
	if sectorID := strings.TrimSpace(r.URL.Query().Get("sector_id")); sectorID != "" {
		filter["conference.sectorId"] = sectorID
	}

	dbResp, err := c.DB.Find(ctx, filter, options.Find().
		SetLimit(limit64).
		SetSkip(page64*limit64).
		SetSort(bson.M{"conference.checkedAt": -1}))
	if err != nil {
		config.ErrorStatus("failed to get conference records", http.StatusNotFound, w, err)
		return
	}
	if len(dbResp) == 0 {
		dbResp = []models.ConferenceRecord{}
	}
	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}
