package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/inventario-app/inventario-api/api"
	"github.com/inventario-app/inventario-api/config"
	"github.com/inventario-app/inventario-api/databases"
	"github.com/inventario-app/inventario-api/models"
	"github.com/inventario-app/inventario-api/snapshot"
)

// Equipment exported for testing purposes
type Equipment struct {
	DB       databases.EquipmentDatabase
	SDB      databases.SectorDatabase
	Snapshot *snapshot.Cache
}

// EquipmentHandler returns all equipments, paginated
func (e Equipment) EquipmentHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	limit64 := getLimit(r)
	page64 := getPage(r)

	dbResp, err := e.DB.Find(ctx, bson.D{}, options.Find().
		SetLimit(limit64).
		SetSkip(page64*limit64).
		SetSort(bson.M{"equipment.createdAt": -1}))
	if err != nil {
		config.ErrorStatus("failed to get equipments", http.StatusNotFound, w, err)
		return
	}
	// Because the frontend requires that the data elements inside models.Equipments exist, if
	// len == 0 then we will just return an empty data object
	if len(dbResp) == 0 {
		dbResp = []models.Equipment{}
	}
	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// EquipmentByIDHandler returns an equipment by ID
func (e Equipment) EquipmentByIDHandler(w http.ResponseWriter, r *http.Request) {
	equipmentID := mux.Vars(r)["equipment_id"]

	eID, err := primitive.ObjectIDFromHex(equipmentID)
	if err != nil {
		config.ErrorCode("equipment not found", models.CodeNotFound, http.StatusNotFound, w)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	dbResp, err := e.DB.FindOne(ctx, bson.M{"_id": eID})
	if err != nil {
		if err == mongo.ErrNoDocuments {
			config.ErrorCode("equipment not found", models.CodeNotFound, http.StatusNotFound, w)
			return
		}
		config.ErrorStatus("failed to get equipment by ID", http.StatusNotFound, w, err)
		return
	}

	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// EquipmentsBySectorIDHandler returns all equipments assigned to the given sector
func (e Equipment) EquipmentsBySectorIDHandler(w http.ResponseWriter, r *http.Request) {
	sectorID := mux.Vars(r)["sector_id"]

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	limit64 := getLimit(r)
	page64 := getPage(r)

	dbResp, err := e.DB.Find(ctx, bson.M{"equipment.sectorId": sectorID}, options.Find().
		SetLimit(limit64).
		SetSkip(page64*limit64))
	if err != nil {
		config.ErrorStatus("failed to get equipments by sector", http.StatusNotFound, w, err)
		return
	}
	if len(dbResp) == 0 {
		dbResp = []models.Equipment{}
	}
	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// EquipmentSearchHandler matches the query against name, barcode and
// description, case-insensitive
func (e Equipment) EquipmentSearchHandler(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		config.ErrorCode("query parameter q is required", models.CodeValidationFailed, http.StatusBadRequest, w)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	regex := primitive.Regex{Pattern: regexp.QuoteMeta(query), Options: "i"}
	dbResp, err := e.DB.Find(ctx, bson.M{
		"$or": []bson.M{
			{"equipment.name": regex},
			{"equipment.barcode": regex},
			{"equipment.description": regex},
		},
	}, options.Find().SetLimit(getLimit(r)))
	if err != nil {
		config.ErrorStatus("failed to search equipments", http.StatusNotFound, w, err)
		return
	}
	if len(dbResp) == 0 {
		dbResp = []models.Equipment{}
	}
	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// CreateEquipmentHandler creates a single equipment. Admin only.
func (e Equipment) CreateEquipmentHandler(w http.ResponseWriter, r *http.Request) {
	if _, err := api.RequireAdmin(r); err != nil {
		config.ErrorCode("you do not have permission to create equipments", models.CodePermissionDenied, http.StatusForbidden, w)
		return
	}

	var details models.EquipmentDetails
	if err := json.NewDecoder(r.Body).Decode(&details); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	normalizeEquipmentDetails(&details)

	if msg, ok := validateEquipmentDetails(details); !ok {
		config.ErrorCode(msg, models.CodeValidationFailed, http.StatusBadRequest, w)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	count, err := e.DB.Count(ctx, bson.M{"equipment.barcode": details.Barcode})
	if err != nil {
		config.ErrorStatus("failed to check barcode uniqueness", http.StatusInternalServerError, w, err)
		return
	}
	if count > 0 {
		config.ErrorCode(fmt.Sprintf("barcode %s is already registered", details.Barcode), models.CodeDuplicateBarcode, http.StatusConflict, w)
		return
	}

	if err := e.resolveSector(ctx, &details); err != nil {
		config.ErrorStatus("failed to resolve sector", http.StatusInternalServerError, w, err)
		return
	}

	details.CreatedAt = primitive.NewDateTimeFromTime(time.Now())
	details.LastCheckedTimestamp = nil

	equipment := models.Equipment{
		ID:      primitive.NewObjectID(),
		Details: details,
	}
	if _, err := e.DB.InsertOne(ctx, equipment); err != nil {
		config.ErrorStatus("failed to create equipment", http.StatusInternalServerError, w, err)
		return
	}
	e.Snapshot.Invalidate()

	b, err := json.Marshal(equipment)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	w.Write(b)
}

// UpdateEquipmentHandler updates an equipment in place. The conference
// timestamp is never touched here, only the clear and check flows move it.
func (e Equipment) UpdateEquipmentHandler(w http.ResponseWriter, r *http.Request) {
	if _, err := api.RequireAdmin(r); err != nil {
		config.ErrorCode("you do not have permission to update equipments", models.CodePermissionDenied, http.StatusForbidden, w)
		return
	}

	equipmentID := mux.Vars(r)["equipment_id"]
	eID, err := primitive.ObjectIDFromHex(equipmentID)
	if err != nil {
		config.ErrorCode("equipment not found", models.CodeNotFound, http.StatusNotFound, w)
		return
	}

	var details models.EquipmentDetails
	if err := json.NewDecoder(r.Body).Decode(&details); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	normalizeEquipmentDetails(&details)

	if msg, ok := validateEquipmentDetails(details); !ok {
		config.ErrorCode(msg, models.CodeValidationFailed, http.StatusBadRequest, w)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	// the equipment itself may keep its barcode, only other docs collide
	count, err := e.DB.Count(ctx, bson.M{
		"equipment.barcode": details.Barcode,
		"_id":               bson.M{"$ne": eID},
	})
	if err != nil {
		config.ErrorStatus("failed to check barcode uniqueness", http.StatusInternalServerError, w, err)
		return
	}
	if count > 0 {
		config.ErrorCode(fmt.Sprintf("barcode %s is already registered", details.Barcode), models.CodeDuplicateBarcode, http.StatusConflict, w)
		return
	}

	if err := e.resolveSector(ctx, &details); err != nil {
		config.ErrorStatus("failed to resolve sector", http.StatusInternalServerError, w, err)
		return
	}

	set := bson.M{
		"equipment.type":         details.Type,
		"equipment.name":         details.Name,
		"equipment.model":        details.Model,
		"equipment.serialNumber": details.SerialNumber,
		"equipment.description":  details.Description,
		"equipment.barcode":      details.Barcode,
	}
	update := bson.M{"$set": set}
	if details.SectorID == "" {
		update["$unset"] = bson.M{
			"equipment.sectorId":   "",
			"equipment.sectorName": "",
		}
	} else {
		set["equipment.sectorId"] = details.SectorID
		set["equipment.sectorName"] = details.SectorName
	}

	n, err := e.DB.UpdateOne(ctx, bson.M{"_id": eID}, update)
	if err != nil {
		config.ErrorStatus("failed to update equipment", http.StatusInternalServerError, w, err)
		return
	}
	if n == 0 {
		config.ErrorCode("equipment not found", models.CodeNotFound, http.StatusNotFound, w)
		return
	}
	e.Snapshot.Invalidate()

	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{"success": true})
}

// DeleteEquipmentHandler deletes one equipment by ID. Admin only.
func (e Equipment) DeleteEquipmentHandler(w http.ResponseWriter, r *http.Request) {
	if _, err := api.RequireAdmin(r); err != nil {
		config.ErrorCode("you do not have permission to delete equipments", models.CodePermissionDenied, http.StatusForbidden, w)
		return
	}

	equipmentID := mux.Vars(r)["equipment_id"]
	eID, err := primitive.ObjectIDFromHex(equipmentID)
	if err != nil {
		config.ErrorCode("equipment not found", models.CodeNotFound, http.StatusNotFound, w)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	n, err := e.DB.DeleteOne(ctx, bson.M{"_id": eID})
	if err != nil {
		config.ErrorStatus("failed to delete equipment", http.StatusInternalServerError, w, err)
		return
	}
	if n == 0 {
		config.ErrorCode("equipment not found", models.CodeNotFound, http.StatusNotFound, w)
		return
	}
	e.Snapshot.Invalidate()

	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{"success": true})
}

// DeleteManyEquipmentsHandler deletes the given set of equipments. Admin only.
func (e Equipment) DeleteManyEquipmentsHandler(w http.ResponseWriter, r *http.Request) {
	if _, err := api.RequireAdmin(r); err != nil {
		config.ErrorCode("you do not have permission to delete equipments", models.CodePermissionDenied, http.StatusForbidden, w)
		return
	}

	var body struct {
		IDs []string `json:"ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if len(body.IDs) == 0 {
		config.ErrorCode("ids must not be empty", models.CodeValidationFailed, http.StatusBadRequest, w)
		return
	}

	ids := make([]primitive.ObjectID, 0, len(body.IDs))
	for _, raw := range body.IDs {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			config.ErrorCode(fmt.Sprintf("invalid equipment id: %s", raw), models.CodeValidationFailed, http.StatusBadRequest, w)
			return
		}
		ids = append(ids, id)
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	n, err := e.DB.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		config.ErrorStatus("failed to delete equipments", http.StatusInternalServerError, w, err)
		return
	}
	e.Snapshot.Invalidate()

	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{"deleted": n})
}

// ClearConferenceStatusHandler resets the conference state by removing the
// last checked timestamp, either for every equipment or for one sector.
// Admin only.
func (e Equipment) ClearConferenceStatusHandler(w http.ResponseWriter, r *http.Request) {
	if _, err := api.RequireAdmin(r); err != nil {
		config.ErrorCode("you do not have permission to clear the conference", models.CodePermissionDenied, http.StatusForbidden, w)
		return
	}

	var body struct {
		Scope    string `json:"scope"`
		SectorID string `json:"sectorId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	filter := bson.M{"equipment.lastCheckedTimestamp": bson.M{"$exists": true}}
	switch body.Scope {
	case "all":
	case "sector":
		if strings.TrimSpace(body.SectorID) == "" {
			config.ErrorCode("sectorId is required for sector scope", models.CodeValidationFailed, http.StatusBadRequest, w)
			return
		}
		filter["equipment.sectorId"] = body.SectorID
	default:
		config.ErrorCode("scope must be all or sector", models.CodeValidationFailed, http.StatusBadRequest, w)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	n, err := e.DB.UpdateMany(ctx, filter, bson.M{
		"$unset": bson.M{"equipment.lastCheckedTimestamp": ""},
	})
	if err != nil {
		config.ErrorStatus("failed to clear conference status", http.StatusInternalServerError, w, err)
		return
	}
	e.Snapshot.Invalidate()

	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{"cleared": n})
}

// resolveSector validates the assigned sector and refreshes the denormalized
// name. An unknown or malformed sector id clears the assignment rather than
// failing the write.
func (e Equipment) resolveSector(ctx context.Context, details *models.EquipmentDetails) error {
	if details.SectorID == "" {
		details.SectorName = ""
		return nil
	}
	sID, err := primitive.ObjectIDFromHex(details.SectorID)
	if err != nil {
		details.SectorID = ""
		details.SectorName = ""
		return nil
	}
	sector, err := e.SDB.FindOne(ctx, bson.M{"_id": sID})
	if err != nil {
		if err == mongo.ErrNoDocuments {
			details.SectorID = ""
			details.SectorName = ""
			return nil
		}
		return err
	}
	details.SectorName = sector.Details.Name
	return nil
}

func normalizeEquipmentDetails(details *models.EquipmentDetails) {
	details.Type = strings.TrimSpace(details.Type)
	details.Name = strings.TrimSpace(details.Name)
	details.Model = strings.TrimSpace(details.Model)
	details.SerialNumber = strings.TrimSpace(details.SerialNumber)
	details.Description = strings.TrimSpace(details.Description)
	details.Barcode = strings.TrimSpace(details.Barcode)
	details.SectorID = strings.TrimSpace(details.SectorID)
}

func validateEquipmentDetails(details models.EquipmentDetails) (string, bool) {
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
