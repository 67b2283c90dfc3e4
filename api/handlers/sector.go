package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
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
)

// Sector exported for testing purposes
type Sector struct {
	DB  databases.SectorDatabase
	EDB databases.EquipmentDatabase
}

// SectorHandler returns all sectors
func (s Sector) SectorHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	dbResp, err := s.DB.Find(ctx, bson.D{}, options.Find().
		SetSort(bson.M{"sector.name": 1}))
	if err != nil {
		config.ErrorStatus("failed to get sectors", http.StatusNotFound, w, err)
		return
	}
	if len(dbResp) == 0 {
		dbResp = []models.Sector{}
	}
	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// SectorByIDHandler returns a sector by ID
func (s Sector) SectorByIDHandler(w http.ResponseWriter, r *http.Request) {
	sectorID := mux.Vars(r)["sector_id"]

	sID, err := primitive.ObjectIDFromHex(sectorID)
	if err != nil {
		config.ErrorCode("sector not found", models.CodeNotFound, http.StatusNotFound, w)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	dbResp, err := s.DB.FindOne(ctx, bson.M{"_id": sID})
	if err != nil {
		if err == mongo.ErrNoDocuments {
			config.ErrorCode("sector not found", models.CodeNotFound, http.StatusNotFound, w)
			return
		}
		config.ErrorStatus("failed to get sector by ID", http.StatusNotFound, w, err)
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

// CreateSectorHandler creates a sector. Admin only.
func (s Sector) CreateSectorHandler(w http.ResponseWriter, r *http.Request) {
	if _, err := api.RequireAdmin(r); err != nil {
		config.ErrorCode("you do not have permission to create sectors", models.CodePermissionDenied, http.StatusForbidden, w)
		return
	}

	var details models.SectorDetails
	if err := json.NewDecoder(r.Body).Decode(&details); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	details.Name = strings.TrimSpace(details.Name)
	if len(details.Name) < 2 {
		config.ErrorCode("name must be at least 2 characters", models.CodeValidationFailed, http.StatusBadRequest, w)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	count, err := s.DB.Count(ctx, bson.M{"sector.name": details.Name})
	if err != nil {
		config.ErrorStatus("failed to check sector name uniqueness", http.StatusInternalServerError, w, err)
		return
	}
	if count > 0 {
		config.ErrorCode(fmt.Sprintf("sector %s already exists", details.Name), models.CodeValidationFailed, http.StatusConflict, w)
		return
	}

	now := primitive.NewDateTimeFromTime(time.Now())
	details.CreatedAt = now
	details.UpdatedAt = now

	sector := models.Sector{
		ID:      primitive.NewObjectID(),
		Details: details,
	}
	if _, err := s.DB.InsertOne(ctx, sector); err != nil {
		config.ErrorStatus("failed to create sector", http.StatusInternalServerError, w, err)
		return
	}

	b, err := json.Marshal(sector)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	w.Write(b)
}

// UpdateSectorHandler renames a sector. Equipments keep the denormalized old
// name until the nightly repair job or a manual repair re-syncs them.
func (s Sector) UpdateSectorHandler(w http.ResponseWriter, r *http.Request) {
	if _, err := api.RequireAdmin(r); err != nil {
		config.ErrorCode("you do not have permission to update sectors", models.CodePermissionDenied, http.StatusForbidden, w)
		return
	}

	sectorID := mux.Vars(r)["sector_id"]
	sID, err := primitive.ObjectIDFromHex(sectorID)
	if err != nil {
		config.ErrorCode("sector not found", models.CodeNotFound, http.StatusNotFound, w)
		return
	}

	var details models.SectorDetails
	if err := json.NewDecoder(r.Body).Decode(&details); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	details.Name = strings.TrimSpace(details.Name)
	if len(details.Name) < 2 {
		config.ErrorCode("name must be at least 2 characters", models.CodeValidationFailed, http.StatusBadRequest, w)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	count, err := s.DB.Count(ctx, bson.M{
		"sector.name": details.Name,
		"_id":         bson.M{"$ne": sID},
	})
	if err != nil {
		config.ErrorStatus("failed to check sector name uniqueness", http.StatusInternalServerError, w, err)
		return
	}
	if count > 0 {
		config.ErrorCode(fmt.Sprintf("sector %s already exists", details.Name), models.CodeValidationFailed, http.StatusConflict, w)
		return
	}

	n, err := s.DB.UpdateOne(ctx, bson.M{"_id": sID}, bson.M{"$set": bson.M{
		"sector.name":      details.Name,
		"sector.updatedAt": primitive.NewDateTimeFromTime(time.Now()),
	}})
	if err != nil {
		config.ErrorStatus("failed to update sector", http.StatusInternalServerError, w, err)
		return
	}
	if n == 0 {
		config.ErrorCode("sector not found", models.CodeNotFound, http.StatusNotFound, w)
		return
	}

	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{"success": true})
}

// DeleteSectorHandler deletes a sector unless equipments still reference it
func (s Sector) DeleteSectorHandler(w http.ResponseWriter, r *http.Request) {
	if _, err := api.RequireAdmin(r); err != nil {
		config.ErrorCode("you do not have permission to delete sectors", models.CodePermissionDenied, http.StatusForbidden, w)
		return
	}

	sectorID := mux.Vars(r)["sector_id"]
	sID, err := primitive.ObjectIDFromHex(sectorID)
	if err != nil {
		config.ErrorCode("sector not found", models.CodeNotFound, http.StatusNotFound, w)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	inUse, err := s.EDB.Count(ctx, bson.M{"equipment.sectorId": sID.Hex()})
	if err != nil {
		config.ErrorStatus("failed to count equipments in sector", http.StatusInternalServerError, w, err)
		return
	}
	if inUse > 0 {
		config.ErrorCode(fmt.Sprintf("sector still has %d equipments assigned", inUse), models.CodeSectorInUse, http.StatusConflict, w)
		return
	}

	n, err := s.DB.DeleteOne(ctx, bson.M{"_id": sID})
	if err != nil {
		config.ErrorStatus("failed to delete sector", http.StatusInternalServerError, w, err)
		return
	}
	if n == 0 {
		config.ErrorCode("sector not found", models.CodeNotFound, http.StatusNotFound, w)
		return
	}

	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{"success": true})
}
