package importer

import (
	"encoding/json"
	"io"
	"net/http"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/inventario-app/inventario-api/api"
	"github.com/inventario-app/inventario-api/config"
	"github.com/inventario-app/inventario-api/databases"
	"github.com/inventario-app/inventario-api/models"
	"github.com/inventario-app/inventario-api/snapshot"
)

// 5 MiB is far beyond any real scanner export
const maxImportSize = 5 << 20

// Importer exported for testing purposes
type Importer struct {
	EDB      databases.EquipmentDatabase
	SDB      databases.SectorDatabase
	Snapshot *snapshot.Cache
}

// ImportHandler bulk imports equipments from a CSV body. Valid rows commit in
// a single transaction; invalid rows are reported per row and never block the
// rest of the file. Admin only.
func (h Importer) ImportHandler(w http.ResponseWriter, r *http.Request) {
	if _, err := api.RequireAdmin(r); err != nil {
		config.ErrorCode("you do not have permission to import equipments", models.CodePermissionDenied, http.StatusForbidden, w)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxImportSize))
	if err != nil {
		config.ErrorStatus("failed to read request body", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	sectors, err := h.SDB.Find(ctx, bson.D{})
	if err != nil {
		config.ErrorStatus("failed to load sectors", http.StatusInternalServerError, w, err)
		return
	}

	existing, err := h.EDB.Find(ctx, bson.D{})
	if err != nil {
		config.ErrorStatus("failed to load existing equipments", http.StatusInternalServerError, w, err)
		return
	}
	existingBarcodes := make(map[string]bool, len(existing))
	for _, eq := range existing {
		existingBarcodes[eq.Details.Barcode] = true
	}

	staged, result, err := Parse(string(body), sectors, existingBarcodes)
	if err != nil {
		config.ErrorCode(err.Error(), models.CodeInvalidHeader, http.StatusBadRequest, w)
		return
	}

	if len(staged) > 0 {
		if err := h.EDB.InsertManyAtomic(ctx, staged); err != nil {
			config.ErrorStatus("failed to commit the import", http.StatusInternalServerError, w, err)
			return
		}
		h.Snapshot.Invalidate()
	}

	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(result)
}
