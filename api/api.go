package api

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/inventario-app/inventario-api/models"
)

// HealthCheckHandler reports process liveness for the platform probes
func HealthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	b, _ := json.Marshal(models.HealthCheckResponse{
		Alive: true,
	})
	_, _ = io.WriteString(w, string(b))
}
