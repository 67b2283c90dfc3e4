// Package docs Inventario API.
//
// Documentation of the Inventario equipment registry API.
//
//     Schemes: https
//     BasePath: /
//     Version: 1.0.0
//
//     Consumes:
//     - application/json
//
//     Produces:
//     - application/json
//
//     Security:
//     - basic
//
//    SecurityDefinitions:
//    basic:
//      type: basic
//
// swagger:meta
package docs

import (
	"github.com/inventario-app/inventario-api/api/handlers"
	"github.com/inventario-app/inventario-api/models"
)

// swagger:route GET /health health healthEndpointID
// Lists the healthchex of the web service api.
// responses:
//   200: healthResponse

// Shows the current health of the api. true means it is alive, false means it is not.
// swagger:response healthResponse
type healthResponseWrapper struct {
	// in:body
	Body models.HealthCheckResponse
}

// swagger:route GET /api/v1/equipments equipments equipmentsEndpointID
// Lists all equipments in the registry, paginated.
// responses:
//   200: equipmentsResponse

// All equipments in the registry.
// swagger:response equipmentsResponse
type equipmentsResponseWrapper struct {
	// in:body
	Body []models.Equipment
}

// swagger:route POST /api/v1/conference/check conference conferenceCheckEndpointID
// Matches a scanned barcode against the equipment snapshot and records the check.
// responses:
//   200: conferenceCheckResponse

// The outcome of one barcode scan.
// swagger:response conferenceCheckResponse
type conferenceCheckResponseWrapper struct {
	// in:body
	Body handlers.CheckOutcomeResponse
}

// swagger:route GET /api/v1/reports/summary reports reportsSummaryEndpointID
// Returns the conference progress totals.
// responses:
//   200: summaryResponse

// The dashboard totals.
// swagger:response summaryResponse
type summaryResponseWrapper struct {
	// in:body
	Body models.Summary
}
