package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/inventario-app/inventario-api/api"
	"github.com/inventario-app/inventario-api/api/handlers/importer"
	"github.com/inventario-app/inventario-api/api/handlers/reports"
	"github.com/inventario-app/inventario-api/api/scheduler"
	"github.com/inventario-app/inventario-api/config"
	"github.com/inventario-app/inventario-api/databases"
	"github.com/inventario-app/inventario-api/snapshot"
)

const defaultLimit = 10

// App stores the router and db connection, so it can be reused
type App struct {
	Router    *mux.Router
	Config    config.Config
	Snapshot  *snapshot.Cache
	Scheduler *scheduler.Scheduler
	dbHelper  databases.DatabaseHelper
}

// New creates a new mux router and all the routes
func (a *App) New() *mux.Router {
	// setup go-guardian for middleware
	m := api.MiddlewareDB{DB: databases.NewUserDatabase(a.dbHelper)}
	m.SetupGoGuardian()

	r := mux.NewRouter()

	stream := NewStream(a.Snapshot)
	if a.Snapshot != nil {
		a.Snapshot.OnUpdate(stream.Broadcast)
	}

	u := User{DB: databases.NewUserDatabase(a.dbHelper)}
	e := Equipment{DB: databases.NewEquipmentDatabase(a.dbHelper), SDB: databases.NewSectorDatabase(a.dbHelper), Snapshot: a.Snapshot}
	s := Sector{DB: databases.NewSectorDatabase(a.dbHelper), EDB: databases.NewEquipmentDatabase(a.dbHelper)}
	c := Conference{DB: databases.NewConferenceDatabase(a.dbHelper), Snapshot: a.Snapshot}
	imp := importer.Importer{EDB: databases.NewEquipmentDatabase(a.dbHelper), SDB: databases.NewSectorDatabase(a.dbHelper), Snapshot: a.Snapshot}
	rep := reports.Report{EDB: databases.NewEquipmentDatabase(a.dbHelper), SDB: databases.NewSectorDatabase(a.dbHelper)}
	adm := Admin{UDB: databases.NewUserDatabase(a.dbHelper), EDB: databases.NewEquipmentDatabase(a.dbHelper), SDB: databases.NewSectorDatabase(a.dbHelper), JWTSecret: a.Config.JWTSecret}

	// healthchex
	r.HandleFunc("/health", api.HealthCheckHandler)

	apiCreate := r.PathPrefix("/api/v1").Subrouter()

	apiCreate.Handle("/auth/token", http.HandlerFunc(m.CreateToken)).Methods("POST")
	apiCreate.Handle("/auth/logout", api.Middleware(http.HandlerFunc(api.RevokeToken))).Methods("DELETE")

	apiCreate.Handle("/user/create-user", http.HandlerFunc(u.UserCreateHandler)).Methods("POST")
	apiCreate.Handle("/user/me", api.Middleware(http.HandlerFunc(u.UserMeHandler))).Methods("GET")

	apiCreate.Handle("/equipments", api.Middleware(http.HandlerFunc(e.EquipmentHandler))).Methods("GET")
	apiCreate.Handle("/equipments/search", api.Middleware(http.HandlerFunc(e.EquipmentSearchHandler))).Methods("GET")
	apiCreate.Handle("/equipments/sector/{sector_id}", api.Middleware(http.HandlerFunc(e.EquipmentsBySectorIDHandler))).Methods("GET")
	apiCreate.Handle("/equipments/delete", api.Middleware(http.HandlerFunc(e.DeleteManyEquipmentsHandler))).Methods("POST")
	apiCreate.Handle("/equipments/clear-conference", api.Middleware(http.HandlerFunc(e.ClearConferenceStatusHandler))).Methods("POST")
	// imports and exports walk the whole collection, give them a hard cap
	longOps := api.TimeoutMiddleware(60 * time.Second)
	apiCreate.Handle("/equipments/import", longOps(api.Middleware(http.HandlerFunc(imp.ImportHandler)))).Methods("POST")
	apiCreate.Handle("/equipments/export", longOps(api.Middleware(http.HandlerFunc(rep.ExportHandler)))).Methods("GET")
	apiCreate.Handle("/equipment", api.Middleware(http.HandlerFunc(e.CreateEquipmentHandler))).Methods("POST")
	apiCreate.Handle("/equipment/{equipment_id}", api.Middleware(http.HandlerFunc(e.EquipmentByIDHandler))).Methods("GET")
	apiCreate.Handle("/equipment/{equipment_id}", api.Middleware(http.HandlerFunc(e.UpdateEquipmentHandler))).Methods("PUT")
	apiCreate.Handle("/equipment/{equipment_id}", api.Middleware(http.HandlerFunc(e.DeleteEquipmentHandler))).Methods("DELETE")

	apiCreate.Handle("/sectors", api.Middleware(http.HandlerFunc(s.SectorHandler))).Methods("GET")
	apiCreate.Handle("/sector", api.Middleware(http.HandlerFunc(s.CreateSectorHandler))).Methods("POST")
	apiCreate.Handle("/sector/{sector_id}", api.Middleware(http.HandlerFunc(s.SectorByIDHandler))).Methods("GET")
	apiCreate.Handle("/sector/{sector_id}", api.Middleware(http.HandlerFunc(s.UpdateSectorHandler))).Methods("PUT")
	apiCreate.Handle("/sector/{sector_id}", api.Middleware(http.HandlerFunc(s.DeleteSectorHandler))).Methods("DELETE")

	apiCreate.Handle("/conference/check", api.Middleware(http.HandlerFunc(c.CheckBarcodeHandler))).Methods("POST")
	apiCreate.Handle("/conferences", api.Middleware(http.HandlerFunc(c.ConferenceHandler))).Methods("GET")

	apiCreate.Handle("/reports/summary", api.Middleware(http.HandlerFunc(rep.SummaryHandler))).Methods("GET")
	apiCreate.Handle("/reports/by-sector", api.Middleware(http.HandlerFunc(rep.BySectorHandler))).Methods("GET")
	apiCreate.Handle("/reports/by-type", api.Middleware(http.HandlerFunc(rep.ByTypeHandler))).Methods("GET")
	apiCreate.Handle("/reports/unchecked", api.Middleware(http.HandlerFunc(rep.UncheckedHandler))).Methods("GET")

	apiCreate.Handle("/admin/login", http.HandlerFunc(adm.AdminLoginHandler)).Methods("POST")
	apiCreate.Handle("/admin/repair-sector-names", http.HandlerFunc(adm.RepairSectorNamesHandler)).Methods("POST")

	apiCreate.Handle("/stream", api.Middleware(http.HandlerFunc(stream.SubscribeHandler))).Methods("GET")

	return r
}

// Initialize is invoked by main to connect with the database and create a router
func (a *App) Initialize() error {

	client, err := databases.NewClient(&a.Config)
	if err != nil {
		// if we fail to create a new database client, then kill the pod
		zap.S().With(err).Error("failed to create new client")
		return err
	}

	a.dbHelper = databases.NewDatabase(&a.Config, client)
	err = client.Connect()
	if err != nil {
		// if we fail to connect to the database, then kill the pod
		zap.S().With(err).Error("failed to connect to database")
		return err
	}
	zap.S().Info("inventario-api has connected to the database")

	edb := databases.NewEquipmentDatabase(a.dbHelper)
	a.Snapshot = snapshot.New(edb, 30*time.Second)

	// initialize api router
	a.initializeRoutes()

	ctx, cancel := api.WithQueryTimeout(nil)
	defer cancel()
	if err := a.Snapshot.Start(ctx); err != nil {
		zap.S().With(err).Error("failed to load the initial equipment snapshot")
		return err
	}

	a.Scheduler = scheduler.NewScheduler(
		edb,
		databases.NewSectorDatabase(a.dbHelper),
		databases.NewSchedulerLockDatabase(a.dbHelper),
		&a.Config,
	)
	a.Scheduler.Start()

	return nil

}

func (a *App) initializeRoutes() {
	a.Router = a.New()
}

func getPage(r *http.Request) int64 {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 0 {
		return 0
	}
	return int64(page)
}

func getLimit(r *http.Request) int64 {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		zap.S().Warnf("limit not set, using default of %v", defaultLimit)
		return defaultLimit
	}
	return int64(limit)
}
