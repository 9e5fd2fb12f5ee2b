package routes

import (
	"database/sql"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/c14220110/hms-backend/config"
	accountControllers "github.com/c14220110/hms-backend/internal/accounts/controllers"
	accountRoutes "github.com/c14220110/hms-backend/internal/accounts/routes"
	accountServices "github.com/c14220110/hms-backend/internal/accounts/services"
	cashierControllers "github.com/c14220110/hms-backend/internal/cashier/controllers"
	cashierRoutes "github.com/c14220110/hms-backend/internal/cashier/routes"
	cashierServices "github.com/c14220110/hms-backend/internal/cashier/services"
	"github.com/c14220110/hms-backend/internal/common/middlewares"
	"github.com/c14220110/hms-backend/internal/common/response"
	doctorControllers "github.com/c14220110/hms-backend/internal/doctors/controllers"
	doctorRoutes "github.com/c14220110/hms-backend/internal/doctors/routes"
	doctorServices "github.com/c14220110/hms-backend/internal/doctors/services"
	inpatientControllers "github.com/c14220110/hms-backend/internal/inpatient/controllers"
	inpatientRoutes "github.com/c14220110/hms-backend/internal/inpatient/routes"
	inpatientServices "github.com/c14220110/hms-backend/internal/inpatient/services"
	labControllers "github.com/c14220110/hms-backend/internal/labs/controllers"
	labRoutes "github.com/c14220110/hms-backend/internal/labs/routes"
	labServices "github.com/c14220110/hms-backend/internal/labs/services"
	managerControllers "github.com/c14220110/hms-backend/internal/manager/controllers"
	managerRoutes "github.com/c14220110/hms-backend/internal/manager/routes"
	managerServices "github.com/c14220110/hms-backend/internal/manager/services"
	nurseControllers "github.com/c14220110/hms-backend/internal/nurses/controllers"
	nurseRoutes "github.com/c14220110/hms-backend/internal/nurses/routes"
	nurseServices "github.com/c14220110/hms-backend/internal/nurses/services"
	patientControllers "github.com/c14220110/hms-backend/internal/patients/controllers"
	patientRoutes "github.com/c14220110/hms-backend/internal/patients/routes"
	patientServices "github.com/c14220110/hms-backend/internal/patients/services"
	pharmacyControllers "github.com/c14220110/hms-backend/internal/pharmacy/controllers"
	pharmacyRoutes "github.com/c14220110/hms-backend/internal/pharmacy/routes"
	pharmacyServices "github.com/c14220110/hms-backend/internal/pharmacy/services"
	"github.com/c14220110/hms-backend/pkg/events"
	"github.com/c14220110/hms-backend/pkg/paystack"
	"github.com/c14220110/hms-backend/ws"
)

// Deps are the shared collaborators every department is built from.
type Deps struct {
	Config  *config.Config
	Events  events.Publisher
	Hub     *ws.Hub
	Gateway cashierServices.Gateway
	Log     zerolog.Logger
}

// Services exposes what the process needs beyond HTTP handlers.
type Services struct {
	Pharmacy *pharmacyServices.PharmacyService
	Settings *managerServices.SettingsService
}

// Init builds every department and registers its routes under /api.
func Init(e *echo.Echo, db *sql.DB, deps Deps) *Services {
	cfg := deps.Config
	pub := deps.Events
	if pub == nil {
		pub = events.Nop{}
	}
	gateway := deps.Gateway
	if gateway == nil {
		gateway = paystack.NewClient(cfg.PaystackBaseURL, cfg.PaystackSecretKey)
	}

	accountService := accountServices.NewAccountService(db, cfg.JWTSecret, cfg.JWTTTL, deps.Log)
	patientService := patientServices.NewPatientService(db, pub, deps.Log)
	triageService := nurseServices.NewTriageService(db, pub, deps.Log)
	doctorService := doctorServices.NewDoctorService(db, pub, deps.Log)
	labService := labServices.NewLabService(db, pub, deps.Log)
	pharmacyService := pharmacyServices.NewPharmacyService(db, pub, deps.Log)
	cashierService := cashierServices.NewCashierService(db, gateway, cfg.PaystackPublicKey, pub, deps.Log)
	wardService := inpatientServices.NewWardService(db, pub, deps.Log)
	managerService := managerServices.NewManagerService(db, deps.Log)
	settingsService := managerServices.NewSettingsService(db, deps.Log)

	e.Use(middlewares.Maintenance(settingsService, cfg.JWTSecret, deps.Log))

	e.GET("/health", func(c echo.Context) error {
		if err := db.PingContext(c.Request().Context()); err != nil {
			return response.Error(c, http.StatusServiceUnavailable, "database unreachable")
		}
		return response.JSON(c, http.StatusOK, "ok", nil)
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	if deps.Hub != nil {
		e.GET("/ws", ws.ServeWS(deps.Hub, cfg.JWTSecret))
	}

	api := e.Group("/api")
	secret := cfg.JWTSecret
	accountRoutes.RegisterAccountRoutes(api, accountControllers.NewAccountController(accountService), secret)
	patientRoutes.RegisterPatientRoutes(api, patientControllers.NewPatientController(patientService), secret)
	nurseRoutes.RegisterNurseRoutes(api, nurseControllers.NewNurseController(triageService), secret)
	doctorRoutes.RegisterDoctorRoutes(api, doctorControllers.NewDoctorController(doctorService), secret)
	labRoutes.RegisterLabRoutes(api, labControllers.NewLabController(labService), secret)
	pharmacyRoutes.RegisterPharmacyRoutes(api, pharmacyControllers.NewPharmacyController(pharmacyService), secret)
	cashierRoutes.RegisterCashierRoutes(api, cashierControllers.NewCashierController(cashierService), secret)
	inpatientRoutes.RegisterInpatientRoutes(api, inpatientControllers.NewWardController(wardService), secret)
	managerRoutes.RegisterManagerRoutes(api, managerControllers.NewManagerController(managerService, settingsService), secret)

	return &Services{Pharmacy: pharmacyService, Settings: settingsService}
}
