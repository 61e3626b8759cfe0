package buildingapp

import (
	"net/http"

	"github.com/jcpaschoal/propman/app/sdk/auth"
	"github.com/jcpaschoal/propman/app/sdk/mid"
	"github.com/jcpaschoal/propman/business/domain/apartmentbus"
	"github.com/jcpaschoal/propman/business/domain/buildingbus"
	"github.com/jcpaschoal/propman/business/sdk/sqldb"
	"github.com/jcpaschoal/propman/business/sdk/web"
	"github.com/jcpaschoal/propman/business/types/resource"
	"github.com/jcpaschoal/propman/foundation/logger"
)

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Log          *logger.Logger
	Auth         *auth.Auth
	DB           sqldb.Beginner
	BuildingBus  *buildingbus.Core
	ApartmentBus *apartmentbus.Core
}

// Routes adds specific routes for this group.
func Routes(app *web.App, cfg Config) {
	const group = "api"

	authen := mid.Authenticate(cfg.Auth)
	ruleBuilding := mid.Authorize(cfg.Auth, resource.Building)
	ruleApartment := mid.Authorize(cfg.Auth, resource.Apartment)
	transaction := mid.BeginCommitRollback(cfg.Log, cfg.DB)

	api := newApp(cfg.BuildingBus, cfg.ApartmentBus)

	app.HandlerFunc(http.MethodGet, group, "/buildings", api.query, authen, ruleBuilding)
	app.HandlerFunc(http.MethodPost, group, "/buildings", api.create, authen, ruleBuilding)
	app.HandlerFunc(http.MethodGet, group, "/buildings/{building_id}", api.queryByID, authen, ruleBuilding)
	app.HandlerFunc(http.MethodPut, group, "/buildings/{building_id}", api.update, authen, ruleBuilding)
	app.HandlerFunc(http.MethodDelete, group, "/buildings/{building_id}", api.delete, authen, ruleBuilding)

	app.HandlerFunc(http.MethodGet, group, "/buildings/{building_id}/apartments", api.queryApartments, authen, ruleApartment)
	app.HandlerFunc(http.MethodPost, group, "/buildings/{building_id}/apartments", api.createApartment, authen, ruleApartment)
	app.HandlerFunc(http.MethodPut, group, "/buildings/{building_id}/apartments/{apartment_id}", api.updateApartment, authen, ruleApartment)
	app.HandlerFunc(http.MethodDelete, group, "/buildings/{building_id}/apartments/{apartment_id}", api.deleteApartment, authen, ruleApartment)
	app.HandlerFunc(http.MethodPost, group, "/buildings/{building_id}/floor-plan", api.floorPlan, authen, ruleApartment, transaction)
}
