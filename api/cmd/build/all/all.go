// Package all binds all the routes into the specified app.
package all

import (
	"github.com/jcpaschoal/propman/app/domain/authapp"
	"github.com/jcpaschoal/propman/app/domain/buildingapp"
	"github.com/jcpaschoal/propman/app/domain/checkapp"
	"github.com/jcpaschoal/propman/app/domain/invitationapp"
	"github.com/jcpaschoal/propman/app/domain/issueapp"
	"github.com/jcpaschoal/propman/app/domain/tenancyapp"
	"github.com/jcpaschoal/propman/app/sdk/mux"
	"github.com/jcpaschoal/propman/business/sdk/sqldb"
	"github.com/jcpaschoal/propman/business/sdk/web"
)

// Routes constructs the add value which provides the implementation of
// of RouteAdder for specifying what routes to bind to this instance.
func Routes() add {
	return add{}
}

type add struct{}

// Add implements the RouterAdder interface.
func (add) Add(app *web.App, cfg mux.Config) {
	bus := cfg.BusConfig
	beginner := sqldb.NewBeginner(cfg.DB)

	checkapp.Routes(app, checkapp.Config{
		Build: cfg.Build,
		Log:   cfg.Log,
		DB:    cfg.DB,
	})

	authapp.Routes(app, authapp.Config{
		Log:           cfg.Log,
		Auth:          cfg.AuthConfig.Auth,
		ActiveKID:     cfg.AuthConfig.ActiveKID,
		DB:            beginner,
		UserBus:       bus.UserBus,
		InvitationBus: bus.InvitationBus,
	})

	buildingapp.Routes(app, buildingapp.Config{
		Log:          cfg.Log,
		Auth:         cfg.AuthConfig.Auth,
		DB:           beginner,
		BuildingBus:  bus.BuildingBus,
		ApartmentBus: bus.ApartmentBus,
	})

	invitationapp.Routes(app, invitationapp.Config{
		Auth:          cfg.AuthConfig.Auth,
		InvitationBus: bus.InvitationBus,
	})

	tenancyapp.Routes(app, tenancyapp.Config{
		Log:        cfg.Log,
		Auth:       cfg.AuthConfig.Auth,
		DB:         beginner,
		UserBus:    bus.UserBus,
		TenancyBus: bus.TenancyBus,
	})

	issueapp.Routes(app, issueapp.Config{
		Auth:     cfg.AuthConfig.Auth,
		IssueBus: bus.IssueBus,
	})
}
