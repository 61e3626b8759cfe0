package tenancyapp

import (
	"net/http"

	"github.com/jcpaschoal/propman/app/sdk/auth"
	"github.com/jcpaschoal/propman/app/sdk/mid"
	"github.com/jcpaschoal/propman/business/domain/tenancybus"
	"github.com/jcpaschoal/propman/business/domain/userbus"
	"github.com/jcpaschoal/propman/business/sdk/sqldb"
	"github.com/jcpaschoal/propman/business/sdk/web"
	"github.com/jcpaschoal/propman/business/types/resource"
	"github.com/jcpaschoal/propman/foundation/logger"
)

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Log        *logger.Logger
	Auth       *auth.Auth
	DB         sqldb.Beginner
	UserBus    *userbus.Core
	TenancyBus *tenancybus.Core
}

// Routes adds specific routes for this group.
func Routes(app *web.App, cfg Config) {
	const group = "api"

	authen := mid.Authenticate(cfg.Auth)
	ruleTenancy := mid.Authorize(cfg.Auth, resource.Tenancy)
	ruleHome := mid.Authorize(cfg.Auth, resource.Home)
	transaction := mid.BeginCommitRollback(cfg.Log, cfg.DB)

	api := newApp(cfg.UserBus, cfg.TenancyBus)

	app.HandlerFunc(http.MethodGet, group, "/tenants", api.query, authen, ruleTenancy)
	app.HandlerFunc(http.MethodPost, group, "/tenants", api.assign, authen, ruleTenancy)
	app.HandlerFunc(http.MethodGet, group, "/tenants/me", api.home, authen, ruleHome)
	app.HandlerFunc(http.MethodPut, group, "/tenants/{tenancy_id}/activate", api.activate, authen, ruleTenancy)
	app.HandlerFunc(http.MethodPut, group, "/tenants/{tenancy_id}/reassign", api.reassign, authen, ruleTenancy, transaction)
	app.HandlerFunc(http.MethodDelete, group, "/tenants/{tenancy_id}", api.deactivate, authen, ruleTenancy)
}
