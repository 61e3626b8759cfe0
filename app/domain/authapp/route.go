package authapp

import (
	"net/http"

	"github.com/jcpaschoal/propman/app/sdk/auth"
	"github.com/jcpaschoal/propman/app/sdk/mid"
	"github.com/jcpaschoal/propman/business/domain/invitationbus"
	"github.com/jcpaschoal/propman/business/domain/userbus"
	"github.com/jcpaschoal/propman/business/sdk/sqldb"
	"github.com/jcpaschoal/propman/business/sdk/web"
	"github.com/jcpaschoal/propman/business/types/resource"
	"github.com/jcpaschoal/propman/foundation/logger"
)

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Log           *logger.Logger
	Auth          *auth.Auth
	ActiveKID     string
	DB            sqldb.Beginner
	UserBus       *userbus.Core
	InvitationBus *invitationbus.Core
}

// Routes adds specific routes for this group.
func Routes(app *web.App, cfg Config) {
	const group = "api"

	authen := mid.Authenticate(cfg.Auth)
	ruleSelf := mid.Authorize(cfg.Auth, resource.User)
	transaction := mid.BeginCommitRollback(cfg.Log, cfg.DB)

	api := newApp(cfg)

	app.HandlerFunc(http.MethodPost, group, "/auth/login", api.login)
	app.HandlerFunc(http.MethodPost, group, "/auth/register", api.register)
	app.HandlerFunc(http.MethodPost, group, "/auth/redeem", api.redeem, transaction)
	app.HandlerFunc(http.MethodGet, group, "/auth/me", api.me, authen, ruleSelf)
	app.HandlerFunc(http.MethodPut, group, "/auth/me", api.updateMe, authen, ruleSelf)
}
