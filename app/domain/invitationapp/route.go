package invitationapp

import (
	"net/http"

	"github.com/jcpaschoal/propman/app/sdk/auth"
	"github.com/jcpaschoal/propman/app/sdk/mid"
	"github.com/jcpaschoal/propman/business/domain/invitationbus"
	"github.com/jcpaschoal/propman/business/sdk/web"
	"github.com/jcpaschoal/propman/business/types/resource"
)

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Auth          *auth.Auth
	InvitationBus *invitationbus.Core
}

// Routes adds specific routes for this group.
func Routes(app *web.App, cfg Config) {
	const group = "api"

	authen := mid.Authenticate(cfg.Auth)
	ruleInvitation := mid.Authorize(cfg.Auth, resource.Invitation)

	api := newApp(cfg.InvitationBus)

	app.HandlerFunc(http.MethodGet, group, "/tenants/invitations", api.query, authen, ruleInvitation)
	app.HandlerFunc(http.MethodPost, group, "/tenants/invitations", api.issue, authen, ruleInvitation)
	app.HandlerFunc(http.MethodDelete, group, "/tenants/invitations/{invitation_id}", api.revoke, authen, ruleInvitation)
}
