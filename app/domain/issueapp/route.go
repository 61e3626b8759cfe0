package issueapp

import (
	"net/http"

	"github.com/jcpaschoal/propman/app/sdk/auth"
	"github.com/jcpaschoal/propman/app/sdk/mid"
	"github.com/jcpaschoal/propman/business/domain/issuebus"
	"github.com/jcpaschoal/propman/business/sdk/web"
	"github.com/jcpaschoal/propman/business/types/resource"
)

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Auth     *auth.Auth
	IssueBus *issuebus.Core
}

// Routes adds specific routes for this group.
func Routes(app *web.App, cfg Config) {
	const group = "api"

	authen := mid.Authenticate(cfg.Auth)
	ruleIssue := mid.Authorize(cfg.Auth, resource.Issue)
	ruleReport := mid.Authorize(cfg.Auth, resource.Report)

	api := newApp(cfg.IssueBus)

	app.HandlerFunc(http.MethodGet, group, "/reports", api.query, authen, ruleIssue)
	app.HandlerFunc(http.MethodPost, group, "/reports", api.create, authen, ruleIssue)
	app.HandlerFunc(http.MethodGet, group, "/reports/export", api.export, authen, ruleReport)
	app.HandlerFunc(http.MethodGet, group, "/reports/{issue_id}", api.queryByID, authen, ruleIssue)
	app.HandlerFunc(http.MethodPut, group, "/reports/{issue_id}/status", api.updateStatus, authen, ruleIssue)
}
