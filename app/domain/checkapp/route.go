package checkapp

import (
	"net/http"

	"github.com/jcpaschoal/propman/business/sdk/web"
	"github.com/jcpaschoal/propman/foundation/logger"
	"github.com/jmoiron/sqlx"
)

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Build string
	Log   *logger.Logger
	DB    *sqlx.DB
}

// Routes adds specific routes for this group.
func Routes(app *web.App, cfg Config) {
	const group = "api"

	api := newApp(cfg.Build, cfg.Log, cfg.DB)

	app.HandlerFuncNoMid(http.MethodGet, group, "/health", api.health)
	app.HandlerFuncNoMid(http.MethodGet, group, "/readiness", api.readiness)
}
