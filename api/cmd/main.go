package main

import (
	"context"
	"encoding/json"
	"errors"
	"expvar"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/jcpaschoal/propman/api/cmd/build/all"
	"github.com/jcpaschoal/propman/app/sdk/auth"
	"github.com/jcpaschoal/propman/app/sdk/debug"
	"github.com/jcpaschoal/propman/app/sdk/mux"
	"github.com/jcpaschoal/propman/business/domain/apartmentbus"
	"github.com/jcpaschoal/propman/business/domain/apartmentbus/stores/apartmentdb"
	"github.com/jcpaschoal/propman/business/domain/buildingbus"
	"github.com/jcpaschoal/propman/business/domain/buildingbus/stores/buildingdb"
	"github.com/jcpaschoal/propman/business/domain/invitationbus"
	"github.com/jcpaschoal/propman/business/domain/invitationbus/stores/invitationdb"
	"github.com/jcpaschoal/propman/business/domain/issuebus"
	"github.com/jcpaschoal/propman/business/domain/issuebus/stores/issuedb"
	"github.com/jcpaschoal/propman/business/domain/tenancybus"
	"github.com/jcpaschoal/propman/business/domain/tenancybus/stores/tenancydb"
	"github.com/jcpaschoal/propman/business/domain/userbus"
	"github.com/jcpaschoal/propman/business/domain/userbus/stores/usercache"
	"github.com/jcpaschoal/propman/business/domain/userbus/stores/userdb"
	"github.com/jcpaschoal/propman/business/sdk/sqldb"
	"github.com/jcpaschoal/propman/foundation/keystore"
	"github.com/jcpaschoal/propman/foundation/logger"
	"github.com/jcpaschoal/propman/foundation/mailer"
	"github.com/jcpaschoal/propman/foundation/natsbus"
	"github.com/jcpaschoal/propman/foundation/otel"
	"github.com/kelseyhightower/envconfig"
)

var build = "develop"

// Config holds every setting the service reads from the environment.
type Config struct {
	Version struct {
		Build string `json:"build"`
		Desc  string `json:"desc"`
	} `json:"version"`

	Env string `envconfig:"APP_ENV" default:"production"`

	Web struct {
		ReadTimeout        time.Duration `envconfig:"WEB_READ_TIMEOUT" default:"5s"`
		WriteTimeout       time.Duration `envconfig:"WEB_WRITE_TIMEOUT" default:"30s"`
		IdleTimeout        time.Duration `envconfig:"WEB_IDLE_TIMEOUT" default:"120s"`
		ShutdownTimeout    time.Duration `envconfig:"WEB_SHUTDOWN_TIMEOUT" default:"20s"`
		APIHost            string        `envconfig:"WEB_API_HOST" default:"0.0.0.0:3000"`
		DebugHost          string        `envconfig:"WEB_DEBUG_HOST" default:"0.0.0.0:3010"`
		CORSAllowedOrigins []string      `envconfig:"WEB_CORS_ALLOWED_ORIGINS" default:"*"`
	}
	DB struct {
		User         string `envconfig:"DB_USER" default:"postgres"`
		Password     string `envconfig:"DB_PASSWORD" default:"postgres"`
		Host         string `envconfig:"DB_HOST" default:"localhost"`
		Name         string `envconfig:"DB_NAME" default:"propman"`
		Schema       string `envconfig:"DB_SCHEMA"`
		MaxIdleConns int    `envconfig:"DB_MAX_IDLE_CONNS" default:"2"`
		MaxOpenConns int    `envconfig:"DB_MAX_OPEN_CONNS" default:"0"`
		DisableTLS   bool   `envconfig:"DB_DISABLE_TLS" default:"true"`
	}
	Auth struct {
		KeysFolder string        `envconfig:"AUTH_KEYS_FOLDER" default:"zarf/keys/"`
		ActiveKID  string        `envconfig:"AUTH_ACTIVE_KID" default:"54bb2165-71e1-41a6-af3e-7da4a0e1e2c1"`
		Issuer     string        `envconfig:"AUTH_ISSUER" default:"propman"`
		TokenTTL   time.Duration `envconfig:"AUTH_TOKEN_TTL" default:"24h"`
		CacheTTL   time.Duration `envconfig:"AUTH_CACHE_TTL" default:"1m"`
	}
	Tempo struct {
		Host        string  `envconfig:"TEMPO_HOST" default:"tempo:4317"`
		ServiceName string  `envconfig:"TEMPO_SERVICE_NAME" default:"propman"`
		Probability float64 `envconfig:"TEMPO_PROBABILITY" default:"0.05"`
		Enabled     bool    `envconfig:"TEMPO_ENABLED" default:"false"`
	}
	Mail struct {
		SendGridKey string `envconfig:"MAIL_SENDGRID_KEY"`
		FromName    string `envconfig:"MAIL_FROM_NAME" default:"Propman"`
		FromEmail   string `envconfig:"MAIL_FROM_EMAIL" default:"no-reply@propman.local"`
	}
	NATS struct {
		URL           string        `envconfig:"NATS_URL"`
		ReconnectWait time.Duration `envconfig:"NATS_RECONNECT_WAIT" default:"2s"`
		MaxReconnects int           `envconfig:"NATS_MAX_RECONNECTS" default:"60"`
	}
	Invitation struct {
		TTL       time.Duration `envconfig:"INVITATION_TTL" default:"168h"`
		RedeemURL string        `envconfig:"INVITATION_REDEEM_URL" default:"http://localhost:5173/redeem"`
	}
}

func main() {
	var log *logger.Logger

	events := logger.Events{
		Error: func(ctx context.Context, r logger.Record) {
			log.Info(ctx, "******* SEND ALERT *******")
		},
	}

	log = logger.NewWithEvents(os.Stdout, logger.LevelInfo, "PROPMAN", otel.GetTraceID, events)
	defer log.Sync()

	// -------------------------------------------------------------------------

	ctx := context.Background()

	if err := run(ctx, log); err != nil {
		log.Error(ctx, "startup", "err", err)
		log.Sync()
		os.Exit(1)
	}
}

func run(ctx context.Context, log *logger.Logger) error {

	// -------------------------------------------------------------------------
	// GOMAXPROCS

	log.Info(ctx, "startup", "GOMAXPROCS", runtime.GOMAXPROCS(0))

	// -------------------------------------------------------------------------
	// Configuration

	var cfg Config

	cfg.Version.Build = build
	cfg.Version.Desc = "PROPMAN"

	if err := envconfig.Process("", &cfg); err != nil {
		return fmt.Errorf("processing config: %w", err)
	}

	// -------------------------------------------------------------------------
	// App Starting

	log.Info(ctx, "starting service", "version", cfg.Version.Build)
	defer log.Info(ctx, "shutdown complete")

	log.Info(ctx, "startup", "config", sanitizeConfig(cfg))

	log.BuildInfo(ctx)

	expvar.NewString("build").Set(cfg.Version.Build)

	// -------------------------------------------------------------------------
	// Database Support

	log.Info(ctx, "startup", "status", "initializing database support", "hostport", cfg.DB.Host)

	db, err := sqldb.Open(sqldb.Config{
		User:         cfg.DB.User,
		Password:     cfg.DB.Password,
		Host:         cfg.DB.Host,
		Name:         cfg.DB.Name,
		Schema:       cfg.DB.Schema,
		MaxIdleConns: cfg.DB.MaxIdleConns,
		MaxOpenConns: cfg.DB.MaxOpenConns,
		DisableTLS:   cfg.DB.DisableTLS,
	})
	if err != nil {
		return fmt.Errorf("connecting to db: %w", err)
	}

	defer db.Close()

	// -------------------------------------------------------------------------
	// Messaging Support

	log.Info(ctx, "startup", "status", "initializing messaging support")

	sender := mailer.New(mailer.Config{
		Log:       log,
		APIKey:    cfg.Mail.SendGridKey,
		FromName:  cfg.Mail.FromName,
		FromEmail: cfg.Mail.FromEmail,
	})

	publisher, err := natsbus.Connect(log, natsbus.Config{
		URL:           cfg.NATS.URL,
		Name:          "propman-api",
		ReconnectWait: cfg.NATS.ReconnectWait,
		MaxReconnects: cfg.NATS.MaxReconnects,
	})
	if err != nil {
		return fmt.Errorf("connecting to nats: %w", err)
	}

	defer publisher.Close()

	// -------------------------------------------------------------------------
	// Create Business Packages

	userBus := userbus.NewCore(usercache.NewStore(log, userdb.NewStore(log, db), cfg.Auth.CacheTTL))
	buildingBus := buildingbus.NewCore(log, buildingdb.NewStore(log, db))
	apartmentBus := apartmentbus.NewCore(log, buildingBus, apartmentdb.NewStore(log, db))
	tenancyBus := tenancybus.NewCore(log, userBus, apartmentBus, tenancydb.NewStore(log, db))
	issueBus := issuebus.NewCore(log, buildingBus, apartmentBus, tenancyBus, publisher, issuedb.NewStore(log, db))

	invitationBus := invitationbus.NewCore(log, userBus, buildingBus, apartmentBus, tenancyBus, sender, invitationdb.NewStore(log, db), invitationbus.Config{
		TTL:       cfg.Invitation.TTL,
		RedeemURL: cfg.Invitation.RedeemURL,
	})

	// -------------------------------------------------------------------------
	// Auth Support

	log.Info(ctx, "startup", "status", "initializing authentication support")

	ks := keystore.New()

	n, err := ks.LoadByFileSystem(os.DirFS(cfg.Auth.KeysFolder))
	if err != nil {
		return fmt.Errorf("loading keys: %w", err)
	}

	log.Info(ctx, "startup", "status", "keys loaded", "count", n)

	authClient, err := auth.New(auth.Config{
		Log:       log,
		UserBus:   userBus,
		KeyLookup: ks,
		Issuer:    cfg.Auth.Issuer,
		TokenTTL:  cfg.Auth.TokenTTL,
	})
	if err != nil {
		return fmt.Errorf("constructing auth: %w", err)
	}

	// -------------------------------------------------------------------------
	// Start Tracing Support

	log.Info(ctx, "startup", "status", "initializing tracing support")

	traceProvider, teardown, err := otel.InitTracing(log, otel.Config{
		ServiceName: cfg.Tempo.ServiceName,
		Host:        cfg.Tempo.Host,
		ExcludedRoutes: map[string]struct{}{
			"/api/health":    {},
			"/api/readiness": {},
		},
		Probability: cfg.Tempo.Probability,
		Enabled:     cfg.Tempo.Enabled,
	})
	if err != nil {
		return fmt.Errorf("starting tracing: %w", err)
	}

	defer teardown(context.Background())

	tracer := traceProvider.Tracer(cfg.Tempo.ServiceName)

	// -------------------------------------------------------------------------
	// Start Debug Service

	go func() {
		log.Info(ctx, "startup", "status", "debug router started", "host", cfg.Web.DebugHost)

		if err := http.ListenAndServe(cfg.Web.DebugHost, debug.Mux()); err != nil {
			log.Error(ctx, "shutdown", "status", "debug router closed", "host", cfg.Web.DebugHost, "msg", err)
		}
	}()

	// -------------------------------------------------------------------------
	// Start API Service

	log.Info(ctx, "startup", "status", "initializing API support")

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	cfgMux := mux.Config{
		Build:       cfg.Version.Build,
		Log:         log,
		DB:          db,
		Tracer:      tracer,
		Development: cfg.Env == "development",
		BusConfig: mux.BusConfig{
			UserBus:       userBus,
			BuildingBus:   buildingBus,
			ApartmentBus:  apartmentBus,
			TenancyBus:    tenancyBus,
			InvitationBus: invitationBus,
			IssueBus:      issueBus,
		},
		AuthConfig: mux.AuthConfig{
			Auth:      authClient,
			ActiveKID: cfg.Auth.ActiveKID,
		},
	}

	webAPI := mux.WebAPI(cfgMux,
		all.Routes(),
		mux.WithCORS(cfg.Web.CORSAllowedOrigins),
	)

	api := http.Server{
		Addr:         cfg.Web.APIHost,
		Handler:      webAPI,
		ReadTimeout:  cfg.Web.ReadTimeout,
		WriteTimeout: cfg.Web.WriteTimeout,
		IdleTimeout:  cfg.Web.IdleTimeout,
		ErrorLog:     logger.NewStdLogger(log, logger.LevelError),
	}

	serverErrors := make(chan error, 1)

	go func() {
		log.Info(ctx, "startup", "status", "api router started", "host", api.Addr)
		serverErrors <- api.ListenAndServe()
	}()

	// -------------------------------------------------------------------------
	// Shutdown

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		log.Info(ctx, "shutdown", "status", "shutdown started", "signal", sig)
		defer log.Info(ctx, "shutdown", "status", "shutdown complete", "signal", sig)

		ctx, cancel := context.WithTimeout(ctx, cfg.Web.ShutdownTimeout)
		defer cancel()

		if err := api.Shutdown(ctx); err != nil {
			api.Close()
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
	}

	return nil
}

func sanitizeConfig(cfg Config) string {
	cfg.DB.Password = "[MASKED]"
	if cfg.Mail.SendGridKey != "" {
		cfg.Mail.SendGridKey = "[MASKED]"
	}

	data, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Sprintf("%+v", cfg)
	}
	return string(data)
}
