// This program performs administrative tasks for the propman service.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/jcpaschoal/propman/business/sdk/sqldb"
	"github.com/jcpaschoal/propman/foundation/logger"
	"github.com/kelseyhightower/envconfig"
)

var errUsage = errors.New("usage")

// Config holds the subset of service settings the admin commands need.
type Config struct {
	DB struct {
		User         string `envconfig:"DB_USER" default:"postgres"`
		Password     string `envconfig:"DB_PASSWORD" default:"postgres"`
		Host         string `envconfig:"DB_HOST" default:"localhost"`
		Name         string `envconfig:"DB_NAME" default:"propman"`
		Schema       string `envconfig:"DB_SCHEMA"`
		MaxIdleConns int    `envconfig:"DB_MAX_IDLE_CONNS" default:"0"`
		MaxOpenConns int    `envconfig:"DB_MAX_OPEN_CONNS" default:"0"`
		DisableTLS   bool   `envconfig:"DB_DISABLE_TLS" default:"true"`
	}
	Auth struct {
		KeysFolder string `envconfig:"AUTH_KEYS_FOLDER" default:"zarf/keys/"`
	}
}

func main() {
	log := logger.New(os.Stdout, logger.LevelInfo, "ADMIN", nil)
	defer log.Sync()

	ctx := context.Background()

	if err := run(ctx, log); err != nil {
		if !errors.Is(err, errUsage) {
			log.Error(ctx, "admin", "err", err)
		}
		log.Sync()
		os.Exit(1)
	}
}

func run(ctx context.Context, log *logger.Logger) error {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return fmt.Errorf("processing config: %w", err)
	}

	if len(os.Args) < 2 {
		printUsage()
		return errUsage
	}

	cmd, args := os.Args[1], os.Args[2:]

	// genkey is the only command that does not need the database.
	if cmd == "genkey" {
		return genKey(cfg.Auth.KeysFolder, args)
	}

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

	ctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	if cmd == "migrate" {
		return migrateDB(ctx, log, db)
	}

	bs, err := newBuses(log, db)
	if err != nil {
		return fmt.Errorf("constructing buses: %w", err)
	}

	switch cmd {
	case "seed":
		return seed(ctx, log, bs)
	case "create-user":
		return createUser(ctx, bs, args)
	case "purge-invitations":
		return purgeInvitations(ctx, log, bs, args)
	case "disable-user":
		return setEnabled(ctx, bs, args, false)
	case "enable-user":
		return setEnabled(ctx, bs, args, true)
	}

	printUsage()
	return fmt.Errorf("unknown command %q: %w", cmd, errUsage)
}

func printUsage() {
	fmt.Println("Usage: admin <command> [flags]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  migrate             apply the schema migrations")
	fmt.Println("  seed                load the Elm House demo data")
	fmt.Println("  genkey              write a new RSA signing key")
	fmt.Println("  create-user         create an identity")
	fmt.Println("  disable-user        stop an identity from signing in (running apis notice within AUTH_CACHE_TTL)")
	fmt.Println("  enable-user         allow a disabled identity to sign in again")
	fmt.Println("  purge-invitations   delete invitations past expiry")
}
