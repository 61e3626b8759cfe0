package main

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"flag"
	"fmt"
	"net/mail"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
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
	"github.com/jcpaschoal/propman/business/domain/userbus/stores/userdb"
	"github.com/jcpaschoal/propman/business/sdk/migrate"
	"github.com/jcpaschoal/propman/business/types/category"
	"github.com/jcpaschoal/propman/business/types/name"
	"github.com/jcpaschoal/propman/business/types/password"
	"github.com/jcpaschoal/propman/business/types/phone"
	"github.com/jcpaschoal/propman/business/types/priority"
	"github.com/jcpaschoal/propman/business/types/role"
	"github.com/jcpaschoal/propman/business/types/tenancystatus"
	"github.com/jcpaschoal/propman/foundation/logger"
	"github.com/jcpaschoal/propman/foundation/mailer"
	"github.com/jcpaschoal/propman/foundation/natsbus"
	"github.com/jmoiron/sqlx"
)

type buses struct {
	user       *userbus.Core
	building   *buildingbus.Core
	apartment  *apartmentbus.Core
	tenancy    *tenancybus.Core
	invitation *invitationbus.Core
	issue      *issuebus.Core
}

// newBuses wires the cores straight onto the database. Mail and events
// are log-only here.
func newBuses(log *logger.Logger, db *sqlx.DB) (buses, error) {
	userBus := userbus.NewCore(userdb.NewStore(log, db))
	buildingBus := buildingbus.NewCore(log, buildingdb.NewStore(log, db))
	apartmentBus := apartmentbus.NewCore(log, buildingBus, apartmentdb.NewStore(log, db))
	tenancyBus := tenancybus.NewCore(log, userBus, apartmentBus, tenancydb.NewStore(log, db))

	sender := mailer.New(mailer.Config{Log: log})
	publisher, err := natsbus.Connect(log, natsbus.Config{})
	if err != nil {
		return buses{}, fmt.Errorf("natsbus: %w", err)
	}

	b := buses{
		user:       userBus,
		building:   buildingBus,
		apartment:  apartmentBus,
		tenancy:    tenancyBus,
		invitation: invitationbus.NewCore(log, userBus, buildingBus, apartmentBus, tenancyBus, sender, invitationdb.NewStore(log, db), invitationbus.Config{}),
		issue:      issuebus.NewCore(log, buildingBus, apartmentBus, tenancyBus, publisher, issuedb.NewStore(log, db)),
	}

	return b, nil
}

func migrateDB(ctx context.Context, log *logger.Logger, db *sqlx.DB) error {
	if err := migrate.Migrate(ctx, db); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	log.Info(ctx, "migrate", "status", "migrations complete")
	return nil
}

// =============================================================================

func genKey(folder string, args []string) error {
	cmd := flag.NewFlagSet("genkey", flag.ContinueOnError)
	kid := cmd.String("kid", uuid.NewString(), "key id, used as the file name")
	bits := cmd.Int("bits", 2048, "RSA key size")
	if err := cmd.Parse(args); err != nil {
		return errUsage
	}

	privateKey, err := rsa.GenerateKey(rand.Reader, *bits)
	if err != nil {
		return fmt.Errorf("generating key: %w", err)
	}

	if err := os.MkdirAll(folder, 0o700); err != nil {
		return fmt.Errorf("creating key folder: %w", err)
	}

	fileName := filepath.Join(folder, *kid+".pem")

	file, err := os.OpenFile(fileName, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("creating private file: %w", err)
	}
	defer file.Close()

	block := pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(privateKey),
	}

	if err := pem.Encode(file, &block); err != nil {
		return fmt.Errorf("encoding to private file: %w", err)
	}

	fmt.Printf("private key written to %s\n", fileName)
	fmt.Printf("set AUTH_ACTIVE_KID=%s to sign with it\n", *kid)
	return nil
}

// =============================================================================

func createUser(ctx context.Context, b buses, args []string) error {
	cmd := flag.NewFlagSet("create-user", flag.ContinueOnError)
	emailStr := cmd.String("email", "", "user email (required)")
	passStr := cmd.String("password", "", "user password (required)")
	nameStr := cmd.String("name", "", "user full name (required)")
	roleStr := cmd.String("role", role.Company.String(), "ADMIN, COMPANY or TENANT")
	phoneStr := cmd.String("phone", "", "contact phone")
	if err := cmd.Parse(args); err != nil {
		return errUsage
	}

	if *emailStr == "" || *passStr == "" || *nameStr == "" {
		cmd.PrintDefaults()
		return fmt.Errorf("email, password and name are required: %w", errUsage)
	}

	email, err := mail.ParseAddress(*emailStr)
	if err != nil {
		return fmt.Errorf("invalid email: %w", err)
	}

	nme, err := name.Parse(*nameStr)
	if err != nil {
		return fmt.Errorf("invalid name: %w", err)
	}

	r, err := role.Parse(*roleStr)
	if err != nil {
		return fmt.Errorf("invalid role: %w", err)
	}

	pass, err := password.Parse(*passStr)
	if err != nil {
		return fmt.Errorf("invalid password: %w", err)
	}

	ph, err := phone.ParseNull(*phoneStr)
	if err != nil {
		return fmt.Errorf("invalid phone: %w", err)
	}

	usr, err := b.user.Create(ctx, userbus.NewUser{
		Name:     nme,
		Email:    *email,
		Password: pass,
		Role:     r,
		Phone:    ph,
	})
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}

	fmt.Printf("user created\nID:    %s\nEmail: %s\nRole:  %s\n", usr.ID, usr.Email.Address, usr.Role)
	return nil
}

func setEnabled(ctx context.Context, b buses, args []string, enabled bool) error {
	cmd := flag.NewFlagSet("set-enabled", flag.ContinueOnError)
	emailStr := cmd.String("email", "", "user email (required)")
	if err := cmd.Parse(args); err != nil {
		return errUsage
	}

	if *emailStr == "" {
		cmd.PrintDefaults()
		return fmt.Errorf("email is required: %w", errUsage)
	}

	email, err := mail.ParseAddress(*emailStr)
	if err != nil {
		return fmt.Errorf("invalid email: %w", err)
	}

	usr, err := b.user.QueryByEmail(ctx, *email)
	if err != nil {
		return fmt.Errorf("query user: %w", err)
	}

	usr, err = b.user.SetEnabled(ctx, usr, enabled)
	if err != nil {
		return fmt.Errorf("set enabled: %w", err)
	}

	fmt.Printf("user %s enabled=%t\n", usr.Email.Address, usr.Enabled)
	return nil
}

func purgeInvitations(ctx context.Context, log *logger.Logger, b buses, args []string) error {
	cmd := flag.NewFlagSet("purge-invitations", flag.ContinueOnError)
	olderThan := cmd.Duration("older-than", 0, "only purge invitations expired for at least this long")
	if err := cmd.Parse(args); err != nil {
		return errUsage
	}

	before := time.Now().Add(-*olderThan)

	n, err := b.invitation.PurgeExpired(ctx, before)
	if err != nil {
		return fmt.Errorf("purge invitations: %w", err)
	}

	log.Info(ctx, "purge-invitations", "before", before.Format(time.RFC3339), "deleted", n)
	return nil
}

// =============================================================================

const seedPassword = "secret123"

// seed loads a company with one building, its floor plan, a tenant living
// in 1A and an open ticket. It refuses to run twice.
func seed(ctx context.Context, log *logger.Logger, b buses) error {
	companyEmail := mail.Address{Address: "manager@elmhouse.example"}

	if _, err := b.user.QueryByEmail(ctx, companyEmail); err == nil {
		log.Info(ctx, "seed", "status", "already seeded")
		return nil
	} else if !errors.Is(err, userbus.ErrNotFound) {
		return fmt.Errorf("check seed: %w", err)
	}

	company, err := b.user.Create(ctx, userbus.NewUser{
		Name:     name.MustParse("Elm Property Co"),
		Email:    companyEmail,
		Role:     role.Company,
		Password: password.MustParse(seedPassword),
	})
	if err != nil {
		return fmt.Errorf("seed company: %w", err)
	}

	tenant, err := b.user.Create(ctx, userbus.NewUser{
		Name:     name.MustParse("Tess Tenant"),
		Email:    mail.Address{Address: "tess@elmhouse.example"},
		Role:     role.Tenant,
		Phone:    phone.MustParseNull("+15555550101"),
		Password: password.MustParse(seedPassword),
	})
	if err != nil {
		return fmt.Errorf("seed tenant: %w", err)
	}

	building, err := b.building.Create(ctx, buildingbus.NewBuilding{
		CompanyID:    company.ID,
		Name:         name.MustParse("Elm House"),
		Address:      "12 Elm Street",
		Floors:       4,
		GarageLevels: 1,
	})
	if err != nil {
		return fmt.Errorf("seed building: %w", err)
	}

	apts, err := b.apartment.GenerateFloorPlan(ctx, company.ID, building.ID, 2)
	if err != nil {
		return fmt.Errorf("seed floor plan: %w", err)
	}

	home, _, err := b.apartment.QueryByNumber(ctx, company.ID, building.ID, "1A")
	if err != nil {
		return fmt.Errorf("seed home: %w", err)
	}

	now := time.Now()

	if _, err := b.tenancy.Assign(ctx, company.ID, tenancybus.NewTenancy{
		ApartmentID: home.ID,
		TenantID:    tenant.ID,
		InvitedBy:   company.ID,
		InvitedAt:   now,
		Status:      tenancystatus.Active,
	}); err != nil {
		return fmt.Errorf("seed tenancy: %w", err)
	}

	if _, err := b.issue.Create(ctx, tenant.ID, issuebus.NewIssue{
		ApartmentID:     &home.ID,
		Title:           "Kitchen tap dripping",
		Description:     "The cold tap keeps dripping after it is closed.",
		Category:        category.Plumbing,
		Priority:        priority.Medium,
		LocationDetails: "kitchen",
	}); err != nil {
		return fmt.Errorf("seed issue: %w", err)
	}

	log.Info(ctx, "seed", "status", "seed complete", "company", company.Email.Address, "tenant", tenant.Email.Address,
		"building", building.ID, "apartments", len(apts), "password", seedPassword)

	return nil
}
