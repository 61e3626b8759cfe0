// Package invitationbus provides business access to tenant invitations.
package invitationbus

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/jcpaschoal/propman/business/domain/apartmentbus"
	"github.com/jcpaschoal/propman/business/domain/buildingbus"
	"github.com/jcpaschoal/propman/business/domain/tenancybus"
	"github.com/jcpaschoal/propman/business/domain/userbus"
	"github.com/jcpaschoal/propman/business/sdk/sqldb"
	"github.com/jcpaschoal/propman/business/types/role"
	"github.com/jcpaschoal/propman/business/types/tenancystatus"
	"github.com/jcpaschoal/propman/foundation/logger"
	"github.com/jcpaschoal/propman/foundation/mailer"
	"github.com/jcpaschoal/propman/foundation/otel"
)

// Set of error variables for CRUD operations.
var (
	ErrNotFound    = errors.New("invitation not found")
	ErrAlreadyUsed = errors.New("invitation already used")
	ErrExpired     = errors.New("invitation expired")
	ErrValidation  = errors.New("invitation validation failed")
)

// DefaultTTL is how long an invitation stays redeemable.
const DefaultTTL = 7 * 24 * time.Hour

const tokenBytes = 32

// Storer interface declares the behavior this package needs to persist and
// retrieve data.
type Storer interface {
	NewWithTx(tx sqldb.CommitRollbacker) (Storer, error)
	Create(ctx context.Context, inv Invitation) error
	Claim(ctx context.Context, inv Invitation, usedAt time.Time) error
	Delete(ctx context.Context, inv Invitation) error
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
	QueryByID(ctx context.Context, invitationID uuid.UUID) (Invitation, error)
	QueryByToken(ctx context.Context, token string) (Invitation, error)
	QueryByBuilding(ctx context.Context, buildingID uuid.UUID) ([]Invitation, error)
}

// Mailer delivers the invitation message.
type Mailer interface {
	Send(ctx context.Context, msg mailer.Message) error
}

// Config holds the settings for issuing invitations.
type Config struct {
	TTL       time.Duration
	RedeemURL string
}

// Option tunes a Core at construction.
type Option func(*Core)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Core) {
		c.now = now
	}
}

// Core manages the set of APIs for invitation access.
type Core struct {
	log          *logger.Logger
	userBus      *userbus.Core
	buildingBus  *buildingbus.Core
	apartmentBus *apartmentbus.Core
	tenancyBus   *tenancybus.Core
	mailer       Mailer
	storer       Storer
	cfg          Config
	now          func() time.Time
}

// NewCore constructs an invitation core API for use.
func NewCore(log *logger.Logger, userBus *userbus.Core, buildingBus *buildingbus.Core, apartmentBus *apartmentbus.Core, tenancyBus *tenancybus.Core, sender Mailer, storer Storer, cfg Config, opts ...Option) *Core {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}

	c := Core{
		log:          log,
		userBus:      userBus,
		buildingBus:  buildingBus,
		apartmentBus: apartmentBus,
		tenancyBus:   tenancyBus,
		mailer:       sender,
		storer:       storer,
		cfg:          cfg,
		now:          time.Now,
	}

	for _, opt := range opts {
		opt(&c)
	}

	return &c
}

// NewWithTx constructs a new core value that will use the
// specified transaction in any store related calls.
func (c *Core) NewWithTx(tx sqldb.CommitRollbacker) (*Core, error) {
	storer, err := c.storer.NewWithTx(tx)
	if err != nil {
		return nil, err
	}

	userBus, err := c.userBus.NewWithTx(tx)
	if err != nil {
		return nil, err
	}

	buildingBus, err := c.buildingBus.NewWithTx(tx)
	if err != nil {
		return nil, err
	}

	apartmentBus, err := c.apartmentBus.NewWithTx(tx)
	if err != nil {
		return nil, err
	}

	tenancyBus, err := c.tenancyBus.NewWithTx(tx)
	if err != nil {
		return nil, err
	}

	core := *c
	core.storer = storer
	core.userBus = userBus
	core.buildingBus = buildingBus
	core.apartmentBus = apartmentBus
	core.tenancyBus = tenancyBus

	return &core, nil
}

// Issue creates an invitation for an apartment in a building owned by
// companyID and mails the token. A failed delivery is logged; the
// invitation still stands and can be shared by other means.
func (c *Core) Issue(ctx context.Context, companyID uuid.UUID, ni NewInvitation) (Invitation, error) {
	ctx, span := otel.AddSpan(ctx, "business.invitationbus.issue")
	defer span.End()

	if ni.Email.Address == "" {
		return Invitation{}, fmt.Errorf("email is required: %w", ErrValidation)
	}

	apt, b, err := c.resolveApartment(ctx, companyID, ni)
	if err != nil {
		return Invitation{}, err
	}

	token, err := newToken()
	if err != nil {
		return Invitation{}, fmt.Errorf("newtoken: %w", err)
	}

	now := c.now()

	inv := Invitation{
		ID:              uuid.New(),
		Email:           ni.Email,
		BuildingID:      b.ID,
		ApartmentID:     apt.ID,
		ApartmentNumber: apt.Number,
		Floor:           apt.Floor,
		Token:           token,
		InvitedBy:       companyID,
		ExpiresAt:       now.Add(c.cfg.TTL),
		CreatedAt:       now,
	}

	if err := c.storer.Create(ctx, inv); err != nil {
		return Invitation{}, fmt.Errorf("create: %w", err)
	}

	if err := c.mailer.Send(ctx, c.message(inv, b)); err != nil {
		c.log.Warn(ctx, "invitation mail", "invitationID", inv.ID, "ERROR", err)
	}

	return inv, nil
}

// Redeem turns a token into an identity plus an active ledger entry. The
// caller must run it inside a transaction so the claim, the identity and the
// ledger entry commit or roll back together.
//
// An existing identity for the invited email is reused only when the given
// password authenticates it and it is a tenant.
func (c *Core) Redeem(ctx context.Context, r Redemption) (userbus.User, tenancybus.Tenancy, error) {
	ctx, span := otel.AddSpan(ctx, "business.invitationbus.redeem")
	defer span.End()

	inv, err := c.storer.QueryByToken(ctx, r.Token)
	if err != nil {
		return userbus.User{}, tenancybus.Tenancy{}, fmt.Errorf("querybytoken: %w", err)
	}

	now := c.now()

	switch inv.State(now) {
	case StateRedeemed:
		return userbus.User{}, tenancybus.Tenancy{}, fmt.Errorf("invitationID[%s]: %w", inv.ID, ErrAlreadyUsed)
	case StateExpired:
		return userbus.User{}, tenancybus.Tenancy{}, fmt.Errorf("invitationID[%s] expired %s: %w", inv.ID, inv.ExpiresAt.Format(time.RFC3339), ErrExpired)
	}

	if err := c.storer.Claim(ctx, inv, now); err != nil {
		return userbus.User{}, tenancybus.Tenancy{}, fmt.Errorf("claim: %w", err)
	}

	usr, err := c.identity(ctx, inv, r)
	if err != nil {
		return userbus.User{}, tenancybus.Tenancy{}, err
	}

	nt := tenancybus.NewTenancy{
		ApartmentID: inv.ApartmentID,
		TenantID:    usr.ID,
		InvitedBy:   inv.InvitedBy,
		InvitedAt:   inv.CreatedAt,
		Status:      tenancystatus.Active,
	}

	t, err := c.tenancyBus.Assign(ctx, inv.InvitedBy, nt)
	if err != nil {
		return userbus.User{}, tenancybus.Tenancy{}, fmt.Errorf("assign: %w", err)
	}

	return usr, t, nil
}

// QueryByBuilding lists the invitations of a building owned by companyID.
func (c *Core) QueryByBuilding(ctx context.Context, companyID uuid.UUID, buildingID uuid.UUID) ([]Invitation, error) {
	ctx, span := otel.AddSpan(ctx, "business.invitationbus.querybybuilding")
	defer span.End()

	if _, err := c.buildingBus.QueryOwned(ctx, companyID, buildingID); err != nil {
		return nil, err
	}

	invs, err := c.storer.QueryByBuilding(ctx, buildingID)
	if err != nil {
		return nil, fmt.Errorf("query: buildingID[%s]: %w", buildingID, err)
	}

	return invs, nil
}

// QueryOwned finds the invitation and confirms companyID owns its building.
func (c *Core) QueryOwned(ctx context.Context, companyID uuid.UUID, invitationID uuid.UUID) (Invitation, error) {
	ctx, span := otel.AddSpan(ctx, "business.invitationbus.queryowned")
	defer span.End()

	inv, err := c.storer.QueryByID(ctx, invitationID)
	if err != nil {
		return Invitation{}, fmt.Errorf("query: invitationID[%s]: %w", invitationID, err)
	}

	if _, err := c.buildingBus.QueryOwned(ctx, companyID, inv.BuildingID); err != nil {
		return Invitation{}, err
	}

	return inv, nil
}

// Revoke deletes an invitation that has not been redeemed.
func (c *Core) Revoke(ctx context.Context, companyID uuid.UUID, inv Invitation) error {
	ctx, span := otel.AddSpan(ctx, "business.invitationbus.revoke")
	defer span.End()

	if _, err := c.buildingBus.QueryOwned(ctx, companyID, inv.BuildingID); err != nil {
		return err
	}

	if !inv.UsedAt.IsZero() {
		return fmt.Errorf("invitationID[%s]: %w", inv.ID, ErrAlreadyUsed)
	}

	if err := c.storer.Delete(ctx, inv); err != nil {
		return fmt.Errorf("delete: %w", err)
	}

	return nil
}

// PurgeExpired removes invitations that expired before the given time
// without being redeemed. Redeemed rows are kept.
func (c *Core) PurgeExpired(ctx context.Context, before time.Time) (int64, error) {
	ctx, span := otel.AddSpan(ctx, "business.invitationbus.purgeexpired")
	defer span.End()

	n, err := c.storer.DeleteExpired(ctx, before)
	if err != nil {
		return 0, fmt.Errorf("deleteexpired: %w", err)
	}

	return n, nil
}

// =============================================================================

func (c *Core) resolveApartment(ctx context.Context, companyID uuid.UUID, ni NewInvitation) (apartmentbus.Apartment, buildingbus.Building, error) {
	switch {
	case ni.ApartmentID != nil:
		return c.apartmentBus.QueryOwned(ctx, companyID, *ni.ApartmentID)

	case ni.BuildingID != nil && ni.ApartmentNumber != "":
		return c.apartmentBus.QueryByNumber(ctx, companyID, *ni.BuildingID, ni.ApartmentNumber)
	}

	return apartmentbus.Apartment{}, buildingbus.Building{}, fmt.Errorf("apartment id or building id and apartment number required: %w", ErrValidation)
}

func (c *Core) identity(ctx context.Context, inv Invitation, r Redemption) (userbus.User, error) {
	_, err := c.userBus.QueryByEmail(ctx, inv.Email)
	switch {
	case err == nil:
		usr, err := c.userBus.Authenticate(ctx, inv.Email, r.Password.String())
		if err != nil {
			return userbus.User{}, fmt.Errorf("authenticate: %w", err)
		}

		if !usr.Role.Equal(role.Tenant) {
			return userbus.User{}, fmt.Errorf("userID[%s] role[%s]: %w", usr.ID, usr.Role, tenancybus.ErrNotTenant)
		}

		return usr, nil

	case !errors.Is(err, userbus.ErrNotFound):
		return userbus.User{}, fmt.Errorf("querybyemail: %w", err)
	}

	nu := userbus.NewUser{
		Name:     r.Name,
		Email:    inv.Email,
		Phone:    r.Phone,
		Role:     role.Tenant,
		Password: r.Password,
	}

	usr, err := c.userBus.Create(ctx, nu)
	if err != nil {
		return userbus.User{}, fmt.Errorf("create user: %w", err)
	}

	return usr, nil
}

func (c *Core) message(inv Invitation, b buildingbus.Building) mailer.Message {
	link := inv.Token
	if c.cfg.RedeemURL != "" {
		link = c.cfg.RedeemURL + "?token=" + url.QueryEscape(inv.Token)
	}

	text := fmt.Sprintf(
		"You have been invited to apartment %s (floor %d) at %s, %s.\n\nAccept the invitation before %s:\n%s\n",
		inv.ApartmentNumber, inv.Floor, b.Name, b.Address, inv.ExpiresAt.Format(time.RFC1123), link,
	)

	return mailer.Message{
		ToName:  inv.Email.Name,
		ToEmail: inv.Email.Address,
		Subject: "Your invitation to " + b.Name.String(),
		Text:    text,
	}
}

func newToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}

	return base64.RawURLEncoding.EncodeToString(b), nil
}
