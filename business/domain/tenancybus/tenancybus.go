// Package tenancybus provides business access to the tenancy ledger, the
// single authority on which tenant occupies which apartment.
package tenancybus

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jcpaschoal/propman/business/domain/apartmentbus"
	"github.com/jcpaschoal/propman/business/domain/userbus"
	"github.com/jcpaschoal/propman/business/sdk/sqldb"
	"github.com/jcpaschoal/propman/business/types/role"
	"github.com/jcpaschoal/propman/business/types/tenancystatus"
	"github.com/jcpaschoal/propman/foundation/logger"
	"github.com/jcpaschoal/propman/foundation/otel"
)

// Set of error variables for CRUD operations.
var (
	ErrNotFound          = errors.New("tenancy not found")
	ErrDuplicate         = errors.New("tenant already holds this apartment")
	ErrTenantAssigned    = errors.New("tenant already holds another apartment")
	ErrNotTenant         = errors.New("user is not a tenant")
	ErrInvalidTransition = errors.New("invalid tenancy status transition")
)

// Storer interface declares the behavior this package needs to persist and
// retrieve data.
type Storer interface {
	NewWithTx(tx sqldb.CommitRollbacker) (Storer, error)
	Create(ctx context.Context, t Tenancy) error
	Update(ctx context.Context, t Tenancy) error
	QueryByID(ctx context.Context, tenancyID uuid.UUID) (Tenancy, error)
	QueryLiveByTenant(ctx context.Context, tenantID uuid.UUID) (Tenancy, error)
	QueryRosterByTenant(ctx context.Context, tenantID uuid.UUID) (Roster, error)
	QueryByCompany(ctx context.Context, companyID uuid.UUID, filter QueryFilter) ([]Roster, error)
}

// Core manages the set of APIs for ledger access.
type Core struct {
	log          *logger.Logger
	userBus      *userbus.Core
	apartmentBus *apartmentbus.Core
	storer       Storer
}

// NewCore constructs a ledger core API for use.
func NewCore(log *logger.Logger, userBus *userbus.Core, apartmentBus *apartmentbus.Core, storer Storer) *Core {
	return &Core{
		log:          log,
		userBus:      userBus,
		apartmentBus: apartmentBus,
		storer:       storer,
	}
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

	apartmentBus, err := c.apartmentBus.NewWithTx(tx)
	if err != nil {
		return nil, err
	}

	return NewCore(c.log, userBus, apartmentBus, storer), nil
}

// Assign binds a tenant to an apartment of a building owned by companyID.
// A tenant holds at most one live entry: a second assignment to the same
// apartment fails with ErrDuplicate and one to a different apartment with
// ErrTenantAssigned. Moving a tenant is Reassign's job.
func (c *Core) Assign(ctx context.Context, companyID uuid.UUID, nt NewTenancy) (Tenancy, error) {
	ctx, span := otel.AddSpan(ctx, "business.tenancybus.assign")
	defer span.End()

	apt, _, err := c.apartmentBus.QueryOwned(ctx, companyID, nt.ApartmentID)
	if err != nil {
		return Tenancy{}, err
	}

	usr, err := c.userBus.QueryByID(ctx, nt.TenantID)
	if err != nil {
		return Tenancy{}, err
	}

	if !usr.Role.Equal(role.Tenant) {
		return Tenancy{}, fmt.Errorf("userID[%s] role[%s]: %w", usr.ID, usr.Role, ErrNotTenant)
	}

	status := nt.Status
	switch {
	case status.Equal(tenancystatus.Status{}):
		status = tenancystatus.Active
	case !status.Live():
		return Tenancy{}, fmt.Errorf("new entry cannot be %s: %w", status, ErrInvalidTransition)
	}

	live, err := c.storer.QueryLiveByTenant(ctx, usr.ID)
	switch {
	case err == nil:
		if live.ApartmentID == apt.ID {
			return Tenancy{}, fmt.Errorf("tenantID[%s] apartmentID[%s]: %w", usr.ID, apt.ID, ErrDuplicate)
		}
		return Tenancy{}, fmt.Errorf("tenantID[%s] holds apartmentID[%s]: %w", usr.ID, live.ApartmentID, ErrTenantAssigned)

	case !errors.Is(err, ErrNotFound):
		return Tenancy{}, fmt.Errorf("querylivebytenant: %w", err)
	}

	now := time.Now()

	t := Tenancy{
		ID:          uuid.New(),
		ApartmentID: apt.ID,
		TenantID:    usr.ID,
		Status:      status,
		InvitedBy:   nt.InvitedBy,
		InvitedAt:   nt.InvitedAt,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if status.Equal(tenancystatus.Active) {
		t.JoinedAt = now
	}

	if err := c.storer.Create(ctx, t); err != nil {
		return Tenancy{}, fmt.Errorf("create: %w", err)
	}

	return t, nil
}

// Reassign moves a live tenant to another apartment of the same company:
// the current entry goes inactive and a new one is inserted with the same
// status. The caller must run it inside a transaction.
func (c *Core) Reassign(ctx context.Context, companyID uuid.UUID, t Tenancy, apartmentID uuid.UUID) (Tenancy, error) {
	ctx, span := otel.AddSpan(ctx, "business.tenancybus.reassign")
	defer span.End()

	if !t.Status.Live() {
		return Tenancy{}, fmt.Errorf("tenancyID[%s] is %s: %w", t.ID, t.Status, ErrInvalidTransition)
	}

	if _, _, err := c.apartmentBus.QueryOwned(ctx, companyID, t.ApartmentID); err != nil {
		return Tenancy{}, err
	}

	target, _, err := c.apartmentBus.QueryOwned(ctx, companyID, apartmentID)
	if err != nil {
		return Tenancy{}, err
	}

	if target.ID == t.ApartmentID {
		return Tenancy{}, fmt.Errorf("tenantID[%s] apartmentID[%s]: %w", t.TenantID, target.ID, ErrDuplicate)
	}

	now := time.Now()

	old := t
	old.Status = tenancystatus.Inactive
	old.UpdatedAt = now

	if err := c.storer.Update(ctx, old); err != nil {
		return Tenancy{}, fmt.Errorf("update: %w", err)
	}

	moved := Tenancy{
		ID:          uuid.New(),
		ApartmentID: target.ID,
		TenantID:    t.TenantID,
		Status:      t.Status,
		InvitedBy:   companyID,
		InvitedAt:   now,
		JoinedAt:    t.JoinedAt,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if t.Status.Equal(tenancystatus.Active) {
		moved.JoinedAt = now
	}

	if err := c.storer.Create(ctx, moved); err != nil {
		return Tenancy{}, fmt.Errorf("create: %w", err)
	}

	return moved, nil
}

// Activate moves a pending entry to active and stamps joined_at.
func (c *Core) Activate(ctx context.Context, companyID uuid.UUID, t Tenancy) (Tenancy, error) {
	ctx, span := otel.AddSpan(ctx, "business.tenancybus.activate")
	defer span.End()

	return c.transition(ctx, companyID, t, tenancystatus.Active)
}

// Deactivate ends a tenancy. The row is kept with status inactive so the
// history survives; the tenant's issues are left untouched.
func (c *Core) Deactivate(ctx context.Context, companyID uuid.UUID, t Tenancy) (Tenancy, error) {
	ctx, span := otel.AddSpan(ctx, "business.tenancybus.deactivate")
	defer span.End()

	return c.transition(ctx, companyID, t, tenancystatus.Inactive)
}

func (c *Core) transition(ctx context.Context, companyID uuid.UUID, t Tenancy, next tenancystatus.Status) (Tenancy, error) {
	if _, _, err := c.apartmentBus.QueryOwned(ctx, companyID, t.ApartmentID); err != nil {
		return Tenancy{}, err
	}

	if !t.Status.CanTransitionTo(next) {
		return Tenancy{}, fmt.Errorf("%s -> %s: %w", t.Status, next, ErrInvalidTransition)
	}

	now := time.Now()

	t.Status = next
	t.UpdatedAt = now

	if next.Equal(tenancystatus.Active) {
		t.JoinedAt = now
	}

	if err := c.storer.Update(ctx, t); err != nil {
		return Tenancy{}, fmt.Errorf("update: %w", err)
	}

	return t, nil
}

// QueryByID finds the ledger entry by the specified ID.
func (c *Core) QueryByID(ctx context.Context, tenancyID uuid.UUID) (Tenancy, error) {
	ctx, span := otel.AddSpan(ctx, "business.tenancybus.querybyid")
	defer span.End()

	t, err := c.storer.QueryByID(ctx, tenancyID)
	if err != nil {
		return Tenancy{}, fmt.Errorf("query: tenancyID[%s]: %w", tenancyID, err)
	}

	return t, nil
}

// QueryOwned finds the ledger entry and confirms companyID owns its apartment.
func (c *Core) QueryOwned(ctx context.Context, companyID uuid.UUID, tenancyID uuid.UUID) (Tenancy, error) {
	t, err := c.QueryByID(ctx, tenancyID)
	if err != nil {
		return Tenancy{}, err
	}

	if _, _, err := c.apartmentBus.QueryOwned(ctx, companyID, t.ApartmentID); err != nil {
		return Tenancy{}, err
	}

	return t, nil
}

// QueryLiveByTenant returns the tenant's pending or active entry.
func (c *Core) QueryLiveByTenant(ctx context.Context, tenantID uuid.UUID) (Tenancy, error) {
	ctx, span := otel.AddSpan(ctx, "business.tenancybus.querylivebytenant")
	defer span.End()

	t, err := c.storer.QueryLiveByTenant(ctx, tenantID)
	if err != nil {
		return Tenancy{}, fmt.Errorf("query: tenantID[%s]: %w", tenantID, err)
	}

	return t, nil
}

// QueryHome returns the tenant's live entry resolved to apartment and
// building.
func (c *Core) QueryHome(ctx context.Context, tenantID uuid.UUID) (Roster, error) {
	ctx, span := otel.AddSpan(ctx, "business.tenancybus.queryhome")
	defer span.End()

	r, err := c.storer.QueryRosterByTenant(ctx, tenantID)
	if err != nil {
		return Roster{}, fmt.Errorf("query: tenantID[%s]: %w", tenantID, err)
	}

	return r, nil
}

// QueryByCompany lists the ledger entries of every apartment in buildings
// owned by companyID, resolved in one join.
func (c *Core) QueryByCompany(ctx context.Context, companyID uuid.UUID, filter QueryFilter) ([]Roster, error) {
	ctx, span := otel.AddSpan(ctx, "business.tenancybus.querybycompany")
	defer span.End()

	rs, err := c.storer.QueryByCompany(ctx, companyID, filter)
	if err != nil {
		return nil, fmt.Errorf("query: companyID[%s]: %w", companyID, err)
	}

	return rs, nil
}
