package tenancybus_test

import (
	"context"
	"testing"

	"github.com/jcpaschoal/propman/business/domain/buildingbus"
	"github.com/jcpaschoal/propman/business/domain/tenancybus"
	"github.com/jcpaschoal/propman/business/sdk/dbtest"
	"github.com/jcpaschoal/propman/business/types/role"
	"github.com/jcpaschoal/propman/business/types/tenancystatus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Assign(t *testing.T) {
	bus := dbtest.NewBusDomain(t)
	ctx := context.Background()

	co := dbtest.SeedUser(t, bus, "Acme", "acme@example.com", role.Company)
	other := dbtest.SeedUser(t, bus, "Globex", "globex@example.com", role.Company)
	tenant := dbtest.SeedUser(t, bus, "Jane", "jane@example.com", role.Tenant)

	b := dbtest.SeedBuilding(t, bus, co, "Elm House", 4)
	apt3A := dbtest.SeedApartment(t, bus, co, b, "3A", 3)
	apt4A := dbtest.SeedApartment(t, bus, co, b, "4A", 4)

	ten, err := bus.Tenancy.Assign(ctx, co.ID, tenancybus.NewTenancy{ApartmentID: apt3A.ID, TenantID: tenant.ID})
	require.NoError(t, err)
	assert.True(t, ten.Status.Equal(tenancystatus.Active))
	assert.False(t, ten.JoinedAt.IsZero())

	_, err = bus.Tenancy.Assign(ctx, co.ID, tenancybus.NewTenancy{ApartmentID: apt3A.ID, TenantID: tenant.ID})
	require.ErrorIs(t, err, tenancybus.ErrDuplicate)

	_, err = bus.Tenancy.Assign(ctx, co.ID, tenancybus.NewTenancy{ApartmentID: apt4A.ID, TenantID: tenant.ID})
	require.ErrorIs(t, err, tenancybus.ErrTenantAssigned)

	_, err = bus.Tenancy.Assign(ctx, co.ID, tenancybus.NewTenancy{ApartmentID: apt4A.ID, TenantID: other.ID})
	require.ErrorIs(t, err, tenancybus.ErrNotTenant)

	second := dbtest.SeedUser(t, bus, "John", "john@example.com", role.Tenant)
	_, err = bus.Tenancy.Assign(ctx, other.ID, tenancybus.NewTenancy{ApartmentID: apt4A.ID, TenantID: second.ID})
	require.ErrorIs(t, err, buildingbus.ErrForbidden)

	_, err = bus.Tenancy.Assign(ctx, co.ID, tenancybus.NewTenancy{ApartmentID: apt4A.ID, TenantID: second.ID, Status: tenancystatus.Inactive})
	require.ErrorIs(t, err, tenancybus.ErrInvalidTransition)
}

func Test_Lifecycle(t *testing.T) {
	bus := dbtest.NewBusDomain(t)
	ctx := context.Background()

	co := dbtest.SeedUser(t, bus, "Acme", "acme@example.com", role.Company)
	tenant := dbtest.SeedUser(t, bus, "Jane", "jane@example.com", role.Tenant)
	b := dbtest.SeedBuilding(t, bus, co, "Elm House", 4)
	apt3A := dbtest.SeedApartment(t, bus, co, b, "3A", 3)
	apt4A := dbtest.SeedApartment(t, bus, co, b, "4A", 4)

	pending, err := bus.Tenancy.Assign(ctx, co.ID, tenancybus.NewTenancy{ApartmentID: apt3A.ID, TenantID: tenant.ID, Status: tenancystatus.Pending})
	require.NoError(t, err)
	assert.True(t, pending.JoinedAt.IsZero())

	active, err := bus.Tenancy.Activate(ctx, co.ID, pending)
	require.NoError(t, err)
	assert.True(t, active.Status.Equal(tenancystatus.Active))
	assert.False(t, active.JoinedAt.IsZero())

	_, err = bus.Tenancy.Activate(ctx, co.ID, active)
	require.ErrorIs(t, err, tenancybus.ErrInvalidTransition)

	gone, err := bus.Tenancy.Deactivate(ctx, co.ID, active)
	require.NoError(t, err)
	assert.True(t, gone.Status.Equal(tenancystatus.Inactive))

	_, err = bus.Tenancy.Deactivate(ctx, co.ID, gone)
	require.ErrorIs(t, err, tenancybus.ErrInvalidTransition)

	_, err = bus.Tenancy.QueryHome(ctx, tenant.ID)
	require.ErrorIs(t, err, tenancybus.ErrNotFound)

	// An inactive row no longer blocks a new assignment.
	_, err = bus.Tenancy.Assign(ctx, co.ID, tenancybus.NewTenancy{ApartmentID: apt4A.ID, TenantID: tenant.ID})
	require.NoError(t, err)

	roster, err := bus.Tenancy.QueryByCompany(ctx, co.ID, tenancybus.QueryFilter{})
	require.NoError(t, err)
	require.Len(t, roster, 2, "the inactive row is retained")

	status := tenancystatus.Active
	live, err := bus.Tenancy.QueryByCompany(ctx, co.ID, tenancybus.QueryFilter{Status: &status})
	require.NoError(t, err)
	require.Len(t, live, 1)
	assert.Equal(t, "4A", live[0].ApartmentNumber)
	assert.Equal(t, "Elm House", live[0].BuildingName)
	assert.Equal(t, co.ID, live[0].CompanyID)
}

func Test_Reassign(t *testing.T) {
	bus := dbtest.NewBusDomain(t)
	ctx := context.Background()

	co := dbtest.SeedUser(t, bus, "Acme", "acme@example.com", role.Company)
	tenant := dbtest.SeedUser(t, bus, "Jane", "jane@example.com", role.Tenant)
	b := dbtest.SeedBuilding(t, bus, co, "Elm House", 4)
	apt3A := dbtest.SeedApartment(t, bus, co, b, "3A", 3)
	apt4A := dbtest.SeedApartment(t, bus, co, b, "4A", 4)

	ten, err := bus.Tenancy.Assign(ctx, co.ID, tenancybus.NewTenancy{ApartmentID: apt3A.ID, TenantID: tenant.ID})
	require.NoError(t, err)

	// A rolled back move leaves the ledger untouched.
	tx, err := bus.DB.Begin(ctx)
	require.NoError(t, err)

	txBus, err := bus.Tenancy.NewWithTx(tx)
	require.NoError(t, err)

	_, err = txBus.Reassign(ctx, co.ID, ten, apt4A.ID)
	require.NoError(t, err)
	require.NoError(t, tx.Rollback())

	home, err := bus.Tenancy.QueryHome(ctx, tenant.ID)
	require.NoError(t, err)
	assert.Equal(t, apt3A.ID, home.ApartmentID)

	// A committed move inactivates the old row and inserts the new one.
	tx, err = bus.DB.Begin(ctx)
	require.NoError(t, err)

	txBus, err = bus.Tenancy.NewWithTx(tx)
	require.NoError(t, err)

	moved, err := txBus.Reassign(ctx, co.ID, ten, apt4A.ID)
	require.NoError(t, err)
	require.NoError(t, tx.Commit())

	home, err = bus.Tenancy.QueryHome(ctx, tenant.ID)
	require.NoError(t, err)
	assert.Equal(t, apt4A.ID, home.ApartmentID)
	assert.Equal(t, moved.ID, home.TenancyID)

	old, err := bus.Tenancy.QueryByID(ctx, ten.ID)
	require.NoError(t, err)
	assert.True(t, old.Status.Equal(tenancystatus.Inactive))

	_, err = bus.Tenancy.Reassign(ctx, co.ID, moved, apt4A.ID)
	require.ErrorIs(t, err, tenancybus.ErrDuplicate)
}

func Test_CompanyIsolation(t *testing.T) {
	bus := dbtest.NewBusDomain(t)
	ctx := context.Background()

	co1 := dbtest.SeedUser(t, bus, "Acme", "acme@example.com", role.Company)
	co2 := dbtest.SeedUser(t, bus, "Globex", "globex@example.com", role.Company)
	jane := dbtest.SeedUser(t, bus, "Jane", "jane@example.com", role.Tenant)
	john := dbtest.SeedUser(t, bus, "John", "john@example.com", role.Tenant)

	b1 := dbtest.SeedBuilding(t, bus, co1, "Elm House", 4)
	b2 := dbtest.SeedBuilding(t, bus, co2, "Oak Court", 4)
	apt1 := dbtest.SeedApartment(t, bus, co1, b1, "1A", 1)
	apt2 := dbtest.SeedApartment(t, bus, co2, b2, "1A", 1)

	ten1, err := bus.Tenancy.Assign(ctx, co1.ID, tenancybus.NewTenancy{ApartmentID: apt1.ID, TenantID: jane.ID})
	require.NoError(t, err)

	_, err = bus.Tenancy.Assign(ctx, co2.ID, tenancybus.NewTenancy{ApartmentID: apt2.ID, TenantID: john.ID})
	require.NoError(t, err)

	roster, err := bus.Tenancy.QueryByCompany(ctx, co1.ID, tenancybus.QueryFilter{})
	require.NoError(t, err)
	require.Len(t, roster, 1)
	assert.Equal(t, jane.ID, roster[0].TenantID)

	_, err = bus.Tenancy.QueryOwned(ctx, co2.ID, ten1.ID)
	require.ErrorIs(t, err, buildingbus.ErrForbidden)

	_, err = bus.Tenancy.Deactivate(ctx, co2.ID, ten1)
	require.ErrorIs(t, err, buildingbus.ErrForbidden)
}
