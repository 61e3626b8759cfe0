package buildingbus_test

import (
	"context"
	"net/mail"
	"testing"

	"github.com/google/uuid"
	"github.com/jcpaschoal/propman/business/domain/apartmentbus"
	"github.com/jcpaschoal/propman/business/domain/buildingbus"
	"github.com/jcpaschoal/propman/business/domain/invitationbus"
	"github.com/jcpaschoal/propman/business/domain/issuebus"
	"github.com/jcpaschoal/propman/business/domain/tenancybus"
	"github.com/jcpaschoal/propman/business/sdk/dbtest"
	"github.com/jcpaschoal/propman/business/types/category"
	"github.com/jcpaschoal/propman/business/types/name"
	"github.com/jcpaschoal/propman/business/types/password"
	"github.com/jcpaschoal/propman/business/types/priority"
	"github.com/jcpaschoal/propman/business/types/role"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Create(t *testing.T) {
	bus := dbtest.NewBusDomain(t)
	ctx := context.Background()

	co := dbtest.SeedUser(t, bus, "Acme", "acme@example.com", role.Company)

	tests := []struct {
		name   string
		floors int
		garage int
		addr   string
		ok     bool
	}{
		{"valid", 4, 1, "12 Elm Street", true},
		{"ground only", 0, 0, "1 Low Road", true},
		{"negative floors", -1, 0, "12 Elm Street", false},
		{"negative garage", 4, -2, "12 Elm Street", false},
		{"blank address", 4, 0, "   ", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nb := buildingbus.NewBuilding{
				CompanyID:    co.ID,
				Name:         name.MustParse("Elm House"),
				Address:      tt.addr,
				Floors:       tt.floors,
				GarageLevels: tt.garage,
			}

			b, err := bus.Building.Create(ctx, nb)
			if !tt.ok {
				require.ErrorIs(t, err, buildingbus.ErrValidation)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, co.ID, b.CompanyID)
			assert.Equal(t, tt.floors, b.Floors)
		})
	}
}

func Test_CompanyIsolation(t *testing.T) {
	bus := dbtest.NewBusDomain(t)
	ctx := context.Background()

	co1 := dbtest.SeedUser(t, bus, "Acme", "acme@example.com", role.Company)
	co2 := dbtest.SeedUser(t, bus, "Globex", "globex@example.com", role.Company)

	b1 := dbtest.SeedBuilding(t, bus, co1, "Elm House", 4)
	dbtest.SeedBuilding(t, bus, co2, "Oak Court", 2)

	bs, err := bus.Building.QueryByCompany(ctx, co1.ID)
	require.NoError(t, err)
	require.Len(t, bs, 1)
	assert.Equal(t, b1.ID, bs[0].ID)

	_, err = bus.Building.QueryOwned(ctx, co2.ID, b1.ID)
	require.ErrorIs(t, err, buildingbus.ErrForbidden)

	_, err = bus.Building.QueryOwned(ctx, co1.ID, uuid.New())
	require.ErrorIs(t, err, buildingbus.ErrNotFound)

	err = bus.Building.Delete(ctx, co2.ID, b1)
	require.ErrorIs(t, err, buildingbus.ErrForbidden)
}

func Test_UpdateLayout(t *testing.T) {
	bus := dbtest.NewBusDomain(t)
	ctx := context.Background()

	co := dbtest.SeedUser(t, bus, "Acme", "acme@example.com", role.Company)
	b := dbtest.SeedBuilding(t, bus, co, "Elm House", 4)
	dbtest.SeedApartment(t, bus, co, b, "3A", 3)

	two := 2
	_, err := bus.Building.Update(ctx, co.ID, b, buildingbus.UpdateBuilding{Floors: &two})
	require.ErrorIs(t, err, buildingbus.ErrValidation, "apartment on floor 3 must block shrinking to 2")

	three := 3
	upd, err := bus.Building.Update(ctx, co.ID, b, buildingbus.UpdateBuilding{Floors: &three})
	require.NoError(t, err)
	assert.Equal(t, 3, upd.Floors)

	got, err := bus.Building.QueryByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Floors)
}

func Test_DeleteCascades(t *testing.T) {
	bus := dbtest.NewBusDomain(t)
	ctx := context.Background()

	co := dbtest.SeedUser(t, bus, "Acme", "acme@example.com", role.Company)
	tenant := dbtest.SeedUser(t, bus, "Jane", "jane@example.com", role.Tenant)
	b := dbtest.SeedBuilding(t, bus, co, "Elm House", 4)
	apt := dbtest.SeedApartment(t, bus, co, b, "3A", 3)

	ten, err := bus.Tenancy.Assign(ctx, co.ID, tenancybus.NewTenancy{ApartmentID: apt.ID, TenantID: tenant.ID})
	require.NoError(t, err)

	ni := issuebus.NewIssue{
		ApartmentID: &apt.ID,
		Title:       "Leaking tap",
		Category:    category.MustParse("plumbing"),
		Priority:    priority.MustParse("high"),
	}
	iss, err := bus.Issue.Create(ctx, tenant.ID, ni)
	require.NoError(t, err)

	inv, err := bus.Invitation.Issue(ctx, co.ID, invitationbus.NewInvitation{
		Email:       mail.Address{Address: "nina@example.com"},
		ApartmentID: &apt.ID,
	})
	require.NoError(t, err)

	require.NoError(t, bus.Building.Delete(ctx, co.ID, b))

	_, err = bus.Apartment.QueryByID(ctx, apt.ID)
	require.ErrorIs(t, err, apartmentbus.ErrNotFound)

	_, err = bus.Tenancy.QueryByID(ctx, ten.ID)
	require.ErrorIs(t, err, tenancybus.ErrNotFound)

	_, err = bus.Issue.QueryByID(ctx, iss.ID)
	require.ErrorIs(t, err, issuebus.ErrNotFound)

	_, err = bus.Invitation.QueryOwned(ctx, co.ID, inv.ID)
	require.ErrorIs(t, err, invitationbus.ErrNotFound)

	rd := invitationbus.Redemption{
		Token:    inv.Token,
		Name:     name.MustParse("Nina Newcomer"),
		Password: password.MustParse("a-long-secret"),
	}
	_, _, err = bus.Invitation.Redeem(ctx, rd)
	require.ErrorIs(t, err, invitationbus.ErrNotFound)

	_, err = bus.User.QueryByID(ctx, tenant.ID)
	require.NoError(t, err, "identities survive a building delete")
}
