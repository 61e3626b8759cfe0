package dbtest

import (
	"context"
	"net/mail"
	"testing"

	"github.com/jcpaschoal/propman/business/domain/apartmentbus"
	"github.com/jcpaschoal/propman/business/domain/buildingbus"
	"github.com/jcpaschoal/propman/business/domain/userbus"
	"github.com/jcpaschoal/propman/business/types/name"
	"github.com/jcpaschoal/propman/business/types/password"
	"github.com/jcpaschoal/propman/business/types/role"
	"github.com/stretchr/testify/require"
)

// SeedUser creates an identity with the given role.
func SeedUser(t *testing.T, bus BusDomain, nme string, email string, r role.Role) userbus.User {
	t.Helper()

	nu := userbus.NewUser{
		Name:     name.MustParse(nme),
		Email:    mail.Address{Address: email},
		Role:     r,
		Password: password.MustParse("secret123"),
	}

	usr, err := bus.User.Create(context.Background(), nu)
	require.NoError(t, err, "seeding user %s", email)

	return usr
}

// SeedBuilding creates a building owned by company.
func SeedBuilding(t *testing.T, bus BusDomain, company userbus.User, nme string, floors int) buildingbus.Building {
	t.Helper()

	nb := buildingbus.NewBuilding{
		CompanyID: company.ID,
		Name:      name.MustParse(nme),
		Address:   "1 " + nme + " Street",
		Floors:    floors,
	}

	b, err := bus.Building.Create(context.Background(), nb)
	require.NoError(t, err, "seeding building %s", nme)

	return b
}

// SeedApartment creates a unit in a building owned by company.
func SeedApartment(t *testing.T, bus BusDomain, company userbus.User, b buildingbus.Building, number string, floor int) apartmentbus.Apartment {
	t.Helper()

	na := apartmentbus.NewApartment{
		BuildingID: b.ID,
		Number:     number,
		Floor:      floor,
	}

	apt, err := bus.Apartment.Create(context.Background(), company.ID, na)
	require.NoError(t, err, "seeding apartment %s", number)

	return apt
}
