package apartmentbus_test

import (
	"context"
	"testing"

	"github.com/jcpaschoal/propman/business/domain/apartmentbus"
	"github.com/jcpaschoal/propman/business/domain/buildingbus"
	"github.com/jcpaschoal/propman/business/sdk/dbtest"
	"github.com/jcpaschoal/propman/business/types/role"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Create(t *testing.T) {
	bus := dbtest.NewBusDomain(t)
	ctx := context.Background()

	co := dbtest.SeedUser(t, bus, "Acme", "acme@example.com", role.Company)
	other := dbtest.SeedUser(t, bus, "Globex", "globex@example.com", role.Company)

	b := dbtest.SeedBuilding(t, bus, co, "Elm House", 4)
	b2 := dbtest.SeedBuilding(t, bus, co, "Oak Court", 4)

	apt, err := bus.Apartment.Create(ctx, co.ID, apartmentbus.NewApartment{BuildingID: b.ID, Number: " 3a ", Floor: 3})
	require.NoError(t, err)
	assert.Equal(t, "3A", apt.Number)

	_, err = bus.Apartment.Create(ctx, co.ID, apartmentbus.NewApartment{BuildingID: b.ID, Number: "3A", Floor: 3})
	require.ErrorIs(t, err, apartmentbus.ErrUniqueNumber)

	_, err = bus.Apartment.Create(ctx, co.ID, apartmentbus.NewApartment{BuildingID: b2.ID, Number: "3A", Floor: 3})
	require.NoError(t, err, "unit numbers are only unique per building")

	_, err = bus.Apartment.Create(ctx, co.ID, apartmentbus.NewApartment{BuildingID: b.ID, Number: "9A", Floor: 9})
	require.ErrorIs(t, err, apartmentbus.ErrValidation)

	_, err = bus.Apartment.Create(ctx, co.ID, apartmentbus.NewApartment{BuildingID: b.ID, Number: "", Floor: 1})
	require.ErrorIs(t, err, apartmentbus.ErrValidation)

	_, err = bus.Apartment.Create(ctx, other.ID, apartmentbus.NewApartment{BuildingID: b.ID, Number: "1A", Floor: 1})
	require.ErrorIs(t, err, buildingbus.ErrForbidden)
}

func Test_GenerateFloorPlan(t *testing.T) {
	bus := dbtest.NewBusDomain(t)
	ctx := context.Background()

	co := dbtest.SeedUser(t, bus, "Acme", "acme@example.com", role.Company)
	b := dbtest.SeedBuilding(t, bus, co, "Elm House", 3)
	dbtest.SeedApartment(t, bus, co, b, "2A", 2)

	created, err := bus.Apartment.GenerateFloorPlan(ctx, co.ID, b.ID, 2)
	require.NoError(t, err)

	var numbers []string
	for _, apt := range created {
		numbers = append(numbers, apt.Number)
	}
	assert.Equal(t, []string{"1A", "1B", "2B", "3A", "3B"}, numbers)

	again, err := bus.Apartment.GenerateFloorPlan(ctx, co.ID, b.ID, 2)
	require.NoError(t, err)
	assert.Empty(t, again)

	all, err := bus.Apartment.QueryByBuilding(ctx, co.ID, b.ID)
	require.NoError(t, err)
	assert.Len(t, all, 6)

	_, err = bus.Apartment.GenerateFloorPlan(ctx, co.ID, b.ID, apartmentbus.MaxUnitsPerFloor+1)
	require.ErrorIs(t, err, apartmentbus.ErrValidation)
}

func Test_QueryByNumber(t *testing.T) {
	bus := dbtest.NewBusDomain(t)
	ctx := context.Background()

	co := dbtest.SeedUser(t, bus, "Acme", "acme@example.com", role.Company)
	other := dbtest.SeedUser(t, bus, "Globex", "globex@example.com", role.Company)
	b := dbtest.SeedBuilding(t, bus, co, "Elm House", 4)
	apt := dbtest.SeedApartment(t, bus, co, b, "3A", 3)

	got, gotB, err := bus.Apartment.QueryByNumber(ctx, co.ID, b.ID, "3a")
	require.NoError(t, err)
	assert.Equal(t, apt.ID, got.ID)
	assert.Equal(t, b.ID, gotB.ID)

	_, _, err = bus.Apartment.QueryByNumber(ctx, co.ID, b.ID, "4A")
	require.ErrorIs(t, err, apartmentbus.ErrNotFound)

	_, _, err = bus.Apartment.QueryByNumber(ctx, other.ID, b.ID, "3A")
	require.ErrorIs(t, err, buildingbus.ErrForbidden)
}
