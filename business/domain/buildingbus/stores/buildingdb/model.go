package buildingdb

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jcpaschoal/propman/business/domain/buildingbus"
	"github.com/jcpaschoal/propman/business/types/name"
)

type building struct {
	ID           uuid.UUID `db:"id"`
	UserID       uuid.UUID `db:"user_id"`
	Name         string    `db:"name"`
	Address      string    `db:"address"`
	FloorsCount  int       `db:"floors_count"`
	GarageLevels int       `db:"garage_levels"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func toDBBuilding(bus buildingbus.Building) building {
	return building{
		ID:           bus.ID,
		UserID:       bus.CompanyID,
		Name:         bus.Name.String(),
		Address:      bus.Address,
		FloorsCount:  bus.Floors,
		GarageLevels: bus.GarageLevels,
		CreatedAt:    bus.CreatedAt.UTC(),
		UpdatedAt:    bus.UpdatedAt.UTC(),
	}
}

func toBusBuilding(db building) (buildingbus.Building, error) {
	nme, err := name.Parse(db.Name)
	if err != nil {
		return buildingbus.Building{}, fmt.Errorf("parse name: %w", err)
	}

	bus := buildingbus.Building{
		ID:           db.ID,
		CompanyID:    db.UserID,
		Name:         nme,
		Address:      db.Address,
		Floors:       db.FloorsCount,
		GarageLevels: db.GarageLevels,
		CreatedAt:    db.CreatedAt.In(time.Local),
		UpdatedAt:    db.UpdatedAt.In(time.Local),
	}

	return bus, nil
}

func toBusBuildings(dbs []building) ([]buildingbus.Building, error) {
	bus := make([]buildingbus.Building, len(dbs))

	for i, db := range dbs {
		var err error
		bus[i], err = toBusBuilding(db)
		if err != nil {
			return nil, err
		}
	}

	return bus, nil
}
