package apartmentdb

import (
	"time"

	"github.com/google/uuid"
	"github.com/jcpaschoal/propman/business/domain/apartmentbus"
)

type apartment struct {
	ID              uuid.UUID `db:"id"`
	BuildingID      uuid.UUID `db:"building_id"`
	ApartmentNumber string    `db:"apartment_number"`
	Floor           int       `db:"floor"`
	CreatedAt       time.Time `db:"created_at"`
	UpdatedAt       time.Time `db:"updated_at"`
}

func toDBApartment(bus apartmentbus.Apartment) apartment {
	return apartment{
		ID:              bus.ID,
		BuildingID:      bus.BuildingID,
		ApartmentNumber: bus.Number,
		Floor:           bus.Floor,
		CreatedAt:       bus.CreatedAt.UTC(),
		UpdatedAt:       bus.UpdatedAt.UTC(),
	}
}

func toBusApartment(db apartment) apartmentbus.Apartment {
	return apartmentbus.Apartment{
		ID:         db.ID,
		BuildingID: db.BuildingID,
		Number:     db.ApartmentNumber,
		Floor:      db.Floor,
		CreatedAt:  db.CreatedAt.In(time.Local),
		UpdatedAt:  db.UpdatedAt.In(time.Local),
	}
}

func toBusApartments(dbs []apartment) []apartmentbus.Apartment {
	bus := make([]apartmentbus.Apartment, len(dbs))
	for i, db := range dbs {
		bus[i] = toBusApartment(db)
	}
	return bus
}
