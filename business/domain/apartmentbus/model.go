package apartmentbus

import (
	"time"

	"github.com/google/uuid"
)

// Apartment represents a unit inside a building. The unit number is only
// unique within its building.
type Apartment struct {
	ID         uuid.UUID
	BuildingID uuid.UUID
	Number     string
	Floor      int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewApartment is what we require from clients when adding an Apartment.
type NewApartment struct {
	BuildingID uuid.UUID
	Number     string
	Floor      int
}

// UpdateApartment defines what information may be provided to correct an
// existing Apartment.
type UpdateApartment struct {
	Number *string
	Floor  *int
}
