package buildingbus

import (
	"time"

	"github.com/google/uuid"
	"github.com/jcpaschoal/propman/business/types/name"
)

// Building represents a physical building owned by exactly one company.
type Building struct {
	ID           uuid.UUID
	CompanyID    uuid.UUID
	Name         name.Name
	Address      string
	Floors       int
	GarageLevels int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewBuilding is what we require from clients when adding a Building.
type NewBuilding struct {
	CompanyID    uuid.UUID
	Name         name.Name
	Address      string
	Floors       int
	GarageLevels int
}

// UpdateBuilding defines what information may be provided to modify an
// existing Building. All fields are optional.
type UpdateBuilding struct {
	Name         *name.Name
	Address      *string
	Floors       *int
	GarageLevels *int
}

// FloorBounds is the lowest and highest floor holding an apartment.
type FloorBounds struct {
	Lowest  int
	Highest int
}
