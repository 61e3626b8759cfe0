// Package apartmentbus provides business access to the apartment registry.
package apartmentbus

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jcpaschoal/propman/business/domain/buildingbus"
	"github.com/jcpaschoal/propman/business/sdk/sqldb"
	"github.com/jcpaschoal/propman/foundation/logger"
	"github.com/jcpaschoal/propman/foundation/otel"
)

// Set of error variables for CRUD operations.
var (
	ErrNotFound     = errors.New("apartment not found")
	ErrUniqueNumber = errors.New("apartment number already exists in this building")
	ErrValidation   = errors.New("apartment validation failed")
)

// MaxUnitsPerFloor bounds floor plan generation to the letters A..Z.
const MaxUnitsPerFloor = 26

// Storer interface declares the behavior this package needs to persist and
// retrieve data.
type Storer interface {
	NewWithTx(tx sqldb.CommitRollbacker) (Storer, error)
	Create(ctx context.Context, apt Apartment) error
	Update(ctx context.Context, apt Apartment) error
	Delete(ctx context.Context, apt Apartment) error
	QueryByID(ctx context.Context, apartmentID uuid.UUID) (Apartment, error)
	QueryByNumber(ctx context.Context, buildingID uuid.UUID, number string) (Apartment, error)
	QueryByBuilding(ctx context.Context, buildingID uuid.UUID) ([]Apartment, error)
}

// Core manages the set of APIs for apartment access.
type Core struct {
	log         *logger.Logger
	buildingBus *buildingbus.Core
	storer      Storer
}

// NewCore constructs an apartment core API for use.
func NewCore(log *logger.Logger, buildingBus *buildingbus.Core, storer Storer) *Core {
	return &Core{
		log:         log,
		buildingBus: buildingBus,
		storer:      storer,
	}
}

// NewWithTx constructs a new core value that will use the
// specified transaction in any store related calls.
func (c *Core) NewWithTx(tx sqldb.CommitRollbacker) (*Core, error) {
	storer, err := c.storer.NewWithTx(tx)
	if err != nil {
		return nil, err
	}

	buildingBus, err := c.buildingBus.NewWithTx(tx)
	if err != nil {
		return nil, err
	}

	return NewCore(c.log, buildingBus, storer), nil
}

// Create adds an apartment to a building owned by companyID.
func (c *Core) Create(ctx context.Context, companyID uuid.UUID, na NewApartment) (Apartment, error) {
	ctx, span := otel.AddSpan(ctx, "business.apartmentbus.create")
	defer span.End()

	b, err := c.buildingBus.QueryOwned(ctx, companyID, na.BuildingID)
	if err != nil {
		return Apartment{}, err
	}

	number, err := normalizeNumber(na.Number)
	if err != nil {
		return Apartment{}, err
	}

	if err := buildingbus.ValidateFloor(b, na.Floor); err != nil {
		return Apartment{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	now := time.Now()

	apt := Apartment{
		ID:         uuid.New(),
		BuildingID: b.ID,
		Number:     number,
		Floor:      na.Floor,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := c.storer.Create(ctx, apt); err != nil {
		return Apartment{}, fmt.Errorf("create: %w", err)
	}

	return apt, nil
}

// GenerateFloorPlan derives units for every floor above ground, numbered
// "<floor><letter>" (3A, 3B, ...). Numbers that already exist are skipped,
// so running it twice is harmless. Only the created units are returned.
func (c *Core) GenerateFloorPlan(ctx context.Context, companyID uuid.UUID, buildingID uuid.UUID, unitsPerFloor int) ([]Apartment, error) {
	ctx, span := otel.AddSpan(ctx, "business.apartmentbus.generatefloorplan")
	defer span.End()

	if unitsPerFloor < 1 || unitsPerFloor > MaxUnitsPerFloor {
		return nil, fmt.Errorf("units per floor must be 1..%d, got %d: %w", MaxUnitsPerFloor, unitsPerFloor, ErrValidation)
	}

	b, err := c.buildingBus.QueryOwned(ctx, companyID, buildingID)
	if err != nil {
		return nil, err
	}

	existing, err := c.storer.QueryByBuilding(ctx, b.ID)
	if err != nil {
		return nil, fmt.Errorf("querybybuilding: %w", err)
	}

	taken := make(map[string]struct{}, len(existing))
	for _, apt := range existing {
		taken[apt.Number] = struct{}{}
	}

	now := time.Now()

	var created []Apartment
	for floor := 1; floor <= b.Floors; floor++ {
		for unit := 0; unit < unitsPerFloor; unit++ {
			number := strconv.Itoa(floor) + string(rune('A'+unit))
			if _, exists := taken[number]; exists {
				continue
			}

			apt := Apartment{
				ID:         uuid.New(),
				BuildingID: b.ID,
				Number:     number,
				Floor:      floor,
				CreatedAt:  now,
				UpdatedAt:  now,
			}

			if err := c.storer.Create(ctx, apt); err != nil {
				return nil, fmt.Errorf("create: number[%s]: %w", number, err)
			}

			created = append(created, apt)
		}
	}

	return created, nil
}

// Update corrects the number or floor of an apartment. Only the owning
// company may do this, tenancy or not.
func (c *Core) Update(ctx context.Context, companyID uuid.UUID, apt Apartment, ua UpdateApartment) (Apartment, error) {
	ctx, span := otel.AddSpan(ctx, "business.apartmentbus.update")
	defer span.End()

	b, err := c.buildingBus.QueryOwned(ctx, companyID, apt.BuildingID)
	if err != nil {
		return Apartment{}, err
	}

	if ua.Number != nil {
		number, err := normalizeNumber(*ua.Number)
		if err != nil {
			return Apartment{}, err
		}
		apt.Number = number
	}

	if ua.Floor != nil {
		if err := buildingbus.ValidateFloor(b, *ua.Floor); err != nil {
			return Apartment{}, fmt.Errorf("%w: %w", ErrValidation, err)
		}
		apt.Floor = *ua.Floor
	}

	apt.UpdatedAt = time.Now()

	if err := c.storer.Update(ctx, apt); err != nil {
		return Apartment{}, fmt.Errorf("update: %w", err)
	}

	return apt, nil
}

// Delete removes an apartment along with its ledger entries, invitations
// and issues.
func (c *Core) Delete(ctx context.Context, companyID uuid.UUID, apt Apartment) error {
	ctx, span := otel.AddSpan(ctx, "business.apartmentbus.delete")
	defer span.End()

	if _, err := c.buildingBus.QueryOwned(ctx, companyID, apt.BuildingID); err != nil {
		return err
	}

	if err := c.storer.Delete(ctx, apt); err != nil {
		return fmt.Errorf("delete: %w", err)
	}

	return nil
}

// QueryByID finds the apartment by the specified ID without an ownership
// check. Callers that act for a company use QueryOwned.
func (c *Core) QueryByID(ctx context.Context, apartmentID uuid.UUID) (Apartment, error) {
	ctx, span := otel.AddSpan(ctx, "business.apartmentbus.querybyid")
	defer span.End()

	apt, err := c.storer.QueryByID(ctx, apartmentID)
	if err != nil {
		return Apartment{}, fmt.Errorf("query: apartmentID[%s]: %w", apartmentID, err)
	}

	return apt, nil
}

// QueryOwned finds the apartment and confirms companyID owns its building.
func (c *Core) QueryOwned(ctx context.Context, companyID uuid.UUID, apartmentID uuid.UUID) (Apartment, buildingbus.Building, error) {
	apt, err := c.QueryByID(ctx, apartmentID)
	if err != nil {
		return Apartment{}, buildingbus.Building{}, err
	}

	b, err := c.buildingBus.QueryOwned(ctx, companyID, apt.BuildingID)
	if err != nil {
		return Apartment{}, buildingbus.Building{}, err
	}

	return apt, b, nil
}

// QueryByNumber finds an apartment by its unit number inside a building
// owned by companyID.
func (c *Core) QueryByNumber(ctx context.Context, companyID uuid.UUID, buildingID uuid.UUID, number string) (Apartment, buildingbus.Building, error) {
	ctx, span := otel.AddSpan(ctx, "business.apartmentbus.querybynumber")
	defer span.End()

	b, err := c.buildingBus.QueryOwned(ctx, companyID, buildingID)
	if err != nil {
		return Apartment{}, buildingbus.Building{}, err
	}

	number, err = normalizeNumber(number)
	if err != nil {
		return Apartment{}, buildingbus.Building{}, err
	}

	apt, err := c.storer.QueryByNumber(ctx, b.ID, number)
	if err != nil {
		return Apartment{}, buildingbus.Building{}, fmt.Errorf("query: number[%s]: %w", number, err)
	}

	return apt, b, nil
}

// QueryByBuilding lists the apartments of a building owned by companyID.
func (c *Core) QueryByBuilding(ctx context.Context, companyID uuid.UUID, buildingID uuid.UUID) ([]Apartment, error) {
	ctx, span := otel.AddSpan(ctx, "business.apartmentbus.querybybuilding")
	defer span.End()

	b, err := c.buildingBus.QueryOwned(ctx, companyID, buildingID)
	if err != nil {
		return nil, err
	}

	apts, err := c.storer.QueryByBuilding(ctx, b.ID)
	if err != nil {
		return nil, fmt.Errorf("query: buildingID[%s]: %w", b.ID, err)
	}

	return apts, nil
}

func normalizeNumber(number string) (string, error) {
	number = strings.ToUpper(strings.TrimSpace(number))

	if number == "" || len(number) > 16 {
		return "", fmt.Errorf("apartment number must be 1..16 characters: %w", ErrValidation)
	}

	return number, nil
}
