// Package buildingbus provides business access to the building registry.
package buildingbus

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jcpaschoal/propman/business/sdk/sqldb"
	"github.com/jcpaschoal/propman/foundation/logger"
	"github.com/jcpaschoal/propman/foundation/otel"
)

// Set of error variables for CRUD operations.
var (
	ErrNotFound   = errors.New("building not found")
	ErrForbidden  = errors.New("building is owned by another company")
	ErrValidation = errors.New("building validation failed")
)

// Storer interface declares the behavior this package needs to persist and
// retrieve data.
type Storer interface {
	NewWithTx(tx sqldb.CommitRollbacker) (Storer, error)
	Create(ctx context.Context, b Building) error
	Update(ctx context.Context, b Building) error
	Delete(ctx context.Context, b Building) error
	QueryByID(ctx context.Context, buildingID uuid.UUID) (Building, error)
	QueryByCompany(ctx context.Context, companyID uuid.UUID) ([]Building, error)
	QueryFloorBounds(ctx context.Context, buildingID uuid.UUID) (FloorBounds, error)
}

// Core manages the set of APIs for building access.
type Core struct {
	log    *logger.Logger
	storer Storer
}

// NewCore constructs a building core API for use.
func NewCore(log *logger.Logger, storer Storer) *Core {
	return &Core{
		log:    log,
		storer: storer,
	}
}

// NewWithTx constructs a new core value that will use the
// specified transaction in any store related calls.
func (c *Core) NewWithTx(tx sqldb.CommitRollbacker) (*Core, error) {
	storer, err := c.storer.NewWithTx(tx)
	if err != nil {
		return nil, err
	}

	return NewCore(c.log, storer), nil
}

// Create adds a new building owned by nb.CompanyID.
func (c *Core) Create(ctx context.Context, nb NewBuilding) (Building, error) {
	ctx, span := otel.AddSpan(ctx, "business.buildingbus.create")
	defer span.End()

	if err := validateLayout(nb.Floors, nb.GarageLevels); err != nil {
		return Building{}, err
	}

	address := strings.TrimSpace(nb.Address)
	if address == "" {
		return Building{}, fmt.Errorf("address is required: %w", ErrValidation)
	}

	now := time.Now()

	b := Building{
		ID:           uuid.New(),
		CompanyID:    nb.CompanyID,
		Name:         nb.Name,
		Address:      address,
		Floors:       nb.Floors,
		GarageLevels: nb.GarageLevels,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := c.storer.Create(ctx, b); err != nil {
		return Building{}, fmt.Errorf("create: %w", err)
	}

	return b, nil
}

// Update modifies a building owned by companyID. Shrinking the layout below
// a floor that already holds an apartment is rejected.
func (c *Core) Update(ctx context.Context, companyID uuid.UUID, b Building, ub UpdateBuilding) (Building, error) {
	ctx, span := otel.AddSpan(ctx, "business.buildingbus.update")
	defer span.End()

	if err := CheckOwner(b, companyID); err != nil {
		return Building{}, err
	}

	if ub.Name != nil {
		b.Name = *ub.Name
	}

	if ub.Address != nil {
		address := strings.TrimSpace(*ub.Address)
		if address == "" {
			return Building{}, fmt.Errorf("address is required: %w", ErrValidation)
		}
		b.Address = address
	}

	if ub.Floors != nil || ub.GarageLevels != nil {
		if ub.Floors != nil {
			b.Floors = *ub.Floors
		}
		if ub.GarageLevels != nil {
			b.GarageLevels = *ub.GarageLevels
		}

		if err := validateLayout(b.Floors, b.GarageLevels); err != nil {
			return Building{}, err
		}

		bounds, err := c.storer.QueryFloorBounds(ctx, b.ID)
		if err != nil {
			return Building{}, fmt.Errorf("queryfloorbounds: %w", err)
		}

		if bounds.Highest > b.Floors || bounds.Lowest < -b.GarageLevels {
			return Building{}, fmt.Errorf("apartments exist on floors %d..%d: %w", bounds.Lowest, bounds.Highest, ErrValidation)
		}
	}

	b.UpdatedAt = time.Now()

	if err := c.storer.Update(ctx, b); err != nil {
		return Building{}, fmt.Errorf("update: %w", err)
	}

	return b, nil
}

// Delete removes a building owned by companyID. Its apartments, ledger
// entries, invitations and issues are removed with it.
func (c *Core) Delete(ctx context.Context, companyID uuid.UUID, b Building) error {
	ctx, span := otel.AddSpan(ctx, "business.buildingbus.delete")
	defer span.End()

	if err := CheckOwner(b, companyID); err != nil {
		return err
	}

	if err := c.storer.Delete(ctx, b); err != nil {
		return fmt.Errorf("delete: %w", err)
	}

	return nil
}

// QueryByID finds the building by the specified ID.
func (c *Core) QueryByID(ctx context.Context, buildingID uuid.UUID) (Building, error) {
	ctx, span := otel.AddSpan(ctx, "business.buildingbus.querybyid")
	defer span.End()

	b, err := c.storer.QueryByID(ctx, buildingID)
	if err != nil {
		return Building{}, fmt.Errorf("query: buildingID[%s]: %w", buildingID, err)
	}

	return b, nil
}

// QueryOwned finds the building and confirms companyID owns it.
func (c *Core) QueryOwned(ctx context.Context, companyID uuid.UUID, buildingID uuid.UUID) (Building, error) {
	b, err := c.QueryByID(ctx, buildingID)
	if err != nil {
		return Building{}, err
	}

	if err := CheckOwner(b, companyID); err != nil {
		return Building{}, err
	}

	return b, nil
}

// QueryByCompany returns the buildings owned by companyID and nothing else.
func (c *Core) QueryByCompany(ctx context.Context, companyID uuid.UUID) ([]Building, error) {
	ctx, span := otel.AddSpan(ctx, "business.buildingbus.querybycompany")
	defer span.End()

	bs, err := c.storer.QueryByCompany(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("query: companyID[%s]: %w", companyID, err)
	}

	return bs, nil
}

// CheckOwner returns ErrForbidden unless companyID owns b.
func CheckOwner(b Building, companyID uuid.UUID) error {
	if b.CompanyID != companyID {
		return fmt.Errorf("buildingID[%s] companyID[%s]: %w", b.ID, companyID, ErrForbidden)
	}

	return nil
}

// ValidateFloor returns ErrValidation when floor lies outside the building.
// Garage levels are the negative floors.
func ValidateFloor(b Building, floor int) error {
	if floor < -b.GarageLevels || floor > b.Floors {
		return fmt.Errorf("floor %d outside %d..%d: %w", floor, -b.GarageLevels, b.Floors, ErrValidation)
	}

	return nil
}

func validateLayout(floors int, garage int) error {
	if floors < 0 {
		return fmt.Errorf("floors must not be negative, got %d: %w", floors, ErrValidation)
	}

	if garage < 0 {
		return fmt.Errorf("garage levels must not be negative, got %d: %w", garage, ErrValidation)
	}

	return nil
}
