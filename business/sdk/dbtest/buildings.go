package dbtest

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/jcpaschoal/propman/business/domain/buildingbus"
	"github.com/jcpaschoal/propman/business/sdk/sqldb"
)

// BuildingStore implements buildingbus.Storer.
type BuildingStore struct {
	db *Database
}

// NewBuildingStore constructs a building store over db.
func NewBuildingStore(db *Database) *BuildingStore {
	return &BuildingStore{db: db}
}

// NewWithTx implements buildingbus.Storer.
func (s *BuildingStore) NewWithTx(tx sqldb.CommitRollbacker) (buildingbus.Storer, error) {
	if err := s.db.checkTx(tx); err != nil {
		return nil, err
	}

	return s, nil
}

// Create implements buildingbus.Storer.
func (s *BuildingStore) Create(ctx context.Context, b buildingbus.Building) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, exists := s.db.data.users[b.CompanyID]; !exists {
		return fmt.Errorf("create: userID[%s]: %w", b.CompanyID, sqldb.ErrForeignKey)
	}

	if b.Floors < 0 || b.GarageLevels < 0 {
		return fmt.Errorf("create: %w", buildingbus.ErrValidation)
	}

	s.db.data.buildings[b.ID] = b

	return nil
}

// Update implements buildingbus.Storer.
func (s *BuildingStore) Update(ctx context.Context, b buildingbus.Building) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if b.Floors < 0 || b.GarageLevels < 0 {
		return fmt.Errorf("update: %w", buildingbus.ErrValidation)
	}

	if _, exists := s.db.data.buildings[b.ID]; exists {
		s.db.data.buildings[b.ID] = b
	}

	return nil
}

// Delete implements buildingbus.Storer.
func (s *BuildingStore) Delete(ctx context.Context, b buildingbus.Building) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	s.db.data.deleteBuilding(b.ID)

	return nil
}

// QueryByID implements buildingbus.Storer.
func (s *BuildingStore) QueryByID(ctx context.Context, buildingID uuid.UUID) (buildingbus.Building, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	b, exists := s.db.data.buildings[buildingID]
	if !exists {
		return buildingbus.Building{}, fmt.Errorf("query: %w", buildingbus.ErrNotFound)
	}

	return b, nil
}

// QueryByCompany implements buildingbus.Storer.
func (s *BuildingStore) QueryByCompany(ctx context.Context, companyID uuid.UUID) ([]buildingbus.Building, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	var bs []buildingbus.Building
	for _, b := range s.db.data.buildings {
		if b.CompanyID == companyID {
			bs = append(bs, b)
		}
	}

	sort.Slice(bs, func(i, j int) bool {
		return bs[i].Name.String() < bs[j].Name.String()
	})

	return bs, nil
}

// QueryFloorBounds implements buildingbus.Storer.
func (s *BuildingStore) QueryFloorBounds(ctx context.Context, buildingID uuid.UUID) (buildingbus.FloorBounds, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	var bounds buildingbus.FloorBounds
	first := true

	for _, apt := range s.db.data.apartments {
		if apt.BuildingID != buildingID {
			continue
		}

		if first || apt.Floor < bounds.Lowest {
			bounds.Lowest = apt.Floor
		}
		if first || apt.Floor > bounds.Highest {
			bounds.Highest = apt.Floor
		}
		first = false
	}

	return bounds, nil
}
