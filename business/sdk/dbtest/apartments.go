package dbtest

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/jcpaschoal/propman/business/domain/apartmentbus"
	"github.com/jcpaschoal/propman/business/sdk/sqldb"
)

// ApartmentStore implements apartmentbus.Storer.
type ApartmentStore struct {
	db *Database
}

// NewApartmentStore constructs an apartment store over db.
func NewApartmentStore(db *Database) *ApartmentStore {
	return &ApartmentStore{db: db}
}

// NewWithTx implements apartmentbus.Storer.
func (s *ApartmentStore) NewWithTx(tx sqldb.CommitRollbacker) (apartmentbus.Storer, error) {
	if err := s.db.checkTx(tx); err != nil {
		return nil, err
	}

	return s, nil
}

// Create implements apartmentbus.Storer.
func (s *ApartmentStore) Create(ctx context.Context, apt apartmentbus.Apartment) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, exists := s.db.data.buildings[apt.BuildingID]; !exists {
		return fmt.Errorf("create: buildingID[%s]: %w", apt.BuildingID, sqldb.ErrForeignKey)
	}

	if s.numberTaken(apt) {
		return fmt.Errorf("create: %w", apartmentbus.ErrUniqueNumber)
	}

	s.db.data.apartments[apt.ID] = apt

	return nil
}

// Update implements apartmentbus.Storer.
func (s *ApartmentStore) Update(ctx context.Context, apt apartmentbus.Apartment) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if s.numberTaken(apt) {
		return fmt.Errorf("update: %w", apartmentbus.ErrUniqueNumber)
	}

	if _, exists := s.db.data.apartments[apt.ID]; exists {
		s.db.data.apartments[apt.ID] = apt
	}

	return nil
}

// Delete implements apartmentbus.Storer.
func (s *ApartmentStore) Delete(ctx context.Context, apt apartmentbus.Apartment) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	s.db.data.deleteApartment(apt.ID)

	return nil
}

// QueryByID implements apartmentbus.Storer.
func (s *ApartmentStore) QueryByID(ctx context.Context, apartmentID uuid.UUID) (apartmentbus.Apartment, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	apt, exists := s.db.data.apartments[apartmentID]
	if !exists {
		return apartmentbus.Apartment{}, fmt.Errorf("query: %w", apartmentbus.ErrNotFound)
	}

	return apt, nil
}

// QueryByNumber implements apartmentbus.Storer.
func (s *ApartmentStore) QueryByNumber(ctx context.Context, buildingID uuid.UUID, number string) (apartmentbus.Apartment, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	for _, apt := range s.db.data.apartments {
		if apt.BuildingID == buildingID && apt.Number == number {
			return apt, nil
		}
	}

	return apartmentbus.Apartment{}, fmt.Errorf("query: %w", apartmentbus.ErrNotFound)
}

// QueryByBuilding implements apartmentbus.Storer.
func (s *ApartmentStore) QueryByBuilding(ctx context.Context, buildingID uuid.UUID) ([]apartmentbus.Apartment, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	var apts []apartmentbus.Apartment
	for _, apt := range s.db.data.apartments {
		if apt.BuildingID == buildingID {
			apts = append(apts, apt)
		}
	}

	sort.Slice(apts, func(i, j int) bool {
		if apts[i].Floor != apts[j].Floor {
			return apts[i].Floor < apts[j].Floor
		}
		return apts[i].Number < apts[j].Number
	})

	return apts, nil
}

func (s *ApartmentStore) numberTaken(apt apartmentbus.Apartment) bool {
	for _, other := range s.db.data.apartments {
		if other.ID != apt.ID && other.BuildingID == apt.BuildingID && other.Number == apt.Number {
			return true
		}
	}

	return false
}
