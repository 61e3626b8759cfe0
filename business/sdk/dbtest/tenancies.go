package dbtest

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/jcpaschoal/propman/business/domain/tenancybus"
	"github.com/jcpaschoal/propman/business/sdk/sqldb"
)

// TenancyStore implements tenancybus.Storer.
type TenancyStore struct {
	db *Database
}

// NewTenancyStore constructs a ledger store over db.
func NewTenancyStore(db *Database) *TenancyStore {
	return &TenancyStore{db: db}
}

// NewWithTx implements tenancybus.Storer.
func (s *TenancyStore) NewWithTx(tx sqldb.CommitRollbacker) (tenancybus.Storer, error) {
	if err := s.db.checkTx(tx); err != nil {
		return nil, err
	}

	return s, nil
}

// Create implements tenancybus.Storer.
func (s *TenancyStore) Create(ctx context.Context, t tenancybus.Tenancy) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, exists := s.db.data.apartments[t.ApartmentID]; !exists {
		return fmt.Errorf("create: apartmentID[%s]: %w", t.ApartmentID, sqldb.ErrForeignKey)
	}

	if _, exists := s.db.data.users[t.TenantID]; !exists {
		return fmt.Errorf("create: tenantID[%s]: %w", t.TenantID, sqldb.ErrForeignKey)
	}

	if err := s.checkLive(t); err != nil {
		return fmt.Errorf("create: %w", err)
	}

	s.db.data.tenancies[t.ID] = t

	return nil
}

// Update implements tenancybus.Storer.
func (s *TenancyStore) Update(ctx context.Context, t tenancybus.Tenancy) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if err := s.checkLive(t); err != nil {
		return fmt.Errorf("update: %w", err)
	}

	if _, exists := s.db.data.tenancies[t.ID]; exists {
		s.db.data.tenancies[t.ID] = t
	}

	return nil
}

// QueryByID implements tenancybus.Storer.
func (s *TenancyStore) QueryByID(ctx context.Context, tenancyID uuid.UUID) (tenancybus.Tenancy, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	t, exists := s.db.data.tenancies[tenancyID]
	if !exists {
		return tenancybus.Tenancy{}, fmt.Errorf("query: %w", tenancybus.ErrNotFound)
	}

	return t, nil
}

// QueryLiveByTenant implements tenancybus.Storer.
func (s *TenancyStore) QueryLiveByTenant(ctx context.Context, tenantID uuid.UUID) (tenancybus.Tenancy, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	t, ok := s.liveByTenant(tenantID)
	if !ok {
		return tenancybus.Tenancy{}, fmt.Errorf("query: %w", tenancybus.ErrNotFound)
	}

	return t, nil
}

// QueryRosterByTenant implements tenancybus.Storer.
func (s *TenancyStore) QueryRosterByTenant(ctx context.Context, tenantID uuid.UUID) (tenancybus.Roster, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	t, ok := s.liveByTenant(tenantID)
	if !ok {
		return tenancybus.Roster{}, fmt.Errorf("query: %w", tenancybus.ErrNotFound)
	}

	return s.roster(t), nil
}

// QueryByCompany implements tenancybus.Storer.
func (s *TenancyStore) QueryByCompany(ctx context.Context, companyID uuid.UUID, filter tenancybus.QueryFilter) ([]tenancybus.Roster, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	var rs []tenancybus.Roster
	for _, t := range s.db.data.tenancies {
		r := s.roster(t)

		if r.CompanyID != companyID {
			continue
		}
		if filter.BuildingID != nil && r.BuildingID != *filter.BuildingID {
			continue
		}
		if filter.Status != nil && !r.Status.Equal(*filter.Status) {
			continue
		}

		rs = append(rs, r)
	}

	sort.Slice(rs, func(i, j int) bool {
		switch {
		case rs[i].BuildingName != rs[j].BuildingName:
			return rs[i].BuildingName < rs[j].BuildingName
		case rs[i].Floor != rs[j].Floor:
			return rs[i].Floor < rs[j].Floor
		case rs[i].ApartmentNumber != rs[j].ApartmentNumber:
			return rs[i].ApartmentNumber < rs[j].ApartmentNumber
		}
		return rs[i].UpdatedAt.Before(rs[j].UpdatedAt)
	})

	return rs, nil
}

// checkLive enforces the two partial unique indexes over live entries.
func (s *TenancyStore) checkLive(t tenancybus.Tenancy) error {
	if !t.Status.Live() {
		return nil
	}

	for _, other := range s.db.data.tenancies {
		if other.ID == t.ID || !other.Status.Live() || other.TenantID != t.TenantID {
			continue
		}

		if other.ApartmentID == t.ApartmentID {
			return tenancybus.ErrDuplicate
		}
		return tenancybus.ErrTenantAssigned
	}

	return nil
}

func (s *TenancyStore) liveByTenant(tenantID uuid.UUID) (tenancybus.Tenancy, bool) {
	for _, t := range s.db.data.tenancies {
		if t.TenantID == tenantID && t.Status.Live() {
			return t, true
		}
	}

	return tenancybus.Tenancy{}, false
}

func (s *TenancyStore) roster(t tenancybus.Tenancy) tenancybus.Roster {
	apt := s.db.data.apartments[t.ApartmentID]
	b := s.db.data.buildings[apt.BuildingID]
	usr := s.db.data.users[t.TenantID]

	return tenancybus.Roster{
		TenancyID:       t.ID,
		TenantID:        t.TenantID,
		TenantName:      usr.Name.String(),
		TenantEmail:     usr.Email,
		ApartmentID:     apt.ID,
		ApartmentNumber: apt.Number,
		Floor:           apt.Floor,
		BuildingID:      b.ID,
		BuildingName:    b.Name.String(),
		CompanyID:       b.CompanyID,
		Status:          t.Status,
		JoinedAt:        t.JoinedAt,
		UpdatedAt:       t.UpdatedAt,
	}
}
