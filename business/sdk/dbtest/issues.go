package dbtest

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/jcpaschoal/propman/business/domain/issuebus"
	"github.com/jcpaschoal/propman/business/sdk/order"
	"github.com/jcpaschoal/propman/business/sdk/page"
	"github.com/jcpaschoal/propman/business/sdk/sqldb"
)

// IssueStore implements issuebus.Storer.
type IssueStore struct {
	db *Database
}

// NewIssueStore constructs an issue store over db.
func NewIssueStore(db *Database) *IssueStore {
	return &IssueStore{db: db}
}

// NewWithTx implements issuebus.Storer.
func (s *IssueStore) NewWithTx(tx sqldb.CommitRollbacker) (issuebus.Storer, error) {
	if err := s.db.checkTx(tx); err != nil {
		return nil, err
	}

	return s, nil
}

// Create implements issuebus.Storer.
func (s *IssueStore) Create(ctx context.Context, iss issuebus.Issue) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, exists := s.db.data.apartments[iss.ApartmentID]; !exists {
		return fmt.Errorf("create: apartmentID[%s]: %w", iss.ApartmentID, sqldb.ErrForeignKey)
	}

	if _, exists := s.db.data.buildings[iss.BuildingID]; !exists {
		return fmt.Errorf("create: buildingID[%s]: %w", iss.BuildingID, sqldb.ErrForeignKey)
	}

	s.db.data.issues[iss.ID] = iss

	return nil
}

// Update implements issuebus.Storer.
func (s *IssueStore) Update(ctx context.Context, iss issuebus.Issue) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, exists := s.db.data.issues[iss.ID]; exists {
		s.db.data.issues[iss.ID] = iss
	}

	return nil
}

// QueryByID implements issuebus.Storer.
func (s *IssueStore) QueryByID(ctx context.Context, issueID uuid.UUID) (issuebus.Issue, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	iss, exists := s.db.data.issues[issueID]
	if !exists {
		return issuebus.Issue{}, fmt.Errorf("query: %w", issuebus.ErrNotFound)
	}

	return iss, nil
}

// QueryByTenant implements issuebus.Storer.
func (s *IssueStore) QueryByTenant(ctx context.Context, tenantID uuid.UUID) ([]issuebus.Issue, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	var issues []issuebus.Issue
	for _, iss := range s.db.data.issues {
		if iss.TenantID == tenantID {
			issues = append(issues, iss)
		}
	}

	sort.Slice(issues, func(i, j int) bool {
		return issues[i].CreatedAt.After(issues[j].CreatedAt)
	})

	return issues, nil
}

// QueryByCompany implements issuebus.Storer.
func (s *IssueStore) QueryByCompany(ctx context.Context, companyID uuid.UUID, filter issuebus.QueryFilter, orderBy order.By, pg page.Page) ([]issuebus.Report, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	reports := s.reports(companyID, filter)

	less, err := reportLess(orderBy.Field)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(reports, func(i, j int) bool {
		if orderBy.Direction == order.DESC {
			return less(reports[j], reports[i])
		}
		return less(reports[i], reports[j])
	})

	start := min(pg.Offset(), len(reports))
	end := min(start+pg.RowsPerPage(), len(reports))

	return reports[start:end], nil
}

// CountByCompany implements issuebus.Storer.
func (s *IssueStore) CountByCompany(ctx context.Context, companyID uuid.UUID, filter issuebus.QueryFilter) (int, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	return len(s.reports(companyID, filter)), nil
}

// reports walks issue -> apartment -> building like the SQL join does.
func (s *IssueStore) reports(companyID uuid.UUID, filter issuebus.QueryFilter) []issuebus.Report {
	var reports []issuebus.Report

	for _, iss := range s.db.data.issues {
		apt, exists := s.db.data.apartments[iss.ApartmentID]
		if !exists {
			continue
		}

		b, exists := s.db.data.buildings[apt.BuildingID]
		if !exists || b.CompanyID != companyID {
			continue
		}

		if !matches(filter, iss, b.ID) {
			continue
		}

		usr := s.db.data.users[iss.TenantID]

		reports = append(reports, issuebus.Report{
			Issue:           iss,
			ApartmentNumber: apt.Number,
			Floor:           apt.Floor,
			BuildingName:    b.Name.String(),
			ReporterName:    usr.Name.String(),
			ReporterEmail:   usr.Email,
		})
	}

	return reports
}

func matches(filter issuebus.QueryFilter, iss issuebus.Issue, buildingID uuid.UUID) bool {
	switch {
	case filter.BuildingID != nil && *filter.BuildingID != buildingID:
		return false
	case filter.ApartmentID != nil && *filter.ApartmentID != iss.ApartmentID:
		return false
	case filter.Status != nil && !filter.Status.Equal(iss.Status):
		return false
	case filter.Priority != nil && !filter.Priority.Equal(iss.Priority):
		return false
	case filter.Category != nil && !filter.Category.Equal(iss.Category):
		return false
	case filter.StartCreatedAt != nil && iss.CreatedAt.Before(*filter.StartCreatedAt):
		return false
	case filter.EndCreatedAt != nil && iss.CreatedAt.After(*filter.EndCreatedAt):
		return false
	}

	return true
}

func reportLess(field string) (func(a, b issuebus.Report) bool, error) {
	switch field {
	case issuebus.OrderByCreatedAt:
		return func(a, b issuebus.Report) bool { return a.CreatedAt.Before(b.CreatedAt) }, nil
	case issuebus.OrderByPriority:
		return func(a, b issuebus.Report) bool { return a.Priority.String() < b.Priority.String() }, nil
	case issuebus.OrderByStatus:
		return func(a, b issuebus.Report) bool { return a.Status.String() < b.Status.String() }, nil
	case issuebus.OrderByBuilding:
		return func(a, b issuebus.Report) bool { return a.BuildingName < b.BuildingName }, nil
	case issuebus.OrderByApartment:
		return func(a, b issuebus.Report) bool { return a.ApartmentNumber < b.ApartmentNumber }, nil
	case issuebus.OrderByTitle:
		return func(a, b issuebus.Report) bool { return a.Title < b.Title }, nil
	}

	return nil, fmt.Errorf("field %q does not exist", field)
}
