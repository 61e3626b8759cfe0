// Package issuedb contains issue related CRUD functionality.
package issuedb

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jcpaschoal/propman/business/domain/issuebus"
	"github.com/jcpaschoal/propman/business/sdk/order"
	"github.com/jcpaschoal/propman/business/sdk/page"
	"github.com/jcpaschoal/propman/business/sdk/sqldb"
	"github.com/jcpaschoal/propman/foundation/logger"
	"github.com/jmoiron/sqlx"
)

const issueColumns = `
		i.id, i.user_id, i.apartment_id, i.building_id, i.title, i.description,
		i.category, i.priority, i.status, i.location_details, i.created_at, i.updated_at`

// The company view follows issue -> apartment -> building, never the
// building_id stored on the issue.
const companyJoin = `
	FROM
		issues AS i
	JOIN
		apartments AS a ON a.id = i.apartment_id
	JOIN
		buildings AS b ON b.id = a.building_id
	JOIN
		users AS u ON u.user_id = i.user_id
	WHERE
		b.user_id = :company_id`

// Store manages the set of APIs for issue database access.
type Store struct {
	log *logger.Logger
	db  sqlx.ExtContext
}

// NewStore constructs the api for data access.
func NewStore(log *logger.Logger, db *sqlx.DB) *Store {
	return &Store{
		log: log,
		db:  db,
	}
}

// NewWithTx constructs a new Store value replacing the sqlx DB
// value with a sqlx DB value that is currently inside a transaction.
func (s *Store) NewWithTx(tx sqldb.CommitRollbacker) (issuebus.Storer, error) {
	ec, err := sqldb.GetExtContext(tx)
	if err != nil {
		return nil, err
	}

	store := Store{
		log: s.log,
		db:  ec,
	}

	return &store, nil
}

// Create inserts a new issue into the database.
func (s *Store) Create(ctx context.Context, iss issuebus.Issue) error {
	const q = `
	INSERT INTO issues
		(id, user_id, apartment_id, building_id, title, description,
		category, priority, status, location_details, created_at, updated_at)
	VALUES
		(:id, :user_id, :apartment_id, :building_id, :title, :description,
		:category, :priority, :status, :location_details, :created_at, :updated_at)`

	if err := sqldb.NamedExecContext(ctx, s.log, s.db, q, toDBIssue(iss)); err != nil {
		if errors.Is(err, sqldb.ErrCheckViolation) {
			return fmt.Errorf("namedexeccontext: %w", issuebus.ErrValidation)
		}
		return fmt.Errorf("namedexeccontext: %w", err)
	}

	return nil
}

// Update replaces the mutable fields of an issue.
func (s *Store) Update(ctx context.Context, iss issuebus.Issue) error {
	const q = `
	UPDATE
		issues
	SET
		title = :title,
		description = :description,
		category = :category,
		priority = :priority,
		status = :status,
		location_details = :location_details,
		updated_at = :updated_at
	WHERE
		id = :id`

	if err := sqldb.NamedExecContext(ctx, s.log, s.db, q, toDBIssue(iss)); err != nil {
		return fmt.Errorf("namedexeccontext: %w", err)
	}

	return nil
}

// QueryByID gets the specified issue from the database.
func (s *Store) QueryByID(ctx context.Context, issueID uuid.UUID) (issuebus.Issue, error) {
	data := struct {
		ID string `db:"id"`
	}{
		ID: issueID.String(),
	}

	const q = `
	SELECT` + issueColumns + `
	FROM
		issues AS i
	WHERE
		i.id = :id`

	var dbIss issue
	if err := sqldb.NamedQueryStruct(ctx, s.log, s.db, q, data, &dbIss); err != nil {
		if errors.Is(err, sqldb.ErrDBNotFound) {
			return issuebus.Issue{}, fmt.Errorf("namedquerystruct: %w", issuebus.ErrNotFound)
		}
		return issuebus.Issue{}, fmt.Errorf("namedquerystruct: %w", err)
	}

	return toBusIssue(dbIss)
}

// QueryByTenant lists the tickets a tenant raised, newest first.
func (s *Store) QueryByTenant(ctx context.Context, tenantID uuid.UUID) ([]issuebus.Issue, error) {
	data := struct {
		TenantID string `db:"user_id"`
	}{
		TenantID: tenantID.String(),
	}

	const q = `
	SELECT` + issueColumns + `
	FROM
		issues AS i
	WHERE
		i.user_id = :user_id
	ORDER BY
		i.created_at DESC`

	var dbIsss []issue
	if err := sqldb.NamedQuerySlice(ctx, s.log, s.db, q, data, &dbIsss); err != nil {
		return nil, fmt.Errorf("namedqueryslice: %w", err)
	}

	return toBusIssues(dbIsss)
}

// QueryByCompany retrieves a page of tickets across the company's buildings.
func (s *Store) QueryByCompany(ctx context.Context, companyID uuid.UUID, filter issuebus.QueryFilter, orderBy order.By, page page.Page) ([]issuebus.Report, error) {
	data := map[string]any{
		"company_id":    companyID.String(),
		"offset":        page.Offset(),
		"rows_per_page": page.RowsPerPage(),
	}

	buf := bytes.NewBufferString(`
	SELECT` + issueColumns + `,
		a.apartment_number, a.floor, b.name AS building_name,
		u.name AS reporter_name, u.email AS reporter_email` + companyJoin)

	applyFilter(filter, data, buf)

	orderByClause, err := orderByClause(orderBy)
	if err != nil {
		return nil, err
	}

	buf.WriteString(" ORDER BY " + orderByClause)
	buf.WriteString(" OFFSET :offset ROWS FETCH NEXT :rows_per_page ROWS ONLY")

	var dbReps []report
	if err := sqldb.NamedQuerySlice(ctx, s.log, s.db, buf.String(), data, &dbReps); err != nil {
		return nil, fmt.Errorf("namedqueryslice: %w", err)
	}

	return toBusReports(dbReps)
}

// CountByCompany returns the number of tickets matching the filter.
func (s *Store) CountByCompany(ctx context.Context, companyID uuid.UUID, filter issuebus.QueryFilter) (int, error) {
	data := map[string]any{
		"company_id": companyID.String(),
	}

	buf := bytes.NewBufferString(`
	SELECT
		COUNT(1) AS count` + companyJoin)

	applyFilter(filter, data, buf)

	var count struct {
		Count int `db:"count"`
	}
	if err := sqldb.NamedQueryStruct(ctx, s.log, s.db, buf.String(), data, &count); err != nil {
		return 0, fmt.Errorf("namedquerystruct: %w", err)
	}

	return count.Count, nil
}
