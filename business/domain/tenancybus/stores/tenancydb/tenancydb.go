// Package tenancydb contains tenancy ledger related CRUD functionality.
package tenancydb

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jcpaschoal/propman/business/domain/tenancybus"
	"github.com/jcpaschoal/propman/business/sdk/sqldb"
	"github.com/jcpaschoal/propman/foundation/logger"
	"github.com/jmoiron/sqlx"
)

// Names of the partial unique indexes guarding the ledger.
const (
	apartmentTenantLiveKey = "apartment_tenants_apartment_tenant_live_key"
	tenantLiveKey          = "apartment_tenants_tenant_live_key"
)

const rosterSelect = `
	SELECT
		t.id AS tenancy_id, t.tenant_id, u.name AS tenant_name, u.email AS tenant_email,
		a.id AS apartment_id, a.apartment_number, a.floor,
		b.id AS building_id, b.name AS building_name, b.user_id AS company_id,
		t.status, t.joined_at, t.updated_at
	FROM
		apartment_tenants AS t
	JOIN
		apartments AS a ON a.id = t.apartment_id
	JOIN
		buildings AS b ON b.id = a.building_id
	JOIN
		users AS u ON u.user_id = t.tenant_id`

// Store manages the set of APIs for ledger database access.
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
func (s *Store) NewWithTx(tx sqldb.CommitRollbacker) (tenancybus.Storer, error) {
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

// Create inserts a ledger entry. The partial unique indexes are the last
// line of defence against concurrent assignment.
func (s *Store) Create(ctx context.Context, t tenancybus.Tenancy) error {
	const q = `
	INSERT INTO apartment_tenants
		(id, apartment_id, tenant_id, status, invited_by, invited_at, joined_at, created_at, updated_at)
	VALUES
		(:id, :apartment_id, :tenant_id, :status, :invited_by, :invited_at, :joined_at, :created_at, :updated_at)`

	if err := sqldb.NamedExecContext(ctx, s.log, s.db, q, toDBTenancy(t)); err != nil {
		return fmt.Errorf("namedexeccontext: %w", translateUnique(err))
	}

	return nil
}

// Update writes the status and timestamps of a ledger entry.
func (s *Store) Update(ctx context.Context, t tenancybus.Tenancy) error {
	const q = `
	UPDATE
		apartment_tenants
	SET
		status = :status,
		joined_at = :joined_at,
		updated_at = :updated_at
	WHERE
		id = :id`

	if err := sqldb.NamedExecContext(ctx, s.log, s.db, q, toDBTenancy(t)); err != nil {
		return fmt.Errorf("namedexeccontext: %w", translateUnique(err))
	}

	return nil
}

// QueryByID finds the ledger entry identified by a given ID.
func (s *Store) QueryByID(ctx context.Context, tenancyID uuid.UUID) (tenancybus.Tenancy, error) {
	data := struct {
		ID string `db:"id"`
	}{
		ID: tenancyID.String(),
	}

	const q = `
	SELECT
		id, apartment_id, tenant_id, status, invited_by, invited_at, joined_at, created_at, updated_at
	FROM
		apartment_tenants
	WHERE
		id = :id`

	var dbTen tenancy
	if err := sqldb.NamedQueryStruct(ctx, s.log, s.db, q, data, &dbTen); err != nil {
		if errors.Is(err, sqldb.ErrDBNotFound) {
			return tenancybus.Tenancy{}, fmt.Errorf("namedquerystruct: %w", tenancybus.ErrNotFound)
		}
		return tenancybus.Tenancy{}, fmt.Errorf("namedquerystruct: %w", err)
	}

	return toBusTenancy(dbTen)
}

// QueryLiveByTenant finds the tenant's entry that is not inactive.
func (s *Store) QueryLiveByTenant(ctx context.Context, tenantID uuid.UUID) (tenancybus.Tenancy, error) {
	data := struct {
		TenantID string `db:"tenant_id"`
	}{
		TenantID: tenantID.String(),
	}

	const q = `
	SELECT
		id, apartment_id, tenant_id, status, invited_by, invited_at, joined_at, created_at, updated_at
	FROM
		apartment_tenants
	WHERE
		tenant_id = :tenant_id AND status <> 'inactive'`

	var dbTen tenancy
	if err := sqldb.NamedQueryStruct(ctx, s.log, s.db, q, data, &dbTen); err != nil {
		if errors.Is(err, sqldb.ErrDBNotFound) {
			return tenancybus.Tenancy{}, fmt.Errorf("namedquerystruct: %w", tenancybus.ErrNotFound)
		}
		return tenancybus.Tenancy{}, fmt.Errorf("namedquerystruct: %w", err)
	}

	return toBusTenancy(dbTen)
}

// QueryRosterByTenant resolves the tenant's live entry to its apartment and
// building.
func (s *Store) QueryRosterByTenant(ctx context.Context, tenantID uuid.UUID) (tenancybus.Roster, error) {
	data := struct {
		TenantID string `db:"tenant_id"`
	}{
		TenantID: tenantID.String(),
	}

	q := rosterSelect + `
	WHERE
		t.tenant_id = :tenant_id AND t.status <> 'inactive'`

	var dbRos roster
	if err := sqldb.NamedQueryStruct(ctx, s.log, s.db, q, data, &dbRos); err != nil {
		if errors.Is(err, sqldb.ErrDBNotFound) {
			return tenancybus.Roster{}, fmt.Errorf("namedquerystruct: %w", tenancybus.ErrNotFound)
		}
		return tenancybus.Roster{}, fmt.Errorf("namedquerystruct: %w", err)
	}

	return toBusRoster(dbRos)
}

// QueryByCompany walks apartment -> building -> company in a single join.
func (s *Store) QueryByCompany(ctx context.Context, companyID uuid.UUID, filter tenancybus.QueryFilter) ([]tenancybus.Roster, error) {
	data := map[string]any{
		"company_id": companyID.String(),
	}

	buf := bytes.NewBufferString(rosterSelect)
	buf.WriteString(`
	WHERE
		b.user_id = :company_id`)
	applyFilter(filter, data, buf)
	buf.WriteString(`
	ORDER BY
		b.name, a.floor, a.apartment_number, t.created_at`)

	var dbRos []roster
	if err := sqldb.NamedQuerySlice(ctx, s.log, s.db, buf.String(), data, &dbRos); err != nil {
		return nil, fmt.Errorf("namedqueryslice: %w", err)
	}

	return toBusRosters(dbRos)
}

func translateUnique(err error) error {
	var dupErr sqldb.ErrDBDuplicatedEntry
	if !errors.As(err, &dupErr) {
		return err
	}

	switch dupErr.Constraint {
	case apartmentTenantLiveKey:
		return tenancybus.ErrDuplicate
	case tenantLiveKey:
		return tenancybus.ErrTenantAssigned
	}

	return err
}
