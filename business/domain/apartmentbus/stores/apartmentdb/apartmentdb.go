// Package apartmentdb contains apartment related CRUD functionality.
package apartmentdb

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jcpaschoal/propman/business/domain/apartmentbus"
	"github.com/jcpaschoal/propman/business/sdk/sqldb"
	"github.com/jcpaschoal/propman/foundation/logger"
	"github.com/jmoiron/sqlx"
)

// Store manages the set of APIs for apartment database access.
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
func (s *Store) NewWithTx(tx sqldb.CommitRollbacker) (apartmentbus.Storer, error) {
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

// Create adds an apartment to the database.
func (s *Store) Create(ctx context.Context, apt apartmentbus.Apartment) error {
	const q = `
	INSERT INTO apartments
		(id, building_id, apartment_number, floor, created_at, updated_at)
	VALUES
		(:id, :building_id, :apartment_number, :floor, :created_at, :updated_at)`

	if err := sqldb.NamedExecContext(ctx, s.log, s.db, q, toDBApartment(apt)); err != nil {
		if errors.As(err, new(sqldb.ErrDBDuplicatedEntry)) {
			return fmt.Errorf("namedexeccontext: %w", apartmentbus.ErrUniqueNumber)
		}
		return fmt.Errorf("namedexeccontext: %w", err)
	}

	return nil
}

// Update modifies data about an apartment.
func (s *Store) Update(ctx context.Context, apt apartmentbus.Apartment) error {
	const q = `
	UPDATE
		apartments
	SET
		apartment_number = :apartment_number,
		floor = :floor,
		updated_at = :updated_at
	WHERE
		id = :id`

	if err := sqldb.NamedExecContext(ctx, s.log, s.db, q, toDBApartment(apt)); err != nil {
		if errors.As(err, new(sqldb.ErrDBDuplicatedEntry)) {
			return fmt.Errorf("namedexeccontext: %w", apartmentbus.ErrUniqueNumber)
		}
		return fmt.Errorf("namedexeccontext: %w", err)
	}

	return nil
}

// Delete removes the apartment. Ledger rows, invitations and issues follow
// through the foreign key cascades.
func (s *Store) Delete(ctx context.Context, apt apartmentbus.Apartment) error {
	data := struct {
		ID string `db:"id"`
	}{
		ID: apt.ID.String(),
	}

	const q = `
	DELETE FROM
		apartments
	WHERE
		id = :id`

	if err := sqldb.NamedExecContext(ctx, s.log, s.db, q, data); err != nil {
		return fmt.Errorf("namedexeccontext: %w", err)
	}

	return nil
}

// QueryByID finds the apartment identified by a given ID.
func (s *Store) QueryByID(ctx context.Context, apartmentID uuid.UUID) (apartmentbus.Apartment, error) {
	data := struct {
		ID string `db:"id"`
	}{
		ID: apartmentID.String(),
	}

	const q = `
	SELECT
		id, building_id, apartment_number, floor, created_at, updated_at
	FROM
		apartments
	WHERE
		id = :id`

	var dbApt apartment
	if err := sqldb.NamedQueryStruct(ctx, s.log, s.db, q, data, &dbApt); err != nil {
		if errors.Is(err, sqldb.ErrDBNotFound) {
			return apartmentbus.Apartment{}, fmt.Errorf("namedquerystruct: %w", apartmentbus.ErrNotFound)
		}
		return apartmentbus.Apartment{}, fmt.Errorf("namedquerystruct: %w", err)
	}

	return toBusApartment(dbApt), nil
}

// QueryByNumber finds the apartment with the unit number inside a building.
func (s *Store) QueryByNumber(ctx context.Context, buildingID uuid.UUID, number string) (apartmentbus.Apartment, error) {
	data := struct {
		BuildingID string `db:"building_id"`
		Number     string `db:"apartment_number"`
	}{
		BuildingID: buildingID.String(),
		Number:     number,
	}

	const q = `
	SELECT
		id, building_id, apartment_number, floor, created_at, updated_at
	FROM
		apartments
	WHERE
		building_id = :building_id AND apartment_number = :apartment_number`

	var dbApt apartment
	if err := sqldb.NamedQueryStruct(ctx, s.log, s.db, q, data, &dbApt); err != nil {
		if errors.Is(err, sqldb.ErrDBNotFound) {
			return apartmentbus.Apartment{}, fmt.Errorf("namedquerystruct: %w", apartmentbus.ErrNotFound)
		}
		return apartmentbus.Apartment{}, fmt.Errorf("namedquerystruct: %w", err)
	}

	return toBusApartment(dbApt), nil
}

// QueryByBuilding lists the apartments of a building ordered by floor.
func (s *Store) QueryByBuilding(ctx context.Context, buildingID uuid.UUID) ([]apartmentbus.Apartment, error) {
	data := struct {
		BuildingID string `db:"building_id"`
	}{
		BuildingID: buildingID.String(),
	}

	const q = `
	SELECT
		id, building_id, apartment_number, floor, created_at, updated_at
	FROM
		apartments
	WHERE
		building_id = :building_id
	ORDER BY
		floor, apartment_number`

	var dbApts []apartment
	if err := sqldb.NamedQuerySlice(ctx, s.log, s.db, q, data, &dbApts); err != nil {
		return nil, fmt.Errorf("namedqueryslice: %w", err)
	}

	return toBusApartments(dbApts), nil
}
