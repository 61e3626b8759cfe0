// Package buildingdb contains building related CRUD functionality.
package buildingdb

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jcpaschoal/propman/business/domain/buildingbus"
	"github.com/jcpaschoal/propman/business/sdk/sqldb"
	"github.com/jcpaschoal/propman/foundation/logger"
	"github.com/jmoiron/sqlx"
)

// Store manages the set of APIs for building database access.
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
func (s *Store) NewWithTx(tx sqldb.CommitRollbacker) (buildingbus.Storer, error) {
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

// Create adds a building to the database.
func (s *Store) Create(ctx context.Context, b buildingbus.Building) error {
	const q = `
	INSERT INTO buildings
		(id, user_id, name, address, floors_count, garage_levels, created_at, updated_at)
	VALUES
		(:id, :user_id, :name, :address, :floors_count, :garage_levels, :created_at, :updated_at)`

	if err := sqldb.NamedExecContext(ctx, s.log, s.db, q, toDBBuilding(b)); err != nil {
		if errors.Is(err, sqldb.ErrCheckViolation) {
			return fmt.Errorf("namedexeccontext: %w", buildingbus.ErrValidation)
		}
		return fmt.Errorf("namedexeccontext: %w", err)
	}

	return nil
}

// Update modifies data about a building.
func (s *Store) Update(ctx context.Context, b buildingbus.Building) error {
	const q = `
	UPDATE
		buildings
	SET
		name = :name,
		address = :address,
		floors_count = :floors_count,
		garage_levels = :garage_levels,
		updated_at = :updated_at
	WHERE
		id = :id`

	if err := sqldb.NamedExecContext(ctx, s.log, s.db, q, toDBBuilding(b)); err != nil {
		if errors.Is(err, sqldb.ErrCheckViolation) {
			return fmt.Errorf("namedexeccontext: %w", buildingbus.ErrValidation)
		}
		return fmt.Errorf("namedexeccontext: %w", err)
	}

	return nil
}

// Delete removes the building identified by a given ID. Dependent rows are
// removed by the foreign key cascades.
func (s *Store) Delete(ctx context.Context, b buildingbus.Building) error {
	data := struct {
		ID string `db:"id"`
	}{
		ID: b.ID.String(),
	}

	const q = `
	DELETE FROM
		buildings
	WHERE
		id = :id`

	if err := sqldb.NamedExecContext(ctx, s.log, s.db, q, data); err != nil {
		return fmt.Errorf("namedexeccontext: %w", err)
	}

	return nil
}

// QueryByID finds the building identified by a given ID.
func (s *Store) QueryByID(ctx context.Context, buildingID uuid.UUID) (buildingbus.Building, error) {
	data := struct {
		ID string `db:"id"`
	}{
		ID: buildingID.String(),
	}

	const q = `
	SELECT
		id, user_id, name, address, floors_count, garage_levels, created_at, updated_at
	FROM
		buildings
	WHERE
		id = :id`

	var dbBld building
	if err := sqldb.NamedQueryStruct(ctx, s.log, s.db, q, data, &dbBld); err != nil {
		if errors.Is(err, sqldb.ErrDBNotFound) {
			return buildingbus.Building{}, fmt.Errorf("namedquerystruct: %w", buildingbus.ErrNotFound)
		}
		return buildingbus.Building{}, fmt.Errorf("namedquerystruct: %w", err)
	}

	return toBusBuilding(dbBld)
}

// QueryByCompany finds the buildings owned by the company.
func (s *Store) QueryByCompany(ctx context.Context, companyID uuid.UUID) ([]buildingbus.Building, error) {
	data := struct {
		UserID string `db:"user_id"`
	}{
		UserID: companyID.String(),
	}

	const q = `
	SELECT
		id, user_id, name, address, floors_count, garage_levels, created_at, updated_at
	FROM
		buildings
	WHERE
		user_id = :user_id
	ORDER BY
		name, id`

	var dbBlds []building
	if err := sqldb.NamedQuerySlice(ctx, s.log, s.db, q, data, &dbBlds); err != nil {
		return nil, fmt.Errorf("namedqueryslice: %w", err)
	}

	return toBusBuildings(dbBlds)
}

// QueryFloorBounds returns the lowest and highest floor in use by apartments.
func (s *Store) QueryFloorBounds(ctx context.Context, buildingID uuid.UUID) (buildingbus.FloorBounds, error) {
	data := struct {
		ID string `db:"building_id"`
	}{
		ID: buildingID.String(),
	}

	const q = `
	SELECT
		COALESCE(MIN(floor), 0) AS lowest,
		COALESCE(MAX(floor), 0) AS highest
	FROM
		apartments
	WHERE
		building_id = :building_id`

	var bounds struct {
		Lowest  int `db:"lowest"`
		Highest int `db:"highest"`
	}
	if err := sqldb.NamedQueryStruct(ctx, s.log, s.db, q, data, &bounds); err != nil {
		return buildingbus.FloorBounds{}, fmt.Errorf("namedquerystruct: %w", err)
	}

	return buildingbus.FloorBounds{Lowest: bounds.Lowest, Highest: bounds.Highest}, nil
}
