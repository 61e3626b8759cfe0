// Package invitationdb contains invitation related CRUD functionality.
package invitationdb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jcpaschoal/propman/business/domain/invitationbus"
	"github.com/jcpaschoal/propman/business/sdk/sqldb"
	"github.com/jcpaschoal/propman/foundation/logger"
	"github.com/jmoiron/sqlx"
)

const selectColumns = `
	SELECT
		id, email, building_id, apartment_id, apartment_number, floor_number,
		invite_token, invited_by, expires_at, used_at, created_at
	FROM
		tenant_invitations`

// Store manages the set of APIs for invitation database access.
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
func (s *Store) NewWithTx(tx sqldb.CommitRollbacker) (invitationbus.Storer, error) {
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

// Create inserts a new invitation into the database.
func (s *Store) Create(ctx context.Context, inv invitationbus.Invitation) error {
	const q = `
	INSERT INTO tenant_invitations
		(id, email, building_id, apartment_id, apartment_number, floor_number,
		invite_token, invited_by, expires_at, used_at, created_at)
	VALUES
		(:id, :email, :building_id, :apartment_id, :apartment_number, :floor_number,
		:invite_token, :invited_by, :expires_at, :used_at, :created_at)`

	if err := sqldb.NamedExecContext(ctx, s.log, s.db, q, toDBInvitation(inv)); err != nil {
		return fmt.Errorf("namedexeccontext: %w", err)
	}

	return nil
}

// Claim marks the invitation used. The used_at guard makes the claim
// succeed for exactly one of any number of concurrent redeemers.
func (s *Store) Claim(ctx context.Context, inv invitationbus.Invitation, usedAt time.Time) error {
	data := struct {
		ID     string    `db:"id"`
		UsedAt time.Time `db:"used_at"`
	}{
		ID:     inv.ID.String(),
		UsedAt: usedAt.UTC(),
	}

	const q = `
	UPDATE
		tenant_invitations
	SET
		used_at = :used_at
	WHERE
		id = :id AND used_at IS NULL`

	if err := sqldb.NamedExecContextAffected(ctx, s.log, s.db, q, data); err != nil {
		if errors.Is(err, sqldb.ErrNoRowsAffected) {
			return fmt.Errorf("namedexeccontext: %w", invitationbus.ErrAlreadyUsed)
		}
		return fmt.Errorf("namedexeccontext: %w", err)
	}

	return nil
}

// Delete removes an invitation from the database.
func (s *Store) Delete(ctx context.Context, inv invitationbus.Invitation) error {
	data := struct {
		ID string `db:"id"`
	}{
		ID: inv.ID.String(),
	}

	const q = `
	DELETE FROM
		tenant_invitations
	WHERE
		id = :id`

	if err := sqldb.NamedExecContext(ctx, s.log, s.db, q, data); err != nil {
		return fmt.Errorf("namedexeccontext: %w", err)
	}

	return nil
}

// DeleteExpired removes unredeemed invitations that expired before the
// given time and reports how many went.
func (s *Store) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	data := struct {
		Before time.Time `db:"before"`
	}{
		Before: before.UTC(),
	}

	const q = `
	DELETE FROM
		tenant_invitations
	WHERE
		used_at IS NULL AND expires_at < :before`

	n, err := sqldb.NamedExecContextRows(ctx, s.log, s.db, q, data)
	if err != nil {
		return 0, fmt.Errorf("namedexeccontext: %w", err)
	}

	return n, nil
}

// QueryByID gets the specified invitation from the database.
func (s *Store) QueryByID(ctx context.Context, invitationID uuid.UUID) (invitationbus.Invitation, error) {
	data := struct {
		ID string `db:"id"`
	}{
		ID: invitationID.String(),
	}

	q := selectColumns + `
	WHERE
		id = :id`

	return s.queryOne(ctx, q, data)
}

// QueryByToken gets the invitation carrying the given token.
func (s *Store) QueryByToken(ctx context.Context, token string) (invitationbus.Invitation, error) {
	data := struct {
		Token string `db:"invite_token"`
	}{
		Token: token,
	}

	q := selectColumns + `
	WHERE
		invite_token = :invite_token`

	return s.queryOne(ctx, q, data)
}

// QueryByBuilding lists a building's invitations, newest first.
func (s *Store) QueryByBuilding(ctx context.Context, buildingID uuid.UUID) ([]invitationbus.Invitation, error) {
	data := struct {
		BuildingID string `db:"building_id"`
	}{
		BuildingID: buildingID.String(),
	}

	q := selectColumns + `
	WHERE
		building_id = :building_id
	ORDER BY
		created_at DESC`

	var dbInvs []invitation
	if err := sqldb.NamedQuerySlice(ctx, s.log, s.db, q, data, &dbInvs); err != nil {
		return nil, fmt.Errorf("namedqueryslice: %w", err)
	}

	return toBusInvitations(dbInvs)
}

func (s *Store) queryOne(ctx context.Context, q string, data any) (invitationbus.Invitation, error) {
	var dbInv invitation
	if err := sqldb.NamedQueryStruct(ctx, s.log, s.db, q, data, &dbInv); err != nil {
		if errors.Is(err, sqldb.ErrDBNotFound) {
			return invitationbus.Invitation{}, fmt.Errorf("namedquerystruct: %w", invitationbus.ErrNotFound)
		}
		return invitationbus.Invitation{}, fmt.Errorf("namedquerystruct: %w", err)
	}

	return toBusInvitation(dbInv)
}
