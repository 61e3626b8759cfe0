package invitationdb_test

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jcpaschoal/propman/business/domain/invitationbus"
	"github.com/jcpaschoal/propman/business/domain/invitationbus/stores/invitationdb"
	"github.com/jcpaschoal/propman/foundation/logger"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var columns = []string{
	"id", "email", "building_id", "apartment_id", "apartment_number", "floor_number",
	"invite_token", "invited_by", "expires_at", "used_at", "created_at",
}

func newStore(t *testing.T) (*invitationdb.Store, sqlmock.Sqlmock) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	t.Cleanup(func() {
		mockDB.Close()
	})

	log := logger.New(io.Discard, logger.LevelInfo, "TEST", nil)

	return invitationdb.NewStore(log, sqlx.NewDb(mockDB, "pgx")), mock
}

func TestClaim(t *testing.T) {
	store, mock := newStore(t)

	mock.ExpectExec("UPDATE\\s+tenant_invitations").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := store.Claim(context.Background(), invitationbus.Invitation{ID: uuid.New()}, time.Now())

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClaim_LostRace(t *testing.T) {
	store, mock := newStore(t)

	mock.ExpectExec("UPDATE\\s+tenant_invitations").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := store.Claim(context.Background(), invitationbus.Invitation{ID: uuid.New()}, time.Now())

	assert.ErrorIs(t, err, invitationbus.ErrAlreadyUsed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteExpired(t *testing.T) {
	store, mock := newStore(t)

	mock.ExpectExec("DELETE FROM\\s+tenant_invitations\\s+WHERE\\s+used_at IS NULL").
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := store.DeleteExpired(context.Background(), time.Now())

	require.NoError(t, err)
	assert.EqualValues(t, 3, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQueryByToken(t *testing.T) {
	store, mock := newStore(t)

	id, buildingID, apartmentID, companyID := uuid.New(), uuid.New(), uuid.New(), uuid.New()
	expires := time.Now().Add(time.Hour).UTC()
	created := time.Now().UTC()

	mock.ExpectQuery("WHERE\\s+invite_token").
		WillReturnRows(sqlmock.NewRows(columns).AddRow(
			id.String(), "new@tenant.example", buildingID.String(), apartmentID.String(), "2B", 2,
			"tok", companyID.String(), expires, nil, created,
		))

	inv, err := store.QueryByToken(context.Background(), "tok")
	require.NoError(t, err)

	assert.Equal(t, id, inv.ID)
	assert.Equal(t, "new@tenant.example", inv.Email.Address)
	assert.Equal(t, buildingID, inv.BuildingID)
	assert.Equal(t, apartmentID, inv.ApartmentID)
	assert.Equal(t, "2B", inv.ApartmentNumber)
	assert.Equal(t, 2, inv.Floor)
	assert.Equal(t, companyID, inv.InvitedBy)
	assert.True(t, inv.UsedAt.IsZero())
	assert.True(t, expires.Equal(inv.ExpiresAt))
}

func TestQueryByToken_NotFound(t *testing.T) {
	store, mock := newStore(t)

	mock.ExpectQuery("WHERE\\s+invite_token").
		WillReturnRows(sqlmock.NewRows(columns))

	_, err := store.QueryByToken(context.Background(), "missing")

	assert.ErrorIs(t, err, invitationbus.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
