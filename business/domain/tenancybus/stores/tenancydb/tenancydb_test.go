package tenancydb_test

import (
	"context"
	"io"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jcpaschoal/propman/business/domain/tenancybus"
	"github.com/jcpaschoal/propman/business/domain/tenancybus/stores/tenancydb"
	"github.com/jcpaschoal/propman/business/sdk/sqldb"
	"github.com/jcpaschoal/propman/business/types/tenancystatus"
	"github.com/jcpaschoal/propman/foundation/logger"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) (*tenancydb.Store, sqlmock.Sqlmock) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	t.Cleanup(func() {
		mockDB.Close()
	})

	log := logger.New(io.Discard, logger.LevelInfo, "TEST", nil)

	return tenancydb.NewStore(log, sqlx.NewDb(mockDB, "pgx")), mock
}

func newTenancy() tenancybus.Tenancy {
	now := time.Now()

	return tenancybus.Tenancy{
		ID:          uuid.New(),
		ApartmentID: uuid.New(),
		TenantID:    uuid.New(),
		Status:      tenancystatus.Active,
		InvitedBy:   uuid.New(),
		InvitedAt:   now,
		JoinedAt:    now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func TestCreate_UniqueIndexes(t *testing.T) {
	tests := []struct {
		name       string
		constraint string
		want       error
	}{
		{"same apartment", "apartment_tenants_apartment_tenant_live_key", tenancybus.ErrDuplicate},
		{"other apartment", "apartment_tenants_tenant_live_key", tenancybus.ErrTenantAssigned},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, mock := newStore(t)

			mock.ExpectExec("INSERT INTO apartment_tenants").
				WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: tt.constraint})

			err := store.Create(context.Background(), newTenancy())

			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestCreate_UnknownConstraint(t *testing.T) {
	store, mock := newStore(t)

	mock.ExpectExec("INSERT INTO apartment_tenants").
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "apartment_tenants_pkey"})

	err := store.Create(context.Background(), newTenancy())

	var dup sqldb.ErrDBDuplicatedEntry
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "apartment_tenants_pkey", dup.Constraint)
	assert.NotErrorIs(t, err, tenancybus.ErrDuplicate)
}

func TestCreate(t *testing.T) {
	store, mock := newStore(t)

	mock.ExpectExec("INSERT INTO apartment_tenants").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, store.Create(context.Background(), newTenancy()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQueryByID_NotFound(t *testing.T) {
	store, mock := newStore(t)

	mock.ExpectQuery("FROM\\s+apartment_tenants").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := store.QueryByID(context.Background(), uuid.New())

	assert.ErrorIs(t, err, tenancybus.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQueryByID(t *testing.T) {
	store, mock := newStore(t)

	want := newTenancy()
	want.Status = tenancystatus.Pending

	columns := []string{"id", "apartment_id", "tenant_id", "status", "invited_by", "invited_at", "joined_at", "created_at", "updated_at"}

	mock.ExpectQuery("FROM\\s+apartment_tenants").
		WillReturnRows(sqlmock.NewRows(columns).AddRow(
			want.ID.String(), want.ApartmentID.String(), want.TenantID.String(), "pending",
			want.InvitedBy.String(), want.InvitedAt.UTC(), nil, want.CreatedAt.UTC(), want.UpdatedAt.UTC(),
		))

	got, err := store.QueryByID(context.Background(), want.ID)
	require.NoError(t, err)

	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, want.ApartmentID, got.ApartmentID)
	assert.Equal(t, want.TenantID, got.TenantID)
	assert.Equal(t, want.InvitedBy, got.InvitedBy)
	assert.True(t, got.Status.Equal(tenancystatus.Pending))
	assert.True(t, got.JoinedAt.IsZero())
	assert.True(t, want.CreatedAt.Equal(got.CreatedAt))
}

var rosterColumns = []string{
	"tenancy_id", "tenant_id", "tenant_name", "tenant_email",
	"apartment_id", "apartment_number", "floor",
	"building_id", "building_name", "company_id",
	"status", "joined_at", "updated_at",
}

const rosterJoin = `FROM apartment_tenants AS t ` +
	`JOIN apartments AS a ON a.id = t.apartment_id ` +
	`JOIN buildings AS b ON b.id = a.building_id ` +
	`JOIN users AS u ON u.user_id = t.tenant_id`

func TestQueryByCompany(t *testing.T) {
	store, mock := newStore(t)

	companyID := uuid.New()
	buildingID := uuid.New()
	tenancyID := uuid.New()
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta(rosterJoin+` WHERE b.user_id = $1 AND b.id = $2 AND t.status = $3 ORDER BY b.name, a.floor, a.apartment_number, t.created_at`)).
		WithArgs(companyID.String(), buildingID.String(), "active").
		WillReturnRows(sqlmock.NewRows(rosterColumns).AddRow(
			tenancyID.String(), uuid.NewString(), "Jane Doe", "jane@example.com",
			uuid.NewString(), "3A", 3,
			buildingID.String(), "Elm House", companyID.String(),
			"active", now, now,
		))

	status := tenancystatus.Active
	filter := tenancybus.QueryFilter{
		BuildingID: &buildingID,
		Status:     &status,
	}

	got, err := store.QueryByCompany(context.Background(), companyID, filter)
	require.NoError(t, err)
	require.Len(t, got, 1)

	assert.Equal(t, tenancyID, got[0].TenancyID)
	assert.Equal(t, "jane@example.com", got[0].TenantEmail.Address)
	assert.Equal(t, "3A", got[0].ApartmentNumber)
	assert.Equal(t, "Elm House", got[0].BuildingName)
	assert.Equal(t, companyID, got[0].CompanyID)
	assert.True(t, got[0].Status.Equal(tenancystatus.Active))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQueryByCompany_NoFilter(t *testing.T) {
	store, mock := newStore(t)

	companyID := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta(rosterJoin+` WHERE b.user_id = $1 ORDER BY`)).
		WithArgs(companyID.String()).
		WillReturnRows(sqlmock.NewRows(rosterColumns))

	got, err := store.QueryByCompany(context.Background(), companyID, tenancybus.QueryFilter{})
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQueryRosterByTenant_NotFound(t *testing.T) {
	store, mock := newStore(t)

	tenantID := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta(rosterJoin+` WHERE t.tenant_id = $1 AND t.status <> 'inactive'`)).
		WithArgs(tenantID.String()).
		WillReturnRows(sqlmock.NewRows(rosterColumns))

	_, err := store.QueryRosterByTenant(context.Background(), tenantID)
	assert.ErrorIs(t, err, tenancybus.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
