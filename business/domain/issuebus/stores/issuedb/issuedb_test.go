package issuedb_test

import (
	"context"
	"io"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jcpaschoal/propman/business/domain/issuebus"
	"github.com/jcpaschoal/propman/business/domain/issuebus/stores/issuedb"
	"github.com/jcpaschoal/propman/business/sdk/order"
	"github.com/jcpaschoal/propman/business/sdk/page"
	"github.com/jcpaschoal/propman/business/types/category"
	"github.com/jcpaschoal/propman/business/types/issuestatus"
	"github.com/jcpaschoal/propman/business/types/priority"
	"github.com/jcpaschoal/propman/foundation/logger"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const companyJoin = `FROM issues AS i ` +
	`JOIN apartments AS a ON a.id = i.apartment_id ` +
	`JOIN buildings AS b ON b.id = a.building_id ` +
	`JOIN users AS u ON u.user_id = i.user_id ` +
	`WHERE b.user_id = $1`

var reportColumns = []string{
	"id", "user_id", "apartment_id", "building_id", "title", "description",
	"category", "priority", "status", "location_details", "created_at", "updated_at",
	"apartment_number", "floor", "building_name", "reporter_name", "reporter_email",
}

func newStore(t *testing.T) (*issuedb.Store, sqlmock.Sqlmock) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	t.Cleanup(func() {
		mockDB.Close()
	})

	log := logger.New(io.Discard, logger.LevelInfo, "TEST", nil)

	return issuedb.NewStore(log, sqlx.NewDb(mockDB, "pgx")), mock
}

func TestQueryByCompany(t *testing.T) {
	store, mock := newStore(t)

	companyID := uuid.New()
	issueID := uuid.New()
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta(companyJoin+` AND i.status = $2 ORDER BY i.priority DESC OFFSET $3 ROWS FETCH NEXT $4 ROWS ONLY`)).
		WithArgs(companyID.String(), "open", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(reportColumns).AddRow(
			issueID.String(), uuid.NewString(), uuid.NewString(), uuid.NewString(), "Leaking pipe", "Water on the floor",
			"plumbing", "high", "open", nil, now, now,
			"3A", 3, "Elm House", "Jane Doe", "jane@example.com",
		))

	status := issuestatus.Open
	filter := issuebus.QueryFilter{Status: &status}
	orderBy := order.NewBy(issuebus.OrderByPriority, order.DESC)

	got, err := store.QueryByCompany(context.Background(), companyID, filter, orderBy, page.MustParse("1", "10"))
	require.NoError(t, err)
	require.Len(t, got, 1)

	assert.Equal(t, issueID, got[0].ID)
	assert.Equal(t, "3A", got[0].ApartmentNumber)
	assert.Equal(t, "Elm House", got[0].BuildingName)
	assert.Equal(t, "jane@example.com", got[0].ReporterEmail.Address)
	assert.Equal(t, category.Plumbing, got[0].Category)
	assert.Equal(t, priority.High, got[0].Priority)
	assert.Empty(t, got[0].LocationDetails)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQueryByCompany_OrderBy(t *testing.T) {
	tests := []struct {
		field  string
		column string
	}{
		{issuebus.OrderByCreatedAt, "i.created_at"},
		{issuebus.OrderByBuilding, "b.name"},
		{issuebus.OrderByApartment, "a.apartment_number"},
		{issuebus.OrderByTitle, "i.title"},
	}

	for _, tt := range tests {
		t.Run(tt.column, func(t *testing.T) {
			store, mock := newStore(t)

			mock.ExpectQuery(regexp.QuoteMeta(companyJoin + ` ORDER BY ` + tt.column + ` ASC OFFSET`)).
				WillReturnRows(sqlmock.NewRows(reportColumns))

			_, err := store.QueryByCompany(context.Background(), uuid.New(), issuebus.QueryFilter{}, order.NewBy(tt.field, order.ASC), page.MustParse("1", "10"))
			require.NoError(t, err)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestQueryByCompany_UnknownOrder(t *testing.T) {
	store, mock := newStore(t)

	_, err := store.QueryByCompany(context.Background(), uuid.New(), issuebus.QueryFilter{}, order.NewBy("i.id; DROP TABLE issues", order.ASC), page.MustParse("1", "10"))
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCountByCompany(t *testing.T) {
	store, mock := newStore(t)

	companyID := uuid.New()
	buildingID := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(1) AS count `+companyJoin+` AND b.id = $2`)).
		WithArgs(companyID.String(), buildingID.String()).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	count, err := store.CountByCompany(context.Background(), companyID, issuebus.QueryFilter{BuildingID: &buildingID})
	require.NoError(t, err)
	assert.Equal(t, 7, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_CheckViolation(t *testing.T) {
	store, mock := newStore(t)

	mock.ExpectExec("INSERT INTO issues").
		WillReturnError(&pgconn.PgError{Code: "23514", ConstraintName: "issues_category_check"})

	iss := issuebus.Issue{
		ID:          uuid.New(),
		TenantID:    uuid.New(),
		ApartmentID: uuid.New(),
		BuildingID:  uuid.New(),
		Title:       "Leaking pipe",
		Category:    category.Plumbing,
		Priority:    priority.Medium,
		Status:      issuestatus.Open,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	err := store.Create(context.Background(), iss)
	assert.ErrorIs(t, err, issuebus.ErrValidation)
	assert.NoError(t, mock.ExpectationsWereMet())
}
