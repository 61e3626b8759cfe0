package buildingdb_test

import (
	"context"
	"io"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jcpaschoal/propman/business/domain/buildingbus"
	"github.com/jcpaschoal/propman/business/domain/buildingbus/stores/buildingdb"
	"github.com/jcpaschoal/propman/business/types/name"
	"github.com/jcpaschoal/propman/foundation/logger"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var buildingColumns = []string{"id", "user_id", "name", "address", "floors_count", "garage_levels", "created_at", "updated_at"}

func newStore(t *testing.T) (*buildingdb.Store, sqlmock.Sqlmock) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	t.Cleanup(func() {
		mockDB.Close()
	})

	log := logger.New(io.Discard, logger.LevelInfo, "TEST", nil)

	return buildingdb.NewStore(log, sqlx.NewDb(mockDB, "pgx")), mock
}

func newBuilding() buildingbus.Building {
	now := time.Now()

	return buildingbus.Building{
		ID:        uuid.New(),
		CompanyID: uuid.New(),
		Name:      name.MustParse("Elm House"),
		Address:   "1 Elm Street",
		Floors:    4,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestQueryByCompany(t *testing.T) {
	store, mock := newStore(t)

	companyID := uuid.New()
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM buildings WHERE user_id = $1 ORDER BY name, id`)).
		WithArgs(companyID.String()).
		WillReturnRows(sqlmock.NewRows(buildingColumns).
			AddRow(uuid.NewString(), companyID.String(), "Elm House", "1 Elm Street", 4, 1, now, now).
			AddRow(uuid.NewString(), companyID.String(), "Oak Court", "2 Oak Road", 3, 0, now, now))

	got, err := store.QueryByCompany(context.Background(), companyID)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "Elm House", got[0].Name.String())
	assert.Equal(t, companyID, got[0].CompanyID)
	assert.Equal(t, 4, got[0].Floors)
	assert.Equal(t, 1, got[0].GarageLevels)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQueryByID_NotFound(t *testing.T) {
	store, mock := newStore(t)

	id := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM buildings WHERE id = $1`)).
		WithArgs(id.String()).
		WillReturnRows(sqlmock.NewRows(buildingColumns))

	_, err := store.QueryByID(context.Background(), id)
	assert.ErrorIs(t, err, buildingbus.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckViolation(t *testing.T) {
	tests := []struct {
		name string
		sql  string
		fn   func(*buildingdb.Store, buildingbus.Building) error
	}{
		{"create", "INSERT INTO buildings", func(s *buildingdb.Store, b buildingbus.Building) error {
			return s.Create(context.Background(), b)
		}},
		{"update", "UPDATE buildings", func(s *buildingdb.Store, b buildingbus.Building) error {
			return s.Update(context.Background(), b)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, mock := newStore(t)

			mock.ExpectExec(tt.sql).
				WillReturnError(&pgconn.PgError{Code: "23514", ConstraintName: "buildings_floors_count_check"})

			err := tt.fn(store, newBuilding())
			assert.ErrorIs(t, err, buildingbus.ErrValidation)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestQueryFloorBounds(t *testing.T) {
	store, mock := newStore(t)

	id := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM apartments WHERE building_id = $1`)).
		WithArgs(id.String()).
		WillReturnRows(sqlmock.NewRows([]string{"lowest", "highest"}).AddRow(1, 4))

	got, err := store.QueryFloorBounds(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, buildingbus.FloorBounds{Lowest: 1, Highest: 4}, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}
