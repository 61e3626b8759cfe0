package apartmentdb_test

import (
	"context"
	"io"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jcpaschoal/propman/business/domain/apartmentbus"
	"github.com/jcpaschoal/propman/business/domain/apartmentbus/stores/apartmentdb"
	"github.com/jcpaschoal/propman/foundation/logger"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var apartmentColumns = []string{"id", "building_id", "apartment_number", "floor", "created_at", "updated_at"}

func newStore(t *testing.T) (*apartmentdb.Store, sqlmock.Sqlmock) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	t.Cleanup(func() {
		mockDB.Close()
	})

	log := logger.New(io.Discard, logger.LevelInfo, "TEST", nil)

	return apartmentdb.NewStore(log, sqlx.NewDb(mockDB, "pgx")), mock
}

func newApartment() apartmentbus.Apartment {
	now := time.Now()

	return apartmentbus.Apartment{
		ID:         uuid.New(),
		BuildingID: uuid.New(),
		Number:     "3A",
		Floor:      3,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func TestUniqueNumber(t *testing.T) {
	tests := []struct {
		name string
		sql  string
		fn   func(*apartmentdb.Store, apartmentbus.Apartment) error
	}{
		{"create", "INSERT INTO apartments", func(s *apartmentdb.Store, apt apartmentbus.Apartment) error {
			return s.Create(context.Background(), apt)
		}},
		{"update", "UPDATE apartments", func(s *apartmentdb.Store, apt apartmentbus.Apartment) error {
			return s.Update(context.Background(), apt)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, mock := newStore(t)

			mock.ExpectExec(tt.sql).
				WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "apartments_building_id_apartment_number_key"})

			err := tt.fn(store, newApartment())
			assert.ErrorIs(t, err, apartmentbus.ErrUniqueNumber)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestQueryByNumber(t *testing.T) {
	store, mock := newStore(t)

	want := newApartment()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM apartments WHERE building_id = $1 AND apartment_number = $2`)).
		WithArgs(want.BuildingID.String(), "3A").
		WillReturnRows(sqlmock.NewRows(apartmentColumns).AddRow(
			want.ID.String(), want.BuildingID.String(), "3A", 3, want.CreatedAt.UTC(), want.UpdatedAt.UTC(),
		))

	got, err := store.QueryByNumber(context.Background(), want.BuildingID, "3A")
	require.NoError(t, err)

	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, want.BuildingID, got.BuildingID)
	assert.Equal(t, 3, got.Floor)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQueryByNumber_NotFound(t *testing.T) {
	store, mock := newStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM apartments WHERE building_id = $1`)).
		WillReturnRows(sqlmock.NewRows(apartmentColumns))

	_, err := store.QueryByNumber(context.Background(), uuid.New(), "9Z")
	assert.ErrorIs(t, err, apartmentbus.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQueryByBuilding(t *testing.T) {
	store, mock := newStore(t)

	buildingID := uuid.New()
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM apartments WHERE building_id = $1 ORDER BY floor, apartment_number`)).
		WithArgs(buildingID.String()).
		WillReturnRows(sqlmock.NewRows(apartmentColumns).
			AddRow(uuid.NewString(), buildingID.String(), "1A", 1, now, now).
			AddRow(uuid.NewString(), buildingID.String(), "1B", 1, now, now))

	got, err := store.QueryByBuilding(context.Background(), buildingID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "1A", got[0].Number)
	assert.Equal(t, "1B", got[1].Number)
	assert.NoError(t, mock.ExpectationsWereMet())
}
