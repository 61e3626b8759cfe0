package main

import (
	"io"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jcpaschoal/propman/foundation/logger"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBuses(t *testing.T) {
	mockDB, _, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	log := logger.New(io.Discard, logger.LevelInfo, "TEST", nil)

	bs, err := newBuses(log, sqlx.NewDb(mockDB, "pgx"))
	require.NoError(t, err)

	assert.NotNil(t, bs.user)
	assert.NotNil(t, bs.invitation)
	assert.NotNil(t, bs.issue)
}
