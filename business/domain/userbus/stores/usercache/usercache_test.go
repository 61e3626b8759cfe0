package usercache_test

import (
	"context"
	"io"
	"net/mail"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jcpaschoal/propman/business/domain/userbus"
	"github.com/jcpaschoal/propman/business/domain/userbus/stores/usercache"
	"github.com/jcpaschoal/propman/business/sdk/sqldb"
	"github.com/jcpaschoal/propman/foundation/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingStore struct {
	mu    sync.Mutex
	users map[uuid.UUID]userbus.User
	reads int
}

func (s *countingStore) NewWithTx(tx sqldb.CommitRollbacker) (userbus.Storer, error) {
	return s, nil
}

func (s *countingStore) Create(ctx context.Context, usr userbus.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[usr.ID] = usr
	return nil
}

func (s *countingStore) Update(ctx context.Context, usr userbus.User) error {
	return s.Create(ctx, usr)
}

func (s *countingStore) Delete(ctx context.Context, usr userbus.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, usr.ID)
	return nil
}

func (s *countingStore) QueryByID(ctx context.Context, userID uuid.UUID) (userbus.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reads++

	usr, ok := s.users[userID]
	if !ok {
		return userbus.User{}, userbus.ErrNotFound
	}
	return usr, nil
}

func (s *countingStore) QueryByEmail(ctx context.Context, email mail.Address) (userbus.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reads++

	for _, usr := range s.users {
		if usr.Email.Address == email.Address {
			return usr, nil
		}
	}
	return userbus.User{}, userbus.ErrNotFound
}

func (s *countingStore) readCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reads
}

func newStore() (*usercache.Store, *countingStore) {
	db := countingStore{users: make(map[uuid.UUID]userbus.User)}
	log := logger.New(io.Discard, logger.LevelInfo, "TEST", nil)

	return usercache.NewStore(log, &db, time.Minute), &db
}

func newUser() userbus.User {
	return userbus.User{
		ID:      uuid.New(),
		Email:   mail.Address{Address: "jane@example.com"},
		Enabled: true,
	}
}

func TestQueryByID_Cached(t *testing.T) {
	store, db := newStore()
	ctx := context.Background()

	usr := newUser()
	require.NoError(t, store.Create(ctx, usr))

	for range 3 {
		got, err := store.QueryByID(ctx, usr.ID)
		require.NoError(t, err)
		assert.Equal(t, usr.ID, got.ID)
	}

	assert.Equal(t, 1, db.readCount())
}

func TestNewWithTx_SkipsCache(t *testing.T) {
	store, db := newStore()
	ctx := context.Background()

	txStore, err := store.NewWithTx(nil)
	require.NoError(t, err)

	usr := newUser()
	require.NoError(t, txStore.Create(ctx, usr))

	_, err = txStore.QueryByID(ctx, usr.ID)
	require.NoError(t, err)
	_, err = txStore.QueryByEmail(ctx, usr.Email)
	require.NoError(t, err)
	assert.Equal(t, 2, db.readCount())

	// The transaction rolls back.
	require.NoError(t, db.Delete(ctx, usr))

	_, err = store.QueryByID(ctx, usr.ID)
	assert.ErrorIs(t, err, userbus.ErrNotFound)
}

func TestUpdate_Evicts(t *testing.T) {
	store, _ := newStore()
	ctx := context.Background()

	usr := newUser()
	require.NoError(t, store.Create(ctx, usr))

	_, err := store.QueryByID(ctx, usr.ID)
	require.NoError(t, err)

	txStore, err := store.NewWithTx(nil)
	require.NoError(t, err)

	usr.Enabled = false
	require.NoError(t, txStore.Update(ctx, usr))

	got, err := store.QueryByID(ctx, usr.ID)
	require.NoError(t, err)
	assert.False(t, got.Enabled)
}
