// Package usercache contains user related CRUD functionality with caching.
package usercache

import (
	"context"
	"net/mail"
	"time"

	"github.com/google/uuid"
	"github.com/jcpaschoal/propman/business/domain/userbus"
	"github.com/jcpaschoal/propman/business/sdk/sqldb"
	"github.com/jcpaschoal/propman/foundation/logger"
	"github.com/viccon/sturdyc"
)

// Store manages the set of APIs for user data and caching. Only identities
// are cached; ledger and invitation state always come from the database.
type Store struct {
	log    *logger.Logger
	storer userbus.Storer
	cache  *sturdyc.Client[userbus.User]
	inTx   bool
}

// NewStore constructs the api for data and caching access.
func NewStore(log *logger.Logger, storer userbus.Storer, ttl time.Duration) *Store {
	const capacity = 10000
	const numShards = 10
	const evictionPercentage = 10

	return &Store{
		log:    log,
		storer: storer,
		cache:  sturdyc.New[userbus.User](capacity, numShards, ttl, evictionPercentage),
	}
}

// NewWithTx constructs a new Store value replacing the sqlx DB
// value with a sqlx DB value that is currently inside a transaction.
// Reads through the returned store go straight to the transaction and are
// never cached; writes still evict.
func (s *Store) NewWithTx(tx sqldb.CommitRollbacker) (userbus.Storer, error) {
	storer, err := s.storer.NewWithTx(tx)
	if err != nil {
		return nil, err
	}

	return &Store{
		log:    s.log,
		storer: storer,
		cache:  s.cache,
		inTx:   true,
	}, nil
}

// Create inserts a new user into the database.
func (s *Store) Create(ctx context.Context, usr userbus.User) error {
	return s.storer.Create(ctx, usr)
}

// Update replaces a user document in the database and drops the cached copy.
func (s *Store) Update(ctx context.Context, usr userbus.User) error {
	if err := s.storer.Update(ctx, usr); err != nil {
		return err
	}

	if old, ok := s.cache.Get(idKey(usr.ID)); ok {
		s.evict(old)
	}
	s.evict(usr)

	return nil
}

// Delete removes a user from the database and the cache.
func (s *Store) Delete(ctx context.Context, usr userbus.User) error {
	if err := s.storer.Delete(ctx, usr); err != nil {
		return err
	}

	s.evict(usr)

	return nil
}

// QueryByID gets the specified user from the cache or database.
func (s *Store) QueryByID(ctx context.Context, userID uuid.UUID) (userbus.User, error) {
	if s.inTx {
		return s.storer.QueryByID(ctx, userID)
	}

	fetch := func(ctx context.Context) (userbus.User, error) {
		return s.storer.QueryByID(ctx, userID)
	}

	return s.cache.GetOrFetch(ctx, idKey(userID), fetch)
}

// QueryByEmail gets the specified user from the cache or database.
func (s *Store) QueryByEmail(ctx context.Context, email mail.Address) (userbus.User, error) {
	if s.inTx {
		return s.storer.QueryByEmail(ctx, email)
	}

	fetch := func(ctx context.Context) (userbus.User, error) {
		return s.storer.QueryByEmail(ctx, email)
	}

	return s.cache.GetOrFetch(ctx, emailKey(email.Address), fetch)
}

// =============================================================================

func (s *Store) evict(usr userbus.User) {
	s.cache.Delete(idKey(usr.ID))
	s.cache.Delete(emailKey(usr.Email.Address))
}

func idKey(id uuid.UUID) string {
	return "id:" + id.String()
}

func emailKey(email string) string {
	return "email:" + email
}
