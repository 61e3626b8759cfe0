package dbtest

import (
	"context"
	"fmt"
	"net/mail"

	"github.com/google/uuid"
	"github.com/jcpaschoal/propman/business/domain/userbus"
	"github.com/jcpaschoal/propman/business/sdk/sqldb"
)

// UserStore implements userbus.Storer.
type UserStore struct {
	db *Database
}

// NewUserStore constructs a user store over db.
func NewUserStore(db *Database) *UserStore {
	return &UserStore{db: db}
}

// NewWithTx implements userbus.Storer.
func (s *UserStore) NewWithTx(tx sqldb.CommitRollbacker) (userbus.Storer, error) {
	if err := s.db.checkTx(tx); err != nil {
		return nil, err
	}

	return s, nil
}

// Create implements userbus.Storer.
func (s *UserStore) Create(ctx context.Context, usr userbus.User) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	for _, u := range s.db.data.users {
		if u.Email.Address == usr.Email.Address {
			return fmt.Errorf("create: %w", userbus.ErrUniqueEmail)
		}
	}

	s.db.data.users[usr.ID] = usr

	return nil
}

// Update implements userbus.Storer.
func (s *UserStore) Update(ctx context.Context, usr userbus.User) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	for _, u := range s.db.data.users {
		if u.ID != usr.ID && u.Email.Address == usr.Email.Address {
			return fmt.Errorf("update: %w", userbus.ErrUniqueEmail)
		}
	}

	if _, exists := s.db.data.users[usr.ID]; exists {
		s.db.data.users[usr.ID] = usr
	}

	return nil
}

// Delete implements userbus.Storer.
func (s *UserStore) Delete(ctx context.Context, usr userbus.User) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	s.db.data.deleteUser(usr.ID)

	return nil
}

// QueryByID implements userbus.Storer.
func (s *UserStore) QueryByID(ctx context.Context, userID uuid.UUID) (userbus.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	usr, exists := s.db.data.users[userID]
	if !exists {
		return userbus.User{}, fmt.Errorf("query: %w", userbus.ErrNotFound)
	}

	return usr, nil
}

// QueryByEmail implements userbus.Storer.
func (s *UserStore) QueryByEmail(ctx context.Context, email mail.Address) (userbus.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	for _, usr := range s.db.data.users {
		if usr.Email.Address == email.Address {
			return usr, nil
		}
	}

	return userbus.User{}, fmt.Errorf("query: %w", userbus.ErrNotFound)
}
