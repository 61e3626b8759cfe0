package dbtest

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jcpaschoal/propman/business/domain/invitationbus"
	"github.com/jcpaschoal/propman/business/sdk/sqldb"
)

var errUniqueToken = errors.New("invite token is not unique")

// InvitationStore implements invitationbus.Storer.
type InvitationStore struct {
	db *Database
}

// NewInvitationStore constructs an invitation store over db.
func NewInvitationStore(db *Database) *InvitationStore {
	return &InvitationStore{db: db}
}

// NewWithTx implements invitationbus.Storer.
func (s *InvitationStore) NewWithTx(tx sqldb.CommitRollbacker) (invitationbus.Storer, error) {
	if err := s.db.checkTx(tx); err != nil {
		return nil, err
	}

	return s, nil
}

// Create implements invitationbus.Storer.
func (s *InvitationStore) Create(ctx context.Context, inv invitationbus.Invitation) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, exists := s.db.data.apartments[inv.ApartmentID]; !exists {
		return fmt.Errorf("create: apartmentID[%s]: %w", inv.ApartmentID, sqldb.ErrForeignKey)
	}

	for _, other := range s.db.data.invitations {
		if other.Token == inv.Token {
			return fmt.Errorf("create: %w", errUniqueToken)
		}
	}

	s.db.data.invitations[inv.ID] = inv

	return nil
}

// Claim implements invitationbus.Storer.
func (s *InvitationStore) Claim(ctx context.Context, inv invitationbus.Invitation, usedAt time.Time) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	cur, exists := s.db.data.invitations[inv.ID]
	if !exists || !cur.UsedAt.IsZero() {
		return fmt.Errorf("claim: %w", invitationbus.ErrAlreadyUsed)
	}

	cur.UsedAt = usedAt
	s.db.data.invitations[inv.ID] = cur

	return nil
}

// Delete implements invitationbus.Storer.
func (s *InvitationStore) Delete(ctx context.Context, inv invitationbus.Invitation) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	delete(s.db.data.invitations, inv.ID)

	return nil
}

// DeleteExpired implements invitationbus.Storer.
func (s *InvitationStore) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	var n int64
	for id, inv := range s.db.data.invitations {
		if inv.UsedAt.IsZero() && inv.ExpiresAt.Before(before) {
			delete(s.db.data.invitations, id)
			n++
		}
	}

	return n, nil
}

// QueryByID implements invitationbus.Storer.
func (s *InvitationStore) QueryByID(ctx context.Context, invitationID uuid.UUID) (invitationbus.Invitation, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	inv, exists := s.db.data.invitations[invitationID]
	if !exists {
		return invitationbus.Invitation{}, fmt.Errorf("query: %w", invitationbus.ErrNotFound)
	}

	return inv, nil
}

// QueryByToken implements invitationbus.Storer.
func (s *InvitationStore) QueryByToken(ctx context.Context, token string) (invitationbus.Invitation, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	for _, inv := range s.db.data.invitations {
		if inv.Token == token {
			return inv, nil
		}
	}

	return invitationbus.Invitation{}, fmt.Errorf("query: %w", invitationbus.ErrNotFound)
}

// QueryByBuilding implements invitationbus.Storer.
func (s *InvitationStore) QueryByBuilding(ctx context.Context, buildingID uuid.UUID) ([]invitationbus.Invitation, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	var invs []invitationbus.Invitation
	for _, inv := range s.db.data.invitations {
		if inv.BuildingID == buildingID {
			invs = append(invs, inv)
		}
	}

	sort.Slice(invs, func(i, j int) bool {
		return invs[i].CreatedAt.After(invs[j].CreatedAt)
	})

	return invs, nil
}
