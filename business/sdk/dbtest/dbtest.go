// Package dbtest provides an in-memory implementation of every domain store
// so business rules can be tested without a running database. It enforces
// the same unique indexes, foreign keys and cascades as the schema.
package dbtest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"maps"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/jcpaschoal/propman/business/domain/apartmentbus"
	"github.com/jcpaschoal/propman/business/domain/buildingbus"
	"github.com/jcpaschoal/propman/business/domain/invitationbus"
	"github.com/jcpaschoal/propman/business/domain/issuebus"
	"github.com/jcpaschoal/propman/business/domain/tenancybus"
	"github.com/jcpaschoal/propman/business/domain/userbus"
	"github.com/jcpaschoal/propman/business/sdk/sqldb"
	"github.com/jcpaschoal/propman/foundation/logger"
)

var errForeignTx = errors.New("transaction belongs to another database")

type state struct {
	users       map[uuid.UUID]userbus.User
	buildings   map[uuid.UUID]buildingbus.Building
	apartments  map[uuid.UUID]apartmentbus.Apartment
	tenancies   map[uuid.UUID]tenancybus.Tenancy
	invitations map[uuid.UUID]invitationbus.Invitation
	issues      map[uuid.UUID]issuebus.Issue
}

func newState() state {
	return state{
		users:       make(map[uuid.UUID]userbus.User),
		buildings:   make(map[uuid.UUID]buildingbus.Building),
		apartments:  make(map[uuid.UUID]apartmentbus.Apartment),
		tenancies:   make(map[uuid.UUID]tenancybus.Tenancy),
		invitations: make(map[uuid.UUID]invitationbus.Invitation),
		issues:      make(map[uuid.UUID]issuebus.Issue),
	}
}

func (s state) clone() state {
	return state{
		users:       maps.Clone(s.users),
		buildings:   maps.Clone(s.buildings),
		apartments:  maps.Clone(s.apartments),
		tenancies:   maps.Clone(s.tenancies),
		invitations: maps.Clone(s.invitations),
		issues:      maps.Clone(s.issues),
	}
}

// Database holds the tables. Transactions are serialized: Begin blocks
// until the previous transaction has committed or rolled back.
type Database struct {
	mu   sync.Mutex
	txMu sync.Mutex
	data state
}

// New constructs an empty database.
func New() *Database {
	return &Database{
		data: newState(),
	}
}

// Begin implements sqldb.Beginner.
func (db *Database) Begin(ctx context.Context) (sqldb.CommitRollbacker, error) {
	db.txMu.Lock()

	db.mu.Lock()
	snapshot := db.data.clone()
	db.mu.Unlock()

	return &Tx{db: db, snapshot: snapshot}, nil
}

// Tx is a transaction against a Database. Rollback restores the state seen
// at Begin.
type Tx struct {
	db       *Database
	snapshot state
	done     bool
}

// Commit keeps the writes made since Begin.
func (tx *Tx) Commit() error {
	if tx.done {
		return sqldb.ErrTxDone
	}

	tx.done = true
	tx.db.txMu.Unlock()

	return nil
}

// Rollback discards the writes made since Begin.
func (tx *Tx) Rollback() error {
	if tx.done {
		return sqldb.ErrTxDone
	}

	tx.db.mu.Lock()
	tx.db.data = tx.snapshot
	tx.db.mu.Unlock()

	tx.done = true
	tx.db.txMu.Unlock()

	return nil
}

func (db *Database) checkTx(tx sqldb.CommitRollbacker) error {
	t, ok := tx.(*Tx)
	if !ok || t.db != db {
		return fmt.Errorf("Transactor(%T): %w", tx, errForeignTx)
	}

	return nil
}

// =============================================================================

// BusDomain wires every business core over a single in-memory database.
type BusDomain struct {
	DB         *Database
	Log        *logger.Logger
	Mailer     *Mailer
	Publisher  *Publisher
	User       *userbus.Core
	Building   *buildingbus.Core
	Apartment  *apartmentbus.Core
	Tenancy    *tenancybus.Core
	Invitation *invitationbus.Core
	Issue      *issuebus.Core
}

// NewBusDomain constructs the business cores. Options are handed to the
// invitation core.
func NewBusDomain(t *testing.T, opts ...invitationbus.Option) BusDomain {
	var buf bytes.Buffer
	log := logger.New(&buf, logger.LevelInfo, "TEST", nil)

	t.Cleanup(func() {
		if t.Failed() {
			t.Log(buf.String())
		}
	})

	db := New()
	ml := &Mailer{}
	pub := &Publisher{}

	userBus := userbus.NewCore(&UserStore{db: db})
	buildingBus := buildingbus.NewCore(log, &BuildingStore{db: db})
	apartmentBus := apartmentbus.NewCore(log, buildingBus, &ApartmentStore{db: db})
	tenancyBus := tenancybus.NewCore(log, userBus, apartmentBus, &TenancyStore{db: db})
	invitationBus := invitationbus.NewCore(log, userBus, buildingBus, apartmentBus, tenancyBus, ml, &InvitationStore{db: db}, invitationbus.Config{}, opts...)
	issueBus := issuebus.NewCore(log, buildingBus, apartmentBus, tenancyBus, pub, &IssueStore{db: db})

	return BusDomain{
		DB:         db,
		Log:        log,
		Mailer:     ml,
		Publisher:  pub,
		User:       userBus,
		Building:   buildingBus,
		Apartment:  apartmentBus,
		Tenancy:    tenancyBus,
		Invitation: invitationBus,
		Issue:      issueBus,
	}
}
