package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jcpaschoal/propman/foundation/logger"
	"github.com/jmoiron/sqlx"
)

// Beginner represents a value that can begin a transaction.
type Beginner interface {
	Begin(ctx context.Context) (CommitRollbacker, error)
}

// CommitRollbacker represents a value that can commit or rollback a transaction.
type CommitRollbacker interface {
	Commit() error
	Rollback() error
}

// =============================================================================

// DBBeginner implements the Beginner interface.
type DBBeginner struct {
	sqlxDB *sqlx.DB
}

// NewBeginner constructs a value that implements the beginner interface.
func NewBeginner(sqlxDB *sqlx.DB) *DBBeginner {
	return &DBBeginner{
		sqlxDB: sqlxDB,
	}
}

// Begin implements the Beginner interface and returns a concrete value that
// implements the CommitRollbacker interface. Uniqueness of the ledger is held
// by partial unique indexes, so READ COMMITTED is enough.
func (db *DBBeginner) Begin(ctx context.Context) (CommitRollbacker, error) {
	tx, err := db.sqlxDB.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return nil, err
	}

	return tx, nil
}

// GetExtContext is a helper function that extracts the sqlx value
// from the domain transactor interface for transactional use.
func GetExtContext(tx CommitRollbacker) (sqlx.ExtContext, error) {
	ec, ok := tx.(sqlx.ExtContext)
	if !ok {
		return nil, fmt.Errorf("Transactor(%T) not of a type *sql.Tx: %w", tx, errInvalidTxProvider)
	}

	return ec, nil
}

// WithinTran runs fn inside a transaction, committing when fn returns nil.
func WithinTran(ctx context.Context, log *logger.Logger, bgn Beginner, fn func(tx CommitRollbacker) error) error {
	tx, err := bgn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}

	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, ErrTxDone) {
			log.Error(ctx, "rollback", "ERROR", err)
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	return nil
}
