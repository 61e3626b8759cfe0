package mid_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jcpaschoal/propman/app/sdk/errs"
	"github.com/jcpaschoal/propman/app/sdk/mid"
	"github.com/jcpaschoal/propman/business/sdk/sqldb"
	"github.com/jcpaschoal/propman/business/sdk/web"
	"github.com/jcpaschoal/propman/foundation/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTx struct {
	committed  bool
	rolledBack bool
}

func (tx *fakeTx) Commit() error {
	tx.committed = true
	return nil
}

func (tx *fakeTx) Rollback() error {
	if tx.committed {
		return sqldb.ErrTxDone
	}
	tx.rolledBack = true
	return nil
}

type fakeBeginner struct {
	tx *fakeTx
}

func (b *fakeBeginner) Begin(ctx context.Context) (sqldb.CommitRollbacker, error) {
	b.tx = &fakeTx{}
	return b.tx, nil
}

type okResp struct{}

func (okResp) Encode() ([]byte, string, error) {
	return []byte(`{}`), "application/json", nil
}

func request() *http.Request {
	return httptest.NewRequest(http.MethodGet, "/", nil)
}

func TestBeginCommitRollback(t *testing.T) {
	log := logger.New(io.Discard, logger.LevelInfo, "TEST", nil)

	t.Run("commit", func(t *testing.T) {
		bgn := fakeBeginner{}

		h := mid.BeginCommitRollback(log, &bgn)(func(ctx context.Context, r *http.Request) web.Encoder {
			tx, err := mid.GetTran(ctx)
			require.NoError(t, err)
			assert.Same(t, bgn.tx, tx)
			return okResp{}
		})

		resp := h(context.Background(), request())
		assert.IsType(t, okResp{}, resp)
		assert.True(t, bgn.tx.committed)
		assert.False(t, bgn.tx.rolledBack)
	})

	t.Run("rollback", func(t *testing.T) {
		bgn := fakeBeginner{}

		h := mid.BeginCommitRollback(log, &bgn)(func(ctx context.Context, r *http.Request) web.Encoder {
			return errs.New(errs.AlreadyUsed, errors.New("invitation already used"))
		})

		resp := h(context.Background(), request())
		require.Implements(t, (*error)(nil), resp)
		assert.False(t, bgn.tx.committed)
		assert.True(t, bgn.tx.rolledBack)
	})
}

func TestGetTran_Missing(t *testing.T) {
	_, err := mid.GetTran(context.Background())
	assert.Error(t, err)

	_, err = mid.GetUserID(context.Background())
	assert.Error(t, err)
}

func TestPanics(t *testing.T) {
	h := mid.Panics()(func(ctx context.Context, r *http.Request) web.Encoder {
		panic("boom")
	})

	resp := h(context.Background(), request())

	var appErr *errs.Error
	require.ErrorAs(t, resp.(error), &appErr)
	assert.Equal(t, errs.InternalOnlyLog, appErr.Code)
	assert.Contains(t, appErr.Message, "PANIC [boom]")
}

func TestErrors_HidesInternal(t *testing.T) {
	log := logger.New(io.Discard, logger.LevelInfo, "TEST", nil)

	failing := func(ctx context.Context, r *http.Request) web.Encoder {
		return errs.Errorf(errs.Internal, "db: connection refused")
	}

	resp := mid.Errors(log, false)(failing)(context.Background(), request())
	appErr, ok := resp.(*errs.Error)
	require.True(t, ok)
	assert.Equal(t, "Server internal error", appErr.Message)
	assert.Empty(t, appErr.Details)

	resp = mid.Errors(log, true)(failing)(context.Background(), request())
	appErr, ok = resp.(*errs.Error)
	require.True(t, ok)
	assert.Equal(t, "db: connection refused", appErr.Details)

	notFound := func(ctx context.Context, r *http.Request) web.Encoder {
		return errs.New(errs.NotFound, errors.New("building not found"))
	}

	resp = mid.Errors(log, false)(notFound)(context.Background(), request())
	appErr, ok = resp.(*errs.Error)
	require.True(t, ok)
	assert.Equal(t, "building not found", appErr.Message)
}
