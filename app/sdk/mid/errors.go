package mid

import (
	"context"
	"errors"
	"net/http"
	"path"

	"github.com/jcpaschoal/propman/app/sdk/errs"
	"github.com/jcpaschoal/propman/business/sdk/web"
	"github.com/jcpaschoal/propman/foundation/logger"
)

// internalMessage is the only text a client sees for an internal failure.
const internalMessage = "Server internal error"

// Errors handles errors coming out of the call chain. Internal failures are
// logged in full and reduced to a generic body; the underlying message is
// added as details only when development is true.
func Errors(log *logger.Logger, development bool) web.MidFunc {
	m := func(next web.HandlerFunc) web.HandlerFunc {
		h := func(ctx context.Context, r *http.Request) web.Encoder {
			resp := next(ctx, r)
			err := checkIsError(resp)
			if err == nil {
				return resp
			}

			var appErr *errs.Error
			if !errors.As(err, &appErr) {
				appErr = errs.New(errs.Internal, err)
			}

			log.Error(ctx, "handled error during request",
				"err", err,
				"source_err_file", path.Base(appErr.FileName),
				"source_err_func", path.Base(appErr.FuncName))

			switch appErr.Code {
			case errs.Internal, errs.InternalOnlyLog:
				out := errs.Error{
					Code:    errs.Internal,
					Message: internalMessage,
				}
				if development {
					out.Details = appErr.Message
				}
				return &out
			}

			return appErr
		}

		return h
	}

	return m
}
