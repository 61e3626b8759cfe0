package mid

import (
	"context"
	"net/http"

	"github.com/jcpaschoal/propman/app/sdk/auth"
	"github.com/jcpaschoal/propman/app/sdk/errs"
	"github.com/jcpaschoal/propman/business/sdk/web"
	"github.com/jcpaschoal/propman/business/types/actions"
	"github.com/jcpaschoal/propman/business/types/resource"
)

// Authorize checks the role in the claims may perform the request method on
// the resource. Ownership of the addressed rows is checked by the business
// layer, not here.
func Authorize(ath *auth.Auth, res resource.Resource) web.MidFunc {
	m := func(next web.HandlerFunc) web.HandlerFunc {
		h := func(ctx context.Context, r *http.Request) web.Encoder {
			act, err := actions.FromMethod(r.Method)
			if err != nil {
				return errs.New(errs.FailedPrecondition, err)
			}

			if err := ath.Authorize(GetClaims(ctx), res, act); err != nil {
				return errs.New(errs.PermissionDenied, err)
			}

			return next(ctx, r)
		}

		return h
	}

	return m
}
