package mid

import (
	"context"
	"errors"
	"net/http"

	"github.com/jcpaschoal/propman/app/sdk/auth"
	"github.com/jcpaschoal/propman/app/sdk/errs"
	"github.com/jcpaschoal/propman/business/sdk/web"
)

// Authenticate validates the bearer token of the request and stores the
// claims and user id for the handlers that follow.
func Authenticate(a *auth.Auth) web.MidFunc {
	m := func(next web.HandlerFunc) web.HandlerFunc {
		h := func(ctx context.Context, r *http.Request) web.Encoder {
			authStr := r.Header.Get("authorization")
			if authStr == "" {
				return errs.New(errs.Unauthenticated, errors.New("missing authorization header"))
			}

			claims, err := a.Authenticate(ctx, authStr)
			if err != nil {
				return errs.New(errs.Unauthenticated, err)
			}

			userID, err := claims.UserID()
			if err != nil {
				return errs.New(errs.Unauthenticated, err)
			}

			ctx = setUserID(ctx, userID)
			ctx = setClaims(ctx, claims)

			return next(ctx, r)
		}

		return h
	}

	return m
}
