// Package authapp maintains the app layer api for sign in, company sign up,
// invitation redemption and the caller's own profile.
package authapp

import (
	"context"
	"errors"
	"net/http"
	"net/mail"

	"github.com/jcpaschoal/propman/app/sdk/auth"
	"github.com/jcpaschoal/propman/app/sdk/errs"
	"github.com/jcpaschoal/propman/app/sdk/mid"
	"github.com/jcpaschoal/propman/business/domain/invitationbus"
	"github.com/jcpaschoal/propman/business/domain/tenancybus"
	"github.com/jcpaschoal/propman/business/domain/userbus"
	"github.com/jcpaschoal/propman/business/sdk/web"
	"github.com/jcpaschoal/propman/business/types/name"
	"github.com/jcpaschoal/propman/business/types/password"
	"github.com/jcpaschoal/propman/business/types/phone"
)

type app struct {
	auth          *auth.Auth
	activeKID     string
	userBus       *userbus.Core
	invitationBus *invitationbus.Core
}

func newApp(cfg Config) *app {
	return &app{
		auth:          cfg.Auth,
		activeKID:     cfg.ActiveKID,
		userBus:       cfg.UserBus,
		invitationBus: cfg.InvitationBus,
	}
}

func (a *app) login(ctx context.Context, r *http.Request) web.Encoder {
	var req Login
	if err := web.Decode(r, &req); err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	addr, err := mail.ParseAddress(req.Email)
	if err != nil {
		return errs.NewFieldErrors("email", err)
	}

	usr, err := a.auth.Login(ctx, *addr, req.Password)
	if err != nil {
		return errs.New(errs.Unauthenticated, userbus.ErrAuthenticationFailure)
	}

	return a.token(usr, nil, http.StatusOK)
}

func (a *app) register(ctx context.Context, r *http.Request) web.Encoder {
	var req Register
	if err := web.Decode(r, &req); err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	nu, err := toBusNewUser(req)
	if err != nil {
		if v, ok := err.(*errs.Error); ok {
			return v
		}
		return errs.New(errs.InvalidArgument, err)
	}

	usr, err := a.userBus.Create(ctx, nu)
	if err != nil {
		if errors.Is(err, userbus.ErrUniqueEmail) {
			return errs.New(errs.Aborted, userbus.ErrUniqueEmail)
		}
		return errs.Errorf(errs.Internal, "create: email[%s]: %s", nu.Email.Address, err)
	}

	return a.token(usr, nil, http.StatusCreated)
}

func (a *app) redeem(ctx context.Context, r *http.Request) web.Encoder {
	var req Redeem
	if err := web.Decode(r, &req); err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	var fieldErrors errs.FieldErrors

	nme, err := name.Parse(req.Name)
	if err != nil {
		fieldErrors.Add("name", err)
	}

	pass, err := password.Parse(req.Password)
	if err != nil {
		fieldErrors.Add("password", err)
	}

	ph, err := phone.ParseNull(req.Phone)
	if err != nil {
		fieldErrors.Add("phone", err)
	}

	if fieldErrors != nil {
		return fieldErrors.ToError()
	}

	tx, err := mid.GetTran(ctx)
	if err != nil {
		return errs.Errorf(errs.Internal, "redeem: %s", err)
	}

	invitationBus, err := a.invitationBus.NewWithTx(tx)
	if err != nil {
		return errs.Errorf(errs.Internal, "redeem: %s", err)
	}

	rd := invitationbus.Redemption{
		Token:    req.Token,
		Name:     nme,
		Password: pass,
		Phone:    ph,
	}

	usr, t, err := invitationBus.Redeem(ctx, rd)
	if err != nil {
		switch {
		case errors.Is(err, invitationbus.ErrNotFound):
			return errs.New(errs.NotFound, invitationbus.ErrNotFound)
		case errors.Is(err, invitationbus.ErrAlreadyUsed):
			return errs.New(errs.AlreadyUsed, invitationbus.ErrAlreadyUsed)
		case errors.Is(err, invitationbus.ErrExpired):
			return errs.New(errs.Expired, invitationbus.ErrExpired)
		case errors.Is(err, userbus.ErrAuthenticationFailure), errors.Is(err, userbus.ErrDisabled):
			return errs.New(errs.Unauthenticated, userbus.ErrAuthenticationFailure)
		case errors.Is(err, tenancybus.ErrNotTenant):
			return errs.New(errs.Aborted, tenancybus.ErrNotTenant)
		case errors.Is(err, tenancybus.ErrTenantAssigned):
			return errs.New(errs.Aborted, tenancybus.ErrTenantAssigned)
		case errors.Is(err, tenancybus.ErrDuplicate):
			return errs.New(errs.Aborted, tenancybus.ErrDuplicate)
		}
		return errs.Errorf(errs.Internal, "redeem: %s", err)
	}

	return a.token(usr, toAppTenancy(t), http.StatusCreated)
}

func (a *app) me(ctx context.Context, r *http.Request) web.Encoder {
	usr, err := a.current(ctx)
	if err != nil {
		return err
	}

	return toAppUser(usr)
}

func (a *app) updateMe(ctx context.Context, r *http.Request) web.Encoder {
	var req UpdateMe
	if err := web.Decode(r, &req); err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	uu, err := toBusUpdateUser(req)
	if err != nil {
		if v, ok := err.(*errs.Error); ok {
			return v
		}
		return errs.New(errs.InvalidArgument, err)
	}

	usr, appErr := a.current(ctx)
	if appErr != nil {
		return appErr
	}

	usr, err = a.userBus.Update(ctx, usr, uu)
	if err != nil {
		if errors.Is(err, userbus.ErrUniqueEmail) {
			return errs.New(errs.Aborted, userbus.ErrUniqueEmail)
		}
		return errs.Errorf(errs.Internal, "update: userID[%s]: %s", usr.ID, err)
	}

	return toAppUser(usr)
}

// =============================================================================

func (a *app) current(ctx context.Context) (userbus.User, *errs.Error) {
	userID, err := mid.GetUserID(ctx)
	if err != nil {
		return userbus.User{}, errs.New(errs.Unauthenticated, err)
	}

	usr, err := a.userBus.QueryByID(ctx, userID)
	if err != nil {
		if errors.Is(err, userbus.ErrNotFound) {
			return userbus.User{}, errs.New(errs.Unauthenticated, err)
		}
		return userbus.User{}, errs.Errorf(errs.Internal, "querybyid: userID[%s]: %s", userID, err)
	}

	return usr, nil
}

func (a *app) token(usr userbus.User, t *Tenancy, status int) web.Encoder {
	tkn, err := a.auth.GenerateToken(a.activeKID, usr)
	if err != nil {
		return errs.Errorf(errs.Internal, "generatetoken: userID[%s]: %s", usr.ID, err)
	}

	return Token{
		Token:   tkn,
		User:    toAppUser(usr),
		Tenancy: t,
		status:  status,
	}
}
