// Package invitationapp maintains the app layer api for tenant invitations.
package invitationapp

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jcpaschoal/propman/app/sdk/errs"
	"github.com/jcpaschoal/propman/app/sdk/mid"
	"github.com/jcpaschoal/propman/business/domain/apartmentbus"
	"github.com/jcpaschoal/propman/business/domain/buildingbus"
	"github.com/jcpaschoal/propman/business/domain/invitationbus"
	"github.com/jcpaschoal/propman/business/sdk/web"
)

type app struct {
	invitationBus *invitationbus.Core
}

func newApp(invitationBus *invitationbus.Core) *app {
	return &app{
		invitationBus: invitationBus,
	}
}

func (a *app) issue(ctx context.Context, r *http.Request) web.Encoder {
	var req NewInvitation
	if err := web.Decode(r, &req); err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	companyID, err := mid.GetUserID(ctx)
	if err != nil {
		return errs.New(errs.Unauthenticated, err)
	}

	ni, err := toBusNewInvitation(req)
	if err != nil {
		return err.(*errs.Error)
	}

	inv, err := a.invitationBus.Issue(ctx, companyID, ni)
	if err != nil {
		return toAppErr(err, "issue")
	}

	return CreatedInvitation{toAppInvitation(inv, time.Now())}
}

func (a *app) query(ctx context.Context, r *http.Request) web.Encoder {
	companyID, err := mid.GetUserID(ctx)
	if err != nil {
		return errs.New(errs.Unauthenticated, err)
	}

	buildingID, err := uuid.Parse(r.URL.Query().Get("building_id"))
	if err != nil {
		return errs.NewFieldErrors("building_id", err)
	}

	invs, err := a.invitationBus.QueryByBuilding(ctx, companyID, buildingID)
	if err != nil {
		return toAppErr(err, "querybybuilding")
	}

	now := time.Now()

	app := make(Invitations, len(invs))
	for i, inv := range invs {
		app[i] = toAppInvitation(inv, now)
	}

	return app
}

func (a *app) revoke(ctx context.Context, r *http.Request) web.Encoder {
	companyID, err := mid.GetUserID(ctx)
	if err != nil {
		return errs.New(errs.Unauthenticated, err)
	}

	invitationID, err := uuid.Parse(web.Param(r, "invitation_id"))
	if err != nil {
		return errs.NewFieldErrors("invitation_id", err)
	}

	inv, err := a.invitationBus.QueryOwned(ctx, companyID, invitationID)
	if err != nil {
		return toAppErr(err, "queryowned")
	}

	if err := a.invitationBus.Revoke(ctx, companyID, inv); err != nil {
		return toAppErr(err, "revoke")
	}

	return nil
}

func toAppErr(err error, op string) *errs.Error {
	switch {
	case errors.Is(err, buildingbus.ErrNotFound), errors.Is(err, buildingbus.ErrForbidden):
		return errs.New(errs.NotFound, buildingbus.ErrNotFound)
	case errors.Is(err, apartmentbus.ErrNotFound):
		return errs.New(errs.NotFound, apartmentbus.ErrNotFound)
	case errors.Is(err, apartmentbus.ErrValidation), errors.Is(err, invitationbus.ErrValidation):
		return errs.New(errs.InvalidArgument, err)
	case errors.Is(err, invitationbus.ErrNotFound):
		return errs.New(errs.NotFound, invitationbus.ErrNotFound)
	case errors.Is(err, invitationbus.ErrAlreadyUsed):
		return errs.New(errs.AlreadyUsed, invitationbus.ErrAlreadyUsed)
	}

	return errs.Errorf(errs.Internal, "%s: %s", op, err)
}
