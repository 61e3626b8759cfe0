// Package tenancyapp maintains the app layer api for the tenancy ledger.
package tenancyapp

import (
	"context"
	"errors"
	"net/http"
	"net/mail"

	"github.com/google/uuid"
	"github.com/jcpaschoal/propman/app/sdk/errs"
	"github.com/jcpaschoal/propman/app/sdk/mid"
	"github.com/jcpaschoal/propman/business/domain/apartmentbus"
	"github.com/jcpaschoal/propman/business/domain/buildingbus"
	"github.com/jcpaschoal/propman/business/domain/tenancybus"
	"github.com/jcpaschoal/propman/business/domain/userbus"
	"github.com/jcpaschoal/propman/business/sdk/web"
	"github.com/jcpaschoal/propman/business/types/tenancystatus"
)

type app struct {
	userBus    *userbus.Core
	tenancyBus *tenancybus.Core
}

func newApp(userBus *userbus.Core, tenancyBus *tenancybus.Core) *app {
	return &app{
		userBus:    userBus,
		tenancyBus: tenancyBus,
	}
}

func (a *app) query(ctx context.Context, r *http.Request) web.Encoder {
	filter, err := parseFilter(r)
	if err != nil {
		return err.(*errs.Error)
	}

	companyID, err := mid.GetUserID(ctx)
	if err != nil {
		return errs.New(errs.Unauthenticated, err)
	}

	rs, err := a.tenancyBus.QueryByCompany(ctx, companyID, filter)
	if err != nil {
		return toAppErr(err, "querybycompany")
	}

	return toAppRosters(rs)
}

func (a *app) home(ctx context.Context, r *http.Request) web.Encoder {
	tenantID, err := mid.GetUserID(ctx)
	if err != nil {
		return errs.New(errs.Unauthenticated, err)
	}

	rs, err := a.tenancyBus.QueryHome(ctx, tenantID)
	if err != nil {
		return toAppErr(err, "queryhome")
	}

	return toAppRoster(rs)
}

func (a *app) assign(ctx context.Context, r *http.Request) web.Encoder {
	var req NewTenancy
	if err := web.Decode(r, &req); err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	companyID, err := mid.GetUserID(ctx)
	if err != nil {
		return errs.New(errs.Unauthenticated, err)
	}

	apartmentID, err := uuid.Parse(req.ApartmentID)
	if err != nil {
		return errs.NewFieldErrors("apartmentId", err)
	}

	tenantID, appErr := a.tenant(ctx, req)
	if appErr != nil {
		return appErr
	}

	status := tenancystatus.Active
	if req.Status != "" {
		status, err = tenancystatus.Parse(req.Status)
		if err != nil {
			return errs.NewFieldErrors("status", err)
		}
	}

	nt := tenancybus.NewTenancy{
		ApartmentID: apartmentID,
		TenantID:    tenantID,
		InvitedBy:   companyID,
		Status:      status,
	}

	t, err := a.tenancyBus.Assign(ctx, companyID, nt)
	if err != nil {
		return toAppErr(err, "assign")
	}

	app := toAppTenancy(t)
	app.status = http.StatusCreated

	return app
}

func (a *app) reassign(ctx context.Context, r *http.Request) web.Encoder {
	var req Reassign
	if err := web.Decode(r, &req); err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	apartmentID, err := uuid.Parse(req.ApartmentID)
	if err != nil {
		return errs.NewFieldErrors("apartmentId", err)
	}

	tx, err := mid.GetTran(ctx)
	if err != nil {
		return errs.Errorf(errs.Internal, "reassign: %s", err)
	}

	tenancyBus, err := a.tenancyBus.NewWithTx(tx)
	if err != nil {
		return errs.Errorf(errs.Internal, "reassign: %s", err)
	}

	companyID, t, appErr := a.tenancy(ctx, tenancyBus, r)
	if appErr != nil {
		return appErr
	}

	moved, err := tenancyBus.Reassign(ctx, companyID, t, apartmentID)
	if err != nil {
		return toAppErr(err, "reassign")
	}

	return toAppTenancy(moved)
}

func (a *app) activate(ctx context.Context, r *http.Request) web.Encoder {
	companyID, t, appErr := a.tenancy(ctx, a.tenancyBus, r)
	if appErr != nil {
		return appErr
	}

	t, err := a.tenancyBus.Activate(ctx, companyID, t)
	if err != nil {
		return toAppErr(err, "activate")
	}

	return toAppTenancy(t)
}

// deactivate removes a tenant from an apartment. The entry is kept as
// inactive.
func (a *app) deactivate(ctx context.Context, r *http.Request) web.Encoder {
	companyID, t, appErr := a.tenancy(ctx, a.tenancyBus, r)
	if appErr != nil {
		return appErr
	}

	t, err := a.tenancyBus.Deactivate(ctx, companyID, t)
	if err != nil {
		return toAppErr(err, "deactivate")
	}

	return toAppTenancy(t)
}

// =============================================================================

func (a *app) tenancy(ctx context.Context, tenancyBus *tenancybus.Core, r *http.Request) (uuid.UUID, tenancybus.Tenancy, *errs.Error) {
	companyID, err := mid.GetUserID(ctx)
	if err != nil {
		return uuid.Nil, tenancybus.Tenancy{}, errs.New(errs.Unauthenticated, err)
	}

	tenancyID, err := uuid.Parse(web.Param(r, "tenancy_id"))
	if err != nil {
		return uuid.Nil, tenancybus.Tenancy{}, errs.NewFieldErrors("tenancy_id", err)
	}

	t, err := tenancyBus.QueryOwned(ctx, companyID, tenancyID)
	if err != nil {
		return uuid.Nil, tenancybus.Tenancy{}, toAppErr(err, "querytenancy")
	}

	return companyID, t, nil
}

func (a *app) tenant(ctx context.Context, req NewTenancy) (uuid.UUID, *errs.Error) {
	if req.TenantID != "" {
		id, err := uuid.Parse(req.TenantID)
		if err != nil {
			return uuid.Nil, errs.NewFieldErrors("tenantId", err)
		}
		return id, nil
	}

	addr, err := mail.ParseAddress(req.Email)
	if err != nil {
		return uuid.Nil, errs.NewFieldErrors("email", err)
	}

	usr, err := a.userBus.QueryByEmail(ctx, *addr)
	if err != nil {
		return uuid.Nil, toAppErr(err, "querybyemail")
	}

	return usr.ID, nil
}

func toAppErr(err error, op string) *errs.Error {
	switch {
	case errors.Is(err, buildingbus.ErrNotFound), errors.Is(err, buildingbus.ErrForbidden):
		return errs.New(errs.NotFound, buildingbus.ErrNotFound)
	case errors.Is(err, apartmentbus.ErrNotFound):
		return errs.New(errs.NotFound, apartmentbus.ErrNotFound)
	case errors.Is(err, userbus.ErrNotFound):
		return errs.New(errs.NotFound, userbus.ErrNotFound)
	case errors.Is(err, tenancybus.ErrNotFound):
		return errs.New(errs.NotFound, tenancybus.ErrNotFound)
	case errors.Is(err, tenancybus.ErrDuplicate):
		return errs.New(errs.Aborted, tenancybus.ErrDuplicate)
	case errors.Is(err, tenancybus.ErrTenantAssigned):
		return errs.New(errs.Aborted, tenancybus.ErrTenantAssigned)
	case errors.Is(err, tenancybus.ErrInvalidTransition):
		return errs.New(errs.Aborted, err)
	case errors.Is(err, tenancybus.ErrNotTenant):
		return errs.New(errs.InvalidArgument, tenancybus.ErrNotTenant)
	}

	return errs.Errorf(errs.Internal, "%s: %s", op, err)
}
