// Package issueapp maintains the app layer api for maintenance tickets.
package issueapp

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jcpaschoal/propman/app/sdk/errs"
	"github.com/jcpaschoal/propman/app/sdk/mid"
	"github.com/jcpaschoal/propman/app/sdk/query"
	"github.com/jcpaschoal/propman/business/domain/buildingbus"
	"github.com/jcpaschoal/propman/business/domain/issuebus"
	"github.com/jcpaschoal/propman/business/sdk/order"
	"github.com/jcpaschoal/propman/business/sdk/page"
	"github.com/jcpaschoal/propman/business/sdk/web"
	"github.com/jcpaschoal/propman/business/types/issuestatus"
	"github.com/jcpaschoal/propman/business/types/role"
)

// exportRows bounds a spreadsheet export.
const exportRows = 10000

type app struct {
	issueBus *issuebus.Core
}

func newApp(issueBus *issuebus.Core) *app {
	return &app{
		issueBus: issueBus,
	}
}

func (a *app) create(ctx context.Context, r *http.Request) web.Encoder {
	var req NewIssue
	if err := web.Decode(r, &req); err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	tenantID, err := mid.GetUserID(ctx)
	if err != nil {
		return errs.New(errs.Unauthenticated, err)
	}

	ni, err := toBusNewIssue(req)
	if err != nil {
		return err.(*errs.Error)
	}

	iss, err := a.issueBus.Create(ctx, tenantID, ni)
	if err != nil {
		return toAppErr(err, "create")
	}

	return CreatedIssue{toAppIssue(iss)}
}

// query lists tickets. A company sees the tickets of its buildings with
// filtering and paging, a tenant sees the tickets they raised.
func (a *app) query(ctx context.Context, r *http.Request) web.Encoder {
	userID, err := mid.GetUserID(ctx)
	if err != nil {
		return errs.New(errs.Unauthenticated, err)
	}

	if mid.GetClaims(ctx).Role == role.Tenant.String() {
		issues, err := a.issueBus.QueryByTenant(ctx, userID)
		if err != nil {
			return toAppErr(err, "querybytenant")
		}

		return Issues(toAppIssues(issues))
	}

	qp := parseQueryParams(r)

	pg, err := page.Parse(qp.Page, qp.Rows)
	if err != nil {
		return errs.NewFieldErrors("page", err)
	}

	filter, err := parseFilter(qp)
	if err != nil {
		return err.(*errs.Error)
	}

	orderBy, err := order.Parse(orderByFields, qp.OrderBy, issuebus.DefaultOrderBy)
	if err != nil {
		return errs.NewFieldErrors("order", err)
	}

	reports, err := a.issueBus.QueryByCompany(ctx, userID, filter, orderBy, pg)
	if err != nil {
		return toAppErr(err, "querybycompany")
	}

	total, err := a.issueBus.CountByCompany(ctx, userID, filter)
	if err != nil {
		return toAppErr(err, "countbycompany")
	}

	return query.NewResult(toAppReports(reports), total, pg)
}

func (a *app) queryByID(ctx context.Context, r *http.Request) web.Encoder {
	userID, err := mid.GetUserID(ctx)
	if err != nil {
		return errs.New(errs.Unauthenticated, err)
	}

	issueID, err := uuid.Parse(web.Param(r, "issue_id"))
	if err != nil {
		return errs.NewFieldErrors("issue_id", err)
	}

	if mid.GetClaims(ctx).Role == role.Tenant.String() {
		iss, err := a.issueBus.QueryByID(ctx, issueID)
		if err != nil {
			return toAppErr(err, "querybyid")
		}

		if iss.TenantID != userID {
			return errs.New(errs.NotFound, issuebus.ErrNotFound)
		}

		return toAppIssue(iss)
	}

	iss, err := a.issueBus.QueryOwned(ctx, userID, issueID)
	if err != nil {
		return toAppErr(err, "queryowned")
	}

	return toAppIssue(iss)
}

func (a *app) updateStatus(ctx context.Context, r *http.Request) web.Encoder {
	var req UpdateStatus
	if err := web.Decode(r, &req); err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	status, err := issuestatus.Parse(req.Status)
	if err != nil {
		return errs.NewFieldErrors("status", err)
	}

	companyID, err := mid.GetUserID(ctx)
	if err != nil {
		return errs.New(errs.Unauthenticated, err)
	}

	issueID, err := uuid.Parse(web.Param(r, "issue_id"))
	if err != nil {
		return errs.NewFieldErrors("issue_id", err)
	}

	iss, err := a.issueBus.QueryOwned(ctx, companyID, issueID)
	if err != nil {
		return toAppErr(err, "queryowned")
	}

	iss, err = a.issueBus.UpdateStatus(ctx, companyID, iss, status)
	if err != nil {
		return toAppErr(err, "updatestatus")
	}

	return toAppIssue(iss)
}

func (a *app) export(ctx context.Context, r *http.Request) web.Encoder {
	companyID, err := mid.GetUserID(ctx)
	if err != nil {
		return errs.New(errs.Unauthenticated, err)
	}

	qp := parseQueryParams(r)

	filter, err := parseFilter(qp)
	if err != nil {
		return err.(*errs.Error)
	}

	orderBy, err := order.Parse(orderByFields, qp.OrderBy, issuebus.DefaultOrderBy)
	if err != nil {
		return errs.NewFieldErrors("order", err)
	}

	const rows = 100

	var reports []issuebus.Report
	for n := 1; len(reports) < exportRows; n++ {
		pg, err := page.Parse(strconv.Itoa(n), strconv.Itoa(rows))
		if err != nil {
			return errs.Errorf(errs.Internal, "export: %s", err)
		}

		batch, err := a.issueBus.QueryByCompany(ctx, companyID, filter, orderBy, pg)
		if err != nil {
			return toAppErr(err, "export")
		}

		reports = append(reports, batch...)

		if len(batch) < rows {
			break
		}
	}

	wb, err := toWorkbook(reports, time.Now())
	if err != nil {
		return errs.Errorf(errs.Internal, "export: %s", err)
	}

	return wb
}

// toAppErr maps business failures onto api errors. Tickets outside the
// caller's buildings or home are reported as missing.
func toAppErr(err error, op string) *errs.Error {
	switch {
	case errors.Is(err, issuebus.ErrMissingApartment):
		return errs.NewFieldErrors("apartmentId", issuebus.ErrMissingApartment)
	case errors.Is(err, issuebus.ErrValidation):
		return errs.New(errs.InvalidArgument, err)
	case errors.Is(err, issuebus.ErrForbidden):
		return errs.New(errs.NotFound, issuebus.ErrForbidden)
	case errors.Is(err, issuebus.ErrNotFound):
		return errs.New(errs.NotFound, issuebus.ErrNotFound)
	case errors.Is(err, buildingbus.ErrNotFound), errors.Is(err, buildingbus.ErrForbidden):
		return errs.New(errs.NotFound, issuebus.ErrNotFound)
	case errors.Is(err, issuebus.ErrInvalidTransition):
		return errs.New(errs.Aborted, err)
	}

	return errs.Errorf(errs.Internal, "%s: %s", op, err)
}
