// Package buildingapp maintains the app layer api for buildings and their
// apartments.
package buildingapp

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/jcpaschoal/propman/app/sdk/errs"
	"github.com/jcpaschoal/propman/app/sdk/mid"
	"github.com/jcpaschoal/propman/business/domain/apartmentbus"
	"github.com/jcpaschoal/propman/business/domain/buildingbus"
	"github.com/jcpaschoal/propman/business/sdk/web"
)

type app struct {
	buildingBus  *buildingbus.Core
	apartmentBus *apartmentbus.Core
}

func newApp(buildingBus *buildingbus.Core, apartmentBus *apartmentbus.Core) *app {
	return &app{
		buildingBus:  buildingBus,
		apartmentBus: apartmentBus,
	}
}

func (a *app) create(ctx context.Context, r *http.Request) web.Encoder {
	var req NewBuilding
	if err := web.Decode(r, &req); err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	companyID, err := mid.GetUserID(ctx)
	if err != nil {
		return errs.New(errs.Unauthenticated, err)
	}

	nb, err := toBusNewBuilding(req)
	if err != nil {
		return err.(*errs.Error)
	}
	nb.CompanyID = companyID

	b, err := a.buildingBus.Create(ctx, nb)
	if err != nil {
		return toAppErr(err, "create")
	}

	return CreatedBuilding{toAppBuilding(b)}
}

func (a *app) update(ctx context.Context, r *http.Request) web.Encoder {
	var req UpdateBuilding
	if err := web.Decode(r, &req); err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	ub, err := toBusUpdateBuilding(req)
	if err != nil {
		return err.(*errs.Error)
	}

	companyID, b, appErr := a.building(ctx, r)
	if appErr != nil {
		return appErr
	}

	b, err = a.buildingBus.Update(ctx, companyID, b, ub)
	if err != nil {
		return toAppErr(err, "update")
	}

	return toAppBuilding(b)
}

func (a *app) delete(ctx context.Context, r *http.Request) web.Encoder {
	companyID, b, appErr := a.building(ctx, r)
	if appErr != nil {
		return appErr
	}

	if err := a.buildingBus.Delete(ctx, companyID, b); err != nil {
		return toAppErr(err, "delete")
	}

	return nil
}

func (a *app) query(ctx context.Context, r *http.Request) web.Encoder {
	companyID, err := mid.GetUserID(ctx)
	if err != nil {
		return errs.New(errs.Unauthenticated, err)
	}

	bs, err := a.buildingBus.QueryByCompany(ctx, companyID)
	if err != nil {
		return toAppErr(err, "querybycompany")
	}

	return toAppBuildings(bs)
}

func (a *app) queryByID(ctx context.Context, r *http.Request) web.Encoder {
	_, b, appErr := a.building(ctx, r)
	if appErr != nil {
		return appErr
	}

	return toAppBuilding(b)
}

// =============================================================================

func (a *app) createApartment(ctx context.Context, r *http.Request) web.Encoder {
	var req NewApartment
	if err := web.Decode(r, &req); err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	companyID, b, appErr := a.building(ctx, r)
	if appErr != nil {
		return appErr
	}

	na := apartmentbus.NewApartment{
		BuildingID: b.ID,
		Number:     req.Number,
		Floor:      req.Floor,
	}

	apt, err := a.apartmentBus.Create(ctx, companyID, na)
	if err != nil {
		return toAppErr(err, "createapartment")
	}

	return CreatedApartment{toAppApartment(apt)}
}

func (a *app) queryApartments(ctx context.Context, r *http.Request) web.Encoder {
	companyID, b, appErr := a.building(ctx, r)
	if appErr != nil {
		return appErr
	}

	apts, err := a.apartmentBus.QueryByBuilding(ctx, companyID, b.ID)
	if err != nil {
		return toAppErr(err, "queryapartments")
	}

	return toAppApartments(apts)
}

func (a *app) updateApartment(ctx context.Context, r *http.Request) web.Encoder {
	var req UpdateApartment
	if err := web.Decode(r, &req); err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	companyID, apt, appErr := a.apartment(ctx, r)
	if appErr != nil {
		return appErr
	}

	ua := apartmentbus.UpdateApartment{
		Number: req.Number,
		Floor:  req.Floor,
	}

	apt, err := a.apartmentBus.Update(ctx, companyID, apt, ua)
	if err != nil {
		return toAppErr(err, "updateapartment")
	}

	return toAppApartment(apt)
}

func (a *app) deleteApartment(ctx context.Context, r *http.Request) web.Encoder {
	companyID, apt, appErr := a.apartment(ctx, r)
	if appErr != nil {
		return appErr
	}

	if err := a.apartmentBus.Delete(ctx, companyID, apt); err != nil {
		return toAppErr(err, "deleteapartment")
	}

	return nil
}

func (a *app) floorPlan(ctx context.Context, r *http.Request) web.Encoder {
	var req FloorPlan
	if err := web.Decode(r, &req); err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	companyID, b, appErr := a.building(ctx, r)
	if appErr != nil {
		return appErr
	}

	tx, err := mid.GetTran(ctx)
	if err != nil {
		return errs.Errorf(errs.Internal, "floorplan: %s", err)
	}

	apartmentBus, err := a.apartmentBus.NewWithTx(tx)
	if err != nil {
		return errs.Errorf(errs.Internal, "floorplan: %s", err)
	}

	apts, err := apartmentBus.GenerateFloorPlan(ctx, companyID, b.ID, req.UnitsPerFloor)
	if err != nil {
		return toAppErr(err, "floorplan")
	}

	return CreatedApartments{Apartments: toAppApartments(apts)}
}

// =============================================================================

// building loads the building in the path and checks the caller owns it.
func (a *app) building(ctx context.Context, r *http.Request) (uuid.UUID, buildingbus.Building, *errs.Error) {
	companyID, err := mid.GetUserID(ctx)
	if err != nil {
		return uuid.Nil, buildingbus.Building{}, errs.New(errs.Unauthenticated, err)
	}

	buildingID, err := uuid.Parse(web.Param(r, "building_id"))
	if err != nil {
		return uuid.Nil, buildingbus.Building{}, errs.NewFieldErrors("building_id", err)
	}

	b, err := a.buildingBus.QueryOwned(ctx, companyID, buildingID)
	if err != nil {
		return uuid.Nil, buildingbus.Building{}, toAppErr(err, "querybuilding")
	}

	return companyID, b, nil
}

// apartment loads the apartment in the path, which must sit in the
// building named by the path.
func (a *app) apartment(ctx context.Context, r *http.Request) (uuid.UUID, apartmentbus.Apartment, *errs.Error) {
	companyID, b, appErr := a.building(ctx, r)
	if appErr != nil {
		return uuid.Nil, apartmentbus.Apartment{}, appErr
	}

	apartmentID, err := uuid.Parse(web.Param(r, "apartment_id"))
	if err != nil {
		return uuid.Nil, apartmentbus.Apartment{}, errs.NewFieldErrors("apartment_id", err)
	}

	apt, _, err := a.apartmentBus.QueryOwned(ctx, companyID, apartmentID)
	if err != nil {
		return uuid.Nil, apartmentbus.Apartment{}, toAppErr(err, "queryapartment")
	}

	if apt.BuildingID != b.ID {
		return uuid.Nil, apartmentbus.Apartment{}, errs.New(errs.NotFound, apartmentbus.ErrNotFound)
	}

	return companyID, apt, nil
}

// toAppErr maps business failures onto api errors. A building owned by
// another company is reported as missing.
func toAppErr(err error, op string) *errs.Error {
	switch {
	case errors.Is(err, buildingbus.ErrNotFound), errors.Is(err, buildingbus.ErrForbidden):
		return errs.New(errs.NotFound, buildingbus.ErrNotFound)
	case errors.Is(err, apartmentbus.ErrNotFound):
		return errs.New(errs.NotFound, apartmentbus.ErrNotFound)
	case errors.Is(err, apartmentbus.ErrUniqueNumber):
		return errs.New(errs.Aborted, apartmentbus.ErrUniqueNumber)
	case errors.Is(err, buildingbus.ErrValidation), errors.Is(err, apartmentbus.ErrValidation):
		return errs.New(errs.InvalidArgument, err)
	}

	return errs.Errorf(errs.Internal, "%s: %s", op, err)
}
