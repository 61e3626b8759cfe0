package buildingapp

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/jcpaschoal/propman/app/sdk/errs"
	"github.com/jcpaschoal/propman/business/domain/apartmentbus"
	"github.com/jcpaschoal/propman/business/domain/buildingbus"
	"github.com/jcpaschoal/propman/business/types/name"
)

// Building represents a building owned by the caller.
type Building struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Address      string `json:"address"`
	Floors       int    `json:"floors"`
	GarageLevels int    `json:"garageLevels"`
	DateCreated  string `json:"dateCreated"`
	DateUpdated  string `json:"dateUpdated"`
}

// Encode implements the web.Encoder interface.
func (app Building) Encode() ([]byte, string, error) {
	data, err := json.Marshal(app)
	return data, "application/json", err
}

func toAppBuilding(bus buildingbus.Building) Building {
	return Building{
		ID:           bus.ID.String(),
		Name:         bus.Name.String(),
		Address:      bus.Address,
		Floors:       bus.Floors,
		GarageLevels: bus.GarageLevels,
		DateCreated:  bus.CreatedAt.Format(time.RFC3339),
		DateUpdated:  bus.UpdatedAt.Format(time.RFC3339),
	}
}

// CreatedBuilding answers a create with 201.
type CreatedBuilding struct {
	Building
}

// HTTPStatus implements the web package httpStatus interface.
func (CreatedBuilding) HTTPStatus() int {
	return http.StatusCreated
}

// Buildings is a list of buildings.
type Buildings []Building

// Encode implements the web.Encoder interface.
func (app Buildings) Encode() ([]byte, string, error) {
	data, err := json.Marshal(app)
	return data, "application/json", err
}

func toAppBuildings(bus []buildingbus.Building) Buildings {
	app := make(Buildings, len(bus))
	for i, b := range bus {
		app[i] = toAppBuilding(b)
	}
	return app
}

// =============================================================================

// NewBuilding defines the data needed to add a building.
type NewBuilding struct {
	Name         string `json:"name" validate:"required"`
	Address      string `json:"address" validate:"required"`
	Floors       int    `json:"floors" validate:"gte=0"`
	GarageLevels int    `json:"garageLevels" validate:"gte=0"`
}

// Decode implements the web.Decoder interface.
func (app *NewBuilding) Decode(data []byte) error {
	return json.Unmarshal(data, app)
}

// Validate checks the data in the model is considered clean.
func (app NewBuilding) Validate() error {
	if err := errs.Check(app); err != nil {
		return errs.New(errs.InvalidArgument, fmt.Errorf("validate: %w", err))
	}
	return nil
}

func toBusNewBuilding(app NewBuilding) (buildingbus.NewBuilding, error) {
	nme, err := name.Parse(app.Name)
	if err != nil {
		return buildingbus.NewBuilding{}, errs.NewFieldErrors("name", err)
	}

	bus := buildingbus.NewBuilding{
		Name:         nme,
		Address:      app.Address,
		Floors:       app.Floors,
		GarageLevels: app.GarageLevels,
	}

	return bus, nil
}

// UpdateBuilding defines the data needed to update a building.
type UpdateBuilding struct {
	Name         *string `json:"name"`
	Address      *string `json:"address"`
	Floors       *int    `json:"floors" validate:"omitempty,gte=0"`
	GarageLevels *int    `json:"garageLevels" validate:"omitempty,gte=0"`
}

// Decode implements the web.Decoder interface.
func (app *UpdateBuilding) Decode(data []byte) error {
	return json.Unmarshal(data, app)
}

// Validate checks the data in the model is considered clean.
func (app UpdateBuilding) Validate() error {
	if err := errs.Check(app); err != nil {
		return errs.New(errs.InvalidArgument, fmt.Errorf("validate: %w", err))
	}
	return nil
}

func toBusUpdateBuilding(app UpdateBuilding) (buildingbus.UpdateBuilding, error) {
	var nme *name.Name
	if app.Name != nil {
		nm, err := name.Parse(*app.Name)
		if err != nil {
			return buildingbus.UpdateBuilding{}, errs.NewFieldErrors("name", err)
		}
		nme = &nm
	}

	bus := buildingbus.UpdateBuilding{
		Name:         nme,
		Address:      app.Address,
		Floors:       app.Floors,
		GarageLevels: app.GarageLevels,
	}

	return bus, nil
}

// =============================================================================

// Apartment represents a unit of a building.
type Apartment struct {
	ID          string `json:"id"`
	BuildingID  string `json:"buildingId"`
	Number      string `json:"apartmentNumber"`
	Floor       int    `json:"floor"`
	DateCreated string `json:"dateCreated"`
	DateUpdated string `json:"dateUpdated"`
}

// Encode implements the web.Encoder interface.
func (app Apartment) Encode() ([]byte, string, error) {
	data, err := json.Marshal(app)
	return data, "application/json", err
}

func toAppApartment(bus apartmentbus.Apartment) Apartment {
	return Apartment{
		ID:          bus.ID.String(),
		BuildingID:  bus.BuildingID.String(),
		Number:      bus.Number,
		Floor:       bus.Floor,
		DateCreated: bus.CreatedAt.Format(time.RFC3339),
		DateUpdated: bus.UpdatedAt.Format(time.RFC3339),
	}
}

// CreatedApartment answers a create with 201.
type CreatedApartment struct {
	Apartment
}

// HTTPStatus implements the web package httpStatus interface.
func (CreatedApartment) HTTPStatus() int {
	return http.StatusCreated
}

// Apartments is a list of apartments.
type Apartments []Apartment

// Encode implements the web.Encoder interface.
func (app Apartments) Encode() ([]byte, string, error) {
	data, err := json.Marshal(app)
	return data, "application/json", err
}

func toAppApartments(bus []apartmentbus.Apartment) Apartments {
	app := make(Apartments, len(bus))
	for i, apt := range bus {
		app[i] = toAppApartment(apt)
	}
	return app
}

// NewApartment defines the data needed to add an apartment.
type NewApartment struct {
	Number string `json:"apartmentNumber" validate:"required"`
	Floor  int    `json:"floor"`
}

// Decode implements the web.Decoder interface.
func (app *NewApartment) Decode(data []byte) error {
	return json.Unmarshal(data, app)
}

// Validate checks the data in the model is considered clean.
func (app NewApartment) Validate() error {
	if err := errs.Check(app); err != nil {
		return errs.New(errs.InvalidArgument, fmt.Errorf("validate: %w", err))
	}
	return nil
}

// UpdateApartment defines the data needed to correct an apartment.
type UpdateApartment struct {
	Number *string `json:"apartmentNumber"`
	Floor  *int    `json:"floor"`
}

// Decode implements the web.Decoder interface.
func (app *UpdateApartment) Decode(data []byte) error {
	return json.Unmarshal(data, app)
}

// FloorPlan asks for units on every floor above ground.
type FloorPlan struct {
	UnitsPerFloor int `json:"unitsPerFloor" validate:"required,min=1,max=26"`
}

// Decode implements the web.Decoder interface.
func (app *FloorPlan) Decode(data []byte) error {
	return json.Unmarshal(data, app)
}

// Validate checks the data in the model is considered clean.
func (app FloorPlan) Validate() error {
	if err := errs.Check(app); err != nil {
		return errs.New(errs.InvalidArgument, fmt.Errorf("validate: %w", err))
	}
	return nil
}

// CreatedApartments answers a floor plan with the units it added.
type CreatedApartments struct {
	Apartments Apartments `json:"apartments"`
}

// Encode implements the web.Encoder interface.
func (app CreatedApartments) Encode() ([]byte, string, error) {
	data, err := json.Marshal(app)
	return data, "application/json", err
}

// HTTPStatus implements the web package httpStatus interface.
func (CreatedApartments) HTTPStatus() int {
	return http.StatusCreated
}
