package issueapp

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jcpaschoal/propman/app/sdk/errs"
	"github.com/jcpaschoal/propman/business/domain/issuebus"
	"github.com/jcpaschoal/propman/business/types/category"
	"github.com/jcpaschoal/propman/business/types/priority"
)

// Issue represents a maintenance ticket.
type Issue struct {
	ID              string `json:"id"`
	TenantID        string `json:"tenantId"`
	ApartmentID     string `json:"apartmentId"`
	BuildingID      string `json:"buildingId"`
	Title           string `json:"title"`
	Description     string `json:"description"`
	Category        string `json:"category"`
	Priority        string `json:"priority"`
	Status          string `json:"status"`
	LocationDetails string `json:"locationDetails,omitempty"`
	ApartmentNumber string `json:"apartmentNumber,omitempty"`
	Floor           *int   `json:"floor,omitempty"`
	BuildingName    string `json:"buildingName,omitempty"`
	ReporterName    string `json:"reporterName,omitempty"`
	ReporterEmail   string `json:"reporterEmail,omitempty"`
	DateCreated     string `json:"dateCreated"`
	DateUpdated     string `json:"dateUpdated"`
}

// Encode implements the web.Encoder interface.
func (app Issue) Encode() ([]byte, string, error) {
	data, err := json.Marshal(app)
	return data, "application/json", err
}

func toAppIssue(bus issuebus.Issue) Issue {
	return Issue{
		ID:              bus.ID.String(),
		TenantID:        bus.TenantID.String(),
		ApartmentID:     bus.ApartmentID.String(),
		BuildingID:      bus.BuildingID.String(),
		Title:           bus.Title,
		Description:     bus.Description,
		Category:        bus.Category.String(),
		Priority:        bus.Priority.String(),
		Status:          bus.Status.String(),
		LocationDetails: bus.LocationDetails,
		DateCreated:     bus.CreatedAt.Format(time.RFC3339),
		DateUpdated:     bus.UpdatedAt.Format(time.RFC3339),
	}
}

func toAppIssues(bus []issuebus.Issue) []Issue {
	app := make([]Issue, len(bus))
	for i, iss := range bus {
		app[i] = toAppIssue(iss)
	}
	return app
}

func toAppReport(bus issuebus.Report) Issue {
	app := toAppIssue(bus.Issue)
	app.ApartmentNumber = bus.ApartmentNumber
	app.Floor = &bus.Floor
	app.BuildingName = bus.BuildingName
	app.ReporterName = bus.ReporterName
	app.ReporterEmail = bus.ReporterEmail.Address
	return app
}

func toAppReports(bus []issuebus.Report) []Issue {
	app := make([]Issue, len(bus))
	for i, r := range bus {
		app[i] = toAppReport(r)
	}
	return app
}

// CreatedIssue answers a create with 201.
type CreatedIssue struct {
	Issue
}

// HTTPStatus implements the web package httpStatus interface.
func (CreatedIssue) HTTPStatus() int {
	return http.StatusCreated
}

// Issues is the tenant's own ticket list.
type Issues []Issue

// Encode implements the web.Encoder interface.
func (app Issues) Encode() ([]byte, string, error) {
	data, err := json.Marshal(app)
	return data, "application/json", err
}

// =============================================================================

// NewIssue defines what a tenant submits. The building is derived from the
// apartment and is not accepted here.
type NewIssue struct {
	ApartmentID     string `json:"apartmentId" validate:"required,uuid"`
	Title           string `json:"title" validate:"required,max=200"`
	Description     string `json:"description"`
	Category        string `json:"category"`
	Priority        string `json:"priority"`
	LocationDetails string `json:"locationDetails"`
}

// Decode implements the web.Decoder interface.
func (app *NewIssue) Decode(data []byte) error {
	return json.Unmarshal(data, app)
}

// Validate checks the data in the model is considered clean.
func (app NewIssue) Validate() error {
	if err := errs.Check(app); err != nil {
		return errs.New(errs.InvalidArgument, fmt.Errorf("validate: %w", err))
	}
	return nil
}

func toBusNewIssue(app NewIssue) (issuebus.NewIssue, error) {
	var fieldErrors errs.FieldErrors

	apartmentID, err := uuid.Parse(app.ApartmentID)
	if err != nil {
		fieldErrors.Add("apartmentId", err)
	}

	cat := category.Other
	if app.Category != "" {
		if cat, err = category.Parse(app.Category); err != nil {
			fieldErrors.Add("category", err)
		}
	}

	prio := priority.Medium
	if app.Priority != "" {
		if prio, err = priority.Parse(app.Priority); err != nil {
			fieldErrors.Add("priority", err)
		}
	}

	if fieldErrors != nil {
		return issuebus.NewIssue{}, fieldErrors.ToError()
	}

	bus := issuebus.NewIssue{
		ApartmentID:     &apartmentID,
		Title:           app.Title,
		Description:     app.Description,
		Category:        cat,
		Priority:        prio,
		LocationDetails: app.LocationDetails,
	}

	return bus, nil
}

// UpdateStatus moves a ticket along its workflow.
type UpdateStatus struct {
	Status string `json:"status" validate:"required"`
}

// Decode implements the web.Decoder interface.
func (app *UpdateStatus) Decode(data []byte) error {
	return json.Unmarshal(data, app)
}

// Validate checks the data in the model is considered clean.
func (app UpdateStatus) Validate() error {
	if err := errs.Check(app); err != nil {
		return errs.New(errs.InvalidArgument, fmt.Errorf("validate: %w", err))
	}
	return nil
}
