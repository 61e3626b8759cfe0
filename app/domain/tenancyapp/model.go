package tenancyapp

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jcpaschoal/propman/app/sdk/errs"
	"github.com/jcpaschoal/propman/business/domain/tenancybus"
	"github.com/jcpaschoal/propman/business/types/tenancystatus"
)

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

// Tenancy is one ledger entry.
type Tenancy struct {
	ID          string `json:"id"`
	ApartmentID string `json:"apartmentId"`
	TenantID    string `json:"tenantId"`
	Status      string `json:"status"`
	InvitedBy   string `json:"invitedBy,omitempty"`
	InvitedAt   string `json:"invitedAt,omitempty"`
	JoinedAt    string `json:"joinedAt,omitempty"`
	DateCreated string `json:"dateCreated"`
	DateUpdated string `json:"dateUpdated"`
	status      int
}

// Encode implements the web.Encoder interface.
func (app Tenancy) Encode() ([]byte, string, error) {
	data, err := json.Marshal(app)
	return data, "application/json", err
}

// HTTPStatus implements the web package httpStatus interface.
func (app Tenancy) HTTPStatus() int {
	if app.status == 0 {
		return http.StatusOK
	}
	return app.status
}

func toAppTenancy(bus tenancybus.Tenancy) Tenancy {
	var invitedBy string
	if bus.InvitedBy != uuid.Nil {
		invitedBy = bus.InvitedBy.String()
	}

	return Tenancy{
		ID:          bus.ID.String(),
		ApartmentID: bus.ApartmentID.String(),
		TenantID:    bus.TenantID.String(),
		Status:      bus.Status.String(),
		InvitedBy:   invitedBy,
		InvitedAt:   formatTime(bus.InvitedAt),
		JoinedAt:    formatTime(bus.JoinedAt),
		DateCreated: formatTime(bus.CreatedAt),
		DateUpdated: formatTime(bus.UpdatedAt),
	}
}

// Roster is a ledger entry with its tenant, apartment and building.
type Roster struct {
	TenancyID       string `json:"tenancyId"`
	TenantID        string `json:"tenantId"`
	TenantName      string `json:"tenantName"`
	TenantEmail     string `json:"tenantEmail"`
	ApartmentID     string `json:"apartmentId"`
	ApartmentNumber string `json:"apartmentNumber"`
	Floor           int    `json:"floor"`
	BuildingID      string `json:"buildingId"`
	BuildingName    string `json:"buildingName"`
	Status          string `json:"status"`
	JoinedAt        string `json:"joinedAt,omitempty"`
	DateUpdated     string `json:"dateUpdated"`
}

// Encode implements the web.Encoder interface.
func (app Roster) Encode() ([]byte, string, error) {
	data, err := json.Marshal(app)
	return data, "application/json", err
}

func toAppRoster(bus tenancybus.Roster) Roster {
	return Roster{
		TenancyID:       bus.TenancyID.String(),
		TenantID:        bus.TenantID.String(),
		TenantName:      bus.TenantName,
		TenantEmail:     bus.TenantEmail.Address,
		ApartmentID:     bus.ApartmentID.String(),
		ApartmentNumber: bus.ApartmentNumber,
		Floor:           bus.Floor,
		BuildingID:      bus.BuildingID.String(),
		BuildingName:    bus.BuildingName,
		Status:          bus.Status.String(),
		JoinedAt:        formatTime(bus.JoinedAt),
		DateUpdated:     formatTime(bus.UpdatedAt),
	}
}

// Rosters is the company wide tenant list.
type Rosters []Roster

// Encode implements the web.Encoder interface.
func (app Rosters) Encode() ([]byte, string, error) {
	data, err := json.Marshal(app)
	return data, "application/json", err
}

func toAppRosters(bus []tenancybus.Roster) Rosters {
	app := make(Rosters, len(bus))
	for i, r := range bus {
		app[i] = toAppRoster(r)
	}
	return app
}

// =============================================================================

// NewTenancy assigns a tenant, named by id or email, to an apartment.
type NewTenancy struct {
	ApartmentID string `json:"apartmentId" validate:"required,uuid"`
	TenantID    string `json:"tenantId" validate:"omitempty,uuid"`
	Email       string `json:"email" validate:"required_without=TenantID,omitempty,email"`
	Status      string `json:"status" validate:"omitempty,oneof=pending active"`
}

// Decode implements the web.Decoder interface.
func (app *NewTenancy) Decode(data []byte) error {
	return json.Unmarshal(data, app)
}

// Validate checks the data in the model is considered clean.
func (app NewTenancy) Validate() error {
	if err := errs.Check(app); err != nil {
		return errs.New(errs.InvalidArgument, fmt.Errorf("validate: %w", err))
	}
	return nil
}

// Reassign moves a tenant to another apartment.
type Reassign struct {
	ApartmentID string `json:"apartmentId" validate:"required,uuid"`
}

// Decode implements the web.Decoder interface.
func (app *Reassign) Decode(data []byte) error {
	return json.Unmarshal(data, app)
}

// Validate checks the data in the model is considered clean.
func (app Reassign) Validate() error {
	if err := errs.Check(app); err != nil {
		return errs.New(errs.InvalidArgument, fmt.Errorf("validate: %w", err))
	}
	return nil
}

// =============================================================================

func parseFilter(r *http.Request) (tenancybus.QueryFilter, error) {
	values := r.URL.Query()

	var fieldErrors errs.FieldErrors
	var filter tenancybus.QueryFilter

	if v := values.Get("building_id"); v != "" {
		id, err := uuid.Parse(v)
		switch err {
		case nil:
			filter.BuildingID = &id
		default:
			fieldErrors.Add("building_id", err)
		}
	}

	if v := values.Get("status"); v != "" {
		st, err := tenancystatus.Parse(v)
		switch err {
		case nil:
			filter.Status = &st
		default:
			fieldErrors.Add("status", err)
		}
	}

	if fieldErrors != nil {
		return tenancybus.QueryFilter{}, fieldErrors.ToError()
	}

	return filter, nil
}
