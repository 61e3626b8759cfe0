package invitationapp

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/mail"
	"time"

	"github.com/google/uuid"
	"github.com/jcpaschoal/propman/app/sdk/errs"
	"github.com/jcpaschoal/propman/business/domain/invitationbus"
)

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

// Invitation is an invitation as its issuer sees it.
type Invitation struct {
	ID              string `json:"id"`
	Email           string `json:"email"`
	BuildingID      string `json:"buildingId"`
	ApartmentID     string `json:"apartmentId"`
	ApartmentNumber string `json:"apartmentNumber"`
	Floor           int    `json:"floor"`
	Token           string `json:"token"`
	State           string `json:"state"`
	ExpiresAt       string `json:"expiresAt"`
	UsedAt          string `json:"usedAt,omitempty"`
	DateCreated     string `json:"dateCreated"`
}

// Encode implements the web.Encoder interface.
func (app Invitation) Encode() ([]byte, string, error) {
	data, err := json.Marshal(app)
	return data, "application/json", err
}

func toAppInvitation(bus invitationbus.Invitation, now time.Time) Invitation {
	return Invitation{
		ID:              bus.ID.String(),
		Email:           bus.Email.Address,
		BuildingID:      bus.BuildingID.String(),
		ApartmentID:     bus.ApartmentID.String(),
		ApartmentNumber: bus.ApartmentNumber,
		Floor:           bus.Floor,
		Token:           bus.Token,
		State:           string(bus.State(now)),
		ExpiresAt:       formatTime(bus.ExpiresAt),
		UsedAt:          formatTime(bus.UsedAt),
		DateCreated:     formatTime(bus.CreatedAt),
	}
}

// CreatedInvitation answers an issue with 201.
type CreatedInvitation struct {
	Invitation
}

// HTTPStatus implements the web package httpStatus interface.
func (CreatedInvitation) HTTPStatus() int {
	return http.StatusCreated
}

// Invitations is a list of invitations.
type Invitations []Invitation

// Encode implements the web.Encoder interface.
func (app Invitations) Encode() ([]byte, string, error) {
	data, err := json.Marshal(app)
	return data, "application/json", err
}

// NewInvitation names the invitee and the apartment, either by id or by
// building and unit number.
type NewInvitation struct {
	Email           string `json:"email" validate:"required,email"`
	ApartmentID     string `json:"apartmentId" validate:"omitempty,uuid"`
	BuildingID      string `json:"buildingId" validate:"required_without=ApartmentID,omitempty,uuid"`
	ApartmentNumber string `json:"apartmentNumber" validate:"required_with=BuildingID"`
}

// Decode implements the web.Decoder interface.
func (app *NewInvitation) Decode(data []byte) error {
	return json.Unmarshal(data, app)
}

// Validate checks the data in the model is considered clean.
func (app NewInvitation) Validate() error {
	if err := errs.Check(app); err != nil {
		return errs.New(errs.InvalidArgument, fmt.Errorf("validate: %w", err))
	}
	return nil
}

func toBusNewInvitation(app NewInvitation) (invitationbus.NewInvitation, error) {
	addr, err := mail.ParseAddress(app.Email)
	if err != nil {
		return invitationbus.NewInvitation{}, errs.NewFieldErrors("email", err)
	}

	ni := invitationbus.NewInvitation{
		Email:           *addr,
		ApartmentNumber: app.ApartmentNumber,
	}

	if app.ApartmentID != "" {
		id, err := uuid.Parse(app.ApartmentID)
		if err != nil {
			return invitationbus.NewInvitation{}, errs.NewFieldErrors("apartmentId", err)
		}
		ni.ApartmentID = &id
	}

	if app.BuildingID != "" {
		id, err := uuid.Parse(app.BuildingID)
		if err != nil {
			return invitationbus.NewInvitation{}, errs.NewFieldErrors("buildingId", err)
		}
		ni.BuildingID = &id
	}

	return ni, nil
}
