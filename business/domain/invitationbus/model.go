package invitationbus

import (
	"net/mail"
	"time"

	"github.com/google/uuid"
	"github.com/jcpaschoal/propman/business/types/name"
	"github.com/jcpaschoal/propman/business/types/password"
	"github.com/jcpaschoal/propman/business/types/phone"
)

// State is derived from used_at and expires_at, never stored.
type State string

// The set of invitation states.
const (
	StateIssued   State = "issued"
	StateRedeemed State = "redeemed"
	StateExpired  State = "expired"
)

// Invitation is a single-use, time-boxed grant to join an apartment.
type Invitation struct {
	ID              uuid.UUID
	Email           mail.Address
	BuildingID      uuid.UUID
	ApartmentID     uuid.UUID
	ApartmentNumber string
	Floor           int
	Token           string
	InvitedBy       uuid.UUID
	ExpiresAt       time.Time
	UsedAt          time.Time
	CreatedAt       time.Time
}

// State reports where the invitation sits in its lifecycle at now.
func (inv Invitation) State(now time.Time) State {
	switch {
	case !inv.UsedAt.IsZero():
		return StateRedeemed
	case now.After(inv.ExpiresAt):
		return StateExpired
	}

	return StateIssued
}

// NewInvitation names the invitee and the target apartment, either by ID or
// by building and unit number.
type NewInvitation struct {
	Email           mail.Address
	ApartmentID     *uuid.UUID
	BuildingID      *uuid.UUID
	ApartmentNumber string
}

// Redemption carries what the invitee supplies along with the token. Name
// and Phone are only used when a new identity has to be created.
type Redemption struct {
	Token    string
	Name     name.Name
	Password password.Password
	Phone    phone.Null
}
