package tenancybus

import (
	"net/mail"
	"time"

	"github.com/google/uuid"
	"github.com/jcpaschoal/propman/business/types/tenancystatus"
)

// Tenancy is a ledger entry binding a tenant identity to one apartment.
// InvitedBy is uuid.Nil and the times are zero when unknown.
type Tenancy struct {
	ID          uuid.UUID
	ApartmentID uuid.UUID
	TenantID    uuid.UUID
	Status      tenancystatus.Status
	InvitedBy   uuid.UUID
	InvitedAt   time.Time
	JoinedAt    time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewTenancy contains information needed to create a ledger entry. Status
// must be Pending or Active; the zero value means Active.
type NewTenancy struct {
	ApartmentID uuid.UUID
	TenantID    uuid.UUID
	InvitedBy   uuid.UUID
	InvitedAt   time.Time
	Status      tenancystatus.Status
}

// Roster is a ledger entry resolved through the ownership chain
// apartment -> building -> company.
type Roster struct {
	TenancyID       uuid.UUID
	TenantID        uuid.UUID
	TenantName      string
	TenantEmail     mail.Address
	ApartmentID     uuid.UUID
	ApartmentNumber string
	Floor           int
	BuildingID      uuid.UUID
	BuildingName    string
	CompanyID       uuid.UUID
	Status          tenancystatus.Status
	JoinedAt        time.Time
	UpdatedAt       time.Time
}

// QueryFilter narrows a company roster.
type QueryFilter struct {
	BuildingID *uuid.UUID
	Status     *tenancystatus.Status
}
