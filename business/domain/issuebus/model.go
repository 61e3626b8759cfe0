package issuebus

import (
	"net/mail"
	"time"

	"github.com/google/uuid"
	"github.com/jcpaschoal/propman/business/types/category"
	"github.com/jcpaschoal/propman/business/types/issuestatus"
	"github.com/jcpaschoal/propman/business/types/priority"
)

// Issue is a maintenance ticket raised by a tenant against an apartment.
type Issue struct {
	ID              uuid.UUID
	TenantID        uuid.UUID
	ApartmentID     uuid.UUID
	BuildingID      uuid.UUID
	Title           string
	Description     string
	Category        category.Category
	Priority        priority.Priority
	Status          issuestatus.Status
	LocationDetails string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// NewIssue is what a tenant submits. The building is never taken from here;
// it is derived from the apartment.
type NewIssue struct {
	ApartmentID     *uuid.UUID
	Title           string
	Description     string
	Category        category.Category
	Priority        priority.Priority
	LocationDetails string
}

// Report is an issue resolved along the apartment -> building chain for the
// owning company's views.
type Report struct {
	Issue
	ApartmentNumber string
	Floor           int
	BuildingName    string
	ReporterName    string
	ReporterEmail   mail.Address
}

// CreatedEvent is published after a ticket is raised.
type CreatedEvent struct {
	IssueID     uuid.UUID `json:"issueID"`
	BuildingID  uuid.UUID `json:"buildingID"`
	ApartmentID uuid.UUID `json:"apartmentID"`
	Category    string    `json:"category"`
	Priority    string    `json:"priority"`
	CreatedAt   time.Time `json:"createdAt"`
}

// StatusEvent is published after a ticket moves.
type StatusEvent struct {
	IssueID    uuid.UUID `json:"issueID"`
	BuildingID uuid.UUID `json:"buildingID"`
	From       string    `json:"from"`
	To         string    `json:"to"`
	UpdatedAt  time.Time `json:"updatedAt"`
}
