package issuedb

import (
	"database/sql"
	"fmt"
	"net/mail"
	"time"

	"github.com/google/uuid"
	"github.com/jcpaschoal/propman/business/domain/issuebus"
	"github.com/jcpaschoal/propman/business/types/category"
	"github.com/jcpaschoal/propman/business/types/issuestatus"
	"github.com/jcpaschoal/propman/business/types/priority"
)

type issue struct {
	ID              uuid.UUID      `db:"id"`
	TenantID        uuid.UUID      `db:"user_id"`
	ApartmentID     uuid.UUID      `db:"apartment_id"`
	BuildingID      uuid.UUID      `db:"building_id"`
	Title           string         `db:"title"`
	Description     string         `db:"description"`
	Category        string         `db:"category"`
	Priority        string         `db:"priority"`
	Status          string         `db:"status"`
	LocationDetails sql.NullString `db:"location_details"`
	CreatedAt       time.Time      `db:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at"`
}

func toDBIssue(bus issuebus.Issue) issue {
	return issue{
		ID:              bus.ID,
		TenantID:        bus.TenantID,
		ApartmentID:     bus.ApartmentID,
		BuildingID:      bus.BuildingID,
		Title:           bus.Title,
		Description:     bus.Description,
		Category:        bus.Category.String(),
		Priority:        bus.Priority.String(),
		Status:          bus.Status.String(),
		LocationDetails: sql.NullString{String: bus.LocationDetails, Valid: bus.LocationDetails != ""},
		CreatedAt:       bus.CreatedAt.UTC(),
		UpdatedAt:       bus.UpdatedAt.UTC(),
	}
}

func toBusIssue(db issue) (issuebus.Issue, error) {
	cat, err := category.Parse(db.Category)
	if err != nil {
		return issuebus.Issue{}, fmt.Errorf("parse category: %w", err)
	}

	prio, err := priority.Parse(db.Priority)
	if err != nil {
		return issuebus.Issue{}, fmt.Errorf("parse priority: %w", err)
	}

	status, err := issuestatus.Parse(db.Status)
	if err != nil {
		return issuebus.Issue{}, fmt.Errorf("parse status: %w", err)
	}

	bus := issuebus.Issue{
		ID:              db.ID,
		TenantID:        db.TenantID,
		ApartmentID:     db.ApartmentID,
		BuildingID:      db.BuildingID,
		Title:           db.Title,
		Description:     db.Description,
		Category:        cat,
		Priority:        prio,
		Status:          status,
		LocationDetails: db.LocationDetails.String,
		CreatedAt:       db.CreatedAt.In(time.Local),
		UpdatedAt:       db.UpdatedAt.In(time.Local),
	}

	return bus, nil
}

func toBusIssues(dbs []issue) ([]issuebus.Issue, error) {
	bus := make([]issuebus.Issue, len(dbs))

	for i, db := range dbs {
		var err error
		bus[i], err = toBusIssue(db)
		if err != nil {
			return nil, err
		}
	}

	return bus, nil
}

// =============================================================================

type report struct {
	issue
	ApartmentNumber string `db:"apartment_number"`
	Floor           int    `db:"floor"`
	BuildingName    string `db:"building_name"`
	ReporterName    string `db:"reporter_name"`
	ReporterEmail   string `db:"reporter_email"`
}

func toBusReports(dbs []report) ([]issuebus.Report, error) {
	bus := make([]issuebus.Report, len(dbs))

	for i, db := range dbs {
		iss, err := toBusIssue(db.issue)
		if err != nil {
			return nil, err
		}

		bus[i] = issuebus.Report{
			Issue:           iss,
			ApartmentNumber: db.ApartmentNumber,
			Floor:           db.Floor,
			BuildingName:    db.BuildingName,
			ReporterName:    db.ReporterName,
			ReporterEmail:   mail.Address{Name: db.ReporterName, Address: db.ReporterEmail},
		}
	}

	return bus, nil
}
