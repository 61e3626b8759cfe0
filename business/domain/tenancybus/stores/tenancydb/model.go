package tenancydb

import (
	"database/sql"
	"fmt"
	"net/mail"
	"time"

	"github.com/google/uuid"
	"github.com/jcpaschoal/propman/business/domain/tenancybus"
	"github.com/jcpaschoal/propman/business/types/tenancystatus"
)

type tenancy struct {
	ID          uuid.UUID     `db:"id"`
	ApartmentID uuid.UUID     `db:"apartment_id"`
	TenantID    uuid.UUID     `db:"tenant_id"`
	Status      string        `db:"status"`
	InvitedBy   uuid.NullUUID `db:"invited_by"`
	InvitedAt   sql.NullTime  `db:"invited_at"`
	JoinedAt    sql.NullTime  `db:"joined_at"`
	CreatedAt   time.Time     `db:"created_at"`
	UpdatedAt   time.Time     `db:"updated_at"`
}

func toDBTenancy(bus tenancybus.Tenancy) tenancy {
	return tenancy{
		ID:          bus.ID,
		ApartmentID: bus.ApartmentID,
		TenantID:    bus.TenantID,
		Status:      bus.Status.String(),
		InvitedBy:   uuid.NullUUID{UUID: bus.InvitedBy, Valid: bus.InvitedBy != uuid.Nil},
		InvitedAt:   nullTime(bus.InvitedAt),
		JoinedAt:    nullTime(bus.JoinedAt),
		CreatedAt:   bus.CreatedAt.UTC(),
		UpdatedAt:   bus.UpdatedAt.UTC(),
	}
}

func toBusTenancy(db tenancy) (tenancybus.Tenancy, error) {
	status, err := tenancystatus.Parse(db.Status)
	if err != nil {
		return tenancybus.Tenancy{}, fmt.Errorf("parse status: %w", err)
	}

	bus := tenancybus.Tenancy{
		ID:          db.ID,
		ApartmentID: db.ApartmentID,
		TenantID:    db.TenantID,
		Status:      status,
		InvitedBy:   db.InvitedBy.UUID,
		InvitedAt:   localTime(db.InvitedAt),
		JoinedAt:    localTime(db.JoinedAt),
		CreatedAt:   db.CreatedAt.In(time.Local),
		UpdatedAt:   db.UpdatedAt.In(time.Local),
	}

	return bus, nil
}

// =============================================================================

type roster struct {
	TenancyID       uuid.UUID    `db:"tenancy_id"`
	TenantID        uuid.UUID    `db:"tenant_id"`
	TenantName      string       `db:"tenant_name"`
	TenantEmail     string       `db:"tenant_email"`
	ApartmentID     uuid.UUID    `db:"apartment_id"`
	ApartmentNumber string       `db:"apartment_number"`
	Floor           int          `db:"floor"`
	BuildingID      uuid.UUID    `db:"building_id"`
	BuildingName    string       `db:"building_name"`
	CompanyID       uuid.UUID    `db:"company_id"`
	Status          string       `db:"status"`
	JoinedAt        sql.NullTime `db:"joined_at"`
	UpdatedAt       time.Time    `db:"updated_at"`
}

func toBusRoster(db roster) (tenancybus.Roster, error) {
	status, err := tenancystatus.Parse(db.Status)
	if err != nil {
		return tenancybus.Roster{}, fmt.Errorf("parse status: %w", err)
	}

	bus := tenancybus.Roster{
		TenancyID:       db.TenancyID,
		TenantID:        db.TenantID,
		TenantName:      db.TenantName,
		TenantEmail:     mail.Address{Name: db.TenantName, Address: db.TenantEmail},
		ApartmentID:     db.ApartmentID,
		ApartmentNumber: db.ApartmentNumber,
		Floor:           db.Floor,
		BuildingID:      db.BuildingID,
		BuildingName:    db.BuildingName,
		CompanyID:       db.CompanyID,
		Status:          status,
		JoinedAt:        localTime(db.JoinedAt),
		UpdatedAt:       db.UpdatedAt.In(time.Local),
	}

	return bus, nil
}

func toBusRosters(dbs []roster) ([]tenancybus.Roster, error) {
	bus := make([]tenancybus.Roster, len(dbs))

	for i, db := range dbs {
		var err error
		bus[i], err = toBusRoster(db)
		if err != nil {
			return nil, err
		}
	}

	return bus, nil
}

// =============================================================================

func nullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}

	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func localTime(t sql.NullTime) time.Time {
	if !t.Valid {
		return time.Time{}
	}

	return t.Time.In(time.Local)
}
