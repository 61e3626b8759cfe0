package invitationdb

import (
	"database/sql"
	"fmt"
	"net/mail"
	"time"

	"github.com/google/uuid"
	"github.com/jcpaschoal/propman/business/domain/invitationbus"
)

type invitation struct {
	ID              uuid.UUID    `db:"id"`
	Email           string       `db:"email"`
	BuildingID      uuid.UUID    `db:"building_id"`
	ApartmentID     uuid.UUID    `db:"apartment_id"`
	ApartmentNumber string       `db:"apartment_number"`
	Floor           int          `db:"floor_number"`
	Token           string       `db:"invite_token"`
	InvitedBy       uuid.UUID    `db:"invited_by"`
	ExpiresAt       time.Time    `db:"expires_at"`
	UsedAt          sql.NullTime `db:"used_at"`
	CreatedAt       time.Time    `db:"created_at"`
}

func toDBInvitation(bus invitationbus.Invitation) invitation {
	db := invitation{
		ID:              bus.ID,
		Email:           bus.Email.Address,
		BuildingID:      bus.BuildingID,
		ApartmentID:     bus.ApartmentID,
		ApartmentNumber: bus.ApartmentNumber,
		Floor:           bus.Floor,
		Token:           bus.Token,
		InvitedBy:       bus.InvitedBy,
		ExpiresAt:       bus.ExpiresAt.UTC(),
		CreatedAt:       bus.CreatedAt.UTC(),
	}

	if !bus.UsedAt.IsZero() {
		db.UsedAt = sql.NullTime{Time: bus.UsedAt.UTC(), Valid: true}
	}

	return db
}

func toBusInvitation(db invitation) (invitationbus.Invitation, error) {
	addr, err := mail.ParseAddress(db.Email)
	if err != nil {
		return invitationbus.Invitation{}, fmt.Errorf("parse email: %w", err)
	}

	bus := invitationbus.Invitation{
		ID:              db.ID,
		Email:           *addr,
		BuildingID:      db.BuildingID,
		ApartmentID:     db.ApartmentID,
		ApartmentNumber: db.ApartmentNumber,
		Floor:           db.Floor,
		Token:           db.Token,
		InvitedBy:       db.InvitedBy,
		ExpiresAt:       db.ExpiresAt.In(time.Local),
		CreatedAt:       db.CreatedAt.In(time.Local),
	}

	if db.UsedAt.Valid {
		bus.UsedAt = db.UsedAt.Time.In(time.Local)
	}

	return bus, nil
}

func toBusInvitations(dbs []invitation) ([]invitationbus.Invitation, error) {
	bus := make([]invitationbus.Invitation, len(dbs))

	for i, db := range dbs {
		var err error
		bus[i], err = toBusInvitation(db)
		if err != nil {
			return nil, err
		}
	}

	return bus, nil
}
