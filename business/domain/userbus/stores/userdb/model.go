package userdb

import (
	"database/sql"
	"fmt"
	"net/mail"
	"time"

	"github.com/google/uuid"
	"github.com/jcpaschoal/propman/business/domain/userbus"
	"github.com/jcpaschoal/propman/business/types/name"
	"github.com/jcpaschoal/propman/business/types/phone"
	"github.com/jcpaschoal/propman/business/types/role"
)

type user struct {
	ID           uuid.UUID      `db:"user_id"`
	Name         string         `db:"name"`
	Email        string         `db:"email"`
	Role         string         `db:"role"`
	PasswordHash []byte         `db:"password_hash"`
	Phone        sql.NullString `db:"phone"`
	Enabled      bool           `db:"enabled"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
}

func toDBUser(bus userbus.User) user {
	return user{
		ID:           bus.ID,
		Name:         bus.Name.String(),
		Email:        bus.Email.Address,
		Role:         bus.Role.String(),
		PasswordHash: bus.PasswordHash,
		Phone:        phone.ToSQLNullString(bus.Phone),
		Enabled:      bus.Enabled,
		CreatedAt:    bus.CreatedAt.UTC(),
		UpdatedAt:    bus.UpdatedAt.UTC(),
	}
}

func toBusUser(db user) (userbus.User, error) {
	usrRole, err := role.Parse(db.Role)
	if err != nil {
		return userbus.User{}, fmt.Errorf("parse role: %w", err)
	}

	nme, err := name.Parse(db.Name)
	if err != nil {
		return userbus.User{}, fmt.Errorf("parse name: %w", err)
	}

	ph, err := phone.ParseNull(db.Phone.String)
	if err != nil {
		return userbus.User{}, fmt.Errorf("parse phone: %w", err)
	}

	bus := userbus.User{
		ID:           db.ID,
		Name:         nme,
		Email:        mail.Address{Address: db.Email},
		Role:         usrRole,
		PasswordHash: db.PasswordHash,
		Phone:        ph,
		Enabled:      db.Enabled,
		CreatedAt:    db.CreatedAt.In(time.Local),
		UpdatedAt:    db.UpdatedAt.In(time.Local),
	}

	return bus, nil
}
