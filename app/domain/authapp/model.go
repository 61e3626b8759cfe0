package authapp

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/mail"
	"time"

	"github.com/jcpaschoal/propman/app/sdk/errs"
	"github.com/jcpaschoal/propman/business/domain/tenancybus"
	"github.com/jcpaschoal/propman/business/domain/userbus"
	"github.com/jcpaschoal/propman/business/types/name"
	"github.com/jcpaschoal/propman/business/types/password"
	"github.com/jcpaschoal/propman/business/types/phone"
	"github.com/jcpaschoal/propman/business/types/role"
)

// User is the public view of an identity.
type User struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Role        string `json:"role"`
	Phone       string `json:"phone,omitempty"`
	Enabled     bool   `json:"enabled"`
	DateCreated string `json:"dateCreated"`
	DateUpdated string `json:"dateUpdated"`
}

// Encode implements the web.Encoder interface.
func (u User) Encode() ([]byte, string, error) {
	data, err := json.Marshal(u)
	return data, "application/json", err
}

func toAppUser(bus userbus.User) User {
	return User{
		ID:          bus.ID.String(),
		Name:        bus.Name.String(),
		Email:       bus.Email.Address,
		Role:        bus.Role.String(),
		Phone:       bus.Phone.String(),
		Enabled:     bus.Enabled,
		DateCreated: bus.CreatedAt.Format(time.RFC3339),
		DateUpdated: bus.UpdatedAt.Format(time.RFC3339),
	}
}

// =============================================================================

// Token is returned by every call that signs a user in.
type Token struct {
	Token   string   `json:"token"`
	User    User     `json:"user"`
	Tenancy *Tenancy `json:"tenancy,omitempty"`
	status  int
}

// Encode implements the web.Encoder interface.
func (t Token) Encode() ([]byte, string, error) {
	data, err := json.Marshal(t)
	return data, "application/json", err
}

// HTTPStatus implements the web package httpStatus interface.
func (t Token) HTTPStatus() int {
	if t.status == 0 {
		return http.StatusOK
	}
	return t.status
}

// Tenancy is the ledger entry a redemption created.
type Tenancy struct {
	ID          string `json:"id"`
	ApartmentID string `json:"apartmentId"`
	Status      string `json:"status"`
	JoinedAt    string `json:"joinedAt"`
}

func toAppTenancy(bus tenancybus.Tenancy) *Tenancy {
	return &Tenancy{
		ID:          bus.ID.String(),
		ApartmentID: bus.ApartmentID.String(),
		Status:      bus.Status.String(),
		JoinedAt:    bus.JoinedAt.Format(time.RFC3339),
	}
}

// =============================================================================

// Login carries the credentials of a sign in.
type Login struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Decode implements the web.Decoder interface.
func (app *Login) Decode(data []byte) error {
	return json.Unmarshal(data, app)
}

// Validate checks the data in the model is considered clean.
func (app Login) Validate() error {
	if err := errs.Check(app); err != nil {
		return errs.New(errs.InvalidArgument, fmt.Errorf("validate: %w", err))
	}
	return nil
}

// =============================================================================

// Register is a company sign up.
type Register struct {
	Name            string `json:"name" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Phone           string `json:"phone"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"passwordConfirm" validate:"omitempty,eqfield=Password"`
}

// Decode implements the web.Decoder interface.
func (app *Register) Decode(data []byte) error {
	return json.Unmarshal(data, app)
}

// Validate checks the data in the model is considered clean.
func (app Register) Validate() error {
	if err := errs.Check(app); err != nil {
		return errs.New(errs.InvalidArgument, fmt.Errorf("validate: %w", err))
	}
	return nil
}

func toBusNewUser(app Register) (userbus.NewUser, error) {
	var fieldErrors errs.FieldErrors

	nme, err := name.Parse(app.Name)
	if err != nil {
		fieldErrors.Add("name", err)
	}

	addr, err := mail.ParseAddress(app.Email)
	if err != nil {
		fieldErrors.Add("email", err)
	}

	ph, err := phone.ParseNull(app.Phone)
	if err != nil {
		fieldErrors.Add("phone", err)
	}

	pass, err := password.Parse(app.Password)
	if err != nil {
		fieldErrors.Add("password", err)
	}

	if fieldErrors != nil {
		return userbus.NewUser{}, fieldErrors.ToError()
	}

	bus := userbus.NewUser{
		Name:     nme,
		Email:    *addr,
		Role:     role.Company,
		Phone:    ph,
		Password: pass,
	}

	return bus, nil
}

// =============================================================================

// Redeem is what an invitee sends to claim an invitation.
type Redeem struct {
	Token    string `json:"token" validate:"required"`
	Name     string `json:"name" validate:"required"`
	Phone    string `json:"phone"`
	Password string `json:"password" validate:"required"`
}

// Decode implements the web.Decoder interface.
func (app *Redeem) Decode(data []byte) error {
	return json.Unmarshal(data, app)
}

// Validate checks the data in the model is considered clean.
func (app Redeem) Validate() error {
	if err := errs.Check(app); err != nil {
		return errs.New(errs.InvalidArgument, fmt.Errorf("validate: %w", err))
	}
	return nil
}

// =============================================================================

// UpdateMe defines the profile fields a user may change.
type UpdateMe struct {
	Name            *string `json:"name"`
	Email           *string `json:"email" validate:"omitempty,email"`
	Phone           *string `json:"phone"`
	Password        *string `json:"password"`
	PasswordConfirm *string `json:"passwordConfirm" validate:"omitempty,eqfield=Password"`
}

// Decode implements the web.Decoder interface.
func (app *UpdateMe) Decode(data []byte) error {
	return json.Unmarshal(data, app)
}

// Validate checks the data in the model is considered clean.
func (app UpdateMe) Validate() error {
	if err := errs.Check(app); err != nil {
		return errs.New(errs.InvalidArgument, fmt.Errorf("validate: %w", err))
	}
	return nil
}

func toBusUpdateUser(app UpdateMe) (userbus.UpdateUser, error) {
	var fieldErrors errs.FieldErrors
	var uu userbus.UpdateUser

	if app.Name != nil {
		nme, err := name.Parse(*app.Name)
		switch err {
		case nil:
			uu.Name = &nme
		default:
			fieldErrors.Add("name", err)
		}
	}

	if app.Email != nil {
		addr, err := mail.ParseAddress(*app.Email)
		switch err {
		case nil:
			uu.Email = addr
		default:
			fieldErrors.Add("email", err)
		}
	}

	if app.Phone != nil {
		ph, err := phone.ParseNull(*app.Phone)
		switch err {
		case nil:
			uu.Phone = &ph
		default:
			fieldErrors.Add("phone", err)
		}
	}

	if app.Password != nil {
		pass, err := password.Parse(*app.Password)
		switch err {
		case nil:
			uu.Password = &pass
		default:
			fieldErrors.Add("password", err)
		}
	}

	if fieldErrors != nil {
		return userbus.UpdateUser{}, fieldErrors.ToError()
	}

	return uu, nil
}
