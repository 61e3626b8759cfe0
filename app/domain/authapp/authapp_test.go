package authapp_test

import (
	"context"
	"net/http"
	"net/mail"
	"sync"
	"testing"
	"time"

	"github.com/jcpaschoal/propman/app/domain/authapp"
	"github.com/jcpaschoal/propman/app/sdk/apitest"
	"github.com/jcpaschoal/propman/business/domain/invitationbus"
	"github.com/jcpaschoal/propman/business/domain/userbus"
	"github.com/jcpaschoal/propman/business/sdk/dbtest"
	"github.com/jcpaschoal/propman/business/types/role"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterLogin(t *testing.T) {
	at := apitest.New(t)

	reg := authapp.Register{
		Name:            "Acme Homes",
		Email:           "Owner@Acme.example",
		Password:        "correct-horse",
		PasswordConfirm: "correct-horse",
	}

	w := at.Do(t, http.MethodPost, "/api/auth/register", "", reg)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var tkn authapp.Token
	apitest.Decode(t, w, &tkn)

	assert.NotEmpty(t, tkn.Token)
	assert.Equal(t, "owner@acme.example", tkn.User.Email)
	assert.Equal(t, role.Company.String(), tkn.User.Role)
	assert.Nil(t, tkn.Tenancy)

	w = at.Do(t, http.MethodPost, "/api/auth/register", "", reg)
	require.Equal(t, http.StatusConflict, w.Code, w.Body.String())

	login := authapp.Login{Email: "owner@acme.example", Password: "correct-horse"}

	w = at.Do(t, http.MethodPost, "/api/auth/login", "", login)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	apitest.Decode(t, w, &tkn)

	w = at.Do(t, http.MethodGet, "/api/auth/me", tkn.Token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var me authapp.User
	apitest.Decode(t, w, &me)
	assert.Equal(t, "Acme Homes", me.Name)
}

func TestRegister_PasswordMismatch(t *testing.T) {
	at := apitest.New(t)

	reg := authapp.Register{
		Name:            "Acme Homes",
		Email:           "owner@acme.example",
		Password:        "correct-horse",
		PasswordConfirm: "battery-staple",
	}

	w := at.Do(t, http.MethodPost, "/api/auth/register", "", reg)
	require.Equal(t, http.StatusBadRequest, w.Code)

	body := apitest.DecodeError(t, w)
	assert.Equal(t, "invalid_argument", body.Code)
	assert.Contains(t, body.Fields, "passwordConfirm")
}

func TestLogin_Failures(t *testing.T) {
	at := apitest.New(t)

	usr := dbtest.SeedUser(t, at.Bus, "Acme Homes", "owner@acme.example", role.Company)

	tests := []struct {
		name  string
		login authapp.Login
	}{
		{"wrong-password", authapp.Login{Email: "owner@acme.example", Password: "not-the-one"}},
		{"unknown-email", authapp.Login{Email: "nobody@acme.example", Password: "secret123"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := at.Do(t, http.MethodPost, "/api/auth/login", "", tt.login)
			require.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, "unauthenticated", apitest.DecodeError(t, w).Code)
		})
	}

	t.Run("disabled", func(t *testing.T) {
		tkn := at.Token(t, usr)

		enabled := false
		_, err := at.Bus.User.Update(context.Background(), usr, userbus.UpdateUser{Enabled: &enabled})
		require.NoError(t, err)

		w := at.Do(t, http.MethodPost, "/api/auth/login", "", authapp.Login{Email: "owner@acme.example", Password: "secret123"})
		require.Equal(t, http.StatusUnauthorized, w.Code)

		w = at.Do(t, http.MethodGet, "/api/auth/me", tkn, nil)
		require.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestRedeem(t *testing.T) {
	at := apitest.New(t)

	company := dbtest.SeedUser(t, at.Bus, "Acme Homes", "owner@acme.example", role.Company)
	b := dbtest.SeedBuilding(t, at.Bus, company, "Oak Court", 3)
	apt := dbtest.SeedApartment(t, at.Bus, company, b, "2B", 2)

	ni := invitationbus.NewInvitation{
		Email:       mail.Address{Address: "nina@example.com"},
		ApartmentID: &apt.ID,
	}

	inv, err := at.Bus.Invitation.Issue(context.Background(), company.ID, ni)
	require.NoError(t, err)

	rd := authapp.Redeem{
		Token:    inv.Token,
		Name:     "Nina Newcomer",
		Password: "a-long-secret",
	}

	w := at.Do(t, http.MethodPost, "/api/auth/redeem", "", rd)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var tkn authapp.Token
	apitest.Decode(t, w, &tkn)

	assert.Equal(t, "nina@example.com", tkn.User.Email)
	assert.Equal(t, role.Tenant.String(), tkn.User.Role)
	require.NotNil(t, tkn.Tenancy)
	assert.Equal(t, apt.ID.String(), tkn.Tenancy.ApartmentID)
	assert.Equal(t, "active", tkn.Tenancy.Status)

	w = at.Do(t, http.MethodPost, "/api/auth/redeem", "", rd)
	require.Equal(t, http.StatusConflict, w.Code, w.Body.String())
	assert.Equal(t, "already_used", apitest.DecodeError(t, w).Code)

	rd.Token = "no-such-token"
	w = at.Do(t, http.MethodPost, "/api/auth/redeem", "", rd)
	require.Equal(t, http.StatusNotFound, w.Code, w.Body.String())
}

func TestRedeem_Expired(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	var mu sync.Mutex
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	}

	at := apitest.New(t, invitationbus.WithClock(clock))

	company := dbtest.SeedUser(t, at.Bus, "Acme Homes", "owner@acme.example", role.Company)
	b := dbtest.SeedBuilding(t, at.Bus, company, "Elm House", 4)
	apt := dbtest.SeedApartment(t, at.Bus, company, b, "3A", 3)

	ni := invitationbus.NewInvitation{
		Email:       mail.Address{Address: "jane@example.com"},
		ApartmentID: &apt.ID,
	}

	inv, err := at.Bus.Invitation.Issue(context.Background(), company.ID, ni)
	require.NoError(t, err)

	mu.Lock()
	now = now.Add(invitationbus.DefaultTTL + time.Minute)
	mu.Unlock()

	rd := authapp.Redeem{
		Token:    inv.Token,
		Name:     "Jane Doe",
		Password: "a-long-secret",
	}

	w := at.Do(t, http.MethodPost, "/api/auth/redeem", "", rd)
	require.Equal(t, http.StatusGone, w.Code, w.Body.String())

	body := apitest.DecodeError(t, w)
	assert.False(t, body.Success)
	assert.Equal(t, "expired", body.Code)
	assert.Equal(t, "invitation expired", body.Error)

	_, err = at.Bus.User.QueryByEmail(context.Background(), mail.Address{Address: "jane@example.com"})
	require.ErrorIs(t, err, userbus.ErrNotFound)
}
