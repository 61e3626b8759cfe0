package auth_test

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"testing"

	"github.com/jcpaschoal/propman/app/sdk/auth"
	"github.com/jcpaschoal/propman/business/domain/userbus"
	"github.com/jcpaschoal/propman/business/sdk/dbtest"
	"github.com/jcpaschoal/propman/business/types/actions"
	"github.com/jcpaschoal/propman/business/types/resource"
	"github.com/jcpaschoal/propman/business/types/role"
	"github.com/jcpaschoal/propman/foundation/keystore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const kid = "s4sKIjD9kIRjxs2tulPqGLdxSfgPErRN1Mu3Hd9k9NQ"

func newAuth(t *testing.T, ks *keystore.KeyStore, bus dbtest.BusDomain, issuer string) *auth.Auth {
	t.Helper()

	a, err := auth.New(auth.Config{
		Log:       bus.Log,
		UserBus:   bus.User,
		KeyLookup: ks,
		Issuer:    issuer,
	})
	require.NoError(t, err)

	return a
}

func newKeyStore(t *testing.T) *keystore.KeyStore {
	t.Helper()

	pk, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	block := pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(pk),
	}

	ks := keystore.New()
	require.NoError(t, ks.Add(kid, pem.EncodeToMemory(&block)))

	return ks
}

func TestAuthenticate(t *testing.T) {
	bus := dbtest.NewBusDomain(t)
	ks := newKeyStore(t)
	a := newAuth(t, ks, bus, "propman")

	usr := dbtest.SeedUser(t, bus, "Acme Homes", "acme@example.com", role.Company)

	tkn, err := a.GenerateToken(kid, usr)
	require.NoError(t, err)

	claims, err := a.Authenticate(context.Background(), "Bearer "+tkn)
	require.NoError(t, err)

	userID, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, usr.ID, userID)
	assert.Equal(t, role.Company.String(), claims.Role)
	assert.Equal(t, "propman", claims.Issuer)

	t.Run("bad-header", func(t *testing.T) {
		_, err := a.Authenticate(context.Background(), tkn)
		assert.Error(t, err)

		_, err = a.Authenticate(context.Background(), "Basic "+tkn)
		assert.Error(t, err)
	})

	t.Run("tampered", func(t *testing.T) {
		_, err := a.Authenticate(context.Background(), "Bearer "+tkn+"x")
		assert.Error(t, err)
	})

	t.Run("wrong-issuer", func(t *testing.T) {
		other := newAuth(t, ks, bus, "someone-else")

		tkn, err := other.GenerateToken(kid, usr)
		require.NoError(t, err)

		_, err = a.Authenticate(context.Background(), "Bearer "+tkn)
		assert.Error(t, err)
	})

	t.Run("unknown-kid", func(t *testing.T) {
		_, err := a.GenerateToken("missing", usr)
		assert.Error(t, err)
	})

	t.Run("disabled", func(t *testing.T) {
		enabled := false
		_, err := bus.User.Update(context.Background(), usr, userbus.UpdateUser{Enabled: &enabled})
		require.NoError(t, err)

		_, err = a.Authenticate(context.Background(), "Bearer "+tkn)
		assert.ErrorIs(t, err, auth.ErrUserDisabled)
	})
}

func TestAuthorize(t *testing.T) {
	bus := dbtest.NewBusDomain(t)
	a := newAuth(t, newKeyStore(t), bus, "propman")

	tests := []struct {
		role  role.Role
		res   resource.Resource
		act   actions.Action
		allow bool
	}{
		{role.Company, resource.Building, actions.Create, true},
		{role.Company, resource.Apartment, actions.Delete, true},
		{role.Company, resource.Tenancy, actions.Update, true},
		{role.Company, resource.Invitation, actions.Create, true},
		{role.Company, resource.Invitation, actions.Update, false},
		{role.Company, resource.Issue, actions.Update, true},
		{role.Company, resource.Issue, actions.Create, false},
		{role.Company, resource.Report, actions.Get, true},
		{role.Company, resource.Home, actions.Get, false},
		{role.Company, resource.User, actions.Update, true},
		{role.Tenant, resource.Home, actions.Get, true},
		{role.Tenant, resource.Issue, actions.Create, true},
		{role.Tenant, resource.Issue, actions.Update, false},
		{role.Tenant, resource.Building, actions.Get, false},
		{role.Tenant, resource.Report, actions.Get, false},
		{role.Tenant, resource.User, actions.Get, true},
		{role.Admin, resource.User, actions.Get, true},
		{role.Admin, resource.Building, actions.Get, false},
	}

	for _, tt := range tests {
		name := tt.role.String() + "/" + tt.res.String() + "/" + tt.act.String()
		t.Run(name, func(t *testing.T) {
			claims := auth.Claims{Role: tt.role.String()}

			err := a.Authorize(claims, tt.res, tt.act)
			if tt.allow {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, auth.ErrForbidden)
		})
	}

	t.Run("invalid-role", func(t *testing.T) {
		err := a.Authorize(auth.Claims{Role: "ROOT"}, resource.User, actions.Get)
		assert.ErrorIs(t, err, auth.ErrInvalidRole)
	})
}
