// Package apitest runs the web api over the in-memory stores for handler
// tests.
package apitest

import (
	"bytes"
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jcpaschoal/propman/app/domain/authapp"
	"github.com/jcpaschoal/propman/app/domain/buildingapp"
	"github.com/jcpaschoal/propman/app/domain/invitationapp"
	"github.com/jcpaschoal/propman/app/domain/issueapp"
	"github.com/jcpaschoal/propman/app/domain/tenancyapp"
	"github.com/jcpaschoal/propman/app/sdk/auth"
	"github.com/jcpaschoal/propman/app/sdk/errs"
	"github.com/jcpaschoal/propman/app/sdk/mid"
	"github.com/jcpaschoal/propman/business/domain/invitationbus"
	"github.com/jcpaschoal/propman/business/domain/userbus"
	"github.com/jcpaschoal/propman/business/sdk/dbtest"
	"github.com/jcpaschoal/propman/business/sdk/web"
	"github.com/jcpaschoal/propman/foundation/keystore"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
)

// KID is the key id tokens are signed with.
const KID = "test-key"

// Issuer is the token issuer the test auth expects.
const Issuer = "propman-test"

// Test holds a running api and the buses behind it.
type Test struct {
	Bus  dbtest.BusDomain
	Auth *auth.Auth
	mux  http.Handler
}

// New binds every domain route over a fresh in-memory database. The options
// configure the invitation core.
func New(t *testing.T, opts ...invitationbus.Option) *Test {
	t.Helper()

	bus := dbtest.NewBusDomain(t, opts...)

	ks := keystore.New()
	require.NoError(t, ks.Add(KID, newKey(t)))

	ath, err := auth.New(auth.Config{
		Log:       bus.Log,
		UserBus:   bus.User,
		KeyLookup: ks,
		Issuer:    Issuer,
	})
	require.NoError(t, err)

	tracer := noop.NewTracerProvider().Tracer("test")

	app := web.NewApp(
		bus.Log.Info,
		tracer,
		mid.Otel(tracer),
		mid.Logger(bus.Log),
		mid.Errors(bus.Log, false),
		mid.Panics(),
	)

	authapp.Routes(app, authapp.Config{
		Log:           bus.Log,
		Auth:          ath,
		ActiveKID:     KID,
		DB:            bus.DB,
		UserBus:       bus.User,
		InvitationBus: bus.Invitation,
	})

	buildingapp.Routes(app, buildingapp.Config{
		Log:          bus.Log,
		Auth:         ath,
		DB:           bus.DB,
		BuildingBus:  bus.Building,
		ApartmentBus: bus.Apartment,
	})

	invitationapp.Routes(app, invitationapp.Config{
		Auth:          ath,
		InvitationBus: bus.Invitation,
	})

	tenancyapp.Routes(app, tenancyapp.Config{
		Log:        bus.Log,
		Auth:       ath,
		DB:         bus.DB,
		UserBus:    bus.User,
		TenancyBus: bus.Tenancy,
	})

	issueapp.Routes(app, issueapp.Config{
		Auth:     ath,
		IssueBus: bus.Issue,
	})

	app.NotFound(func(ctx context.Context, r *http.Request) web.Encoder {
		return errs.NotFoundRoute()
	})

	return &Test{
		Bus:  bus,
		Auth: ath,
		mux:  app,
	}
}

// Token signs a token for usr.
func (at *Test) Token(t *testing.T, usr userbus.User) string {
	t.Helper()

	tkn, err := at.Auth.GenerateToken(KID, usr)
	require.NoError(t, err)

	return tkn
}

// Do sends a request with an optional bearer token and JSON body.
func (at *Test) Do(t *testing.T, method string, path string, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	r := httptest.NewRequest(method, path, &buf)
	if body != nil {
		r.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	at.mux.ServeHTTP(w, r)

	return w
}

// Decode unmarshals the recorded body into v.
func Decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()

	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), "body: %s", w.Body.String())
}

// ErrorBody is the shape of every error response.
type ErrorBody struct {
	Success bool              `json:"success"`
	Error   string            `json:"error"`
	Code    string            `json:"code"`
	Fields  map[string]string `json:"fields"`
	Details string            `json:"details"`
}

// DecodeError unmarshals an error response.
func DecodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorBody {
	t.Helper()

	var body ErrorBody
	Decode(t, w, &body)

	return body
}

func newKey(t *testing.T) []byte {
	t.Helper()

	pk, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	block := pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(pk),
	}

	return pem.EncodeToMemory(&block)
}
