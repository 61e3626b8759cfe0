package invitationbus_test

import (
	"context"
	"errors"
	"net/mail"
	"sync"
	"testing"
	"time"

	"github.com/jcpaschoal/propman/business/domain/buildingbus"
	"github.com/jcpaschoal/propman/business/domain/invitationbus"
	"github.com/jcpaschoal/propman/business/domain/tenancybus"
	"github.com/jcpaschoal/propman/business/domain/userbus"
	"github.com/jcpaschoal/propman/business/sdk/dbtest"
	"github.com/jcpaschoal/propman/business/types/name"
	"github.com/jcpaschoal/propman/business/types/password"
	"github.com/jcpaschoal/propman/business/types/role"
	"github.com/jcpaschoal/propman/business/types/tenancystatus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// redeem runs a redemption the way the HTTP layer does: inside one
// transaction that commits only on success.
func redeem(ctx context.Context, bus dbtest.BusDomain, r invitationbus.Redemption) (userbus.User, tenancybus.Tenancy, error) {
	tx, err := bus.DB.Begin(ctx)
	if err != nil {
		return userbus.User{}, tenancybus.Tenancy{}, err
	}

	txBus, err := bus.Invitation.NewWithTx(tx)
	if err != nil {
		tx.Rollback()
		return userbus.User{}, tenancybus.Tenancy{}, err
	}

	usr, ten, err := txBus.Redeem(ctx, r)
	if err != nil {
		tx.Rollback()
		return userbus.User{}, tenancybus.Tenancy{}, err
	}

	return usr, ten, tx.Commit()
}

func redemption(token string) invitationbus.Redemption {
	return invitationbus.Redemption{
		Token:    token,
		Name:     name.MustParse("Jane Doe"),
		Password: password.MustParse("secret123"),
	}
}

func Test_RoundTrip(t *testing.T) {
	bus := dbtest.NewBusDomain(t)
	ctx := context.Background()

	co1 := dbtest.SeedUser(t, bus, "co1", "co1@example.com", role.Company)
	b := dbtest.SeedBuilding(t, bus, co1, "Elm House", 4)
	apt := dbtest.SeedApartment(t, bus, co1, b, "3A", 3)

	ni := invitationbus.NewInvitation{
		Email:       mail.Address{Address: "jane@example.com"},
		ApartmentID: &apt.ID,
	}

	inv, err := bus.Invitation.Issue(ctx, co1.ID, ni)
	require.NoError(t, err)
	assert.Equal(t, b.ID, inv.BuildingID)
	assert.Equal(t, "3A", inv.ApartmentNumber)
	assert.Equal(t, 3, inv.Floor)
	assert.Len(t, inv.Token, 43, "32 random bytes in unpadded base64url")
	assert.WithinDuration(t, inv.CreatedAt.Add(invitationbus.DefaultTTL), inv.ExpiresAt, time.Second)
	assert.Equal(t, invitationbus.StateIssued, inv.State(time.Now()))

	sent := bus.Mailer.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "jane@example.com", sent[0].ToEmail)
	assert.Contains(t, sent[0].Text, inv.Token)

	usr, ten, err := redeem(ctx, bus, redemption(inv.Token))
	require.NoError(t, err)
	assert.True(t, usr.Role.Equal(role.Tenant))
	assert.Equal(t, "jane@example.com", usr.Email.Address)
	assert.True(t, ten.Status.Equal(tenancystatus.Active))
	assert.False(t, ten.JoinedAt.IsZero())
	assert.Equal(t, co1.ID, ten.InvitedBy)

	roster, err := bus.Tenancy.QueryByCompany(ctx, co1.ID, tenancybus.QueryFilter{})
	require.NoError(t, err)
	require.Len(t, roster, 1)
	assert.Equal(t, usr.ID, roster[0].TenantID)
	assert.Equal(t, apt.ID, roster[0].ApartmentID)
	assert.Equal(t, "jane@example.com", roster[0].TenantEmail.Address)
	assert.Equal(t, "Jane Doe", roster[0].TenantName)
	assert.Equal(t, "3A", roster[0].ApartmentNumber)
	assert.Equal(t, 3, roster[0].Floor)
	assert.Equal(t, "Elm House", roster[0].BuildingName)
	assert.Equal(t, b.ID, roster[0].BuildingID)
	assert.True(t, roster[0].Status.Equal(tenancystatus.Active))

	got, err := bus.Invitation.QueryOwned(ctx, co1.ID, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, invitationbus.StateRedeemed, got.State(time.Now()))

	_, _, err = redeem(ctx, bus, redemption(inv.Token))
	require.ErrorIs(t, err, invitationbus.ErrAlreadyUsed)
}

func Test_IssueByNumber(t *testing.T) {
	bus := dbtest.NewBusDomain(t)
	ctx := context.Background()

	co := dbtest.SeedUser(t, bus, "Acme", "acme@example.com", role.Company)
	other := dbtest.SeedUser(t, bus, "Globex", "globex@example.com", role.Company)
	b := dbtest.SeedBuilding(t, bus, co, "Elm House", 4)
	apt := dbtest.SeedApartment(t, bus, co, b, "3A", 3)

	ni := invitationbus.NewInvitation{
		Email:           mail.Address{Address: "jane@example.com"},
		BuildingID:      &b.ID,
		ApartmentNumber: "3a",
	}

	inv, err := bus.Invitation.Issue(ctx, co.ID, ni)
	require.NoError(t, err)
	assert.Equal(t, apt.ID, inv.ApartmentID)

	_, err = bus.Invitation.Issue(ctx, other.ID, ni)
	require.ErrorIs(t, err, buildingbus.ErrForbidden)

	_, err = bus.Invitation.Issue(ctx, co.ID, invitationbus.NewInvitation{Email: mail.Address{Address: "jane@example.com"}})
	require.ErrorIs(t, err, invitationbus.ErrValidation)

	_, err = bus.Invitation.Issue(ctx, co.ID, invitationbus.NewInvitation{ApartmentID: &apt.ID})
	require.ErrorIs(t, err, invitationbus.ErrValidation)

	invs, err := bus.Invitation.QueryByBuilding(ctx, co.ID, b.ID)
	require.NoError(t, err)
	assert.Len(t, invs, 1)

	_, err = bus.Invitation.QueryByBuilding(ctx, other.ID, b.ID)
	require.ErrorIs(t, err, buildingbus.ErrForbidden)
}

func Test_MailFailureIsNotFatal(t *testing.T) {
	bus := dbtest.NewBusDomain(t)
	ctx := context.Background()

	bus.Mailer.Err = errors.New("smtp down")

	co := dbtest.SeedUser(t, bus, "Acme", "acme@example.com", role.Company)
	b := dbtest.SeedBuilding(t, bus, co, "Elm House", 4)
	apt := dbtest.SeedApartment(t, bus, co, b, "3A", 3)

	inv, err := bus.Invitation.Issue(ctx, co.ID, invitationbus.NewInvitation{Email: mail.Address{Address: "jane@example.com"}, ApartmentID: &apt.ID})
	require.NoError(t, err)

	_, err = bus.Invitation.QueryOwned(ctx, co.ID, inv.ID)
	require.NoError(t, err)
}

func Test_Expired(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	var mu sync.Mutex
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	}

	bus := dbtest.NewBusDomain(t, invitationbus.WithClock(clock))
	ctx := context.Background()

	co := dbtest.SeedUser(t, bus, "Acme", "acme@example.com", role.Company)
	b := dbtest.SeedBuilding(t, bus, co, "Elm House", 4)
	apt := dbtest.SeedApartment(t, bus, co, b, "3A", 3)

	inv, err := bus.Invitation.Issue(ctx, co.ID, invitationbus.NewInvitation{Email: mail.Address{Address: "jane@example.com"}, ApartmentID: &apt.ID})
	require.NoError(t, err)

	mu.Lock()
	now = now.Add(invitationbus.DefaultTTL + time.Minute)
	mu.Unlock()

	_, _, err = redeem(ctx, bus, redemption(inv.Token))
	require.ErrorIs(t, err, invitationbus.ErrExpired)

	_, err = bus.User.QueryByEmail(ctx, mail.Address{Address: "jane@example.com"})
	require.ErrorIs(t, err, userbus.ErrNotFound, "no identity is created for an expired token")

	n, err := bus.Invitation.PurgeExpired(ctx, clock())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = bus.Invitation.QueryOwned(ctx, co.ID, inv.ID)
	require.ErrorIs(t, err, invitationbus.ErrNotFound)
}

func Test_UnknownToken(t *testing.T) {
	bus := dbtest.NewBusDomain(t)
	ctx := context.Background()

	_, _, err := redeem(ctx, bus, redemption("does-not-exist"))
	require.ErrorIs(t, err, invitationbus.ErrNotFound)
}

func Test_ConcurrentRedeem(t *testing.T) {
	bus := dbtest.NewBusDomain(t)
	ctx := context.Background()

	co := dbtest.SeedUser(t, bus, "Acme", "acme@example.com", role.Company)
	b := dbtest.SeedBuilding(t, bus, co, "Elm House", 4)
	apt := dbtest.SeedApartment(t, bus, co, b, "3A", 3)

	inv, err := bus.Invitation.Issue(ctx, co.ID, invitationbus.NewInvitation{Email: mail.Address{Address: "jane@example.com"}, ApartmentID: &apt.ID})
	require.NoError(t, err)

	const g = 8
	errs := make([]error, g)

	var wg sync.WaitGroup
	wg.Add(g)
	for i := range g {
		go func() {
			defer wg.Done()
			_, _, errs[i] = redeem(ctx, bus, redemption(inv.Token))
		}()
	}
	wg.Wait()

	var ok, used int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, invitationbus.ErrAlreadyUsed):
			used++
		default:
			t.Errorf("unexpected error: %s", err)
		}
	}

	assert.Equal(t, 1, ok, "exactly one redemption succeeds")
	assert.Equal(t, g-1, used)

	roster, err := bus.Tenancy.QueryByCompany(ctx, co.ID, tenancybus.QueryFilter{})
	require.NoError(t, err)
	assert.Len(t, roster, 1)
}

func Test_ExistingIdentity(t *testing.T) {
	bus := dbtest.NewBusDomain(t)
	ctx := context.Background()

	co := dbtest.SeedUser(t, bus, "Acme", "acme@example.com", role.Company)
	jane := dbtest.SeedUser(t, bus, "Jane", "jane@example.com", role.Tenant)
	b := dbtest.SeedBuilding(t, bus, co, "Elm House", 4)
	apt := dbtest.SeedApartment(t, bus, co, b, "3A", 3)

	issue := func(email string) invitationbus.Invitation {
		inv, err := bus.Invitation.Issue(ctx, co.ID, invitationbus.NewInvitation{Email: mail.Address{Address: email}, ApartmentID: &apt.ID})
		require.NoError(t, err)
		return inv
	}

	// A wrong password rolls the claim back.
	inv := issue("JANE@example.com")
	r := redemption(inv.Token)
	r.Password = password.MustParse("wrong-password")

	_, _, err := redeem(ctx, bus, r)
	require.ErrorIs(t, err, userbus.ErrAuthenticationFailure)

	got, err := bus.Invitation.QueryOwned(ctx, co.ID, inv.ID)
	require.NoError(t, err)
	assert.True(t, got.UsedAt.IsZero(), "failed redemption must not consume the token")

	usr, _, err := redeem(ctx, bus, redemption(inv.Token))
	require.NoError(t, err)
	assert.Equal(t, jane.ID, usr.ID, "the existing identity is reused")

	// A company account cannot be turned into a tenant.
	inv = issue("acme@example.com")
	_, _, err = redeem(ctx, bus, redemption(inv.Token))
	require.ErrorIs(t, err, tenancybus.ErrNotTenant)
}

func Test_Revoke(t *testing.T) {
	bus := dbtest.NewBusDomain(t)
	ctx := context.Background()

	co := dbtest.SeedUser(t, bus, "Acme", "acme@example.com", role.Company)
	other := dbtest.SeedUser(t, bus, "Globex", "globex@example.com", role.Company)
	b := dbtest.SeedBuilding(t, bus, co, "Elm House", 4)
	apt := dbtest.SeedApartment(t, bus, co, b, "3A", 3)

	inv, err := bus.Invitation.Issue(ctx, co.ID, invitationbus.NewInvitation{Email: mail.Address{Address: "jane@example.com"}, ApartmentID: &apt.ID})
	require.NoError(t, err)

	err = bus.Invitation.Revoke(ctx, other.ID, inv)
	require.ErrorIs(t, err, buildingbus.ErrForbidden)

	require.NoError(t, bus.Invitation.Revoke(ctx, co.ID, inv))

	_, _, err = redeem(ctx, bus, redemption(inv.Token))
	require.ErrorIs(t, err, invitationbus.ErrNotFound)

	inv, err = bus.Invitation.Issue(ctx, co.ID, invitationbus.NewInvitation{Email: mail.Address{Address: "john@example.com"}, ApartmentID: &apt.ID})
	require.NoError(t, err)

	_, _, err = redeem(ctx, bus, redemption(inv.Token))
	require.NoError(t, err)

	used, err := bus.Invitation.QueryOwned(ctx, co.ID, inv.ID)
	require.NoError(t, err)

	err = bus.Invitation.Revoke(ctx, co.ID, used)
	require.ErrorIs(t, err, invitationbus.ErrAlreadyUsed)
}
