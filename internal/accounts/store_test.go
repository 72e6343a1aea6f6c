package accounts_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vmail/internal/accounts"
	"vmail/internal/testsupport"
)

func seed(t *testing.T) (*accounts.Store, *accounts.Domain) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	domain, err := store.CreateDomain(ctx, "Example.COM")
	require.NoError(t, err)
	return store, domain
}

func TestOpenCreatesSchemaOnce(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	first, err := accounts.Open(cfg)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := accounts.Open(cfg)
	require.NoError(t, err)
	defer second.Close()
	assert.Equal(t, cfg.Database.Path, second.Path())
}

func TestDomainLifecycle(t *testing.T) {
	store, domain := seed(t)
	ctx := context.Background()

	assert.Equal(t, "example.com", domain.Name)
	assert.False(t, domain.CreatedAt.IsZero())

	got, err := store.GetDomain(ctx, "EXAMPLE.com.")
	require.NoError(t, err)
	assert.Equal(t, domain.ID, got.ID)

	require.NoError(t, store.SetDomainQuota(ctx, "example.com", "gold", 1<<30))
	got, err = store.GetDomain(ctx, "example.com")
	require.NoError(t, err)
	assert.Equal(t, "gold", got.Package)
	assert.EqualValues(t, 1<<30, got.Quota)

	_, err = store.GetDomain(ctx, "missing.org")
	assert.ErrorIs(t, err, accounts.ErrNotFound)

	_, err = store.CreateDomain(ctx, "example.com")
	assert.Error(t, err)
}

func TestDomainDeletionCascades(t *testing.T) {
	store, domain := seed(t)
	ctx := context.Background()

	testsupport.NewUser(t, store, "alice@example.com", "secret")
	_, err := store.CreateForward(ctx, "example.com", "sales@example.com", "alice@example.com")
	require.NoError(t, err)

	require.NoError(t, store.DeleteDomain(ctx, domain.Name))

	users, err := store.ListUsers(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, users)

	forwards, err := store.ListForwards(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, forwards)

	assert.ErrorIs(t, store.DeleteDomain(ctx, domain.Name), accounts.ErrNotFound)
}

func TestUserCreationStoresHashAndQuota(t *testing.T) {
	store, domain := seed(t)
	ctx := context.Background()

	user, err := store.CreateUser(ctx, accounts.NewUser{
		DomainID: domain.ID,
		Email:    "Joe.Bloggs@Example.com",
		Name:     "Joe Bloggs",
		Password: "somesecret",
		Quota:    52428800,
	})
	require.NoError(t, err)
	assert.Equal(t, "joe.bloggs@example.com", user.Email)
	assert.Equal(t, "Joe Bloggs", user.Name)
	assert.True(t, user.Enabled)
	assert.NotEqual(t, "somesecret", user.Password)
	assert.Contains(t, user.Password, "{BLF-CRYPT}")

	require.NoError(t, store.SetUsage(ctx, user.Email, 123123, 83))
	usage, err := store.Usage(ctx, user.Email)
	require.NoError(t, err)
	assert.EqualValues(t, 123123, usage.Bytes)
	assert.EqualValues(t, 83, usage.Messages)

	users, err := store.ListUsers(ctx, "example.com")
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, user.ID, users[0].ID)
}

func TestUserDeletionRemovesQuotaAndVacation(t *testing.T) {
	store, _ := seed(t)
	ctx := context.Background()

	user := testsupport.NewUser(t, store, "fred@example.com", "secret")
	_, err := store.SetVacation(ctx, user.Email, "Away", "Back soon", true)
	require.NoError(t, err)

	require.NoError(t, store.DeleteUser(ctx, user.Email))

	_, err = store.Usage(ctx, user.Email)
	assert.ErrorIs(t, err, accounts.ErrNotFound)
	_, err = store.GetVacation(ctx, user.Email)
	assert.ErrorIs(t, err, accounts.ErrNotFound)
	_, err = store.GetUser(ctx, user.Email)
	assert.ErrorIs(t, err, accounts.ErrNotFound)
}

func TestCheckPassword(t *testing.T) {
	store, _ := seed(t)
	ctx := context.Background()
	testsupport.NewUser(t, store, "alice@example.com", "correct")

	ok, err := store.CheckPassword(ctx, "alice@example.com", "correct")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.CheckPassword(ctx, "ALICE@example.com", "wrong")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = store.CheckPassword(ctx, "nobody@example.com", "correct")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.SetEnabled(ctx, "alice@example.com", false))
	ok, err = store.CheckPassword(ctx, "alice@example.com", "correct")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.SetEnabled(ctx, "alice@example.com", true))
	require.NoError(t, store.SetPassword(ctx, "alice@example.com", "rotated"))
	ok, err = store.CheckPassword(ctx, "alice@example.com", "rotated")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestForwardMustMatchDomain(t *testing.T) {
	store, _ := seed(t)
	ctx := context.Background()

	_, err := store.CreateForward(ctx, "example.com", "sales@other.org", "alice@example.com")
	assert.ErrorIs(t, err, accounts.ErrInvalidAddress)

	fwd, err := store.CreateForward(ctx, "example.com", "sales@example.com", "alice@elsewhere.net")
	require.NoError(t, err)
	require.NoError(t, store.DeleteForward(ctx, fwd.ID))
	assert.ErrorIs(t, store.DeleteForward(ctx, fwd.ID), accounts.ErrNotFound)
}

func TestVacationDeletionRemovesNotifications(t *testing.T) {
	store, _ := seed(t)
	ctx := context.Background()
	user := testsupport.NewUser(t, store, "alice@example.com", "secret")

	vacation, err := store.SetVacation(ctx, user.Email, "Away", "Back on Monday", true)
	require.NoError(t, err)
	assert.True(t, vacation.Active)

	require.NoError(t, store.RecordNotification(ctx, user.Email, "bob@remote.org"))
	_, seen, err := store.LastNotified(ctx, user.Email, "Bob@Remote.org")
	require.NoError(t, err)
	assert.True(t, seen)

	require.NoError(t, store.DeleteVacation(ctx, user.Email))

	notifications, err := store.Notifications(ctx, user.Email)
	require.NoError(t, err)
	assert.Empty(t, notifications)

	_, seen, err = store.LastNotified(ctx, user.Email, "bob@remote.org")
	require.NoError(t, err)
	assert.False(t, seen)
}

func TestActiveVacation(t *testing.T) {
	store, _ := seed(t)
	ctx := context.Background()
	user := testsupport.NewUser(t, store, "alice@example.com", "secret")

	v, err := store.ActiveVacation(ctx, user.Email)
	require.NoError(t, err)
	assert.Nil(t, v)

	_, err = store.SetVacation(ctx, user.Email, "Away", "Back soon", false)
	require.NoError(t, err)
	v, err = store.ActiveVacation(ctx, user.Email)
	require.NoError(t, err)
	assert.Nil(t, v)

	_, err = store.SetVacation(ctx, user.Email, "Away again", "Back later", true)
	require.NoError(t, err)
	v, err = store.ActiveVacation(ctx, user.Email)
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.Equal(t, "Away again", v.Subject)

	counts, err := store.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, accounts.Counts{Domains: 1, Users: 1, Vacations: 1}, counts)
}
