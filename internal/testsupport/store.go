package testsupport

import (
	"context"
	"testing"

	"vmail/internal/accounts"
	"vmail/internal/config"
)

// MustOpenStore opens an accounts.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *accounts.Store {
	t.Helper()

	store, err := accounts.Open(cfg)
	if err != nil {
		t.Fatalf("accounts.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// NewUser creates the domain if needed and a user with a bcrypt password.
func NewUser(t testing.TB, store *accounts.Store, email, password string) *accounts.User {
	t.Helper()

	ctx := context.Background()
	_, domainPart, err := accounts.SplitAddress(email)
	if err != nil {
		t.Fatalf("split address: %v", err)
	}
	domain, err := store.GetDomain(ctx, domainPart)
	if err != nil {
		domain, err = store.CreateDomain(ctx, domainPart)
		if err != nil {
			t.Fatalf("store.CreateDomain: %v", err)
		}
	}
	user, err := store.CreateUser(ctx, accounts.NewUser{
		DomainID: domain.ID,
		Email:    email,
		Password: password,
	})
	if err != nil {
		t.Fatalf("store.CreateUser: %v", err)
	}
	return user
}
