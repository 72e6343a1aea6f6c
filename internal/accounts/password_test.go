package accounts_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"vmail/internal/accounts"
)

func TestVerifyPasswordSchemes(t *testing.T) {
	blf, err := accounts.HashPassword("secret")
	require.NoError(t, err)
	raw, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
	require.NoError(t, err)

	cases := []struct {
		name   string
		hash   string
		input  string
		want   bool
		hasErr bool
	}{
		{name: "blf-crypt match", hash: blf, input: "secret", want: true},
		{name: "blf-crypt mismatch", hash: blf, input: "nope"},
		{name: "bare bcrypt", hash: string(raw), input: "secret", want: true},
		{name: "plain match", hash: "{PLAIN}secret", input: "secret", want: true},
		{name: "plain mismatch", hash: "{PLAIN}secret", input: "Secret"},
		{name: "unknown", hash: "{MD5}abc", input: "secret", hasErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ok, err := accounts.VerifyPassword(tc.hash, tc.input)
			if tc.hasErr {
				assert.ErrorIs(t, err, accounts.ErrUnknownScheme)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, ok)
		})
	}
}

func TestSplitAddress(t *testing.T) {
	local, domain, err := accounts.SplitAddress(" Alice@Example.COM ")
	require.NoError(t, err)
	assert.Equal(t, "alice", local)
	assert.Equal(t, "example.com", domain)

	for _, bad := range []string{"", "alice", "@example.com", "alice@"} {
		_, _, err := accounts.SplitAddress(bad)
		assert.ErrorIs(t, err, accounts.ErrInvalidAddress, bad)
	}
}
