package password_test

import (
	"strings"
	"taskboard/shared/password"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHash(t *testing.T) {
	tests := []struct {
		name     string
		password string
		err      error
	}{
		{name: "valid password", password: "password123"},
		{name: "unicode password", password: "pässwörd-日本"},
		{name: "exactly the bcrypt limit", password: strings.Repeat("a", password.MaxLength)},
		{name: "empty password", password: "", err: password.ErrEmptyPassword},
		{name: "over the bcrypt limit", password: strings.Repeat("a", password.MaxLength+1), err: password.ErrPasswordTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hashed, err := password.Hash(tt.password)

			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				assert.Empty(t, hashed)

				return
			}

			require.NoError(t, err)
			assert.NotEqual(t, tt.password, hashed)

			cost, err := bcrypt.Cost([]byte(hashed))
			require.NoError(t, err)
			assert.Equal(t, bcrypt.DefaultCost, cost)
		})
	}
}

func TestHash_Salted(t *testing.T) {
	first, err := password.Hash("password123")
	require.NoError(t, err)

	second, err := password.Hash("password123")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestVerify(t *testing.T) {
	hashed, err := password.Hash("password123")
	require.NoError(t, err)

	tests := []struct {
		name     string
		password string
		hash     string
		err      error
	}{
		{name: "matching password", password: "password123", hash: hashed},
		{name: "wrong password", password: "password124", hash: hashed, err: password.ErrInvalidPassword},
		{name: "case matters", password: "PASSWORD123", hash: hashed, err: password.ErrInvalidPassword},
		{name: "empty password", password: "", hash: hashed, err: password.ErrInvalidPassword},
		{name: "empty hash", password: "password123", hash: "", err: password.ErrInvalidPassword},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := password.Verify(tt.password, tt.hash)

			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)

				return
			}

			assert.NoError(t, err)
		})
	}
}

func TestVerify_MalformedHash(t *testing.T) {
	err := password.Verify("password123", "not-a-bcrypt-hash")

	require.Error(t, err)
	assert.NotErrorIs(t, err, password.ErrInvalidPassword)
}
