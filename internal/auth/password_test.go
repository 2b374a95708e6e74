// internal/auth/password_test.go
package auth

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyRoomPassword(t *testing.T) {
	hash, err := HashRoomPassword("table-secret")
	require.NoError(t, err)
	assert.Contains(t, hash, "$argon2id$")

	ok, err := VerifyRoomPassword("table-secret", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyRoomPassword("wrong", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyRejectsMalformedHash(t *testing.T) {
	_, err := VerifyRoomPassword("x", "not-a-hash")
	assert.ErrorIs(t, err, ErrInvalidHash)
}

func TestGuestTokenRoundTrip(t *testing.T) {
	require.NoError(t, Init())

	connID, err := uuid.NewRandom()
	require.NoError(t, err)

	token, err := CreateGuestToken(connID)
	require.NoError(t, err)

	got, err := AuthenticateGuestToken(token)
	require.NoError(t, err)
	assert.Equal(t, connID, got)

	_, err = AuthenticateGuestToken(token + "tampered")
	assert.Error(t, err)
}
