package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignAndParseToken(t *testing.T) {
	secret := []byte("test-secret")

	token, err := SignToken(42, secret)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	userID, err := ParseToken(token, secret)
	require.NoError(t, err)
	assert.Equal(t, 42, userID)
}

func TestSignTokenDistinctPerSession(t *testing.T) {
	secret := []byte("test-secret")

	first, err := SignToken(42, secret)
	require.NoError(t, err)
	second, err := SignToken(42, secret)
	require.NoError(t, err)

	// Two sessions for the same user must never share a token string,
	// even when issued within the same second
	assert.NotEqual(t, first, second)
}

func TestParseTokenWrongSecret(t *testing.T) {
	token, err := SignToken(42, []byte("one-secret"))
	require.NoError(t, err)

	_, err = ParseToken(token, []byte("another-secret"))
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseTokenMalformed(t *testing.T) {
	_, err := ParseToken("not.a.token", []byte("test-secret"))
	assert.ErrorIs(t, err, ErrInvalidToken)
}
