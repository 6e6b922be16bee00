package security

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestSessionTokenRoundTrip(t *testing.T) {
	id := GenerateULID()
	now := time.Now()

	token, err := IssueSessionToken(id, testSecret, now, now.Add(time.Hour))
	require.NoError(t, err)

	got, err := ParseSessionToken(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestSessionTokenWithoutExpiry(t *testing.T) {
	token, err := IssueSessionToken("abc", testSecret, time.Now(), time.Time{})
	require.NoError(t, err)

	got, err := ParseSessionToken(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, "abc", got)
}

func TestSessionTokenRejectsWrongSecret(t *testing.T) {
	token, err := IssueSessionToken("abc", testSecret, time.Now(), time.Time{})
	require.NoError(t, err)

	_, err = ParseSessionToken(token, "another-secret-of-some-length")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestSessionTokenRejectsExpired(t *testing.T) {
	past := time.Now().Add(-2 * time.Hour)
	token, err := IssueSessionToken("abc", testSecret, past, past.Add(time.Hour))
	require.NoError(t, err)

	_, err = ParseSessionToken(token, testSecret)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestSessionTokenRejectsGarbage(t *testing.T) {
	_, err := ParseSessionToken("not-a-token", testSecret)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestGenerateSecureKey(t *testing.T) {
	key, err := GenerateSecureKey(64)
	require.NoError(t, err)
	assert.Len(t, key, 64)
	assert.NotEqual(t, GenerateULID(), GenerateULID())
}
