package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionTokenRoundTrip(t *testing.T) {
	sessions := NewSessions("test secret", time.Hour)

	token, err := sessions.Issue(42)
	require.NoError(t, err)

	userId, err := sessions.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), userId)
}

func TestVerifyRejectsForeignSecret(t *testing.T) {
	token, err := NewSessions("one secret", time.Hour).Issue(42)
	require.NoError(t, err)

	_, err = NewSessions("another secret", time.Hour).Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	sessions := NewSessions("test secret", -time.Minute)

	token, err := sessions.Issue(42)
	require.NoError(t, err)

	_, err = sessions.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	sessions := NewSessions("test secret", time.Hour)

	_, err := sessions.Verify("not a token at all")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
