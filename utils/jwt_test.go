package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionTokenRoundTrip(t *testing.T) {
	token, err := GenerateToken("user-1", "provider", time.Hour)
	require.NoError(t, err)

	claims, err := ParseSessionToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "provider", claims.Role)
}

func TestSessionTokenDefaultLifetimeAndTampering(t *testing.T) {
	token, err := GenerateToken("user-1", "customer", -time.Minute)
	require.NoError(t, err)

	// A non-positive duration falls back to the default lifetime.
	_, err = ParseSessionToken(token)
	require.NoError(t, err)

	_, err = ParseSessionToken(token + "tampered")
	assert.Error(t, err)
}
