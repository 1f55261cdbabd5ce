package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionTokenRoundtrip(t *testing.T) {
	token, err := IssueSessionToken("abc-123", time.Hour)
	require.NoError(t, err)

	claims, err := ParseSessionToken(token)
	require.NoError(t, err)
	assert.Equal(t, "abc-123", claims.SessionID)
}

func TestSessionTokenTampered(t *testing.T) {
	token, err := IssueSessionToken("abc-123", time.Hour)
	require.NoError(t, err)

	_, err = ParseSessionToken(token + "x")
	assert.Error(t, err)

	_, err = ParseSessionToken("not-a-token")
	assert.Error(t, err)
}

func TestSessionTokenExpired(t *testing.T) {
	token, err := IssueSessionToken("abc-123", -time.Minute)
	require.NoError(t, err)

	_, err = ParseSessionToken(token)
	assert.Error(t, err)
}
