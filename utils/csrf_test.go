package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeleteTokenRoundtrip(t *testing.T) {
	issuer := NewDeleteTokenIssuer("secret")

	token := issuer.DeleteToken("session-a", 42)
	assert.NotEmpty(t, token)
	assert.True(t, issuer.VerifyDeleteToken("session-a", 42, token))
}

func TestDeleteTokenRejections(t *testing.T) {
	issuer := NewDeleteTokenIssuer("secret")
	token := issuer.DeleteToken("session-a", 42)

	assert.False(t, issuer.VerifyDeleteToken("session-b", 42, token), "other session")
	assert.False(t, issuer.VerifyDeleteToken("session-a", 43, token), "other article")
	assert.False(t, issuer.VerifyDeleteToken("session-a", 42, "tampered"), "wrong token")
	assert.False(t, issuer.VerifyDeleteToken("", 42, token), "empty session")
	assert.False(t, issuer.VerifyDeleteToken("session-a", 42, ""), "empty token")

	other := NewDeleteTokenIssuer("another-secret")
	assert.False(t, other.VerifyDeleteToken("session-a", 42, token), "other server secret")
}

func TestDeleteTokenDistinctPerResource(t *testing.T) {
	issuer := NewDeleteTokenIssuer("secret")
	assert.NotEqual(t, issuer.DeleteToken("s", 1), issuer.DeleteToken("s", 2))
	assert.NotEqual(t, issuer.DeleteToken("s1", 1), issuer.DeleteToken("s2", 1))
}
