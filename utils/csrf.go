package utils

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// DeleteTokenIssuer derives per-resource confirmation tokens bound to the
// caller's session. The token for article 42 is the MAC of the session ID
// and "delete42" under the server secret, so tokens issued to one session
// never verify for another.
type DeleteTokenIssuer struct {
	secret []byte
}

func NewDeleteTokenIssuer(secret string) *DeleteTokenIssuer {
	return &DeleteTokenIssuer{secret: []byte(secret)}
}

// DeleteToken returns the hex-encoded confirmation token for the given
// session and article.
func (i *DeleteTokenIssuer) DeleteToken(sessionID string, articleID uint) string {
	mac := hmac.New(sha256.New, i.secret)
	mac.Write([]byte(sessionID))
	mac.Write([]byte{0})
	fmt.Fprintf(mac, "delete%d", articleID)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyDeleteToken reports whether token was issued to this session for
// this article. Comparison is constant-time.
func (i *DeleteTokenIssuer) VerifyDeleteToken(sessionID string, articleID uint, token string) bool {
	if sessionID == "" || token == "" {
		return false
	}
	expected := i.DeleteToken(sessionID, articleID)
	return hmac.Equal([]byte(expected), []byte(token))
}
