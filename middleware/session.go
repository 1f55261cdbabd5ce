package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ametel/pressbox/utils"
)

const (
	// SessionCookieName is the cookie carrying the signed session token.
	SessionCookieName = "pb_session"
	// ContextSessionIDKey is the key under which the session ID is stored
	// in the Gin context.
	ContextSessionIDKey = "session_id"

	sessionLifetime = 24 * time.Hour
)

// Session ensures every request carries an anonymous session. A valid cookie
// is parsed and its session ID exposed on the context; otherwise a fresh
// session is issued. Delete confirmation tokens are bound to this ID.
func Session() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if raw, err := ctx.Cookie(SessionCookieName); err == nil && raw != "" {
			if claims, err := utils.ParseSessionToken(raw); err == nil {
				ctx.Set(ContextSessionIDKey, claims.SessionID)
				ctx.Next()
				return
			}
		}

		sessionID := uuid.NewString()
		token, err := utils.IssueSessionToken(sessionID, sessionLifetime)
		if err != nil {
			if utils.Sugar != nil {
				utils.Sugar.Errorf("issue session token: %v", err)
			}
			ctx.Next()
			return
		}
		ctx.SetCookie(SessionCookieName, token, int(sessionLifetime.Seconds()), "/", "", false, true)
		ctx.Set(ContextSessionIDKey, sessionID)
		ctx.Next()
	}
}

// SessionID returns the session ID attached by Session, if any.
func SessionID(ctx *gin.Context) string {
	if v, ok := ctx.Get(ContextSessionIDKey); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
