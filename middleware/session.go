package middleware

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SessionCookie is the name of the opaque session credential cookie.
const SessionCookie = "joki_session"

// sessions maps opaque session tokens to user ids. Sessions are issued by
// the platform's auth service; this layer only checks them.
var (
	sessionsMu sync.RWMutex
	sessions   = map[string]string{}
)

// IssueSession registers a session token for the given user and returns it.
// Used by local development seeding and by tests; production tokens arrive
// pre-issued.
func IssueSession(userID string) string {
	token := uuid.NewString()
	sessionsMu.Lock()
	sessions[token] = userID
	sessionsMu.Unlock()
	return token
}

// RevokeSession invalidates a previously issued session token.
func RevokeSession(token string) {
	sessionsMu.Lock()
	delete(sessions, token)
	sessionsMu.Unlock()
}

// ResetSessions drops all registered sessions (primarily for testing).
func ResetSessions() {
	sessionsMu.Lock()
	sessions = map[string]string{}
	sessionsMu.Unlock()
}

// RequireSession is a middleware that checks the session cookie and stores
// the authenticated user id in the Gin context.
func RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(SessionCookie)
		if err != nil || token == "" {
			c.PureJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "UNAUTHORIZED",
					"message": "Missing session credential",
				},
			})
			c.Abort()
			return
		}

		sessionsMu.RLock()
		userID, ok := sessions[token]
		sessionsMu.RUnlock()
		if !ok {
			c.PureJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "INVALID_SESSION",
					"message": "Session is expired or unknown",
				},
			})
			c.Abort()
			return
		}

		c.Set("user_id", userID)
		c.Next()
	}
}

// GetUserID extracts the user ID from the Gin context
func GetUserID(c *gin.Context) (string, error) {
	userID, exists := c.Get("user_id")
	if !exists {
		return "", &AuthError{Code: "MISSING_USER_ID", Message: "User ID not found in context"}
	}

	userIDStr, ok := userID.(string)
	if !ok {
		return "", &AuthError{Code: "INVALID_USER_ID", Message: "User ID is not a string"}
	}

	return userIDStr, nil
}

// AuthError represents an authentication error
type AuthError struct {
	Code    string
	Message string
}

func (e *AuthError) Error() string {
	return e.Message
}
