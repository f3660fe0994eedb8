// internal/interfaces/http/middleware/session.go
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pawverse/petstore-backend/internal/config"
)

const sessionKey = "session_token"

// Session makes sure every request carries a guest session token, issuing
// a new cookie when the client has none
func Session(cfg *config.Config) gin.HandlerFunc {
	name := cfg.Session.CookieName
	if name == "" {
		name = "session_id"
	}

	return func(c *gin.Context) {
		token, err := c.Cookie(name)
		if err != nil || uuid.Validate(token) != nil {
			token = uuid.NewString()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(name, token, cfg.Session.MaxAge, "/", "", cfg.Session.Secure, true)
		}

		c.Set(sessionKey, token)
		c.Next()
	}
}

// GetSessionToken returns the guest session token set by Session
func GetSessionToken(c *gin.Context) string {
	return c.GetString(sessionKey)
}
