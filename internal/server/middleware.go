package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/crusade-dev/crusaded/internal/auth"
)

const sessionContextKey = "session"

func setSession(c *gin.Context, session auth.Session) {
	c.Set(sessionContextKey, session)
}

// GetSession returns the resolved session for the request. The second
// return is false only when SessionMiddleware did not run.
func GetSession(c *gin.Context) (auth.Session, bool) {
	value, exists := c.Get(sessionContextKey)
	if !exists {
		return auth.Session{}, false
	}

	session, ok := value.(auth.Session)
	return session, ok
}

func respondWithError(c *gin.Context, log zerolog.Logger, statusCode int, err error, message string) {
	log.Warn().Err(err).Msg(message)
	c.JSON(statusCode, gin.H{"error": message})
	c.Abort()
}

// SessionMiddleware resolves the auth cookie into a Session exactly once
// per request. It never rejects: cookie problems degrade to an anonymous
// session and the request continues.
func SessionMiddleware(resolver *auth.Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := c.Cookie(auth.CookieName)
		if err != nil {
			// No cookie sent
			raw = ""
		}

		setSession(c, resolver.Resolve(raw))
		c.Next()
	}
}

// RequireAuthMiddleware rejects requests without a signed-in user
func RequireAuthMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := GetSession(c)
		if !ok || !session.Authenticated {
			respondWithError(c, log, http.StatusUnauthorized, errors.New("no session"), "Please log in (or create an account) to do that")
			return
		}

		c.Next()
	}
}

// AdminOnlyMiddleware ensures the authenticated user is an admin
func AdminOnlyMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := GetSession(c)
		if !ok || !session.Authenticated {
			respondWithError(c, log, http.StatusUnauthorized, errors.New("no session"), "Unauthorized")
			return
		}

		if !session.IsAdmin {
			respondWithError(c, log, http.StatusForbidden, errors.New("not admin"), "Admin access required")
			return
		}

		c.Next()
	}
}
