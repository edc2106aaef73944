package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// TokenCookie is the name of the session cookie.
const TokenCookie = "Token"

const sessionTokenKey = "session_token"

// RequireTokenCookie rejects requests lacking the Token cookie with an empty
// 401 and stores the cookie value in the request context for handlers.
// It does not consult the session store; only routes that merely need the
// caller's token string (such as logout) should use it.
func RequireTokenCookie() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(TokenCookie)
			if err != nil || cookie.Value == "" {
				return echo.NewHTTPError(http.StatusUnauthorized)
			}
			c.Set(sessionTokenKey, cookie.Value)
			return next(c)
		}
	}
}

// SessionToken returns the token stored by RequireTokenCookie, or "" when
// the middleware did not run.
func SessionToken(c echo.Context) string {
	token, _ := c.Get(sessionTokenKey).(string)
	return token
}
