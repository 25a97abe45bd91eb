package middleware

import "github.com/labstack/echo/v4"

// Context keys set by JWTAuth.
const (
	CtxUser = "user_id"
	CtxRole = "role"
)

// User returns the authenticated username, or "" for anonymous requests.
func User(c echo.Context) string {
	s, _ := c.Get(CtxUser).(string)
	return s
}

// Role returns the role claim of the authenticated user.
func Role(c echo.Context) string {
	s, _ := c.Get(CtxRole).(string)
	return s
}

// currentUserID is the rate limiter's view of the caller.
func currentUserID(c echo.Context) string {
	if u := User(c); u != "" {
		return u
	}
	return "anon"
}
