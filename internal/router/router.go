package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/iliyamo/parking-reservation/internal/handler"    // HTTP handlers
	"github.com/iliyamo/parking-reservation/internal/middleware" // JWT authentication and role enforcement
)

// RegisterRoutes registers routes that do not require authentication and
// carry no state: the health check.
func RegisterRoutes(e *echo.Echo, h *handler.HealthHandler) {
	e.GET("/healthz", h.Health)
}

// RegisterAuth registers all authentication-related routes.  Register,
// login, refresh and logout live under /v1/auth and need no session; /v1/me
// requires a valid access token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh) // rotates the refresh token
	// Logout accepts either a refresh token in the body (one session) or a
	// bearer access token alone (every session of that user).
	g.POST("/logout", a.Logout)

	e.GET("/v1/me", a.Me, middleware.JWTAuth(jwtSecret))
}

// RegisterPublic registers the unauthenticated catalog endpoints.  Their
// responses depend only on the static catalog, so they sit behind the
// response cache.
func RegisterPublic(e *echo.Echo, l *handler.LotHandler, cache echo.MiddlewareFunc) {
	g := e.Group("/v1", cache)
	g.GET("/lots", l.ListLots)
	g.GET("/search", l.Search)
	g.GET("/estimates/:lot/:spot/:minutes", l.Estimate)
}
