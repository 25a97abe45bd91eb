package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/parking-reservation/internal/handler"
	"github.com/iliyamo/parking-reservation/internal/middleware"
	"github.com/iliyamo/parking-reservation/internal/model"
)

// RegisterReservations registers the live availability views and the
// reservation lifecycle under /v1.  Every route requires a valid JWT; the
// caller's username scopes ownership checks inside the service.
func RegisterReservations(e *echo.Echo, l *handler.LotHandler, r *handler.ReservationHandler, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleUser, model.RoleAdmin),
	)
	g.GET("/lots/:lot", l.Overview)
	g.GET("/lots/:lot/spots/:spot/status", l.SpotStatus)
	g.POST("/lots/:lot/spots/:spot/reservations", r.Reserve)
	g.POST("/reservations/:id/confirm", r.Confirm)
	g.DELETE("/reservations/:id", r.Cancel)
	g.GET("/my-reservations", r.Mine)
}

// RegisterAdmin registers endpoints restricted to the ADMIN role.
func RegisterAdmin(e *echo.Echo, r *handler.ReservationHandler, jwtSecret string) {
	g := e.Group(
		"/v1/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin),
	)
	g.GET("/reservations", r.All)
}
