package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/parking-reservation/internal/service"
)

var kindStatus = map[error]int{
	service.ErrInvalidTimeFormat:   http.StatusBadRequest,
	service.ErrPastStartTime:       http.StatusBadRequest,
	service.ErrInsufficientPoints:  http.StatusBadRequest,
	service.ErrInvalidPoints:       http.StatusBadRequest,
	service.ErrUserOverlap:         http.StatusConflict,
	service.ErrSpotTaken:           http.StatusConflict,
	service.ErrSpotDisabled:        http.StatusConflict,
	service.ErrCannotCancelStarted: http.StatusConflict,
	service.ErrLotNotFound:         http.StatusNotFound,
	service.ErrSpotNotFound:        http.StatusNotFound,
	service.ErrReservationNotFound: http.StatusNotFound,
	service.ErrUnauthorized:        http.StatusForbidden,
}

// writeError maps a service error kind to its HTTP status.  Anything else
// is logged and reported as a 500.
func writeError(c echo.Context, err error) error {
	if kind := service.Kind(err); kind != nil {
		return c.JSON(kindStatus[kind], echo.Map{"error": kind.Error()})
	}
	c.Logger().Errorf("%s %s: %v", c.Request().Method, c.Path(), err)
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}

var errBadParam = errors.New("bad path parameter")
