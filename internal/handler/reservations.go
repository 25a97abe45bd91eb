package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/parking-reservation/internal/middleware"
	"github.com/iliyamo/parking-reservation/internal/model"
	"github.com/iliyamo/parking-reservation/internal/service"
)

// ReservationHandler exposes the reservation lifecycle to the caller
// identified by JWTAuth.
type ReservationHandler struct {
	Svc *service.ReservationService
}

func NewReservationHandler(svc *service.ReservationService) *ReservationHandler {
	return &ReservationHandler{Svc: svc}
}

type reserveReq struct {
	Date        string `json:"date"` // YYYY-MM-DD, leading zeros optional
	Hour        int    `json:"hour"`
	Minute      int    `json:"minute"`
	DurationMin int    `json:"duration_min"`
}

type confirmReq struct {
	PointsToUse int `json:"points_to_use"`
}

// reservationView adds the interval in the service zone to the stored record.
type reservationView struct {
	model.Reservation
	StartsAt    time.Time `json:"starts_at"`
	EndsAt      time.Time `json:"ends_at"`
	TimeLabel   string    `json:"time_label"`
	DurationMin int       `json:"duration_min"`
}

func (h *ReservationHandler) view(r model.Reservation) reservationView {
	loc := h.Svc.Location()
	start, end := r.Start.In(loc), r.End.In(loc)
	return reservationView{
		Reservation: r,
		StartsAt:    start,
		EndsAt:      end,
		TimeLabel:   start.Format("2006-01-02 ") + clockLabel(start) + "-" + clockLabel(end),
		DurationMin: r.DurationMinutes(),
	}
}

func (h *ReservationHandler) views(rs []model.Reservation) []reservationView {
	out := make([]reservationView, 0, len(rs))
	for _, r := range rs {
		out = append(out, h.view(r))
	}
	return out
}

// Reserve creates a pending reservation on :lot/:spot.
func (h *ReservationHandler) Reserve(c echo.Context) error {
	spot, err := intParam(c, "spot")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid spot id"})
	}
	var req reserveReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": service.ErrInvalidTimeFormat.Error()})
	}
	r, err := h.Svc.Reserve(c.Request().Context(), service.ReserveRequest{
		User:        middleware.User(c),
		LotID:       c.Param("lot"),
		SpotID:      spot,
		Date:        req.Date,
		Hour:        req.Hour,
		Minute:      req.Minute,
		DurationMin: req.DurationMin,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"reservation": h.view(r)})
}

// Confirm pays for a pending reservation, optionally spending points.
func (h *ReservationHandler) Confirm(c echo.Context) error {
	var req confirmReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": service.ErrInvalidPoints.Error()})
	}
	r, balance, err := h.Svc.ConfirmPayment(c.Request().Context(), middleware.User(c), c.Param("id"), req.PointsToUse)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"reservation": h.view(r), "points": balance})
}

// Cancel deletes one of the caller's reservations that has not started.
func (h *ReservationHandler) Cancel(c echo.Context) error {
	r, err := h.Svc.Cancel(c.Request().Context(), middleware.User(c), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"cancelled": h.view(r)})
}

// Mine lists the caller's reservations and points balance.
func (h *ReservationHandler) Mine(c echo.Context) error {
	rs, points, err := h.Svc.ListForUser(c.Request().Context(), middleware.User(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"reservations": h.views(rs), "points": points})
}

// All lists every reservation; admin only.
func (h *ReservationHandler) All(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"reservations": h.views(h.Svc.ListAll())})
}
