package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/parking-reservation/internal/service"
)

// LotHandler serves the catalog and availability views.
type LotHandler struct {
	Svc *service.ReservationService
}

func NewLotHandler(svc *service.ReservationService) *LotHandler { return &LotHandler{Svc: svc} }

// ListLots returns the whole lot catalog.
func (h *LotHandler) ListLots(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"lots": h.Svc.Lots()})
}

// Search resolves ?q= to a search location and its lots.
func (h *LotHandler) Search(c echo.Context) error {
	return c.JSON(http.StatusOK, h.Svc.Search(c.QueryParam("q")))
}

// Estimate prices a reservation of :minutes on :spot (0 for the whole lot).
func (h *LotHandler) Estimate(c echo.Context) error {
	spot, err := intParam(c, "spot")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid spot id"})
	}
	minutes, err := intParam(c, "minutes")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": service.ErrInvalidTimeFormat.Error()})
	}
	est, err := h.Svc.Estimate(c.Param("lot"), spot, minutes)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, est)
}

// Overview returns the lot with the live state of every spot.
func (h *LotHandler) Overview(c echo.Context) error {
	ov, err := h.Svc.LotOverview(c.Param("lot"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, ov)
}

type timelineEntry struct {
	Start int64  `json:"start"`
	End   int64  `json:"end"`
	User  string `json:"user"`
}

type spotStatusResp struct {
	Reserved      bool            `json:"reserved"`
	NextAvailable *string         `json:"next_available_start_time"`
	Reservations  []timelineEntry `json:"reservations"`
}

// SpotStatus reports occupancy, the next free 30-minute slot today as
// "HH:MM" (null when the day is full) and today's reservations.
func (h *LotHandler) SpotStatus(c echo.Context) error {
	spot, err := intParam(c, "spot")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid spot id"})
	}
	st, err := h.Svc.SpotStatus(c.Param("lot"), spot)
	if err != nil {
		return writeError(c, err)
	}
	resp := spotStatusResp{Reserved: st.Occupied, Reservations: make([]timelineEntry, 0, len(st.Today))}
	if st.NextAvailable != nil {
		s := clockLabel(*st.NextAvailable)
		resp.NextAvailable = &s
	}
	for _, r := range st.Today {
		resp.Reservations = append(resp.Reservations, timelineEntry{Start: int64(r.Start), End: int64(r.End), User: r.User})
	}
	return c.JSON(http.StatusOK, resp)
}

func intParam(c echo.Context, name string) (int, error) {
	n, err := strconv.Atoi(c.Param(name))
	if err != nil {
		return 0, fmt.Errorf("%w %s=%q", errBadParam, name, c.Param(name))
	}
	return n, nil
}

// clockLabel renders t as "HH:MM" for timeline displays.
func clockLabel(t time.Time) string { return t.Format("15:04") }
