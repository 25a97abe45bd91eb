package booking

import (
	"time"

	"github.com/iliyamo/parking-reservation/internal/model"
)

// SlotWidth is the fixed size of an availability slot.
const SlotWidth = 30 * time.Minute

// SpotAvailability answers "is this spot free now, and when is it next free
// today".  NextAvailable is nil when every remaining slot of the day is taken.
type SpotAvailability struct {
	Occupied      bool
	NextAvailable *time.Time
	Today         []model.Reservation
}

// NextSlotBoundary drops seconds from now and rounds the minute up to :00 or
// :30.  A time after :30 rolls into the next hour, which may be the next day.
func NextSlotBoundary(now time.Time) time.Time {
	y, mo, d := now.Date()
	h, m := now.Hour(), now.Minute()
	switch {
	case m > 30:
		h, m = h+1, 0
	case m > 0:
		m = 30
	}
	return time.Date(y, mo, d, h, m, 0, 0, now.Location())
}

// dayBounds returns the first and last second of now's calendar day.
func dayBounds(now time.Time) (model.Timestamp, model.Timestamp) {
	y, mo, d := now.Date()
	start := time.Date(y, mo, d, 0, 0, 0, 0, now.Location())
	next := start.AddDate(0, 0, 1)
	return model.At(start), model.At(next) - 1
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// TodayReservations keeps the reservations touching now's calendar day.  A
// reservation ending exactly at midnight still counts for the day it ends.
func TodayReservations(spotReservations []model.Reservation, now time.Time) []model.Reservation {
	dayStart, dayEnd := dayBounds(now)
	out := make([]model.Reservation, 0)
	for _, r := range spotReservations {
		if r.Start <= dayEnd && r.End >= dayStart {
			out = append(out, r)
		}
	}
	return out
}

// OccupiedAt reports the reservation covering ts, if any.
func OccupiedAt(spotReservations []model.Reservation, ts model.Timestamp) (model.Reservation, bool) {
	for _, r := range spotReservations {
		if r.Start <= ts && ts < r.End {
			return r, true
		}
	}
	return model.Reservation{}, false
}

// SlotOccupied reports whether the slot starting at slot overlaps any of rs.
func SlotOccupied(rs []model.Reservation, slot time.Time) bool {
	start := model.At(slot)
	end := model.At(slot.Add(SlotWidth))
	for _, r := range rs {
		if Overlaps(start, end, r.Start, r.End) {
			return true
		}
	}
	return false
}

// Scan walks 30-minute slots from the next boundary after now until the end
// of now's calendar day and returns the first free one.  spotReservations
// must all belong to the same spot; the calendar day is taken from now's
// location.
func Scan(spotReservations []model.Reservation, now time.Time) SpotAvailability {
	today := TodayReservations(spotReservations, now)
	_, occupied := OccupiedAt(spotReservations, model.At(now))
	out := SpotAvailability{Occupied: occupied, Today: today}

	for slot := NextSlotBoundary(now); sameDay(slot, now); slot = slot.Add(SlotWidth) {
		if !SlotOccupied(today, slot) {
			free := slot
			out.NextAvailable = &free
			break
		}
	}
	return out
}
