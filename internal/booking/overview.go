package booking

import (
	"time"

	"github.com/iliyamo/parking-reservation/internal/model"
)

// Display states of a spot on the lot map.
const (
	StateAvailable   = "available"
	StateUnavailable = "unavailable"
)

// SpotOverview is one spot of a lot as shown on the lot map.
type SpotOverview struct {
	ID               int        `json:"id"`
	Coords           string     `json:"coords,omitempty"`
	Density          int        `json:"spot_density"`
	Disabled         bool       `json:"is_disabled,omitempty"`
	Occupied         bool       `json:"occupied"`
	OccupiedBy       string     `json:"occupied_by,omitempty"`
	OccupiedUntil    *time.Time `json:"occupied_until,omitempty"`
	NextSlotOccupied bool       `json:"next_slot_occupied"`
	State            string     `json:"state"`
}

// Overview describes every spot of lot at now.  A spot is unavailable when
// it is occupied now or when the slot starting at the next boundary is
// already booked.  lotReservations may contain every reservation of the lot.
func Overview(lot model.Lot, lotReservations []model.Reservation, now time.Time) []SpotOverview {
	next := NextSlotBoundary(now)
	out := make([]SpotOverview, 0, len(lot.Spots))
	for _, s := range lot.Spots {
		rs := ForSpot(lotReservations, lot.ID, s.ID)
		o := SpotOverview{ID: s.ID, Coords: s.Coords, Density: s.Density, Disabled: s.Disabled}
		if r, ok := OccupiedAt(rs, model.At(now)); ok {
			until := r.End.In(now.Location())
			o.Occupied, o.OccupiedBy, o.OccupiedUntil = true, r.User, &until
		}
		o.NextSlotOccupied = SlotOccupied(rs, next)
		o.State = StateAvailable
		if o.Occupied || o.NextSlotOccupied {
			o.State = StateUnavailable
		}
		out = append(out, o)
	}
	return out
}
