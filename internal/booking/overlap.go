// Package booking holds the pure reservation rules: interval overlap,
// conflict detection, the 30-minute slot availability scan, eco points and
// pricing.  Nothing in this package locks, stores or logs.
package booking

import "github.com/iliyamo/parking-reservation/internal/model"

// Conflict reports why a candidate interval cannot be booked.
type Conflict int

const (
	NoConflict Conflict = iota
	UserConflict
	SpotConflict
)

func (c Conflict) String() string {
	switch c {
	case UserConflict:
		return "user_conflict"
	case SpotConflict:
		return "spot_conflict"
	default:
		return "no_conflict"
	}
}

// Overlaps reports whether [aStart,aEnd) and [bStart,bEnd) intersect.
// Intervals that only touch (aEnd == bStart) do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd model.Timestamp) bool {
	return aStart < bEnd && bStart < aEnd
}

// Check scans every existing reservation against the candidate interval.
// A reservation by the same user overlapping the candidate is a user
// conflict regardless of lot or spot; a reservation of the same lot and spot
// overlapping it is a spot conflict regardless of user.  Both are collected
// over the full slice and a user conflict is reported first.
func Check(existing []model.Reservation, user, lotID string, spotID int, start, end model.Timestamp) Conflict {
	userHit, spotHit := false, false
	for _, r := range existing {
		if !Overlaps(start, end, r.Start, r.End) {
			continue
		}
		if r.User == user {
			userHit = true
		}
		if r.LotID == lotID && r.SpotID == spotID {
			spotHit = true
		}
	}
	switch {
	case userHit:
		return UserConflict
	case spotHit:
		return SpotConflict
	}
	return NoConflict
}

// Without returns a copy of rs with the reservation id removed.
func Without(rs []model.Reservation, id string) []model.Reservation {
	out := make([]model.Reservation, 0, len(rs))
	for _, r := range rs {
		if r.ID != id {
			out = append(out, r)
		}
	}
	return out
}

// ForSpot returns the reservations of rs on the given lot spot.
func ForSpot(rs []model.Reservation, lotID string, spotID int) []model.Reservation {
	out := make([]model.Reservation, 0)
	for _, r := range rs {
		if r.LotID == lotID && r.SpotID == spotID {
			out = append(out, r)
		}
	}
	return out
}
