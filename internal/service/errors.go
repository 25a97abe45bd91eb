package service

import "errors"

// Reservation failure kinds.  The message of each sentinel is the kind
// reported to clients, so handlers can echo err.Error() for any of them.
var (
	ErrInvalidTimeFormat   = errors.New("invalid_time_format")
	ErrPastStartTime       = errors.New("past_start_time")
	ErrUserOverlap         = errors.New("user_overlap")
	ErrSpotTaken           = errors.New("spot_taken")
	ErrLotNotFound         = errors.New("lot_not_found")
	ErrSpotNotFound        = errors.New("spot_not_found")
	ErrSpotDisabled        = errors.New("spot_disabled")
	ErrReservationNotFound = errors.New("reservation_not_found")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrInsufficientPoints  = errors.New("insufficient_points")
	ErrInvalidPoints       = errors.New("invalid_points")
	ErrCannotCancelStarted = errors.New("cannot_cancel_started")
)

// Kinds lists every failure kind in a stable order.
var Kinds = []error{
	ErrInvalidTimeFormat, ErrPastStartTime, ErrUserOverlap, ErrSpotTaken,
	ErrLotNotFound, ErrSpotNotFound, ErrSpotDisabled, ErrReservationNotFound,
	ErrUnauthorized, ErrInsufficientPoints, ErrInvalidPoints, ErrCannotCancelStarted,
}

// Kind returns the sentinel err wraps, or nil for unexpected errors.
func Kind(err error) error {
	for _, k := range Kinds {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}
