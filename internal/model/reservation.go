package model

// ReservationStatus is the lifecycle state of a reservation.  Cancelled
// reservations are removed from the store, so there is no cancelled state.
type ReservationStatus string

const (
	StatusPending ReservationStatus = "pending"
	StatusPaid    ReservationStatus = "paid"
)

// Reservation books one spot of a lot for the interval [Start, End).
//
// Fields:
//  ID            : random UUID.
//  LotID         : lot the spot belongs to.
//  User          : username of the owner.
//  SpotID        : spot id, unique within the lot.
//  Start, End    : interval bounds in epoch seconds, End > Start.
//  OriginalPrice : duration times the lot's per-minute price.
//  ActualPrice   : price after spending points, never above OriginalPrice.
//  PointsEarned  : eco points credited on payment.
//  Status        : pending until payment is confirmed.
//  CreatedAt     : when the reservation was made.
//  PaidAt        : when payment was confirmed (zero while pending).
type Reservation struct {
	ID            string            `json:"id"`
	LotID         string            `json:"lot_id"`
	User          string            `json:"user"`
	SpotID        int               `json:"spot"`
	Start         Timestamp         `json:"start"`
	End           Timestamp         `json:"end"`
	OriginalPrice int               `json:"original_price"`
	ActualPrice   int               `json:"actual_price"`
	PointsEarned  int               `json:"points_earned"`
	Status        ReservationStatus `json:"status"`
	CreatedAt     Timestamp         `json:"created_at"`
	PaidAt        Timestamp         `json:"paid_at,omitempty"`
}

// DurationMinutes returns the reserved length in minutes.
func (r Reservation) DurationMinutes() int { return r.Start.Minutes(r.End) }
