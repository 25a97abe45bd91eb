// Package queue carries reservation lifecycle events over RabbitMQ: a
// publisher used by the reservation service and a background consumer
// that appends every event to logs/reservations.log.
package queue

import (
	"time"

	"github.com/iliyamo/parking-reservation/internal/model"
)

// Event types.
const (
	EventCreated   = "reservation.created"
	EventConfirmed = "reservation.confirmed"
	EventCancelled = "reservation.cancelled"
	EventExpired   = "reservation.expired"
)

// ReservationEvent is published whenever a reservation changes state.  It
// contains enough information for downstream consumers to log, notify, or
// trigger analytics without querying the service.
type ReservationEvent struct {
	Type          string `json:"type"`
	ReservationID string `json:"reservation_id"`
	User          string `json:"user"`
	LotID         string `json:"lot_id"`
	SpotID        int    `json:"spot"`
	StartsAt      string `json:"starts_at"`
	EndsAt        string `json:"ends_at"`
	Status        string `json:"status"`
	OriginalPrice int    `json:"original_price"`
	ActualPrice   int    `json:"actual_price"`
	PointsEarned  int    `json:"points_earned"`
	OccurredAt    string `json:"occurred_at"`
}

// NewReservationEvent snapshots r.  Times are rendered in loc as RFC 3339.
func NewReservationEvent(typ string, r model.Reservation, loc *time.Location, at time.Time) ReservationEvent {
	return ReservationEvent{
		Type:          typ,
		ReservationID: r.ID,
		User:          r.User,
		LotID:         r.LotID,
		SpotID:        r.SpotID,
		StartsAt:      r.Start.In(loc).Format(time.RFC3339),
		EndsAt:        r.End.In(loc).Format(time.RFC3339),
		Status:        string(r.Status),
		OriginalPrice: r.OriginalPrice,
		ActualPrice:   r.ActualPrice,
		PointsEarned:  r.PointsEarned,
		OccurredAt:    at.In(loc).Format(time.RFC3339),
	}
}
