// Package service implements the reservation lifecycle on top of the
// in-memory store: reserve, confirm payment, cancel, plus the read-side
// views (spot status, lot overview, search, estimates, listings) and the
// sweep of abandoned pending reservations.
//
// Mutating operations take the caller's user lock, then the lot lock, and
// hold both for the whole check-then-act sequence.  The fixed order rules
// out deadlocks; the user lock covers the cross-lot user overlap check and
// the points balance, the lot lock covers the spot overlap check.
package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/parking-reservation/internal/booking"
	"github.com/iliyamo/parking-reservation/internal/model"
	"github.com/iliyamo/parking-reservation/internal/queue"
	"github.com/iliyamo/parking-reservation/internal/repository"
)

// EventPublisher receives reservation lifecycle events.
type EventPublisher interface {
	Publish(ctx context.Context, ev queue.ReservationEvent) error
}

// Options tunes a ReservationService.  Zero values fall back to UTC, no
// pending expiry, no events and the wall clock.
type Options struct {
	Location   *time.Location
	PendingTTL time.Duration
	Events     EventPublisher
	Now        func() time.Time
}

// ReservationService owns the reservation lifecycle.
type ReservationService struct {
	lots       *repository.LotRepo
	store      *repository.ReservationRepo
	users      repository.UserStore
	events     EventPublisher
	loc        *time.Location
	pendingTTL time.Duration
	now        func() time.Time

	userLocks *keyedMutex
	lotLocks  *keyedMutex
}

func NewReservationService(lots *repository.LotRepo, store *repository.ReservationRepo, users repository.UserStore, opts Options) *ReservationService {
	s := &ReservationService{
		lots:       lots,
		store:      store,
		users:      users,
		events:     opts.Events,
		loc:        opts.Location,
		pendingTTL: opts.PendingTTL,
		now:        opts.Now,
		userLocks:  newKeyedMutex(),
		lotLocks:   newKeyedMutex(),
	}
	if s.events == nil {
		s.events = queue.Noop{}
	}
	if s.loc == nil {
		s.loc = time.UTC
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Location is the zone that defines calendar days and parses start times.
func (s *ReservationService) Location() *time.Location { return s.loc }

func (s *ReservationService) clock() time.Time { return s.now().In(s.loc) }

// ReserveRequest describes a new reservation.  Date is YYYY-MM-DD and,
// with Hour and Minute, is read in the service location.
type ReserveRequest struct {
	User        string
	LotID       string
	SpotID      int
	Date        string
	Hour        int
	Minute      int
	DurationMin int
}

// MaxDurationMin caps a single reservation (and an estimate) at one day.
const MaxDurationMin = 24 * 60

func validDuration(minutes int) bool { return minutes > 0 && minutes <= MaxDurationMin }

// ParseStartTime reads a start time from its date, hour and minute parts.
// Month and day may be written with or without a leading zero.
func ParseStartTime(date string, hour, minute int, loc *time.Location) (time.Time, error) {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return time.Time{}, ErrInvalidTimeFormat
	}
	t, err := time.ParseInLocation("2006-1-2 15:04", fmt.Sprintf("%s %02d:%02d", date, hour, minute), loc)
	if err != nil {
		return time.Time{}, ErrInvalidTimeFormat
	}
	return t, nil
}

// Reserve creates a pending reservation for [start, start+duration).
func (s *ReservationService) Reserve(ctx context.Context, req ReserveRequest) (model.Reservation, error) {
	lot, err := s.lot(req.LotID)
	if err != nil {
		return model.Reservation{}, err
	}
	spot, ok := lot.Spot(req.SpotID)
	if !ok {
		return model.Reservation{}, ErrSpotNotFound
	}
	if spot.Disabled {
		return model.Reservation{}, ErrSpotDisabled
	}
	startAt, err := ParseStartTime(req.Date, req.Hour, req.Minute, s.loc)
	if err != nil {
		return model.Reservation{}, err
	}
	if !validDuration(req.DurationMin) {
		return model.Reservation{}, ErrInvalidTimeFormat
	}

	r, now, err := s.reserveLocked(req, lot, spot, model.At(startAt))
	if err != nil {
		return model.Reservation{}, err
	}
	s.publish(ctx, queue.EventCreated, r, now)
	return r, nil
}

func (s *ReservationService) reserveLocked(req ReserveRequest, lot model.Lot, spot model.Spot, start model.Timestamp) (model.Reservation, time.Time, error) {
	defer s.userLocks.Lock(req.User)()
	defer s.lotLocks.Lock(lot.ID)()

	now := s.clock()
	if start < model.At(now) {
		return model.Reservation{}, now, ErrPastStartTime
	}
	end := start.Add(time.Duration(req.DurationMin) * time.Minute)

	if err := conflictErr(booking.Check(s.candidates(req.User, lot.ID, now), req.User, lot.ID, spot.ID, start, end)); err != nil {
		return model.Reservation{}, now, err
	}

	est := booking.EstimateFor(lot, spot.ID, req.DurationMin)
	r := model.Reservation{
		ID:            uuid.NewString(),
		LotID:         lot.ID,
		User:          req.User,
		SpotID:        spot.ID,
		Start:         start,
		End:           end,
		OriginalPrice: est.Price,
		ActualPrice:   est.Price,
		PointsEarned:  est.Points,
		Status:        model.StatusPending,
		CreatedAt:     model.At(now),
	}
	if err := s.store.Append(r); err != nil {
		return model.Reservation{}, now, fmt.Errorf("store reservation: %w", err)
	}
	return r, now, nil
}

// ConfirmPayment turns the caller's pending reservation into a paid one,
// spending pointsToUse from the balance and crediting the reservation's
// eco points.  Both overlap checks run again first; a conflict leaves
// everything unchanged.
func (s *ReservationService) ConfirmPayment(ctx context.Context, user, id string, pointsToUse int) (model.Reservation, int, error) {
	if pointsToUse < 0 {
		return model.Reservation{}, 0, ErrInvalidPoints
	}
	r, balance, now, err := s.confirmLocked(ctx, user, id, pointsToUse)
	if err != nil {
		return model.Reservation{}, 0, err
	}
	s.publish(ctx, queue.EventConfirmed, r, now)
	return r, balance, nil
}

func (s *ReservationService) confirmLocked(ctx context.Context, user, id string, pointsToUse int) (model.Reservation, int, time.Time, error) {
	defer s.userLocks.Lock(user)()

	now := s.clock()
	r, err := s.store.Get(id)
	if err != nil || r.User != user || r.Status != model.StatusPending || s.expired(r, now) {
		return model.Reservation{}, 0, now, ErrReservationNotFound
	}
	defer s.lotLocks.Lock(r.LotID)()

	u, err := s.users.Get(ctx, user)
	if err != nil {
		return model.Reservation{}, 0, now, fmt.Errorf("load balance: %w", err)
	}
	if pointsToUse > u.Points {
		return model.Reservation{}, 0, now, ErrInsufficientPoints
	}

	others := booking.Without(s.candidates(user, r.LotID, now), r.ID)
	if err := conflictErr(booking.Check(others, user, r.LotID, r.SpotID, r.Start, r.End)); err != nil {
		return model.Reservation{}, 0, now, err
	}

	r.ActualPrice = max(0, r.OriginalPrice-pointsToUse)
	r.Status = model.StatusPaid
	r.PaidAt = model.At(now)
	balance := u.Points - pointsToUse + r.PointsEarned
	if err := s.users.SetPoints(ctx, user, balance); err != nil {
		return model.Reservation{}, 0, now, fmt.Errorf("update balance: %w", err)
	}
	if err := s.store.Update(r); err != nil {
		if rbErr := s.users.SetPoints(ctx, user, u.Points); rbErr != nil {
			log.Printf("confirm %s: restore balance of %s to %d failed: %v", r.ID, user, u.Points, rbErr)
		}
		return model.Reservation{}, 0, now, fmt.Errorf("update reservation: %w", err)
	}
	return r, balance, now, nil
}

// Cancel removes a reservation of user that has not started yet.  A paid
// reservation takes back its earned points, never below zero.
func (s *ReservationService) Cancel(ctx context.Context, user, id string) (model.Reservation, error) {
	r, now, err := s.cancelLocked(ctx, user, id)
	if err != nil {
		return model.Reservation{}, err
	}
	s.publish(ctx, queue.EventCancelled, r, now)
	return r, nil
}

func (s *ReservationService) cancelLocked(ctx context.Context, user, id string) (model.Reservation, time.Time, error) {
	defer s.userLocks.Lock(user)()

	now := s.clock()
	r, err := s.store.Get(id)
	if err != nil {
		return model.Reservation{}, now, ErrReservationNotFound
	}
	if r.User != user {
		return model.Reservation{}, now, ErrUnauthorized
	}
	defer s.lotLocks.Lock(r.LotID)()

	if r.Start <= model.At(now) {
		return model.Reservation{}, now, ErrCannotCancelStarted
	}
	var u model.User
	if r.Status == model.StatusPaid {
		if u, err = s.users.Get(ctx, user); err != nil {
			return model.Reservation{}, now, fmt.Errorf("load balance: %w", err)
		}
	}
	if _, err := s.store.Remove(id); err != nil {
		return model.Reservation{}, now, ErrReservationNotFound
	}
	if r.Status == model.StatusPaid {
		if err := s.users.SetPoints(ctx, user, max(0, u.Points-r.PointsEarned)); err != nil {
			if rbErr := s.store.Append(r); rbErr != nil {
				log.Printf("cancel %s: restore reservation failed: %v", r.ID, rbErr)
			}
			return model.Reservation{}, now, fmt.Errorf("update balance: %w", err)
		}
	}
	return r, now, nil
}

// SpotStatus reports whether a spot is occupied now, its next free slot
// today and today's reservations.
func (s *ReservationService) SpotStatus(lotID string, spotID int) (booking.SpotAvailability, error) {
	lot, err := s.lot(lotID)
	if err != nil {
		return booking.SpotAvailability{}, err
	}
	if _, ok := lot.Spot(spotID); !ok {
		return booking.SpotAvailability{}, ErrSpotNotFound
	}
	now := s.clock()
	rs := booking.ForSpot(s.live(s.store.ListLot(lot.ID), now), lot.ID, spotID)
	return booking.Scan(rs, now), nil
}

// LotOverview is a lot with the live state of each spot.
type LotOverview struct {
	Lot                    model.Lot              `json:"lot"`
	Spots                  []booking.SpotOverview `json:"spots"`
	EstimatedPointsPerHour int                    `json:"estimated_points_per_hour"`
	Now                    time.Time              `json:"now"`
}

func (s *ReservationService) LotOverview(lotID string) (LotOverview, error) {
	lot, err := s.lot(lotID)
	if err != nil {
		return LotOverview{}, err
	}
	now := s.clock()
	return LotOverview{
		Lot:                    lot,
		Spots:                  booking.Overview(lot, s.live(s.store.ListLot(lot.ID), now), now),
		EstimatedPointsPerHour: booking.EstimateFor(lot, 0, 60).Points,
		Now:                    now,
	}, nil
}

// Estimate prices a prospective reservation.  Spot 0 stands for the lot
// as a whole.
func (s *ReservationService) Estimate(lotID string, spotID, minutes int) (booking.Estimate, error) {
	lot, err := s.lot(lotID)
	if err != nil {
		return booking.Estimate{}, err
	}
	if minutes < 0 || minutes > MaxDurationMin {
		return booking.Estimate{}, ErrInvalidTimeFormat
	}
	return booking.EstimateFor(lot, spotID, minutes), nil
}

// LotSummary is a lot as listed in search results.
type LotSummary struct {
	ID                     string `json:"id"`
	Name                   string `json:"name"`
	Image                  string `json:"image,omitempty"`
	BasePricePerMin        int    `json:"base_price_per_min"`
	TrafficLevel           int    `json:"traffic_level"`
	MapCoords              [2]int `json:"map_coords"`
	EstimatedPointsPerHour int    `json:"estimated_points_per_hour"`
}

// SearchResult answers a location search.  Found is false when a
// non-empty query matched no location and the default one was used.
type SearchResult struct {
	Location model.SearchLocation `json:"location"`
	Lots     []LotSummary         `json:"lots"`
	Found    bool                 `json:"found"`
}

func (s *ReservationService) Search(query string) SearchResult {
	loc, lots, found := s.lots.Search(query)
	out := SearchResult{Location: loc, Found: found, Lots: make([]LotSummary, 0, len(lots))}
	for _, l := range lots {
		out.Lots = append(out.Lots, LotSummary{
			ID:                     l.ID,
			Name:                   l.Name,
			Image:                  l.Image,
			BasePricePerMin:        l.BasePricePerMin,
			TrafficLevel:           l.TrafficLevel,
			MapCoords:              l.MapCoords,
			EstimatedPointsPerHour: booking.EstimateFor(l, 0, 60).Points,
		})
	}
	return out
}

// Lots returns the full catalog.
func (s *ReservationService) Lots() []model.Lot { return s.lots.List() }

// ListForUser returns the caller's reservations ordered by start together
// with the current points balance.
func (s *ReservationService) ListForUser(ctx context.Context, user string) ([]model.Reservation, int, error) {
	u, err := s.users.Get(ctx, user)
	if err != nil {
		return nil, 0, fmt.Errorf("load balance: %w", err)
	}
	return s.live(s.store.ListUser(user), s.clock()), u.Points, nil
}

// ListAll returns every live reservation ordered by lot, then start.
func (s *ReservationService) ListAll() []model.Reservation {
	return s.live(s.store.ListAll(), s.clock())
}

// SweepExpiredPending removes pending reservations whose hold has run out
// and returns how many were removed.
func (s *ReservationService) SweepExpiredPending(ctx context.Context) int {
	if s.pendingTTL <= 0 {
		return 0
	}
	cutoff := model.At(s.clock()).Add(-s.pendingTTL)
	removed := 0
	for _, r := range s.store.ExpiredPending(cutoff) {
		if s.expire(ctx, r.User, r.LotID, r.ID) {
			removed++
		}
	}
	return removed
}

func (s *ReservationService) expire(ctx context.Context, user, lotID, id string) bool {
	r, now, ok := s.expireLocked(user, lotID, id)
	if ok {
		s.publish(ctx, queue.EventExpired, r, now)
	}
	return ok
}

func (s *ReservationService) expireLocked(user, lotID, id string) (model.Reservation, time.Time, bool) {
	defer s.userLocks.Lock(user)()
	defer s.lotLocks.Lock(lotID)()

	now := s.clock()
	r, err := s.store.Get(id)
	if err != nil || r.Status != model.StatusPending || !s.expired(r, now) {
		return model.Reservation{}, now, false
	}
	if _, err := s.store.Remove(id); err != nil {
		return model.Reservation{}, now, false
	}
	return r, now, true
}

func (s *ReservationService) lot(id string) (model.Lot, error) {
	lot, err := s.lots.Get(id)
	if err != nil {
		return model.Lot{}, ErrLotNotFound
	}
	return lot, nil
}

// candidates returns the records an overlap check for user on lotID must
// see: the user's reservations in every lot and everything in the lot.
// Callers hold both locks.
func (s *ReservationService) candidates(user, lotID string, now time.Time) []model.Reservation {
	rs := s.store.ListUser(user)
	for _, r := range s.store.ListLot(lotID) {
		if r.User != user {
			rs = append(rs, r)
		}
	}
	return s.live(rs, now)
}

func (s *ReservationService) expired(r model.Reservation, now time.Time) bool {
	return s.pendingTTL > 0 && r.Status == model.StatusPending &&
		r.CreatedAt.Add(s.pendingTTL) <= model.At(now)
}

// live drops pending reservations whose hold has expired but which the
// sweeper has not removed yet.
func (s *ReservationService) live(rs []model.Reservation, now time.Time) []model.Reservation {
	out := make([]model.Reservation, 0, len(rs))
	for _, r := range rs {
		if !s.expired(r, now) {
			out = append(out, r)
		}
	}
	return out
}

func (s *ReservationService) publish(ctx context.Context, typ string, r model.Reservation, at time.Time) {
	ev := queue.NewReservationEvent(typ, r, s.loc, at)
	if err := s.events.Publish(context.WithoutCancel(ctx), ev); err != nil {
		log.Printf("reservation event %s for %s not published: %v", typ, r.ID, err)
	}
}

func conflictErr(c booking.Conflict) error {
	switch c {
	case booking.UserConflict:
		return ErrUserOverlap
	case booking.SpotConflict:
		return ErrSpotTaken
	}
	return nil
}
