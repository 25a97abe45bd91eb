package repository

import (
	"sort"
	"sync"

	"github.com/iliyamo/parking-reservation/internal/model"
)

// ReservationRepo is the in-memory reservation store: lot id to the lot's
// reservations ordered by start time, plus an id index.  Every method is
// safe for concurrent use; callers that need check-then-act atomicity
// across several calls must serialise them themselves.
//
// Returned slices and records are copies; mutating them does not affect
// the store.
type ReservationRepo struct {
	mu    sync.RWMutex
	byLot map[string][]model.Reservation
	lotOf map[string]string // reservation id -> lot id
}

// NewReservationRepo returns an empty store.
func NewReservationRepo() *ReservationRepo {
	return &ReservationRepo{
		byLot: make(map[string][]model.Reservation),
		lotOf: make(map[string]string),
	}
}

// ListLot returns the reservations of one lot ordered by start.
func (r *ReservationRepo) ListLot(lotID string) []model.Reservation {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]model.Reservation(nil), r.byLot[lotID]...)
}

// ListUser returns every reservation of user across all lots, ordered by
// start time.
func (r *ReservationRepo) ListUser(user string) []model.Reservation {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []model.Reservation
	for _, rs := range r.byLot {
		for _, res := range rs {
			if res.User == user {
				out = append(out, res)
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Start != out[j].Start {
			return out[i].Start < out[j].Start
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// ListAll returns every reservation ordered by lot id, then start.
func (r *ReservationRepo) ListAll() []model.Reservation {
	r.mu.RLock()
	defer r.mu.RUnlock()
	lots := make([]string, 0, len(r.byLot))
	for id := range r.byLot {
		lots = append(lots, id)
	}
	sort.Strings(lots)
	var out []model.Reservation
	for _, id := range lots {
		out = append(out, r.byLot[id]...)
	}
	return out
}

// Get returns the reservation with the given id or ErrNotFound.
func (r *ReservationRepo) Get(id string) (model.Reservation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	lotID, ok := r.lotOf[id]
	if !ok {
		return model.Reservation{}, ErrNotFound
	}
	i := indexOf(r.byLot[lotID], id)
	return r.byLot[lotID][i], nil
}

// Append stores a new reservation, keeping the lot ordered by start.  It
// fails with ErrConflict when the id is already present.
func (r *ReservationRepo) Append(res model.Reservation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.lotOf[res.ID]; dup {
		return ErrConflict
	}
	rs := r.byLot[res.LotID]
	i := sort.Search(len(rs), func(i int) bool { return rs[i].Start > res.Start })
	rs = append(rs, model.Reservation{})
	copy(rs[i+1:], rs[i:])
	rs[i] = res
	r.byLot[res.LotID] = rs
	r.lotOf[res.ID] = res.LotID
	return nil
}

// Update replaces a stored reservation.  Lot, spot and interval are part
// of the record's identity in the lot ordering and must not change.
func (r *ReservationRepo) Update(res model.Reservation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	lotID, ok := r.lotOf[res.ID]
	if !ok || lotID != res.LotID {
		return ErrNotFound
	}
	i := indexOf(r.byLot[lotID], res.ID)
	cur := r.byLot[lotID][i]
	if cur.SpotID != res.SpotID || cur.Start != res.Start || cur.End != res.End {
		return ErrConflict
	}
	r.byLot[lotID][i] = res
	return nil
}

// Remove deletes the reservation and returns what was stored.
func (r *ReservationRepo) Remove(id string) (model.Reservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	lotID, ok := r.lotOf[id]
	if !ok {
		return model.Reservation{}, ErrNotFound
	}
	rs := r.byLot[lotID]
	i := indexOf(rs, id)
	res := rs[i]
	rs = append(rs[:i], rs[i+1:]...)
	if len(rs) == 0 {
		delete(r.byLot, lotID)
	} else {
		r.byLot[lotID] = rs
	}
	delete(r.lotOf, id)
	return res, nil
}

// ExpiredPending lists pending reservations created at or before cutoff.
func (r *ReservationRepo) ExpiredPending(cutoff model.Timestamp) []model.Reservation {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []model.Reservation
	for _, rs := range r.byLot {
		for _, res := range rs {
			if res.Status == model.StatusPending && res.CreatedAt <= cutoff {
				out = append(out, res)
			}
		}
	}
	return out
}

// indexOf expects id to be present; the id index guarantees it.
func indexOf(rs []model.Reservation, id string) int {
	for i := range rs {
		if rs[i].ID == id {
			return i
		}
	}
	return -1
}
