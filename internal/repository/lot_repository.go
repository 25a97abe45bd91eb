package repository

import (
	"strings"

	"github.com/iliyamo/parking-reservation/internal/model"
)

// LotRepo serves the static lot catalog.  It is read-only after
// construction and therefore safe for concurrent use without locking.
type LotRepo struct {
	lots      []model.Lot
	byID      map[string]model.Lot
	locations map[string]model.SearchLocation
	fallback  string
}

// NewLotRepo indexes lots and search locations.  defaultLocation is used
// when a search query is empty or unknown.
func NewLotRepo(lots []model.Lot, locations []model.SearchLocation, defaultLocation string) *LotRepo {
	r := &LotRepo{
		lots:      lots,
		byID:      make(map[string]model.Lot, len(lots)),
		locations: make(map[string]model.SearchLocation, len(locations)),
		fallback:  defaultLocation,
	}
	for _, l := range lots {
		r.byID[l.ID] = l
	}
	for _, loc := range locations {
		r.locations[strings.ToLower(loc.Key)] = loc
	}
	return r
}

// Get returns the lot with the given id or ErrNotFound.
func (r *LotRepo) Get(id string) (model.Lot, error) {
	l, ok := r.byID[id]
	if !ok {
		return model.Lot{}, ErrNotFound
	}
	return l, nil
}

// List returns every lot in catalog order.
func (r *LotRepo) List() []model.Lot {
	out := make([]model.Lot, len(r.lots))
	copy(out, r.lots)
	return out
}

// Search resolves a search keyword (case-insensitive) to a location and
// its lots.  An empty or unknown query falls back to the default
// location; found is false only when a non-empty query matched nothing.
func (r *LotRepo) Search(query string) (loc model.SearchLocation, lots []model.Lot, found bool) {
	q := strings.ToLower(strings.TrimSpace(query))
	loc, found = r.locations[q]
	if !found {
		loc = r.locations[strings.ToLower(r.fallback)]
		if q == "" {
			found = true
		}
	}
	for _, id := range loc.LotIDs {
		if l, ok := r.byID[id]; ok {
			lots = append(lots, l)
		}
	}
	return loc, lots, found
}
