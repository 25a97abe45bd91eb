package model

// Lot is a parking facility loaded from the static catalog.  Lots are never
// mutated after startup.
//
// Fields:
//  ID              : catalog key (e.g. "gangnam").
//  Name            : display name.
//  Image           : floor plan image path served by the frontend.
//  BasePricePerMin : price per reserved minute.
//  TrafficLevel    : surrounding traffic, 1 (quiet) to 5 (congested).
//  Spots           : reservable spots of the lot.
//  MapCoords       : pixel position of the lot on the search map.
type Lot struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Image           string `json:"image,omitempty"`
	BasePricePerMin int    `json:"base_price_per_min"`
	TrafficLevel    int    `json:"traffic_level"`
	Spots           []Spot `json:"spots"`
	MapCoords       [2]int `json:"map_coords"`
}

// Spot is an individually reservable unit of a lot.  Density ranges from 1
// (roomy) to 3 (tight).
type Spot struct {
	ID       int    `json:"id"`
	Coords   string `json:"coords,omitempty"`
	Density  int    `json:"spot_density"`
	Disabled bool   `json:"is_disabled,omitempty"`
}

// Spot returns the spot with the given id.
func (l Lot) Spot(id int) (Spot, bool) {
	for _, s := range l.Spots {
		if s.ID == id {
			return s, true
		}
	}
	return Spot{}, false
}

// SearchLocation maps a search keyword to a map image and the lots shown on it.
type SearchLocation struct {
	Key       string   `json:"key"`
	Image     string   `json:"image"`
	LotIDs    []string `json:"lots"`
	MapWidth  int      `json:"map_width"`
	MapHeight int      `json:"map_height"`
}
