package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/iliyamo/parking-reservation/internal/model"
)

// Catalog is the static lot fixture: lots with their spots and the search
// locations that group them on a map.  It is loaded once at startup.
type Catalog struct {
	DefaultLocation string                 `json:"default_location"`
	Lots            []model.Lot            `json:"lots"`
	Locations       []model.SearchLocation `json:"locations"`
}

// LoadCatalog reads a JSON catalog from path.  An empty path returns the
// built-in catalog.
func LoadCatalog(path string) (Catalog, error) {
	if path == "" {
		return DefaultCatalog(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("read catalog: %w", err)
	}
	var c Catalog
	if err := json.Unmarshal(raw, &c); err != nil {
		return Catalog{}, fmt.Errorf("decode catalog %s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return Catalog{}, fmt.Errorf("catalog %s: %w", path, err)
	}
	return c, nil
}

// Validate checks the ranges the points and pricing rules rely on.
func (c Catalog) Validate() error {
	if len(c.Lots) == 0 {
		return fmt.Errorf("no lots")
	}
	lots := make(map[string]bool, len(c.Lots))
	for _, l := range c.Lots {
		if l.ID == "" {
			return fmt.Errorf("lot without id")
		}
		if lots[l.ID] {
			return fmt.Errorf("duplicate lot %q", l.ID)
		}
		lots[l.ID] = true
		if l.TrafficLevel < 1 || l.TrafficLevel > 5 {
			return fmt.Errorf("lot %q: traffic_level %d out of 1..5", l.ID, l.TrafficLevel)
		}
		if l.BasePricePerMin < 0 {
			return fmt.Errorf("lot %q: negative base_price_per_min", l.ID)
		}
		spots := make(map[int]bool, len(l.Spots))
		for _, s := range l.Spots {
			if s.ID <= 0 {
				return fmt.Errorf("lot %q: spot id %d must be positive", l.ID, s.ID)
			}
			if spots[s.ID] {
				return fmt.Errorf("lot %q: duplicate spot %d", l.ID, s.ID)
			}
			spots[s.ID] = true
			if s.Density < 1 || s.Density > 3 {
				return fmt.Errorf("lot %q spot %d: spot_density %d out of 1..3", l.ID, s.ID, s.Density)
			}
		}
	}
	keys := make(map[string]bool, len(c.Locations))
	for _, loc := range c.Locations {
		keys[loc.Key] = true
		for _, id := range loc.LotIDs {
			if !lots[id] {
				return fmt.Errorf("location %q: unknown lot %q", loc.Key, id)
			}
		}
	}
	if c.DefaultLocation != "" && !keys[c.DefaultLocation] {
		return fmt.Errorf("default_location %q is not a location", c.DefaultLocation)
	}
	return nil
}

// DefaultCatalog returns the three demo lots around Seoul.
func DefaultCatalog() Catalog {
	return Catalog{
		DefaultLocation: "Seoul",
		Lots: []model.Lot{
			{
				ID:              "gangnam",
				Name:            "Gangnam Station Exit 1 Parking",
				Image:           "/static/images/gangnam_parking.png",
				BasePricePerMin: 50,
				TrafficLevel:    3,
				MapCoords:       [2]int{300, 250},
				Spots: []model.Spot{
					{ID: 1, Coords: "37,62,106,128", Density: 1},
					{ID: 2, Coords: "109,62,176,128", Density: 2},
					{ID: 3, Coords: "180,62,246,128", Density: 3},
					{ID: 4, Coords: "37,132,106,198", Density: 1},
					{ID: 5, Coords: "109,132,176,198", Density: 2},
					{ID: 6, Coords: "180,132,246,198", Density: 3},
					{ID: 7, Coords: "37,202,106,268", Density: 1},
					{ID: 8, Coords: "109,202,176,268", Density: 2},
					{ID: 9, Coords: "180,202,246,268", Density: 1},
					{ID: 10, Coords: "37,272,106,338", Density: 2},
					{ID: 11, Coords: "260,50,310,120", Density: 3},
					{ID: 12, Coords: "260,125,310,195", Density: 3},
					{ID: 13, Coords: "260,200,310,270", Density: 3},
					{ID: 14, Coords: "260,275,310,345", Density: 2},
					{ID: 15, Coords: "260,350,310,420", Density: 2},
					{ID: 16, Coords: "260,425,310,495", Density: 2},
					{ID: 17, Coords: "450,40,520,150", Density: 1},
					{ID: 18, Coords: "450,160,520,270", Density: 1},
					{ID: 19, Coords: "450,280,520,390", Density: 1},
					{ID: 20, Coords: "530,40,600,150", Density: 1},
					{ID: 21, Coords: "530,160,600,270", Density: 1},
					{ID: 22, Coords: "600,155,670,265", Density: 1, Disabled: true},
				},
			},
			{
				ID:              "hongdae",
				Name:            "Hongik Univ. Station Exit 2 Parking",
				Image:           "/static/images/hongdae_parking.png",
				BasePricePerMin: 40,
				TrafficLevel:    4,
				MapCoords:       [2]int{150, 100},
				Spots: []model.Spot{
					{ID: 1, Coords: "50,50,100,100", Density: 2},
					{ID: 2, Coords: "110,50,160,100", Density: 3},
					{ID: 3, Coords: "170,50,220,100", Density: 2},
					{ID: 4, Coords: "50,110,100,160", Density: 1},
					{ID: 5, Coords: "110,110,160,160", Density: 2},
				},
			},
			{
				ID:              "seoul_station",
				Name:            "Seoul Station Public Parking",
				Image:           "/static/images/seoul_station_parking.png",
				BasePricePerMin: 60,
				TrafficLevel:    2,
				MapCoords:       [2]int{200, 300},
				Spots: []model.Spot{
					{ID: 1, Coords: "50,50,100,100", Density: 1},
					{ID: 2, Coords: "110,50,160,100", Density: 1},
					{ID: 3, Coords: "170,50,220,100", Density: 2},
					{ID: 4, Coords: "50,110,100,160", Density: 3},
					{ID: 5, Coords: "110,110,160,160", Density: 2},
					{ID: 6, Coords: "170,110,220,160", Density: 1},
					{ID: 7, Coords: "50,170,100,220", Density: 2},
					{ID: 8, Coords: "110,170,160,220", Density: 3},
					{ID: 9, Coords: "170,170,220,220", Density: 1},
					{ID: 10, Coords: "50,230,100,280", Density: 2},
				},
			},
		},
		Locations: []model.SearchLocation{
			{Key: "Seoul", Image: "/static/images/map_seoul_entire.jpg", LotIDs: []string{"gangnam", "hongdae", "seoul_station"}, MapWidth: 900, MapHeight: 500},
			{Key: "A", Image: "/static/images/map_seoul_station.jpg", LotIDs: []string{"seoul_station"}, MapWidth: 600, MapHeight: 400},
			{Key: "B", Image: "/static/images/map_gangnam.jpg", LotIDs: []string{"gangnam", "hongdae"}, MapWidth: 700, MapHeight: 500},
		},
	}
}
