package booking

import "github.com/iliyamo/parking-reservation/internal/model"

// Price is the cost of reserving durationMin minutes at basePerMin.
func Price(basePerMin, durationMin int) int {
	return basePerMin * durationMin
}

// Estimate is what a reservation would cost and earn.
type Estimate struct {
	Price  int `json:"price"`
	Points int `json:"points"`
}

// EstimateFor prices durationMin minutes on a lot spot.  Spot id 0 uses the
// lot's average density for the points part.
func EstimateFor(lot model.Lot, spotID, durationMin int) Estimate {
	return Estimate{
		Price:  Price(lot.BasePricePerMin, durationMin),
		Points: EcoPoints(lot.TrafficLevel, SpotDensity(lot, spotID), durationMin),
	}
}
