package booking

import "github.com/iliyamo/parking-reservation/internal/model"

// defaultDensity is used when a lot has no spots or the spot is unknown.
const defaultDensity = 2

// BasePointsPerHour is the traffic part of the hourly rate: quieter
// surroundings earn more.
func BasePointsPerHour(trafficLevel int) int {
	return max(0, 120-trafficLevel*20)
}

// DensityAdjustmentPerHour rewards roomy spots and penalises tight ones.
func DensityAdjustmentPerHour(density int) int {
	switch density {
	case 1:
		return 20
	case 3:
		return -10
	}
	return 0
}

// EcoPoints returns the points earned for parking durationMin minutes.  The
// hourly rate is prorated per minute and rounded half to even; the result is
// never negative.
func EcoPoints(trafficLevel, density, durationMin int) int {
	perHour := BasePointsPerHour(trafficLevel) + DensityAdjustmentPerHour(density)
	n := perHour * durationMin
	if n <= 0 {
		return 0
	}
	return roundHalfEven(n, 60)
}

// AverageDensity is the mean spot density of a lot, rounded half to even.
func AverageDensity(spots []model.Spot) int {
	if len(spots) == 0 {
		return defaultDensity
	}
	total := 0
	for _, s := range spots {
		total += s.Density
	}
	return roundHalfEven(total, len(spots))
}

// SpotDensity resolves the density used for a points estimate.  Spot id 0
// asks for the lot-wide average.
func SpotDensity(lot model.Lot, spotID int) int {
	if spotID == 0 {
		return AverageDensity(lot.Spots)
	}
	if s, ok := lot.Spot(spotID); ok {
		return s.Density
	}
	return defaultDensity
}

// roundHalfEven divides two non-negative integers and rounds the quotient to
// the nearest integer, ties to even.
func roundHalfEven(num, den int) int {
	q, r := num/den, num%den
	switch {
	case 2*r > den:
		q++
	case 2*r == den && q%2 == 1:
		q++
	}
	return q
}
