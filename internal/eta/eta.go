// Package eta estimates bus arrival times from straight-line distance.
package eta

import "math"

// earthRadiusKm is the mean earth radius used by the haversine formula.
const earthRadiusKm = 6371

// DefaultAvgSpeedKmh is the assumed average city driving speed.
const DefaultAvgSpeedKmh = 30

// DistanceKm computes the great-circle distance between two points
// using the haversine formula.
func DistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}

// Minutes estimates the arrival time in whole minutes for the given
// distance at avgSpeedKmh, rounding up. A non-positive speed falls
// back to DefaultAvgSpeedKmh.
func Minutes(distanceKm, avgSpeedKmh float64) int {
	if avgSpeedKmh <= 0 {
		avgSpeedKmh = DefaultAvgSpeedKmh
	}
	return int(math.Ceil(distanceKm / avgSpeedKmh * 60))
}

func toRad(deg float64) float64 {
	return deg * (math.Pi / 180)
}
