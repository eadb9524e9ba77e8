package geocode

import (
	"math"

	"go-aduan/types"
)

const earthRadiusKM = 6371.0

// DistanceKm calculates the great-circle distance between two points
// on the earth (specified in decimal degrees).
func DistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	radLat1 := lat1 * math.Pi / 180
	radLon1 := lon1 * math.Pi / 180
	radLat2 := lat2 * math.Pi / 180
	radLon2 := lon2 * math.Pi / 180

	deltaLat := radLat2 - radLat1
	deltaLon := radLon2 - radLon1

	a := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(radLat1)*math.Cos(radLat2)*
			math.Sin(deltaLon/2)*math.Sin(deltaLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKM * c
}

// Between is DistanceKm for two coordinate values.
func Between(a, b types.Coordinates) float64 {
	return DistanceKm(a.Lat, a.Lng, b.Lat, b.Lng)
}
