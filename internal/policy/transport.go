package policy

import "math"

const earthRadiusKm = 6371.0

// HaversineKm returns the great-circle distance in kilometres between two
// coordinates.
func HaversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLon := toRadians(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}

// TransportFee computes the transport fee in cents for the distance between
// the provider and the customer at the configured per-kilometre rate.
func TransportFee(provLat, provLon, custLat, custLon float64, perKmCents int64) int64 {
	km := HaversineKm(provLat, provLon, custLat, custLon)
	return roundHalfUp(km * float64(perKmCents))
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
