package routing

import (
	"fmt"
	"math"
)

const (
	EARTH_RADIUS_KM = 6371.0

	// Coordinates are compared after rounding to this many decimal places (~0.11 m).
	keyPrecision = 1e6
)

// Coordinate is a geographic position in degrees.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// coordKey is the 6-decimal fixed point form of a Coordinate. Two coordinates
// with the same key are the same point for node identity and path stitching.
type coordKey struct {
	lat int64
	lon int64
}

func (c Coordinate) key() coordKey {
	return coordKey{
		lat: int64(math.Round(c.Lat * keyPrecision)),
		lon: int64(math.Round(c.Lon * keyPrecision)),
	}
}

// Same reports whether c and o are equal once rounded to 6 decimals.
func (c Coordinate) Same(o Coordinate) bool {
	return c.key() == o.key()
}

// Valid reports whether c is finite and inside the WGS84 degree ranges.
func (c Coordinate) Valid() bool {
	if math.IsNaN(c.Lat) || math.IsNaN(c.Lon) || math.IsInf(c.Lat, 0) || math.IsInf(c.Lon, 0) {
		return false
	}
	return c.Lat >= -90 && c.Lat <= 90 && c.Lon >= -180 && c.Lon <= 180
}

// Pair returns the coordinate as a [lat, lon] pair, the wire order used by the HTTP API.
func (c Coordinate) Pair() [2]float64 {
	return [2]float64{c.Lat, c.Lon}
}

func (c Coordinate) String() string {
	return fmt.Sprintf("(%.6f, %.6f)", c.Lat, c.Lon)
}

func toRadians(degrees float64) float64 {
	return degrees * math.Pi / 180
}

// Haversine returns the great-circle distance between a and b in kilometres.
// Inputs are not validated.
func Haversine(a, b Coordinate) float64 {
	phi1 := toRadians(a.Lat)
	phi2 := toRadians(b.Lat)
	deltaPhi := toRadians(b.Lat - a.Lat)
	deltaLambda := toRadians(b.Lon - a.Lon)

	h := math.Sin(deltaPhi/2)*math.Sin(deltaPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*
			math.Sin(deltaLambda/2)*math.Sin(deltaLambda/2)
	if h > 1 {
		h = 1
	}
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return EARTH_RADIUS_KM * c
}
