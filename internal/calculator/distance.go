// Package calculator provides GPS distance calculations using the Haversine formula
// to compute great-circle distances between coordinates on a golf course, in yards.
package calculator

import (
	"math"
)

const (
	// EarthRadiusMeters is the Earth's mean radius in meters
	EarthRadiusMeters = 6371000.0

	// YardsPerMeter is the conversion factor applied to meter distances
	YardsPerMeter = 1.094
)

// Coordinate represents a GPS coordinate in decimal degrees
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Distance returns the great-circle distance between two coordinates
// in whole yards. Inputs are not validated; out-of-range values still
// produce a finite result.
func Distance(a, b Coordinate) int {
	meters := Haversine(a.Latitude, a.Longitude, b.Latitude, b.Longitude)
	return int(math.Round(meters * YardsPerMeter))
}

// Haversine calculates the great-circle distance in meters between two points
// on the Earth's surface given their latitudes and longitudes in decimal degrees
//
// Formula:
// a = sin²(Δφ/2) + cos φ1 ⋅ cos φ2 ⋅ sin²(Δλ/2)
// c = 2 ⋅ atan2( √a, √(1−a) )
// d = R ⋅ c
//
// where:
// φ is latitude, λ is longitude, R is earth's radius (6,371,000 m)
// Δφ is the difference in latitude, Δλ is the difference in longitude
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	lat1Rad := degreesToRadians(lat1)
	lat2Rad := degreesToRadians(lat2)

	deltaLat := degreesToRadians(lat2 - lat1)
	deltaLon := degreesToRadians(lon2 - lon1)

	a := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(deltaLon/2)*math.Sin(deltaLon/2)

	// Antipodal inputs can push a marginally above 1
	if a > 1 {
		a = 1
	}

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusMeters * c
}

// Midpoint returns the arithmetic midpoint of two coordinates. Golf holes are
// short enough that the planar midpoint is indistinguishable from the geodesic one.
func Midpoint(a, b Coordinate) Coordinate {
	return Coordinate{
		Latitude:  (a.Latitude + b.Latitude) / 2,
		Longitude: (a.Longitude + b.Longitude) / 2,
	}
}

// degreesToRadians converts degrees to radians
func degreesToRadians(degrees float64) float64 {
	return degrees * math.Pi / 180
}

// DistanceMetrics holds distance statistics for a path of coordinates
type DistanceMetrics struct {
	TotalYards  int
	MaxLegYards int
	MinLegYards int
	Legs        int
	AvgLegYards int
}

// CalculateMetrics computes leg statistics for an ordered path of coordinates.
// Each consecutive pair forms one leg; fewer than two points yields zero metrics.
func CalculateMetrics(path []Coordinate) DistanceMetrics {
	if len(path) < 2 {
		return DistanceMetrics{}
	}

	metrics := DistanceMetrics{
		Legs:        len(path) - 1,
		MinLegYards: math.MaxInt,
	}

	for i := 1; i < len(path); i++ {
		leg := Distance(path[i-1], path[i])
		metrics.TotalYards += leg

		if leg > metrics.MaxLegYards {
			metrics.MaxLegYards = leg
		}
		if leg < metrics.MinLegYards {
			metrics.MinLegYards = leg
		}
	}

	metrics.AvgLegYards = int(math.Round(float64(metrics.TotalYards) / float64(metrics.Legs)))

	return metrics
}
