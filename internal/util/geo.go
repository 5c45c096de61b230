package util

import (
	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"
	"github.com/paulmach/orb"
)

const earthRadiusMeters = 6371000.0

// DistanceMeters returns the great circle distance between two lon/lat points
func DistanceMeters(a, b orb.Point) float64 {
	pa := s2.PointFromLatLng(s2.LatLngFromDegrees(a[1], a[0]))
	pb := s2.PointFromLatLng(s2.LatLngFromDegrees(b[1], b[0]))

	angle := s1.Angle(s2.ChordAngleBetweenPoints(pa, pb).Angle())
	return angle.Radians() * earthRadiusMeters
}

// ToLocalMeters maps a lon/lat point to east/north metres from origin.
// Accurate for the few kilometres a building batch spans.
func ToLocalMeters(origin, p orb.Point) orb.Point {
	east := DistanceMeters(origin, orb.Point{p[0], origin[1]})
	if p[0] < origin[0] {
		east = -east
	}
	north := DistanceMeters(origin, orb.Point{origin[0], p[1]})
	if p[1] < origin[1] {
		north = -north
	}
	return orb.Point{east, north}
}

// RingToLocalMeters maps every vertex of ring with ToLocalMeters
func RingToLocalMeters(origin orb.Point, ring orb.Ring) orb.Ring {
	out := make(orb.Ring, len(ring))
	for i, p := range ring {
		out[i] = ToLocalMeters(origin, p)
	}
	return out
}
