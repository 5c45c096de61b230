package model

import (
	"github.com/paulmach/orb"
)

// BuildingFeature is a validated building footprint extruded vertically
type BuildingFeature struct {
	ID        string   // Unique within one request
	Footprint orb.Ring // Closed outer ring, first point equals last
	Elevation float64  // Base height of the building
	Height    float64  // Vertical extent above Elevation
}

// Top returns the elevation of the building roof
func (b *BuildingFeature) Top() float64 {
	return b.Elevation + b.Height
}

// Coordinates returns the footprint in the [][][]float64 layout expected by GEOS
func (b *BuildingFeature) Coordinates() [][][]float64 {
	ring := make([][]float64, len(b.Footprint))
	for i, p := range b.Footprint {
		ring[i] = []float64{p[0], p[1]}
	}
	return [][][]float64{ring}
}
