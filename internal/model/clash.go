package model

import (
	"sort"

	"github.com/paulmach/orb"
)

// ClashResult describes the overlap volume of two buildings
type ClashResult struct {
	BuildingIDs [2]string // Always in ascending order
	Elevation   float64   // Bottom of the overlap band
	Height      float64   // Thickness of the overlap band
	Geometry    orb.Ring  // Canonical intersection ring
}

// SortedPair returns the two ids in ascending lexicographic order
func SortedPair(a, b string) [2]string {
	ids := []string{a, b}
	sort.Strings(ids)
	return [2]string{ids[0], ids[1]}
}
