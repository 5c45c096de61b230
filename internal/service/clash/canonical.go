package clash

import (
	"math"

	"github.com/paulmach/orb"
)

// CoordinatePrecision is the number of decimal digits kept in output rings
const CoordinatePrecision = 6

// CanonicalizeRing normalizes a ring so geometrically identical rings always
// serialize identically: counter-clockwise, rounded, closed, and starting at
// the vertex with the smallest (y, x). The input is not modified.
func CanonicalizeRing(ring orb.Ring) orb.Ring {
	if len(ring) == 0 {
		return orb.Ring{}
	}

	out := make(orb.Ring, len(ring), len(ring)+1)
	copy(out, ring)

	if out.Orientation() == orb.CW {
		out.Reverse()
	}

	for i, p := range out {
		out[i] = orb.Point{roundFloat(p[0], CoordinatePrecision), roundFloat(p[1], CoordinatePrecision)}
	}

	if !out.Closed() {
		out = append(out, out[0])
	}

	return rotateToStart(out)
}

// rotateToStart rotates a closed ring to begin at its minimal (y, x) vertex.
// The closing vertex is dropped from the head and re-appended at the new end,
// so the length is unchanged and the result is still closed.
func rotateToStart(ring orb.Ring) orb.Ring {
	start := 0
	for i := 1; i < len(ring); i++ {
		if lessYX(ring[i], ring[start]) {
			start = i
		}
	}
	// The last vertex duplicates the first, so a strict comparison never
	// selects it over index 0.
	if start == 0 {
		return ring
	}

	rotated := make(orb.Ring, 0, len(ring))
	rotated = append(rotated, ring[start:]...)
	rotated = append(rotated, ring[1:start+1]...)
	return rotated
}

func lessYX(a, b orb.Point) bool {
	if a[1] != b[1] {
		return a[1] < b[1]
	}
	return a[0] < b[0]
}

func roundFloat(val float64, precision uint) float64 {
	ratio := math.Pow(10, float64(precision))
	return math.Round(val*ratio) / ratio
}
