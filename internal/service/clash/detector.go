package clash

import (
	"errors"
	"fmt"

	"buildingclash/internal/model"

	"github.com/paulmach/orb"
	"github.com/sourcegraph/conc/iter"
	"github.com/twpayne/go-geos"
)

// ErrGeometry wraps failures raised by the geometry engine
var ErrGeometry = errors.New("geometry operation failed")

// Detector finds clashes between every unordered pair of buildings
type Detector struct {
	concurrency int
}

type pair struct {
	i, j int
}

type pairOutcome struct {
	clash *model.ClashResult
	err   error
}

// NewDetector creates a detector. Pairs are evaluated on up to concurrency
// goroutines; values below 2 evaluate them sequentially. Output order is the
// row-major pair order either way.
func NewDetector(concurrency int) *Detector {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Detector{concurrency: concurrency}
}

// Detect returns one ClashResult per clashing pair, ordered by (i, j) with i < j
func (d *Detector) Detect(features []model.BuildingFeature) ([]model.ClashResult, error) {
	geoms, err := buildGeoms(features)
	defer func() {
		for _, g := range geoms {
			if g != nil {
				g.Destroy()
			}
		}
	}()
	if err != nil {
		return nil, err
	}

	pairs := make([]pair, 0, len(features)*(len(features)-1)/2)
	for i := 0; i < len(features); i++ {
		for j := i + 1; j < len(features); j++ {
			pairs = append(pairs, pair{i: i, j: j})
		}
	}

	evaluate := func(p *pair) pairOutcome {
		return evaluatePair(&features[p.i], &features[p.j], geoms[p.i], geoms[p.j])
	}

	var outcomes []pairOutcome
	if d.concurrency > 1 && len(pairs) > 1 {
		mapper := iter.Mapper[pair, pairOutcome]{MaxGoroutines: d.concurrency}
		outcomes = mapper.Map(pairs, evaluate)
	} else {
		outcomes = make([]pairOutcome, len(pairs))
		for k := range pairs {
			outcomes[k] = evaluate(&pairs[k])
		}
	}

	results := make([]model.ClashResult, 0)
	for _, o := range outcomes {
		if o.err != nil {
			return nil, o.err
		}
		if o.clash != nil {
			results = append(results, *o.clash)
		}
	}
	return results, nil
}

func buildGeoms(features []model.BuildingFeature) (geoms []*geos.Geom, err error) {
	geoms = make([]*geos.Geom, len(features))
	for i := range features {
		func() {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("%w: footprint of building %q: %v", ErrGeometry, features[i].ID, r)
				}
			}()
			geoms[i] = geos.NewPolygon(features[i].Coordinates())
		}()
		if err != nil {
			return geoms, err
		}
	}
	return geoms, nil
}

// evaluatePair computes the clash of a and b, if any
func evaluatePair(a, b *model.BuildingFeature, ga, gb *geos.Geom) (out pairOutcome) {
	defer func() {
		if r := recover(); r != nil {
			out = pairOutcome{err: fmt.Errorf("%w: buildings %q and %q: %v", ErrGeometry, a.ID, b.ID, r)}
		}
	}()

	intersection := ga.Intersection(gb)
	if intersection == nil {
		return pairOutcome{}
	}
	defer intersection.Destroy()

	if intersection.IsEmpty() || intersection.Area() <= 0 {
		return pairOutcome{}
	}

	elevation, height := VerticalOverlap(a, b)
	if height <= 0 {
		return pairOutcome{}
	}

	ring, ok := largestRing(intersection)
	if !ok {
		return pairOutcome{}
	}

	return pairOutcome{clash: &model.ClashResult{
		BuildingIDs: model.SortedPair(a.ID, b.ID),
		Elevation:   elevation,
		Height:      height,
		Geometry:    CanonicalizeRing(ring),
	}}
}

// VerticalOverlap returns the bottom and thickness of the band shared by a and b.
// The thickness is zero when the spans do not overlap.
func VerticalOverlap(a, b *model.BuildingFeature) (elevation, height float64) {
	elevation = max(a.Elevation, b.Elevation)
	height = max(0, min(a.Top(), b.Top())-elevation)
	return elevation, height
}

// largestRing returns the exterior ring of the largest polygonal part of g.
// Equal areas resolve to the first part GEOS reports.
func largestRing(g *geos.Geom) (orb.Ring, bool) {
	switch g.TypeID() {
	case geos.TypeIDPolygon:
		return exteriorRing(g), true
	case geos.TypeIDMultiPolygon, geos.TypeIDGeometryCollection:
		var best *geos.Geom
		bestArea := 0.0
		for n := 0; n < g.NumGeometries(); n++ {
			part := g.Geometry(n)
			if part.TypeID() != geos.TypeIDPolygon {
				continue
			}
			if area := part.Area(); best == nil || area > bestArea {
				best, bestArea = part, area
			}
		}
		if best == nil || bestArea <= 0 {
			return nil, false
		}
		return exteriorRing(best), true
	default:
		return nil, false
	}
}

func exteriorRing(polygon *geos.Geom) orb.Ring {
	seq := polygon.ExteriorRing().CoordSeq()
	ring := make(orb.Ring, seq.Size())
	for j := range seq.Size() {
		ring[j] = orb.Point{seq.X(j), seq.Y(j)}
	}
	return ring
}
