package clash

import (
	"fmt"
	"testing"

	"buildingclash/internal/model"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geos"
)

func building(id string, elevation, height float64, ring orb.Ring) model.BuildingFeature {
	return model.BuildingFeature{ID: id, Footprint: ring, Elevation: elevation, Height: height}
}

func square(x, y, size float64) orb.Ring {
	return orb.Ring{{x, y}, {x + size, y}, {x + size, y + size}, {x, y + size}, {x, y}}
}

func TestDetectReferenceScenario(t *testing.T) {
	features := []model.BuildingFeature{
		building("building_0", 0, 4, orb.Ring{{20, 0}, {20, 60}, {0, 60}, {0, 0}, {20, 0}}),
		building("building_1", 2, 4, orb.Ring{{60, 60}, {0, 60}, {0, 40}, {60, 40}, {60, 60}}),
	}

	clashes, err := NewDetector(1).Detect(features)
	require.NoError(t, err)
	require.Len(t, clashes, 1)

	c := clashes[0]
	assert.Equal(t, [2]string{"building_0", "building_1"}, c.BuildingIDs)
	assert.Equal(t, 2.0, c.Elevation)
	assert.Equal(t, 2.0, c.Height)
	assert.Equal(t, orb.Ring{{0, 40}, {20, 40}, {20, 60}, {0, 60}, {0, 40}}, c.Geometry)
}

func TestDetectSkips(t *testing.T) {
	tests := []struct {
		name string
		a, b model.BuildingFeature
	}{
		{
			name: "disjoint footprints",
			a:    building("a", 0, 10, square(0, 0, 1)),
			b:    building("b", 0, 10, square(5, 5, 1)),
		},
		{
			name: "shared edge only",
			a:    building("a", 0, 10, square(0, 0, 1)),
			b:    building("b", 0, 10, square(1, 0, 1)),
		},
		{
			name: "shared corner only",
			a:    building("a", 0, 10, square(0, 0, 1)),
			b:    building("b", 0, 10, square(1, 1, 1)),
		},
		{
			name: "b above a",
			a:    building("a", 0, 3, square(0, 0, 2)),
			b:    building("b", 5, 3, square(1, 1, 2)),
		},
		{
			name: "a above b",
			a:    building("a", 10, 1, square(0, 0, 2)),
			b:    building("b", 0, 2, square(1, 1, 2)),
		},
		{
			name: "b stacked exactly on a",
			a:    building("a", 0, 3, square(0, 0, 2)),
			b:    building("b", 3, 3, square(1, 1, 2)),
		},
		{
			name: "zero height",
			a:    building("a", 1, 0, square(0, 0, 2)),
			b:    building("b", 0, 5, square(1, 1, 2)),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clashes, err := NewDetector(1).Detect([]model.BuildingFeature{tt.a, tt.b})
			require.NoError(t, err)
			assert.Empty(t, clashes)
			assert.NotNil(t, clashes)
		})
	}
}

func TestDetectSortsBuildingIDs(t *testing.T) {
	features := []model.BuildingFeature{
		building("zeta", 0, 5, square(0, 0, 2)),
		building("alpha", 1, 5, square(1, 1, 2)),
	}

	clashes, err := NewDetector(1).Detect(features)
	require.NoError(t, err)
	require.Len(t, clashes, 1)
	assert.Equal(t, [2]string{"alpha", "zeta"}, clashes[0].BuildingIDs)
	assert.Equal(t, 1.0, clashes[0].Elevation)
	assert.Equal(t, 4.0, clashes[0].Height)
	assert.Equal(t, orb.Ring{{1, 1}, {2, 1}, {2, 2}, {1, 2}, {1, 1}}, clashes[0].Geometry)
}

func TestDetectContainedFootprint(t *testing.T) {
	features := []model.BuildingFeature{
		building("outer", 0, 10, square(0, 0, 10)),
		building("inner", 2, 3, orb.Ring{{2, 2}, {2, 4}, {4, 4}, {4, 2}, {2, 2}}),
	}

	clashes, err := NewDetector(1).Detect(features)
	require.NoError(t, err)
	require.Len(t, clashes, 1)
	assert.Equal(t, orb.Ring{{2, 2}, {4, 2}, {4, 4}, {2, 4}, {2, 2}}, clashes[0].Geometry)
	assert.Equal(t, 2.0, clashes[0].Elevation)
	assert.Equal(t, 3.0, clashes[0].Height)
}

func TestDetectKeepsLargestPart(t *testing.T) {
	// The bar crosses both arms of the U: a 2x1 part on the left and a 5x1
	// part on the right
	features := []model.BuildingFeature{
		building("u", 0, 10, orb.Ring{{0, 0}, {10, 0}, {10, 10}, {5, 10}, {5, 2}, {2, 2}, {2, 10}, {0, 10}, {0, 0}}),
		building("bar", 3, 4, orb.Ring{{-1, 5}, {11, 5}, {11, 6}, {-1, 6}, {-1, 5}}),
	}

	clashes, err := NewDetector(1).Detect(features)
	require.NoError(t, err)
	require.Len(t, clashes, 1)
	assert.Equal(t, [2]string{"bar", "u"}, clashes[0].BuildingIDs)
	assert.Equal(t, 3.0, clashes[0].Elevation)
	assert.Equal(t, 4.0, clashes[0].Height)
	assert.Equal(t, orb.Ring{{5, 5}, {10, 5}, {10, 6}, {5, 6}, {5, 5}}, clashes[0].Geometry)
}

func TestLargestRing(t *testing.T) {
	tests := []struct {
		name   string
		wkt    string
		want   orb.Ring
		wantOK bool
	}{
		{
			name:   "polygon",
			wkt:    "POLYGON ((0 0, 1 0, 1 1, 0 1, 0 0))",
			want:   orb.Ring{{0, 0}, {1, 0}, {1, 1}, {0, 1}, {0, 0}},
			wantOK: true,
		},
		{
			name:   "larger second part",
			wkt:    "MULTIPOLYGON (((0 0, 1 0, 1 1, 0 1, 0 0)), ((3 0, 6 0, 6 3, 3 3, 3 0)))",
			want:   orb.Ring{{3, 0}, {6, 0}, {6, 3}, {3, 3}, {3, 0}},
			wantOK: true,
		},
		{
			name:   "equal areas keep the first part",
			wkt:    "MULTIPOLYGON (((10 0, 12 0, 12 2, 10 2, 10 0)), ((0 0, 2 0, 2 2, 0 2, 0 0)))",
			want:   orb.Ring{{10, 0}, {12, 0}, {12, 2}, {10, 2}, {10, 0}},
			wantOK: true,
		},
		{
			name:   "collection ignores lines",
			wkt:    "GEOMETRYCOLLECTION (LINESTRING (0 0, 50 50), POLYGON ((0 0, 1 0, 1 1, 0 1, 0 0)))",
			want:   orb.Ring{{0, 0}, {1, 0}, {1, 1}, {0, 1}, {0, 0}},
			wantOK: true,
		},
		{
			name: "line only",
			wkt:  "LINESTRING (0 0, 1 1)",
		},
		{
			name: "collection without polygons",
			wkt:  "GEOMETRYCOLLECTION (POINT (1 1), LINESTRING (0 0, 1 1))",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := geos.NewGeomFromWKT(tt.wkt)
			require.NoError(t, err)
			defer g.Destroy()

			ring, ok := largestRing(g)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, ring)
			}
		})
	}
}

func TestDetectPairOrder(t *testing.T) {
	// Three mutually overlapping squares produce (0,1), (0,2), (1,2)
	features := []model.BuildingFeature{
		building("c", 0, 5, square(0, 0, 4)),
		building("b", 0, 5, square(1, 1, 4)),
		building("a", 0, 5, square(2, 2, 4)),
	}

	clashes, err := NewDetector(1).Detect(features)
	require.NoError(t, err)
	require.Len(t, clashes, 3)
	assert.Equal(t, [2]string{"b", "c"}, clashes[0].BuildingIDs)
	assert.Equal(t, [2]string{"a", "c"}, clashes[1].BuildingIDs)
	assert.Equal(t, [2]string{"a", "b"}, clashes[2].BuildingIDs)
}

func TestDetectConcurrentMatchesSequential(t *testing.T) {
	var features []model.BuildingFeature
	for i := 0; i < 12; i++ {
		x := float64(i%4) * 1.5
		y := float64(i/4) * 1.5
		features = append(features, building(fmt.Sprintf("b%02d", i), float64(i%3), 4, square(x, y, 2)))
	}

	sequential, err := NewDetector(1).Detect(features)
	require.NoError(t, err)
	require.NotEmpty(t, sequential)

	for _, n := range []int{2, 4, 16} {
		concurrent, err := NewDetector(n).Detect(features)
		require.NoError(t, err)
		assert.Equal(t, sequential, concurrent, "concurrency %d", n)
	}
}

func TestDetectFewerThanTwoBuildings(t *testing.T) {
	for _, features := range [][]model.BuildingFeature{nil, {building("a", 0, 1, square(0, 0, 1))}} {
		clashes, err := NewDetector(4).Detect(features)
		require.NoError(t, err)
		assert.Empty(t, clashes)
	}
}

func TestVerticalOverlap(t *testing.T) {
	tests := []struct {
		name                      string
		a, b                      model.BuildingFeature
		wantElevation, wantHeight float64
	}{
		{name: "partial", a: building("a", 0, 4, nil), b: building("b", 2, 4, nil), wantElevation: 2, wantHeight: 2},
		{name: "contained", a: building("a", 0, 10, nil), b: building("b", 3, 2, nil), wantElevation: 3, wantHeight: 2},
		{name: "disjoint", a: building("a", 0, 1, nil), b: building("b", 5, 1, nil), wantElevation: 5, wantHeight: 0},
		{name: "negative base", a: building("a", -3, 4, nil), b: building("b", -1, 1, nil), wantElevation: -1, wantHeight: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			elevation, height := VerticalOverlap(&tt.a, &tt.b)
			assert.Equal(t, tt.wantElevation, elevation)
			assert.Equal(t, tt.wantHeight, height)

			elevation, height = VerticalOverlap(&tt.b, &tt.a)
			assert.Equal(t, tt.wantElevation, elevation, "symmetric")
			assert.Equal(t, tt.wantHeight, height, "symmetric")
		})
	}
}
