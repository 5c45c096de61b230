package main

import (
	"encoding/json"
	"fmt"
	"os"

	"buildingclash/internal/util"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/project"
)

// Footprint projections
const (
	ProjectionNone     = "none"
	ProjectionMercator = "mercator"
	ProjectionLocal    = "local"
)

// BuildSubmitBody renders buildings as a clash submit body. ProjectionLocal
// maps footprints to metres east/north of the batch centre so the clash
// geometry shares units with heights.
func BuildSubmitBody(buildings []Building, projection string) ([]byte, error) {
	var origin orb.Point
	if projection == ProjectionLocal && len(buildings) > 0 {
		bound := buildings[0].Footprint.Bound()
		for _, b := range buildings[1:] {
			bound = bound.Union(b.Footprint.Bound())
		}
		origin = bound.Center()
	}

	fc := geojson.NewFeatureCollection()

	for _, b := range buildings {
		var ring orb.Ring
		switch projection {
		case ProjectionNone, "":
			ring = b.Footprint
		case ProjectionMercator:
			ring = project.Ring(b.Footprint.Clone(), project.WGS84.ToMercator)
		case ProjectionLocal:
			ring = util.RingToLocalMeters(origin, b.Footprint)
		default:
			return nil, fmt.Errorf("unknown projection %q", projection)
		}

		feature := geojson.NewFeature(orb.Polygon{ring})
		feature.ID = b.ID
		feature.Properties["elevation"] = b.Elevation
		feature.Properties["height"] = b.Height
		fc.Append(feature)
	}

	data, err := json.Marshal(fc)
	if err != nil {
		return nil, fmt.Errorf("encode submit body: %w", err)
	}
	return data, nil
}

// writeOutput writes data to path, or to stdout when path is empty
func writeOutput(path string, data []byte) error {
	if path == "" {
		_, err := os.Stdout.Write(append(data, '\n'))
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
