package clash

import (
	"buildingclash/internal/model"

	"github.com/paulmach/orb"
)

// FormatResults renders clashes in detector order
func FormatResults(clashes []model.ClashResult) model.FeatureCollection {
	fc := model.NewFeatureCollection()
	for _, c := range clashes {
		fc.Features = append(fc.Features, model.Feature{
			Type: model.TypeFeature,
			Properties: model.ClashProperties{
				Elevation: model.Number(c.Elevation),
				Height:    model.Number(c.Height),
				Buildings: []string{c.BuildingIDs[0], c.BuildingIDs[1]},
			},
			Geometry: model.PolygonGeometry{
				Type:        model.TypePolygon,
				Coordinates: [][]model.Position{positions(c.Geometry)},
			},
		})
	}
	return fc
}

func positions(ring orb.Ring) []model.Position {
	out := make([]model.Position, len(ring))
	for i, p := range ring {
		out[i] = model.Position{model.Number(p[0]), model.Number(p[1])}
	}
	return out
}
