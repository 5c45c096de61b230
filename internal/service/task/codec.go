package task

import (
	"encoding/json"
	"fmt"
	"strconv"

	"buildingclash/internal/model"
)

// Cache entries keep every number as a decimal string so that no backend can
// reinterpret it. Conversion happens only in EncodeRecord and DecodeRecord.

type storedRecord struct {
	TaskID string           `json:"task_id"`
	Result storedCollection `json:"result"`
}

type storedCollection struct {
	Type     string          `json:"type"`
	Features []storedFeature `json:"features"`
}

type storedFeature struct {
	Type       string           `json:"type"`
	Properties storedProperties `json:"properties"`
	Geometry   storedGeometry   `json:"geometry"`
}

type storedProperties struct {
	Elevation string   `json:"elevation"`
	Height    string   `json:"height"`
	Buildings []string `json:"buildings"`
}

type storedGeometry struct {
	Type        string        `json:"type"`
	Coordinates [][][2]string `json:"coordinates"`
}

// EncodeRecord serializes a finished result for storage under taskID
func EncodeRecord(taskID string, fc model.FeatureCollection) ([]byte, error) {
	record := storedRecord{
		TaskID: taskID,
		Result: storedCollection{
			Type:     fc.Type,
			Features: make([]storedFeature, 0, len(fc.Features)),
		},
	}

	for _, f := range fc.Features {
		coords := make([][][2]string, len(f.Geometry.Coordinates))
		for r, ring := range f.Geometry.Coordinates {
			coords[r] = make([][2]string, len(ring))
			for i, p := range ring {
				coords[r][i] = [2]string{decimal(p[0]), decimal(p[1])}
			}
		}
		record.Result.Features = append(record.Result.Features, storedFeature{
			Type: f.Type,
			Properties: storedProperties{
				Elevation: decimal(f.Properties.Elevation),
				Height:    decimal(f.Properties.Height),
				Buildings: f.Properties.Buildings,
			},
			Geometry: storedGeometry{Type: f.Geometry.Type, Coordinates: coords},
		})
	}

	data, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("encode task %s: %w", taskID, err)
	}
	return data, nil
}

// DecodeRecord restores the task id and numeric result from a stored record
func DecodeRecord(data []byte) (string, model.FeatureCollection, error) {
	var record storedRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return "", model.FeatureCollection{}, fmt.Errorf("decode task record: %w", err)
	}

	fc := model.NewFeatureCollection()
	if record.Result.Type != "" {
		fc.Type = record.Result.Type
	}

	for _, sf := range record.Result.Features {
		elevation, err := parseDecimal(sf.Properties.Elevation)
		if err != nil {
			return "", model.FeatureCollection{}, err
		}
		height, err := parseDecimal(sf.Properties.Height)
		if err != nil {
			return "", model.FeatureCollection{}, err
		}

		coords := make([][]model.Position, len(sf.Geometry.Coordinates))
		for r, ring := range sf.Geometry.Coordinates {
			coords[r] = make([]model.Position, len(ring))
			for i, p := range ring {
				x, err := parseDecimal(p[0])
				if err != nil {
					return "", model.FeatureCollection{}, err
				}
				y, err := parseDecimal(p[1])
				if err != nil {
					return "", model.FeatureCollection{}, err
				}
				coords[r][i] = model.Position{x, y}
			}
		}

		buildings := sf.Properties.Buildings
		if buildings == nil {
			buildings = []string{}
		}
		fc.Features = append(fc.Features, model.Feature{
			Type: sf.Type,
			Properties: model.ClashProperties{
				Elevation: elevation,
				Height:    height,
				Buildings: buildings,
			},
			Geometry: model.PolygonGeometry{Type: sf.Geometry.Type, Coordinates: coords},
		})
	}

	return record.TaskID, fc, nil
}

func decimal(n model.Number) string {
	return model.FormatDecimal(float64(n))
}

func parseDecimal(s string) (model.Number, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("decode decimal %q: %w", s, err)
	}
	return model.Number(v), nil
}
