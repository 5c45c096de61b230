package model

import (
	"fmt"
	"math"
	"strconv"
)

const (
	TypeFeatureCollection = "FeatureCollection"
	TypeFeature           = "Feature"
	TypePolygon           = "Polygon"
)

// Number is a float64 that renders whole values without a fractional part
// and never falls back to exponent notation
type Number float64

// MarshalJSON implements json.Marshaler
func (n Number) MarshalJSON() ([]byte, error) {
	v := float64(n)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, fmt.Errorf("unsupported number value: %v", v)
	}
	return []byte(FormatDecimal(v)), nil
}

// FormatDecimal renders v as the shortest decimal string that parses back to v
func FormatDecimal(v float64) string {
	if v == 0 {
		// Drop the sign of negative zero
		return "0"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Position is a single [x, y] coordinate pair
type Position [2]Number

// FeatureCollection is the rendered clash report
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

// Feature is one rendered clash
type Feature struct {
	Type       string          `json:"type"`
	Properties ClashProperties `json:"properties"`
	Geometry   PolygonGeometry `json:"geometry"`
}

// ClashProperties holds the vertical band and the clashing building ids
type ClashProperties struct {
	Elevation Number   `json:"elevation"`
	Height    Number   `json:"height"`
	Buildings []string `json:"buildings"`
}

// PolygonGeometry is a GeoJSON polygon with a single outer ring
type PolygonGeometry struct {
	Type        string       `json:"type"`
	Coordinates [][]Position `json:"coordinates"`
}

// NewFeatureCollection returns an empty collection that renders "features": []
func NewFeatureCollection() FeatureCollection {
	return FeatureCollection{
		Type:     TypeFeatureCollection,
		Features: make([]Feature, 0),
	}
}
