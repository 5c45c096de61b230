package task

import (
	"encoding/json"
	"testing"

	"buildingclash/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResult() model.FeatureCollection {
	fc := model.NewFeatureCollection()
	fc.Features = append(fc.Features, model.Feature{
		Type: model.TypeFeature,
		Properties: model.ClashProperties{
			Elevation: 2,
			Height:    0.1,
			Buildings: []string{"building_0", "building_1"},
		},
		Geometry: model.PolygonGeometry{
			Type: model.TypePolygon,
			Coordinates: [][]model.Position{{
				{0, 40}, {20.123456, 40}, {20, 60}, {0, 60}, {0, 40},
			}},
		},
	})
	return fc
}

func TestEncodeRecordStoresDecimalStrings(t *testing.T) {
	data, err := EncodeRecord("abc", sampleResult())
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "abc", raw["task_id"])

	result := raw["result"].(map[string]any)
	feature := result["features"].([]any)[0].(map[string]any)
	props := feature["properties"].(map[string]any)
	assert.Equal(t, "2", props["elevation"])
	assert.Equal(t, "0.1", props["height"])

	ring := feature["geometry"].(map[string]any)["coordinates"].([]any)[0].([]any)
	assert.Equal(t, []any{"20.123456", "40"}, ring[1])
}

func TestDecodeRecordRestoresNumbers(t *testing.T) {
	want := sampleResult()

	data, err := EncodeRecord("abc", want)
	require.NoError(t, err)

	taskID, got, err := DecodeRecord(data)
	require.NoError(t, err)
	assert.Equal(t, "abc", taskID)
	assert.Equal(t, want, got)

	rendered, err := json.Marshal(got)
	require.NoError(t, err)
	assert.Contains(t, string(rendered), `"elevation":2,"height":0.1`)
}

func TestDecodeRecordEmptyResult(t *testing.T) {
	data, err := EncodeRecord("empty", model.NewFeatureCollection())
	require.NoError(t, err)

	_, got, err := DecodeRecord(data)
	require.NoError(t, err)
	assert.NotNil(t, got.Features)
	assert.Empty(t, got.Features)
}

func TestDecodeRecordRejectsGarbage(t *testing.T) {
	_, _, err := DecodeRecord([]byte(`{"task_id": "x", "result": {"features": [{"properties": {"elevation": "two"}}]}}`))
	assert.ErrorContains(t, err, `"two"`)

	_, _, err = DecodeRecord([]byte(`not json`))
	assert.Error(t, err)
}
