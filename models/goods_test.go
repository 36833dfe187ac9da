package models

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, v interface{}) map[string]interface{} {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func TestGood_UnloadedVariationsRenderAsEmptyList(t *testing.T) {
	out := decode(t, Good{ID: uuid.New(), Title: "Chair"})

	assert.Equal(t, []interface{}{}, out["variations"])
	assert.Equal(t, "Chair", out["title"])
}

func TestVariation_UnloadedPhotosRenderAsEmptyList(t *testing.T) {
	out := decode(t, &Variation{ID: uuid.New(), Title: "Stool"})

	assert.Equal(t, []interface{}{}, out["photos"])
	assert.Nil(t, out["length"])
}

func TestGood_NestedVariationsRenderEmptyPhotos(t *testing.T) {
	raw, err := json.Marshal(Good{Variations: []Variation{{Title: "Stool"}}})
	require.NoError(t, err)
	var good struct {
		Variations []map[string]interface{} `json:"variations"`
	}
	require.NoError(t, json.Unmarshal(raw, &good))
	require.Len(t, good.Variations, 1)
	assert.Equal(t, []interface{}{}, good.Variations[0]["photos"])
}

func TestVariation_LoadedPhotosAreKept(t *testing.T) {
	photoID := uuid.New()
	out := decode(t, Variation{Photos: []Photo{{ID: photoID, URL: "/static/a.jpg"}}})

	photos := out["photos"].([]interface{})
	require.Len(t, photos, 1)
	assert.Equal(t, "/static/a.jpg", photos[0].(map[string]interface{})["url"])
}
