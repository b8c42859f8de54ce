package history

import (
	"encoding/json"
	"testing"

	"github.com/lewtec/parelha/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const mixedHistory = `{
  "annotations": [
    {
      "id": 12,
      "coupleText": {"text_1": "the cat sat", "text_2": "a cat was sitting"},
      "chosenClass": "similar",
      "notes": "easy",
      "annotateur": {
        "nom": "Doe",
        "annotations": [
          {"id": 12, "coupleText": {"text_1": "the cat sat", "text_2": "a cat was sitting"}, "chosenClass": "similar"},
          {"id": 15, "coupleText": {"text_1": "rain", "text_2": "sun"}, "chosenClass": {"id": 2, "textClass": "different"}},
          7,
          {"id": 16, "coupleText": null, "chosenClass": "similar"}
        ]
      }
    },
    13,
    null,
    "garbage",
    {"id": 9, "coupleText": {"text_1": "a", "text_2": "b"}, "chosenClass": "neutral", "notes": null},
    {"id": 10, "chosenClass": "neutral"}
  ]
}`

func TestNormalize_MixedShapes(t *testing.T) {
	records, stats, err := Normalize([]byte(mixedHistory))
	require.NoError(t, err)

	ids := make([]domain.ID, len(records))
	for i, rec := range records {
		ids[i] = rec.ID
	}
	assert.Equal(t, []domain.ID{"15", "12", "9"}, ids)

	assert.Equal(t, "different", records[0].ChosenClass)
	assert.Equal(t, "rain", records[0].Pair.Text1)
	assert.Equal(t, "easy", records[1].Notes)
	assert.Empty(t, records[2].Notes)

	assert.Equal(t, 3, stats.Kept)
	assert.Equal(t, 1, stats.Duplicates)
	assert.Equal(t, 6, stats.Discarded)
}

func TestNormalize_DuplicateTopLevelAndNested(t *testing.T) {
	body := `{"annotations":[
	  {"id": 1, "coupleText": {"text_1": "x", "text_2": "y"}, "chosenClass": "a",
	   "annotateur": {"annotations": [{"id": 1, "coupleText": {"text_1": "x", "text_2": "y"}, "chosenClass": "a"}]}}
	]}`
	records, _, err := Normalize([]byte(body))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, domain.ID("1"), records[0].ID)
}

func TestNormalize_EdgeCases(t *testing.T) {
	t.Run("missing annotations field", func(t *testing.T) {
		records, _, err := Normalize([]byte(`{}`))
		require.NoError(t, err)
		assert.Empty(t, records)
	})

	t.Run("annotations is not an array", func(t *testing.T) {
		_, _, err := Normalize([]byte(`{"annotations": 3}`))
		assert.Error(t, err)
	})

	t.Run("body is not json", func(t *testing.T) {
		_, _, err := Normalize([]byte(`<html>`))
		assert.Error(t, err)
	})

	t.Run("zero id is incomplete", func(t *testing.T) {
		records, stats, err := Normalize([]byte(`{"annotations":[{"id":0,"coupleText":{"text_1":"a"},"chosenClass":"b"}]}`))
		require.NoError(t, err)
		assert.Empty(t, records)
		assert.Equal(t, 1, stats.Discarded)
	})
}

func TestSortNewestFirst(t *testing.T) {
	records := []domain.AnnotationRecord{{ID: "9"}, {ID: "b"}, {ID: "100"}, {ID: "a"}, {ID: "10"}}
	SortNewestFirst(records)

	got := make([]domain.ID, len(records))
	for i, rec := range records {
		got[i] = rec.ID
	}
	assert.Equal(t, []domain.ID{"100", "10", "9", "b", "a"}, got)
}

func TestFlatten_NestedOnlyContainer(t *testing.T) {
	items := []json.RawMessage{
		json.RawMessage(`{"annotateur":{"annotations":[{"id":"x1","coupleText":"only text","chosenClass":4}]}}`),
	}
	records, stats := Flatten(items)
	require.Len(t, records, 1)
	assert.Equal(t, "only text", records[0].Pair.Text1)
	assert.Equal(t, "4", records[0].ChosenClass)
	assert.Equal(t, 0, stats.Discarded)
}
