package domain

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestID_UnmarshalJSON(t *testing.T) {
	t.Run("accepts numbers", func(t *testing.T) {
		var id ID
		require.NoError(t, json.Unmarshal([]byte(`42`), &id))
		assert.Equal(t, ID("42"), id)
	})

	t.Run("accepts strings", func(t *testing.T) {
		var id ID
		require.NoError(t, json.Unmarshal([]byte(`"similar"`), &id))
		assert.Equal(t, ID("similar"), id)
	})

	t.Run("null is empty", func(t *testing.T) {
		id := ID("x")
		require.NoError(t, json.Unmarshal([]byte(`null`), &id))
		assert.True(t, id.IsZero())
	})

	t.Run("rejects objects", func(t *testing.T) {
		var id ID
		assert.Error(t, json.Unmarshal([]byte(`{"id":1}`), &id))
	})
}

func TestID_MarshalJSON(t *testing.T) {
	data, err := json.Marshal(AnnotateRequest{CoupleID: "7", ClassSelection: "similar", CurrentIndex: 2})
	require.NoError(t, err)
	assert.JSONEq(t, `{"coupleId":7,"classSelection":"similar","notes":"","currentIndex":2}`, string(data))
}

func TestTaskList_ProgressKeys(t *testing.T) {
	var list TaskList
	err := json.Unmarshal([]byte(`{"tasks":[{"id":3,"dateLimite":"2024-06-30"}],"taskProgressMap":{"3":2}}`), &list)
	require.NoError(t, err)
	require.Len(t, list.Tasks, 1)
	assert.Equal(t, 2, list.Progress["3"])
	require.NotNil(t, list.Tasks[0].Deadline)
	assert.Equal(t, time.June, list.Tasks[0].Deadline.Month())
}

func TestTimestamp_UnmarshalJSON(t *testing.T) {
	cases := map[string]time.Time{
		`"2024-06-30T10:00:00Z"`: time.Date(2024, 6, 30, 10, 0, 0, 0, time.UTC),
		`"2024-06-30T10:00:00"`:  time.Date(2024, 6, 30, 10, 0, 0, 0, time.UTC),
		`"2024-06-30"`:           time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC),
		`1719741600000`:          time.Date(2024, 6, 30, 10, 0, 0, 0, time.UTC),
	}
	for input, want := range cases {
		var ts Timestamp
		require.NoError(t, json.Unmarshal([]byte(input), &ts), input)
		assert.True(t, want.Equal(ts.Time), "%s: got %s", input, ts.Time)
	}

	var ts Timestamp
	assert.Error(t, json.Unmarshal([]byte(`"next tuesday"`), &ts))
}

func TestClassifyStatus(t *testing.T) {
	assert.NoError(t, ClassifyStatus(200))
	assert.NoError(t, ClassifyStatus(204))
	assert.ErrorIs(t, ClassifyStatus(401), ErrUnauthenticated)
	assert.ErrorIs(t, ClassifyStatus(403), ErrNotAuthorized)
	assert.ErrorIs(t, ClassifyStatus(404), ErrNotFound)
	assert.ErrorIs(t, ClassifyStatus(500), ErrNetwork)
	assert.ErrorIs(t, ClassifyStatus(422), ErrNetwork)
}

func TestAPIError_Unwrap(t *testing.T) {
	err := error(&APIError{Status: 403, Message: "Not yours", Err: ErrNotAuthorized})
	assert.True(t, errors.Is(err, ErrNotAuthorized))
	assert.Contains(t, err.Error(), "Not yours")
	assert.Contains(t, err.Error(), "403")
}
