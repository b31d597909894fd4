package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatchReportFinalize_SortAndSummary(t *testing.T) {
	loc := time.FixedZone("JST", 9*60*60)
	r := BatchReport{
		Dir:        "/tmp/out",
		StartedAt:  time.Date(2026, 1, 1, 9, 0, 0, 0, loc),
		FinishedAt: time.Date(2026, 1, 1, 9, 0, 1, 0, loc),
		Items: []FileResult{
			{File: "", Status: StatusFailed, ErrorCode: ErrCodeIOFailed},
			{File: "recipe_002.html", Status: StatusUnchanged},
			{File: "recipe_001.html", Status: StatusModified},
			{File: "recipe_003.html", Status: StatusFailed, ErrorCode: ErrCodeUnreadableText},
		},
	}
	r.Finalize()

	require.Len(t, r.Items, 4)
	assert.Equal(t, "recipe_001.html", r.Items[0].File)
	assert.Equal(t, "recipe_002.html", r.Items[1].File)
	assert.Equal(t, "recipe_003.html", r.Items[2].File)
	assert.Equal(t, "", r.Items[3].File)
	assert.Equal(t, BatchSummary{Modified: 1, Unchanged: 1, Failed: 2}, r.Summary)
	assert.Equal(t, time.UTC, r.StartedAt.Location())

	b, err := json.Marshal(r)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"started_at":"2026-01-01T00:00:00Z"`)
}

func TestBatchReportFinalize_EmptyItemsIsArray(t *testing.T) {
	var r BatchReport
	r.Finalize()

	b, err := json.Marshal(r)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"items":[]`)
}

func TestEmptyRecipe_MaterialsIsArray(t *testing.T) {
	b, err := json.Marshal(EmptyRecipe())
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"","name":"","reading":"","genre":"","materials":[],"image":""}`, string(b))
}
