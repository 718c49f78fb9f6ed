package service

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionalTracksPresence(t *testing.T) {
	var req struct {
		Title  Optional[string]  `json:"title"`
		Notes  Optional[*string] `json:"notes"`
		TagIDs Optional[[]uint]  `json:"tag_ids"`
		Due    Optional[*string] `json:"due_date"`
	}

	require.NoError(t, json.Unmarshal([]byte(`{"title":"x","notes":null,"tag_ids":[]}`), &req))

	assert.True(t, req.Title.Set)
	assert.Equal(t, "x", req.Title.Value)
	assert.True(t, req.Notes.Set)
	assert.Nil(t, req.Notes.Value)
	assert.True(t, req.TagIDs.Set)
	assert.Empty(t, req.TagIDs.Value)
	assert.False(t, req.Due.Set)
}

func TestOptionalRejectsWrongType(t *testing.T) {
	var req struct {
		Position Optional[int] `json:"position"`
	}
	assert.Error(t, json.Unmarshal([]byte(`{"position":"first"}`), &req))
}
